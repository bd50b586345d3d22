package presenter

import (
	"context"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/termenv"

	"github.com/mdslide/mdslide/internal/builder"
	"github.com/mdslide/mdslide/internal/diff"
	"github.com/mdslide/mdslide/internal/markdown"
	"github.com/mdslide/mdslide/internal/poller"
	"github.com/mdslide/mdslide/internal/render"
	"github.com/mdslide/mdslide/internal/resource"
	"github.com/mdslide/mdslide/internal/snippet"
)

// model is the bubbletea tea.Model driving the whole presenter loop.
// Grounded on _examples/asynkron-GoAgent/internal/tui/tui.go's model shape
// (small message structs, a waitForEvent-style channel bridge, Init/
// Update/View) and on presenter.rs's state machine
// (apply_command/try_reload/poll_async_renders).
type model struct {
	opts Options

	parser   *markdown.Parser
	executor *snippet.Executor
	cache    *resource.Cache
	poller   *poller.Poller

	state State
	keys  KeyMap
	bind  Bindings

	width, height int
	engine        *render.Engine

	// modalViewport scrolls the slide-index/key-bindings overlays when
	// their content is taller than the screen — those are flat text, a
	// better fit for bubbles/viewport than the chunk-paged main view.
	modalViewport viewport.Model

	// pendingSeq buffers literal key tokens for multi-key sequences (the
	// default "gg" binding), reset during key handling once the buffer is
	// an exact match or no longer a prefix of any bound sequence.
	pendingSeq string

	// goToBuffer accumulates digits typed before 'G' for spec.md §6's
	// "<number>G jumps to that slide" grammar — handled directly here
	// rather than through Bindings.Match, since it isn't a fixed sequence.
	goToBuffer string

	quitting bool

	lastMtime time.Time

	// transition plays a handful of in-between frames after Next/Previous
	// when opts.Transitions is set; nil means render the slide normally.
	transition                                       Transition
	transitionFrame, transitionStep, transitionTotal int
}

type tickMsg time.Time

type pollEffectMsg poller.Effect

// transitionTickMsg advances an in-flight Transition by one step.
type transitionTickMsg struct{}

// transitionSteps is how many redraws collapse_horizontal plays over,
// matching SPEC_FULL.md's "a handful of redraws" rather than a full
// column-by-column animation at terminal width.
const transitionSteps = 6

func newModel(opts Options) *model {
	opts.setDefaults()

	profiles := opts.Builder.Snippets
	executor := snippet.NewExecutor(profiles)
	executor.Logger = opts.Logger
	executor.Metrics = opts.Metrics

	return &model{
		opts:     opts,
		parser:   markdown.New(),
		executor: executor,
		cache:    resource.NewCache(),
		poller:   poller.Launch(),
		keys:     NewKeyMap(DefaultBindings()),
		bind:     DefaultBindings(),
		engine:   &render.Engine{Images: opts.Images, ColorProfile: termenv.TrueColor},
	}
}

func (m *model) Init() tea.Cmd {
	if info, err := os.Stat(m.opts.Path); err == nil {
		m.lastMtime = info.ModTime()
	}
	p, err := m.load()
	if err != nil {
		m.state = failureState(err, &builder.Presentation{Slides: []builder.Slide{{Chunks: []builder.SlideChunk{{}}}}}, ErrorSourcePresentation, FailureOther)
	} else {
		m.state = presentingState(p)
		m.seedPoller(p)
	}
	return tea.Batch(m.waitForPollEffect(), m.tickCmd())
}

// load reads the presentation source from disk and builds it fresh.
func (m *model) load() (*builder.Presentation, error) {
	source, err := os.ReadFile(m.opts.Path)
	if err != nil {
		return nil, err
	}
	elements, err := m.parser.Parse(m.opts.Path, source)
	if err != nil {
		return nil, err
	}
	b, err := builder.New(context.Background(), m.opts.Builder, m.executor, m.cache)
	if err != nil {
		return nil, err
	}
	return b.Build(elements)
}

func (m *model) seedPoller(p *builder.Presentation) {
	m.poller.Reset()
	for _, slideIndex := range p.SlidesWithAsyncRenders() {
		for _, pollable := range p.AsyncPollables(slideIndex) {
			m.poller.Poll(pollable, slideIndex)
		}
	}
}

func (m *model) waitForPollEffect() tea.Cmd {
	return func() tea.Msg {
		for {
			if e, ok := m.poller.NextEffect(); ok {
				return pollEffectMsg(e)
			}
			time.Sleep(10 * time.Millisecond)
		}
	}
}

func (m *model) tickCmd() tea.Cmd {
	interval := time.Duration(m.opts.FileWatchInterval) * time.Millisecond
	return tea.Tick(interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tickMsg:
		cmds := []tea.Cmd{m.tickCmd()}
		if m.opts.Mode == ModeDevelopment {
			if changed, err := m.sourceChanged(); err == nil && changed {
				m.reload(false)
			}
		}
		return m, tea.Batch(cmds...)

	case pollEffectMsg:
		// A background snippet finished or produced new output; Redraw is
		// enough, the next View() reads its ExecutionState directly.
		return m, m.waitForPollEffect()

	case transitionTickMsg:
		if m.transition == nil {
			return m, nil
		}
		m.transitionFrame += m.transitionStep
		if m.transitionFrame >= m.transitionTotal {
			m.transition = nil
			return m, nil
		}
		return m, m.transitionTickCmd()
	}
	return m, nil
}

func (m *model) transitionTickCmd() tea.Cmd {
	return tea.Tick(30*time.Millisecond, func(time.Time) tea.Msg { return transitionTickMsg{} })
}

func (m *model) sourceChanged() (bool, error) {
	info, err := os.Stat(m.opts.Path)
	if err != nil {
		return false, err
	}
	if info.ModTime().After(m.lastMtime) {
		m.lastMtime = info.ModTime()
		return true, nil
	}
	return false, nil
}

func (m *model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	token := msg.String()

	// GoToSlide: digits accumulate, a trailing 'G' (bare, no modifier)
	// commits the jump; any other key clears the buffer.
	if len(token) == 1 && token[0] >= '0' && token[0] <= '9' {
		m.goToBuffer += token
		return m, nil
	}
	if token == "G" && m.goToBuffer != "" {
		n, err := strconv.Atoi(m.goToBuffer)
		m.goToBuffer = ""
		if err == nil {
			return m, m.dispatch(CmdGoToSlide, n)
		}
		return m, nil
	}
	m.goToBuffer = ""

	m.pendingSeq += token
	if cmd, result := m.bind.Match(m.pendingSeq); result != matchNone {
		if result == matchExact {
			m.pendingSeq = ""
			return m, m.dispatch(cmd, 0)
		}
		// matchPrefix: still could become a longer sequence, keep buffering.
		return m, nil
	}
	m.pendingSeq = ""

	if cmd, ok := m.keys.Dispatch(msg); ok {
		return m, m.dispatch(cmd, 0)
	}
	return m, nil
}

// dispatch mirrors presenter.rs's apply_command: unconditional commands
// first (exit/suspend/reload), then commands that require a live
// presentation.
func (m *model) dispatch(cmd Command, arg int) tea.Cmd {
	switch cmd {
	case CmdExit:
		m.quitting = true
		return tea.Quit
	case CmdSuspend:
		return tea.Suspend
	case CmdHardReload:
		m.reload(true)
		return nil
	case CmdReload:
		m.reload(false)
		return nil
	}

	if m.state.IsEmpty() {
		return nil
	}

	switch cmd {
	case CmdToggleSlideIndex:
		m.toggleSlideIndex()
	case CmdToggleKeyBindingsConfig:
		m.toggleKeyBindings()
	case CmdCloseModal:
		m.closeModal()
	case CmdRenderAsyncOperations:
		if !m.state.IsFailure() {
			return m.runExecTrigger(m.state.Presentation())
		}
	case CmdRedraw:
		// Redraw alone needs nothing extra: View() always reflects current
		// state and re-runs the engine against the current window size.
	case CmdNext, CmdPrevious:
		if m.state.IsFailure() {
			break
		}
		if m.state.kind == stateSlideIndex || m.state.kind == stateKeyBindings {
			m.scrollModal(cmd)
			break
		}
		if m.opts.Transitions {
			return m.playTransition(cmd)
		}
		m.applyNavigation(m.state.Presentation(), cmd, arg)
	default:
		if m.state.IsFailure() {
			break
		}
		if m.state.kind == stateSlideIndex || m.state.kind == stateKeyBindings {
			m.scrollModal(cmd)
			break
		}
		m.applyNavigation(m.state.Presentation(), cmd, arg)
	}
	return nil
}

// playTransition captures the current slide's rendered frame, advances the
// presentation, captures the new frame, and starts a collapse_horizontal
// animation between the two (spec.md's Non-goals don't exclude this;
// SUPPLEMENTED FEATURES in SPEC_FULL.md adds it from
// original_source/src/transitions/collapse_horizontal.rs). Returns nil
// (no animation) if the jump didn't move — e.g. already on the last slide.
func (m *model) playTransition(cmd Command) tea.Cmd {
	p := m.state.Presentation()
	before := p.CurrentSlideIndex
	from := m.renderGrid(p)

	switch cmd {
	case CmdNext:
		p.JumpNext()
	case CmdPrevious:
		p.JumpPrevious()
	}
	if p.CurrentSlideIndex == before {
		return nil
	}

	to := m.renderGrid(p)
	direction := TransitionNext
	if cmd == CmdPrevious {
		direction = TransitionPrevious
	}

	t := NewCollapseHorizontalTransition(from, to, direction)
	total := t.TotalFrames()
	step := total / transitionSteps
	if step < 1 {
		step = 1
	}

	m.transition = t
	m.transitionFrame = step
	m.transitionStep = step
	m.transitionTotal = total
	return m.transitionTickCmd()
}

// renderGrid runs the engine against p's currently visible chunks into a
// fresh gridDrawer, the same path View() takes, so its rasterized cells can
// feed a Transition. Render errors (e.g. terminal too small) just leave the
// grid blank rather than failing the jump.
func (m *model) renderGrid(p *builder.Presentation) *gridDrawer {
	grid := newGridDrawer(m.engine.ColorProfile, m.height, m.width)
	m.engine.Drawer = grid
	ops := flattenChunks(p.VisibleChunks())
	_ = m.engine.Run(ops, render.WindowSize{Rows: m.height, Columns: m.width})
	return grid
}

// scrollModal repurposes the navigation commands as scroll requests while
// an overlay modal (slide index / key bindings) is open, since that
// content is flat scrollable text rather than paged slides.
func (m *model) scrollModal(cmd Command) {
	switch cmd {
	case CmdNext:
		m.modalViewport.LineDown(1)
	case CmdPrevious:
		m.modalViewport.LineUp(1)
	case CmdNextFast:
		m.modalViewport.HalfViewDown()
	case CmdPreviousFast:
		m.modalViewport.HalfViewUp()
	case CmdFirstSlide:
		m.modalViewport.GotoTop()
	case CmdLastSlide:
		m.modalViewport.GotoBottom()
	}
}

// runExecTrigger hands the real terminal to the current slide's first
// ExecPty/ExecAcquireTerminal snippet, matching presenter.rs's Suspend
// handling idiom but for a snippet subprocess instead of the presenter
// itself: bubbletea releases the screen, the command runs attached to the
// real stdio, and the view resumes once it exits.
func (m *model) runExecTrigger(p *builder.Presentation) tea.Cmd {
	triggers := p.ExecTriggers(p.CurrentSlideIndex)
	if len(triggers) == 0 {
		return nil
	}
	t := triggers[0]
	if len(t.Argv) == 0 {
		return nil
	}
	cmd := exec.Command(t.Argv[0], t.Argv[1:]...)
	cmd.Dir = t.Dir
	return tea.ExecProcess(cmd, func(error) tea.Msg { return nil })
}

func (m *model) applyNavigation(p *builder.Presentation, cmd Command, arg int) {
	switch cmd {
	case CmdNext:
		p.JumpNext()
	case CmdPrevious:
		p.JumpPrevious()
	case CmdNextFast:
		p.JumpNextFast()
	case CmdPreviousFast:
		p.JumpPreviousFast()
	case CmdFirstSlide:
		p.JumpFirstSlide()
	case CmdLastSlide:
		p.JumpLastSlide()
	case CmdGoToSlide:
		p.GoToSlide(arg)
	}
}

func (m *model) toggleSlideIndex() {
	if m.state.kind == stateSlideIndex {
		m.closeModal()
		return
	}
	if m.state.IsFailure() || m.state.IsEmpty() {
		return
	}
	m.state = slideIndexState(m.state.Presentation())
	m.modalViewport.GotoTop()
}

func (m *model) toggleKeyBindings() {
	if m.state.kind == stateKeyBindings {
		m.closeModal()
		return
	}
	if m.state.IsFailure() || m.state.IsEmpty() {
		return
	}
	m.state = keyBindingsState(m.state.Presentation())
	m.modalViewport.GotoTop()
}

func (m *model) closeModal() {
	if m.state.kind == stateSlideIndex || m.state.kind == stateKeyBindings {
		m.state = presentingState(m.state.Presentation())
	}
}

// reload rebuilds the presentation from disk. Both paths rebuild
// unconditionally (the file-watch tick checks the modification time before
// calling it); force==true (HardReload) additionally clears the resource
// cache first. Either way a diff against the old build locates the first
// change and the viewer lands there instead of snapping back to slide one,
// matching try_reload in presenter.rs.
func (m *model) reload(force bool) {
	if force {
		m.cache.Clear()
	}
	var old *builder.Presentation
	if !m.state.IsEmpty() && !m.state.IsFailure() {
		old = m.state.Presentation()
	}

	fresh, err := m.load()
	if err != nil {
		m.state = failureState(err, orEmpty(old), ErrorSourcePresentation, FailureOther)
		return
	}

	if old != nil {
		if point, ok := diff.FirstModification(old, fresh); ok {
			fresh.CurrentSlideIndex = point.SlideIndex
			if fresh.CurrentSlideIndex >= len(fresh.Slides) {
				fresh.CurrentSlideIndex = len(fresh.Slides) - 1
			}
			fresh.JumpChunk(point.ChunkIndex)
		} else {
			fresh.CurrentSlideIndex = old.CurrentSlideIndex
			fresh.JumpChunk(old.CurrentChunkIndex)
		}
	}

	m.state = presentingState(fresh)
	m.seedPoller(fresh)
}

func orEmpty(p *builder.Presentation) *builder.Presentation {
	if p != nil {
		return p
	}
	return &builder.Presentation{Slides: []builder.Slide{{Chunks: []builder.SlideChunk{{}}}}}
}

func (m *model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return ""
	}

	if m.state.IsEmpty() {
		return "loading...\n"
	}

	if m.state.kind == stateSlideIndex || m.state.kind == stateKeyBindings {
		return m.viewModal()
	}

	if m.transition != nil {
		return m.transition.Frame(m.transitionFrame)
	}

	grid := newGridDrawer(m.engine.ColorProfile, m.height, m.width)
	m.engine.Drawer = grid

	var ops []render.Operation
	if m.state.IsFailure() {
		ops = failureOperations(m.state)
	} else {
		ops = flattenChunks(m.state.Presentation().VisibleChunks())
	}

	size := render.WindowSize{Rows: m.height, Columns: m.width}
	if err := m.engine.Run(ops, size); err != nil {
		if err == render.ErrTerminalTooSmall {
			return "(terminal too small)\n"
		}
		return err.Error() + "\n"
	}
	return grid.Render()
}

// modalMaxRows bounds how tall a one-shot render of a modal's content is
// allowed to be before bubbles/viewport takes over scrolling — generous
// enough for any realistic slide index or key-bindings listing.
const modalMaxRows = 500

func (m *model) viewModal() string {
	wantKind := builder.ModalKeyBindings
	if m.state.kind == stateSlideIndex {
		wantKind = builder.ModalSlideIndex
	}
	p := m.state.Presentation()
	var ops []render.Operation
	for _, modal := range p.Modals {
		if modal.Kind == wantKind {
			ops = flattenChunks(modal.Slide.Chunks)
			break
		}
	}

	grid := newGridDrawer(m.engine.ColorProfile, modalMaxRows, m.width)
	m.engine.Drawer = grid
	if err := m.engine.Run(ops, render.WindowSize{Rows: modalMaxRows, Columns: m.width}); err != nil && err != render.ErrTerminalTooSmall {
		return err.Error() + "\n"
	}

	m.modalViewport.Width = m.width
	m.modalViewport.Height = m.height
	m.modalViewport.SetContent(strings.TrimRight(grid.Render(), "\n"))
	return m.modalViewport.View()
}

func flattenChunks(chunks []builder.SlideChunk) []render.Operation {
	var out []render.Operation
	for _, c := range chunks {
		out = append(out, c.Operations...)
	}
	return out
}

func failureOperations(s State) []render.Operation {
	msg := s.failureError
	if msg == "" {
		msg = "unknown error"
	}
	return []render.Operation{
		render.ClearScreen{},
		render.JumpToVerticalCenter{},
		render.RenderText{
			Line: render.WeightedLine{Line: render.Line{{Content: strings.TrimSpace(msg)}}},
		},
	}
}

// Shutdown stops background workers. Called once from Run after the
// bubbletea program exits.
func (m *model) Shutdown() {
	m.poller.Stop()
}
