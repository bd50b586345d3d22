package render

import (
	"errors"
	"fmt"

	"github.com/muesli/termenv"

	"github.com/mdslide/mdslide/internal/theme"
)

// ErrTerminalTooSmall signals the screen is below the minimum drawable
// size; callers ignore the frame and keep polling for a resize.
var ErrTerminalTooSmall = errors.New("render: terminal too small")

// OverflowError is returned only when overflow validation is enabled (see
// the presenter's export/validate mode, spec.md §4.H).
type OverflowError struct {
	Horizontal bool // true = HorizontalOverflow, false = VerticalOverflow
	Detail     string
}

func (e *OverflowError) Error() string {
	kind := "vertical"
	if e.Horizontal {
		kind = "horizontal"
	}
	return fmt.Sprintf("render: %s overflow: %s", kind, e.Detail)
}

const minRows, minColumns = 2, 10

// ImagePrinter paints an Image at the cursor's current position and
// reports how many terminal rows it occupied. Image protocol encoding
// (Kitty/iTerm2/Sixel/ASCII) lives entirely behind this collaborator; see
// internal/imaging for the default implementations.
type ImagePrinter interface {
	Print(img Image, at Rect, policy ImageSizePolicy) (rowsUsed int, err error)
}

// Drawer is the terminal sink the engine paints into. A real Drawer wraps
// an *os.File plus ANSI sequence generation (via lipgloss styles);
// tests use a recording Drawer instead.
type Drawer interface {
	MoveTo(row, col int)
	WriteStyled(text string, style theme.TextStyle)
	// WriteRaw writes text verbatim with no style applied — used for Text
	// runs marked ANSI, which already carry their own escape sequences
	// (see Text.ANSI and SPEC_FULL.md's ANSI-passthrough supplement).
	WriteRaw(text string)
	FillBackground(rect Rect, bg theme.Color)
	Clear()
}

// Engine interprets a chunk's operations against a terminal grid. One
// Engine instance is reused across frames; Run resets its layout stack
// and cursor at the start of every slide.
type Engine struct {
	Drawer       Drawer
	Images       ImagePrinter
	ColorProfile termenv.Profile

	// OverflowValidation, when true, reports HorizontalOverflow/
	// VerticalOverflow instead of soft-truncating, and forces font size 1
	// regardless of the operation's declared size or terminal capability
	// (open question 1, SPEC_FULL.md §13).
	OverflowValidation bool

	// SupportsFontSize reports whether the connected terminal can honor
	// size>1 operations; when false, size is clamped to 1 at draw time.
	SupportsFontSize bool

	size   WindowSize
	stack  *layoutStack
	row    int
	col    int
	colors theme.Colors
}

// Run draws ops against size, starting from a fresh top-left cursor and a
// layout stack covering the full screen. It returns ErrTerminalTooSmall if
// size is below the drawable minimum (caller should ignore the frame and
// keep polling), or an *OverflowError when overflow validation is enabled
// and content doesn't fit.
func (e *Engine) Run(ops []Operation, size WindowSize) error {
	if size.Rows < minRows || size.Columns < minColumns {
		return ErrTerminalTooSmall
	}
	e.size = size
	e.stack = newLayoutStack(Rect{Row: 0, Col: 0, Width: size.Columns, Height: size.Rows})
	e.row, e.col = 0, 0
	e.colors = theme.Colors{}

	if e.Drawer != nil {
		e.Drawer.Clear()
	}

	for _, op := range ops {
		if err := e.apply(op); err != nil {
			return err
		}
	}

	if !e.stack.atInitialState() {
		return ErrInvalidLayoutEnter
	}
	return nil
}

func (e *Engine) apply(op Operation) error {
	switch v := op.(type) {
	case ClearScreen:
		if e.Drawer != nil {
			e.Drawer.Clear()
			e.Drawer.FillBackground(e.stack.current(), e.colors.Background)
		}
		e.row, e.col = 0, 0
	case SetColors:
		e.colors = v.Colors
	case JumpToVerticalCenter:
		e.row = e.stack.current().Height / 2
		e.col = 0
	case JumpToRow:
		e.row = v.Index
	case JumpToColumn:
		e.col = v.Index
	case JumpToBottomRow:
		e.row = e.stack.current().Height - 1 - v.Index
	case RenderText:
		return e.renderText(v)
	case RenderLineBreak:
		e.lineBreak(1)
	case RenderImage:
		return e.renderImage(v)
	case RenderBlockLine:
		return e.renderBlockLine(v.Block)
	case InitColumnLayout:
		e.stack.initColumnLayout(v.Weights)
		e.row, e.col = 0, 0
	case EnterColumn:
		if err := e.stack.enterColumn(v.Column); err != nil {
			return err
		}
		e.row, e.col = 0, 0
	case ExitLayout:
		if err := e.stack.exitLayout(); err != nil {
			return err
		}
	case ApplyMargin:
		e.stack.applyMargin(v.Margin)
		e.row, e.col = 0, 0
	case PopMargin:
		if err := e.stack.popMargin(); err != nil {
			return err
		}
	case RenderDynamic:
		for _, expanded := range v.Source.AsRenderOperations(e.size) {
			if err := e.apply(expanded); err != nil {
				return err
			}
		}
	case RenderAsync:
		for _, expanded := range v.Source.AsRenderOperations(e.size) {
			if err := e.apply(expanded); err != nil {
				return err
			}
		}
	case ExecTrigger:
		// Pure metadata for the presenter (see ExecTrigger's doc comment);
		// nothing to draw.
	default:
		return fmt.Errorf("render: unknown operation %T", op)
	}
	return nil
}

// fontSize resolves the effective size for a draw: clamped to 1 when
// overflow validation is active or the terminal can't honor larger sizes.
func (e *Engine) fontSize(requested uint8) int {
	if requested == 0 {
		requested = 1
	}
	if e.OverflowValidation || !e.SupportsFontSize {
		return 1
	}
	if requested > 7 {
		requested = 7
	}
	return int(requested)
}

func (e *Engine) lineBreak(times int) {
	rect := e.stack.current()
	e.row += times
	e.col = 0
	if e.row >= rect.Height && !e.OverflowValidation {
		// Soft error: draw truncated, keep cursor pinned at the last row.
		e.row = rect.Height - 1
	}
}

func (e *Engine) renderText(op RenderText) error {
	rect := e.stack.current()
	usable := op.Alignment.Usable(rect.Width)
	plain := op.Line.Line.String()
	wrapped := WrapGraphemes(plain, usable)

	for i, w := range wrapped {
		if i > 0 {
			e.lineBreak(e.fontSize(op.Line.Line.styleSize()))
		}
		if e.row >= rect.Height {
			if e.OverflowValidation {
				return &OverflowError{Horizontal: false, Detail: "text exceeds slide height"}
			}
			break
		}
		start := op.Alignment.Start(lineRuneWidth(w), rect.Width)
		if e.OverflowValidation && lineRuneWidth(w) > usable {
			return &OverflowError{Horizontal: true, Detail: "line exceeds usable width"}
		}
		if e.Drawer != nil {
			e.Drawer.MoveTo(rect.Row+e.row, rect.Col+start)
			for _, run := range op.Line.Line {
				if run.ANSI {
					e.Drawer.WriteRaw(run.Content)
					continue
				}
				// The engine draws whatever style each run carries; a
				// WeightedLine's Dimmed flag is not applied here, and the
				// builder does not bake a dimmed style into the runs.
				e.Drawer.WriteStyled(run.Content, run.Style)
			}
		}
	}
	e.col = 0
	return nil
}

func lineRuneWidth(s string) int {
	return len([]rune(s)) // approximate: callers already measured via go-runewidth upstream for wrap decisions
}

func (l Line) styleSize() uint8 {
	for _, t := range l {
		if t.Style.Size != 0 {
			return t.Style.Size
		}
	}
	return 1
}

func (e *Engine) renderImage(op RenderImage) error {
	rect := e.stack.current()
	if e.Images == nil {
		return nil
	}
	rows, err := e.Images.Print(op.Image, Rect{Row: rect.Row + e.row, Col: rect.Col + e.col, Width: rect.Width, Height: rect.Height - e.row}, op.Policy)
	if err != nil {
		return err
	}
	e.lineBreak(rows)
	return nil
}

// renderBlockLine draws a BlockLine, wrapping per BlockLength and
// re-emitting Prefix on each wrapped continuation line when
// RepeatPrefixOnWrap is set — the same rule ExecReplace output reuses
// (open question 2, SPEC_FULL.md §13).
func (e *Engine) renderBlockLine(b BlockLine) error {
	rect := e.stack.current()
	usable := b.BlockLength - len([]rune(b.Prefix))
	if usable < 1 {
		usable = 1
	}
	wrapped := WrapGraphemes(b.Text.String(), usable)
	for i, w := range wrapped {
		if i > 0 {
			e.lineBreak(1)
		}
		if e.row >= rect.Height {
			break
		}
		prefix := ""
		if i == 0 || b.RepeatPrefixOnWrap {
			prefix = b.Prefix
		}
		if e.Drawer != nil {
			e.Drawer.MoveTo(rect.Row+e.row, rect.Col)
			e.Drawer.WriteStyled(prefix+w, b.Style)
		}
	}
	e.col = 0
	return nil
}
