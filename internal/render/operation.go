package render

import "github.com/mdslide/mdslide/internal/theme"

// Operation is the tagged union every presentation chunk compiles down to.
// It is the *only* contract between the builder and the engine: nothing in
// internal/builder reaches past this type into engine internals, and
// nothing in the engine reaches back past it into builder state.
type Operation interface{ isOperation() }

type ClearScreen struct{}

func (ClearScreen) isOperation() {}

type SetColors struct{ Colors theme.Colors }

func (SetColors) isOperation() {}

type JumpToVerticalCenter struct{}

func (JumpToVerticalCenter) isOperation() {}

type JumpToRow struct{ Index int }

func (JumpToRow) isOperation() {}

type JumpToColumn struct{ Index int }

func (JumpToColumn) isOperation() {}

type JumpToBottomRow struct{ Index int }

func (JumpToBottomRow) isOperation() {}

// RenderText draws a line at a given alignment, wrapping on grapheme
// boundaries when it exceeds the current rect's usable width.
type RenderText struct {
	Line      WeightedLine
	Alignment theme.Alignment
}

func (RenderText) isOperation() {}

type RenderLineBreak struct{}

func (RenderLineBreak) isOperation() {}

// ImageSizePolicyKind tags which ImageSizePolicy variant applies.
type ImageSizePolicyKind int

const (
	ImageShrinkIfNeeded ImageSizePolicyKind = iota
	ImageWidthScaled
)

// ImageSizePolicy controls how RenderImage sizes the printed image.
type ImageSizePolicy struct {
	Kind  ImageSizePolicyKind
	Ratio float64 // only meaningful for ImageWidthScaled
}

// Image is an opaque handle the ImagePrinter collaborator knows how to
// paint; mdslide's core never decodes pixels itself (see internal/imaging).
type Image struct {
	Path   string
	Width  int // natural pixel width, 0 if unknown
	Height int // natural pixel height, 0 if unknown
}

type RenderImage struct {
	Image        Image
	Policy       ImageSizePolicy
	NoBackground bool
}

func (RenderImage) isOperation() {}

type RenderBlockLine struct{ Block BlockLine }

func (RenderBlockLine) isOperation() {}

type InitColumnLayout struct{ Weights []uint8 }

func (InitColumnLayout) isOperation() {}

type EnterColumn struct{ Column int }

func (EnterColumn) isOperation() {}

type ExitLayout struct{}

func (ExitLayout) isOperation() {}

// MarginProperties is ApplyMargin's payload: horizontal margin on both
// sides plus independent top/bottom row reservations.
type MarginProperties struct {
	Horizontal theme.Margin
	Top        int
	Bottom     int
}

type ApplyMargin struct{ Margin MarginProperties }

func (ApplyMargin) isOperation() {}

type PopMargin struct{}

func (PopMargin) isOperation() {}

// WindowSize is the terminal geometry handed to dynamic/async operations
// each frame.
type WindowSize struct {
	Rows, Columns     int
	WidthPx, HeightPx int
}

// AsRenderOperations is implemented by operations whose expansion depends
// on the current window size and must be re-evaluated every frame.
type AsRenderOperations interface {
	AsRenderOperations(size WindowSize) []Operation
}

// Diffable lets a RenderDynamic/RenderAsync source report stable content for
// reload diffing (component F). A source that doesn't implement it is only
// ever compared by its concrete type.
type Diffable interface {
	DiffableContent() string
}

type RenderDynamic struct{ Source AsRenderOperations }

func (RenderDynamic) isOperation() {}

// Pollable is driven by the async poller (component G): Poll is invoked on
// its cadence and returns whether state changed since the last poll.
type Pollable interface {
	Poll() PollResult
}

// PollResult tells the poller whether a pollable needs another pass and
// whether the presenter should refresh the current slide.
type PollResult struct {
	NeedsRedraw bool
	Done        bool
}

// RenderAsync both expands late (like RenderDynamic) and owns a Pollable
// the poller thread drives independently of the render path.
type RenderAsync struct {
	Source   AsRenderOperations
	Pollable Pollable
}

func (RenderAsync) isOperation() {}

// ExecTrigger marks a snippet whose execution kind is ExecPty or
// ExecAcquireTerminal: rather than capturing output into a buffer like an
// ordinary RenderAsync snippet, it hands the real terminal to a subprocess
// when the viewer explicitly triggers it (spec.md §4.H's
// RenderAsyncOperations command). It carries no visual payload of its own
// — the builder also emits an indicator RenderText alongside it — so the
// engine treats it as a no-op and the presenter is the only thing that
// ever inspects it (via Presentation.ExecTriggers).
type ExecTrigger struct {
	ID   string
	Argv []string
	Dir  string
}

func (ExecTrigger) isOperation() {}
