package builder

import "github.com/mdslide/mdslide/internal/markdown"

// lastElementKind tracks the {None, List{last_index}, Other} tri-state
// spec.md's SlideState needs to decide whether a following ThematicBreak or
// list continuation behaves differently.
type lastElementKind int

const (
	lastNone lastElementKind = iota
	lastList
	lastOther
)

// layoutKind mirrors SlideState.layout ∈ {Default, InLayout{n}, InColumn{i,n}}.
type layoutKind int

const (
	layoutDefault layoutKind = iota
	layoutInLayout
	layoutInColumn
)

// slideState is the per-slide mutable state the builder threads through
// element processing, per spec.md §4.E's SlideState block.
type slideState struct {
	ignoreElementLineBreak bool
	ignoreFooter           bool
	needsEnterColumn       bool
	lastChunkEndedInList   bool
	lastElement            lastElementKind
	lastListIndex          int

	incrementalLists *bool // nil = inherit builder default

	layout       layoutKind
	layoutN      int // column count, valid for InLayout/InColumn
	layoutColumn int // current column, valid for InColumn

	title     string
	fontSize  uint8
	alignment string // "", "left", "center", "right" — "" means theme default
	skipSlide bool

	highlight *HighlightContext

	snippetIDs map[string]*snippetHandleRef
}

func newSlideState() *slideState {
	return &slideState{fontSize: 1, snippetIDs: map[string]*snippetHandleRef{}}
}

// sourcePos is a convenience accessor used by directive error construction.
func sourcePos(e markdown.Element) markdown.Position { return e.Pos }
