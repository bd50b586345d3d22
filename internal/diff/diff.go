// Package diff finds the first visual difference between two builds of the
// same presentation, so a soft reload can jump the viewer straight to
// whatever changed instead of resetting to slide one.
package diff

import (
	"fmt"

	"github.com/mdslide/mdslide/internal/builder"
	"github.com/mdslide/mdslide/internal/render"
	"github.com/mdslide/mdslide/internal/theme"
)

// ModificationPoint names the first slide/chunk index at which two
// presentations diverge.
type ModificationPoint struct {
	SlideIndex int
	ChunkIndex int
}

// FirstModification compares old and new slide-by-slide, chunk-by-chunk,
// per the teacher corpus's original find_first_modification algorithm
// (_examples/original_source/src/presentation/diff.rs): content divergence
// within a shared slide wins first, then chunk-count divergence on that
// slide, then finally slide-count divergence across the whole deck.
func FirstModification(old, new *builder.Presentation) (ModificationPoint, bool) {
	n := minInt(len(old.Slides), len(new.Slides))

	for slideIndex := 0; slideIndex < n; slideIndex++ {
		oldSlide, newSlide := old.Slides[slideIndex], new.Slides[slideIndex]
		m := minInt(len(oldSlide.Chunks), len(newSlide.Chunks))

		for chunkIndex := 0; chunkIndex < m; chunkIndex++ {
			if chunkContentDifferent(oldSlide.Chunks[chunkIndex], newSlide.Chunks[chunkIndex]) {
				return ModificationPoint{SlideIndex: slideIndex, ChunkIndex: chunkIndex}, true
			}
		}

		switch {
		case len(oldSlide.Chunks) < len(newSlide.Chunks):
			return ModificationPoint{SlideIndex: slideIndex, ChunkIndex: len(oldSlide.Chunks)}, true
		case len(oldSlide.Chunks) > len(newSlide.Chunks):
			idx := len(newSlide.Chunks) - 1
			if idx < 0 {
				idx = 0
			}
			return ModificationPoint{SlideIndex: slideIndex, ChunkIndex: idx}, true
		}
	}

	switch {
	case len(old.Slides) < len(new.Slides):
		return ModificationPoint{SlideIndex: len(old.Slides), ChunkIndex: 0}, true
	case len(old.Slides) > len(new.Slides):
		idx := len(new.Slides) - 1
		if idx < 0 {
			idx = 0
		}
		return ModificationPoint{SlideIndex: idx, ChunkIndex: 1<<31 - 1}, true
	}
	return ModificationPoint{}, false
}

func chunkContentDifferent(old, new builder.SlideChunk) bool {
	n := minInt(len(old.Operations), len(new.Operations))
	for i := 0; i < n; i++ {
		if operationContentDifferent(old.Operations[i], new.Operations[i]) {
			return true
		}
	}
	return len(old.Operations) != len(new.Operations)
}

// operationContentDifferent implements is_content_different's per-variant
// rules: a changed variant always counts, pure presentation knobs
// (alignment, colors) never count, and RenderDynamic/RenderAsync compare
// via render.Diffable content when available, by concrete type otherwise.
func operationContentDifferent(old, new render.Operation) bool {
	if fmt.Sprintf("%T", old) != fmt.Sprintf("%T", new) {
		return true
	}

	switch o := old.(type) {
	case render.SetColors:
		return false
	case render.RenderText:
		n := new.(render.RenderText)
		return !weightedLineEqual(o.Line, n.Line)
	case render.RenderImage:
		n := new.(render.RenderImage)
		return o.Image != n.Image || o.Policy != n.Policy || o.NoBackground != n.NoBackground
	case render.RenderBlockLine:
		n := new.(render.RenderBlockLine)
		return !blockLineEqual(o.Block, n.Block)
	case render.InitColumnLayout:
		n := new.(render.InitColumnLayout)
		return !uint8SliceEqual(o.Weights, n.Weights)
	case render.EnterColumn:
		n := new.(render.EnterColumn)
		return o.Column != n.Column
	case render.RenderDynamic:
		n := new.(render.RenderDynamic)
		return diffableDifferent(o.Source, n.Source)
	case render.RenderAsync:
		n := new.(render.RenderAsync)
		return diffableDifferent(o.Source, n.Source)
	default:
		return false
	}
}

func diffableDifferent(a, b any) bool {
	if fmt.Sprintf("%T", a) != fmt.Sprintf("%T", b) {
		return true
	}
	da, aok := a.(render.Diffable)
	db, bok := b.(render.Diffable)
	if aok && bok {
		return da.DiffableContent() != db.DiffableContent()
	}
	return false
}

func weightedLineEqual(a, b render.WeightedLine) bool {
	if a.Dimmed != b.Dimmed || len(a.Line) != len(b.Line) {
		return false
	}
	for i := range a.Line {
		if a.Line[i].Content != b.Line[i].Content || !styleEqual(a.Line[i].Style, b.Line[i].Style) {
			return false
		}
	}
	return true
}

func styleEqual(a, b theme.TextStyle) bool {
	// Only the bits that actually change drawn glyphs count as content:
	// colors are ignored, flags and size are compared.
	a.Colors, b.Colors = theme.Colors{}, theme.Colors{}
	return a == b
}

func blockLineEqual(a, b render.BlockLine) bool {
	if a.Prefix != b.Prefix || a.BlockLength != b.BlockLength || a.RepeatPrefixOnWrap != b.RepeatPrefixOnWrap {
		return false
	}
	return weightedLineEqual(render.WeightedLine{Line: a.Text}, render.WeightedLine{Line: b.Text})
}

func uint8SliceEqual(a, b []uint8) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
