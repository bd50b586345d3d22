// Package builder implements the presentation builder (spec.md's hardest
// component): a state machine that consumes a flat markdown.Element stream
// plus directive comments and emits a Presentation of slides, chunks, and
// render operations.
package builder

import "github.com/mdslide/mdslide/internal/render"

// Mutator is a state-carrying toggle for an in-slide interaction, e.g.
// walking through a snippet's highlight groups with Left/Right.
type Mutator interface {
	// Advance moves the mutator's state forward one step, reporting
	// whether anything changed (and therefore the slide needs a redraw).
	Advance() bool
	// Rewind moves the mutator's state back one step.
	Rewind() bool
}

// SlideChunk is one pause-delimited unit of a slide: the operations
// accumulated up to the pause, plus any mutators introduced in it.
type SlideChunk struct {
	Operations []render.Operation
	Mutators   []Mutator
}

// Slide is a non-empty ordered list of chunks. Chunks 0..=current are
// visible; later chunks are hidden until the presenter advances past them.
type Slide struct {
	Title  string // recorded for the index modal; empty if untitled
	Chunks []SlideChunk
}

// ModalKind tags which overlay a Modal represents.
type ModalKind int

const (
	ModalSlideIndex ModalKind = iota
	ModalKeyBindings
)

// Modal is one of the two overlay slides built alongside the main
// presentation (spec.md §4.I).
type Modal struct {
	Kind  ModalKind
	Slide Slide
}

// Presentation is the builder's full output: the slide sequence, the two
// modal overlays, and the cursor into "what's currently on screen".
type Presentation struct {
	Slides []Slide
	Modals []Modal

	CurrentSlideIndex int
	CurrentChunkIndex int
}

// CurrentSlide returns the slide the cursor points at.
func (p *Presentation) CurrentSlide() *Slide {
	return &p.Slides[p.CurrentSlideIndex]
}

// VisibleChunks returns the chunks of the current slide up to and
// including CurrentChunkIndex.
func (p *Presentation) VisibleChunks() []SlideChunk {
	return p.CurrentSlide().Chunks[:p.CurrentChunkIndex+1]
}

// JumpNext advances by one chunk, crossing into the next slide's first
// chunk once the current slide's last chunk is reached, per spec.md §4.H's
// "Next/Previous advance by one chunk (cross slide at boundaries)".
func (p *Presentation) JumpNext() bool {
	if p.CurrentChunkIndex+1 < len(p.CurrentSlide().Chunks) {
		p.CurrentChunkIndex++
		return true
	}
	if p.CurrentSlideIndex+1 < len(p.Slides) {
		p.CurrentSlideIndex++
		p.CurrentChunkIndex = 0
		return true
	}
	return false
}

// JumpPrevious retreats by one chunk, crossing into the previous slide's
// last chunk once chunk 0 is reached.
func (p *Presentation) JumpPrevious() bool {
	if p.CurrentChunkIndex > 0 {
		p.CurrentChunkIndex--
		return true
	}
	if p.CurrentSlideIndex > 0 {
		p.CurrentSlideIndex--
		p.CurrentChunkIndex = len(p.CurrentSlide().Chunks) - 1
		return true
	}
	return false
}

// JumpNextFast jumps by a whole slide, ignoring chunk pauses.
func (p *Presentation) JumpNextFast() bool {
	if p.CurrentSlideIndex+1 >= len(p.Slides) {
		return false
	}
	p.CurrentSlideIndex++
	p.CurrentChunkIndex = 0
	return true
}

// JumpPreviousFast jumps back by a whole slide, ignoring chunk pauses.
func (p *Presentation) JumpPreviousFast() bool {
	if p.CurrentSlideIndex == 0 {
		return false
	}
	p.CurrentSlideIndex--
	p.CurrentChunkIndex = 0
	return true
}

// JumpFirstSlide moves to slide 0, chunk 0.
func (p *Presentation) JumpFirstSlide() bool {
	if p.CurrentSlideIndex == 0 && p.CurrentChunkIndex == 0 {
		return false
	}
	p.CurrentSlideIndex, p.CurrentChunkIndex = 0, 0
	return true
}

// JumpLastSlide moves to the deck's final slide, chunk 0.
func (p *Presentation) JumpLastSlide() bool {
	last := len(p.Slides) - 1
	if p.CurrentSlideIndex == last {
		return false
	}
	p.CurrentSlideIndex = last
	p.CurrentChunkIndex = 0
	return true
}

// GoToSlide jumps to the given 1-based slide number, clamped to the deck's
// bounds, per spec.md §4.H's "GoToSlide(n) (1-based, clamped)".
func (p *Presentation) GoToSlide(number int) bool {
	idx := number - 1
	switch {
	case idx < 0:
		idx = 0
	case idx >= len(p.Slides):
		idx = len(p.Slides) - 1
	}
	if idx == p.CurrentSlideIndex {
		return false
	}
	p.CurrentSlideIndex, p.CurrentChunkIndex = idx, 0
	return true
}

// JumpChunk moves directly to chunkIndex within the current slide, clamped
// to its bounds — used by reload to land on a diff's modification point.
func (p *Presentation) JumpChunk(chunkIndex int) {
	n := len(p.CurrentSlide().Chunks)
	switch {
	case chunkIndex < 0:
		chunkIndex = 0
	case chunkIndex >= n:
		chunkIndex = n - 1
	}
	p.CurrentChunkIndex = chunkIndex
}

// AsyncPollables returns every RenderAsync operation's Pollable across all
// of slideIndex's chunks (not just the visible ones — a paused-off chunk's
// snippet still runs in the background so its output is ready by the time
// the viewer reaches it).
func (p *Presentation) AsyncPollables(slideIndex int) []render.Pollable {
	if slideIndex < 0 || slideIndex >= len(p.Slides) {
		return nil
	}
	var out []render.Pollable
	for _, chunk := range p.Slides[slideIndex].Chunks {
		for _, op := range chunk.Operations {
			if async, ok := op.(render.RenderAsync); ok {
				out = append(out, async.Pollable)
			}
		}
	}
	return out
}

// SlidesWithAsyncRenders returns the index of every slide carrying at least
// one RenderAsync operation, used to seed the poller after a (re)build.
func (p *Presentation) SlidesWithAsyncRenders() []int {
	var out []int
	for i, slide := range p.Slides {
		for _, chunk := range slide.Chunks {
			found := false
			for _, op := range chunk.Operations {
				if _, ok := op.(render.RenderAsync); ok {
					out = append(out, i)
					found = true
					break
				}
			}
			if found {
				break
			}
		}
	}
	return out
}

// ExecTriggers returns every ExecTrigger operation across all of
// slideIndex's chunks — the PTY/terminal-acquiring snippets spec.md §4.H's
// RenderAsyncOperations command can fire.
func (p *Presentation) ExecTriggers(slideIndex int) []render.ExecTrigger {
	if slideIndex < 0 || slideIndex >= len(p.Slides) {
		return nil
	}
	var out []render.ExecTrigger
	for _, chunk := range p.Slides[slideIndex].Chunks {
		for _, op := range chunk.Operations {
			if trigger, ok := op.(render.ExecTrigger); ok {
				out = append(out, trigger)
			}
		}
	}
	return out
}

// HighlightContext is owned by one slide: the set of highlight groups a
// snippet mutator walks through as the presenter advances/rewinds.
type HighlightContext struct {
	GroupCount  int
	Current     int
	BlockLength int
}

// Advance moves to the next highlight group, clamped at the last one.
func (h *HighlightContext) Advance() bool {
	if h.Current+1 >= h.GroupCount {
		return false
	}
	h.Current++
	return true
}

// Rewind moves to the previous highlight group, clamped at the first one.
func (h *HighlightContext) Rewind() bool {
	if h.Current == 0 {
		return false
	}
	h.Current--
	return true
}
