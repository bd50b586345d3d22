package presenter

import (
	"fmt"
	"time"

	"github.com/muesli/termenv"

	"github.com/mdslide/mdslide/internal/render"
)

// Export implements ModeExport (spec.md §4.H/§7's "export mode encountering
// any Failure [is fatal]", supplemented from original_source/src/export.rs):
// it walks every slide non-interactively against a fixed-size virtual
// terminal, showing each slide fully advanced (all chunks, not just the
// ones a live viewer would have reached yet), blocks for every async render
// to finish rather than leaving any on-demand, and returns the first error
// it hits. It is also how --validate-overflows runs without a TTY.
func Export(opts Options, rows, cols int) (slidesRendered int, err error) {
	opts.Mode = ModeExport
	opts.setDefaults()
	if err := opts.validate(); err != nil {
		return 0, err
	}

	m := newModel(opts)
	defer m.Shutdown()

	p, err := m.load()
	if err != nil {
		return 0, fmt.Errorf("mdslide: export: %w", err)
	}

	for _, slideIndex := range p.SlidesWithAsyncRenders() {
		for _, pollable := range p.AsyncPollables(slideIndex) {
			waitForPollable(pollable)
		}
	}

	engine := &render.Engine{
		ColorProfile:       termenv.TrueColor,
		Images:             opts.Images,
		OverflowValidation: opts.ValidateOverflows,
	}
	size := render.WindowSize{Rows: rows, Columns: cols}

	for i, slide := range p.Slides {
		grid := newGridDrawer(engine.ColorProfile, rows, cols)
		engine.Drawer = grid
		if err := engine.Run(flattenChunks(slide.Chunks), size); err != nil {
			return i, fmt.Errorf("mdslide: export: slide %d: %w", i+1, err)
		}
	}
	return len(p.Slides), nil
}

// waitForPollable blocks until a seeded async render finishes. Export has
// no viewer to trigger RenderAsyncOperations, so every pollable that would
// otherwise stay on-demand is driven to completion eagerly instead.
func waitForPollable(p render.Pollable) {
	for {
		if p.Poll().Done {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
}
