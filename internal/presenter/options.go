package presenter

import (
	"fmt"

	"github.com/mdslide/mdslide/internal/builder"
	"github.com/mdslide/mdslide/internal/logging"
	"github.com/mdslide/mdslide/internal/metrics"
	"github.com/mdslide/mdslide/internal/render"
)

// Options configures one presenter run. Grounded on the teacher's
// RuntimeOptions setDefaults/validate split (also followed by
// internal/builder.Options and internal/snippet.Executor), and on
// presenter.rs's PresenterOptions.
type Options struct {
	Path string // presentation source file

	Mode              PresentMode
	Builder           builder.Options
	FontSizeFallback  uint8
	ValidateOverflows bool

	// Transitions enables the collapse_horizontal animation between slides
	// in interactive mode (spec.md's Non-goals don't name transitions, so
	// this stays off by default rather than surprising a plain `--present`
	// run with extra redraws).
	Transitions bool

	Images render.ImagePrinter // nil falls back to an ASCII-only printer

	Logger  logging.Logger
	Metrics metrics.Metrics

	// FileWatchInterval is how often development mode polls the source
	// file's mtime for a reload. Zero defaults to 250ms (spec.md §4.H).
	FileWatchInterval int // milliseconds
}

func (o *Options) setDefaults() {
	if o.FontSizeFallback == 0 {
		o.FontSizeFallback = 1
	}
	if o.FileWatchInterval == 0 {
		o.FileWatchInterval = 250
	}
	if o.Logger == nil {
		o.Logger = logging.NoOpLogger{}
	}
	if o.Metrics == nil {
		o.Metrics = metrics.NoOpMetrics{}
	}
}

func (o *Options) validate() error {
	if o.Path == "" {
		return fmt.Errorf("presenter: Path is required")
	}
	return nil
}
