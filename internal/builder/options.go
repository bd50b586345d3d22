package builder

import (
	"fmt"

	"github.com/mdslide/mdslide/internal/highlight"
	"github.com/mdslide/mdslide/internal/snippet"
	"github.com/mdslide/mdslide/internal/theme"
)

// Options configures one Builder instance. Grounded on the teacher's
// RuntimeOptions setDefaults/validate split (internal/core/runtime/
// options.go): a plain struct filled in by the caller (internal/config),
// defaulted, then validated before use.
type Options struct {
	Theme       *theme.Theme
	Highlighter *highlight.Highlighter
	Snippets    *snippet.ProfileRegistry

	BaseDir string // presentation's base directory; snippet CWD and relative include/image paths resolve against it

	CommandPrefix                 string // directive comment prefix, default "mdslide:"
	ImageAttributePrefix          string // default "image:"
	ImplicitSlideEnds             bool
	EndSlideShorthand             bool // thematic break ends a slide
	IncrementalListsDefault       bool
	PauseBeforeIncrementalLists   bool
	PauseAfterIncrementalLists    bool
	PauseCreatesNewSlide          bool
	AutoRenderLanguages           []string
	EnableSnippetExecution        bool
	EnableSnippetExecutionReplace bool
	ListItemNewlines              int // default 1
}

func (o *Options) setDefaults() {
	if o.CommandPrefix == "" {
		o.CommandPrefix = "mdslide:"
	}
	if o.ImageAttributePrefix == "" {
		o.ImageAttributePrefix = "image:"
	}
	if o.ListItemNewlines == 0 {
		o.ListItemNewlines = 1
	}
	if o.Snippets == nil {
		o.Snippets = snippet.NewProfileRegistry()
	}
	if o.Highlighter == nil {
		o.Highlighter = highlight.New("")
	}
}

func (o *Options) validate() error {
	if o.Theme == nil {
		return fmt.Errorf("builder: Theme is required")
	}
	if o.BaseDir == "" {
		return fmt.Errorf("builder: BaseDir is required")
	}
	if o.ListItemNewlines < 1 {
		return fmt.Errorf("builder: ListItemNewlines must be >= 1")
	}
	return nil
}
