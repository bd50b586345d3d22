// Package presenter drives the interactive slideshow loop: it owns the
// current Presentation, the terminal UI (via bubbletea), live reload, and
// the background async poller, translating key input into navigation
// commands against internal/builder and internal/render. Grounded on
// _examples/original_source/src/presenter.rs's state machine, expressed as
// a bubbletea tea.Model the way
// _examples/asynkron-GoAgent/internal/tui/tui.go builds one.
package presenter

import "github.com/mdslide/mdslide/internal/builder"

// PresentMode controls hot reload and how eagerly async renders start.
type PresentMode int

const (
	// ModeDevelopment watches the source file and reloads on change.
	ModeDevelopment PresentMode = iota
	// ModePresentation ignores file changes except an explicit HardReload.
	ModePresentation
	// ModeExport walks every slide non-interactively, triggering every
	// async render eagerly so snippet output lands in the exported
	// output, and treats any Failure as fatal.
	ModeExport
)

// FailureMode tags why a state went to failure, matching presenter.rs's
// distinction between an overflow (recoverable by resizing) and any other
// build/parse error.
type FailureMode int

const (
	FailureOther FailureMode = iota
	FailureOverflow
)

// ErrorSource names what a Failure state's error is attached to.
type ErrorSource int

const (
	ErrorSourcePresentation ErrorSource = iota
	ErrorSourceSlide
)

// State is the presenter's top-level state, mirroring presenter.rs's
// PresenterState enum. The zero value is Empty; Presenting/SlideIndex/
// KeyBindings/Failure all carry a *builder.Presentation.
type State struct {
	kind         stateKind
	presentation *builder.Presentation

	failureError  string
	failureSource ErrorSource
	failureMode   FailureMode
	failureSlide  int
}

type stateKind int

const (
	stateEmpty stateKind = iota
	statePresenting
	stateSlideIndex
	stateKeyBindings
	stateFailure
)

func presentingState(p *builder.Presentation) State {
	return State{kind: statePresenting, presentation: p}
}
func slideIndexState(p *builder.Presentation) State {
	return State{kind: stateSlideIndex, presentation: p}
}
func keyBindingsState(p *builder.Presentation) State {
	return State{kind: stateKeyBindings, presentation: p}
}

func failureState(err error, p *builder.Presentation, source ErrorSource, mode FailureMode) State {
	return State{
		kind: stateFailure, presentation: p,
		failureError: err.Error(), failureSource: source, failureMode: mode,
	}
}

// IsEmpty reports whether the presenter has not yet loaded a presentation.
func (s State) IsEmpty() bool { return s.kind == stateEmpty }

// IsFailure reports whether the presenter is displaying a load/build error.
func (s State) IsFailure() bool { return s.kind == stateFailure }

// IsOtherFailure reports a Failure whose mode is not Overflow, matching
// presenter.rs's is_displaying_other_error — Redraw must not silently
// re-validate overflows out from under a non-overflow failure.
func (s State) IsOtherFailure() bool { return s.kind == stateFailure && s.failureMode == FailureOther }

// Presentation returns the state's carried presentation. Panics on Empty,
// matching presenter.rs's presentation()/presentation_mut() panicking on
// PresenterState::Empty — every caller must check IsEmpty first.
func (s State) Presentation() *builder.Presentation {
	if s.presentation == nil {
		panic("presenter: state is empty")
	}
	return s.presentation
}

// takePresentation extracts the carried presentation, mirroring
// presenter.rs's `mem::take(&mut self.state).into_presentation()`.
func (s *State) takePresentation() *builder.Presentation {
	p := s.Presentation()
	*s = State{}
	return p
}
