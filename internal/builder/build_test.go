package builder

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdslide/mdslide/internal/markdown"
	"github.com/mdslide/mdslide/internal/resource"
	"github.com/mdslide/mdslide/internal/snippet"
	"github.com/mdslide/mdslide/internal/theme"
)

func newTestBuilder(t *testing.T, opts Options) *Builder {
	t.Helper()
	if opts.Theme == nil {
		th, err := theme.NewRegistry().Load("dark")
		require.NoError(t, err)
		opts.Theme = th
	}
	if opts.BaseDir == "" {
		opts.BaseDir = t.TempDir()
	}
	executor := snippet.NewExecutor(snippet.NewProfileRegistry())
	b, err := New(context.Background(), opts, executor, resource.NewCache())
	require.NoError(t, err)
	return b
}

func parseAndBuild(t *testing.T, opts Options, source string) *Presentation {
	t.Helper()
	elements, err := markdown.New().Parse("test.md", []byte(source))
	require.NoError(t, err)
	b := newTestBuilder(t, opts)
	p, err := b.Build(elements)
	require.NoError(t, err)
	return p
}

func TestBuildSplitsOnEndSlideDirective(t *testing.T) {
	p := parseAndBuild(t, Options{}, "# one\n\n<!-- mdslide: end_slide -->\n\n# two\n")
	assert.Len(t, p.Slides, 2)
}

func TestBuildThematicBreakEndsSlideWithShorthand(t *testing.T) {
	p := parseAndBuild(t, Options{EndSlideShorthand: true}, "# one\n\n---\n\n# two\n")
	assert.Len(t, p.Slides, 2)
}

func TestBuildPauseSplitsIntoChunks(t *testing.T) {
	p := parseAndBuild(t, Options{}, "# heading\n\n* one\n<!-- mdslide: pause -->\n* two\n")
	require.Len(t, p.Slides, 1)
	assert.True(t, len(p.Slides[0].Chunks) >= 2)
}

func TestPresentationNavigation(t *testing.T) {
	p := parseAndBuild(t, Options{}, "# one\n\n<!-- mdslide: end_slide -->\n\n# two\n\n<!-- mdslide: end_slide -->\n\n# three\n")
	require.Len(t, p.Slides, 3)

	assert.Equal(t, 0, p.CurrentSlideIndex)
	assert.True(t, p.JumpNext())
	assert.Equal(t, 1, p.CurrentSlideIndex)
	assert.True(t, p.JumpLastSlide())
	assert.Equal(t, 2, p.CurrentSlideIndex)
	assert.False(t, p.JumpNext())
	assert.True(t, p.JumpPrevious())
	assert.Equal(t, 1, p.CurrentSlideIndex)
	assert.True(t, p.JumpFirstSlide())
	assert.Equal(t, 0, p.CurrentSlideIndex)
}

func TestGoToSlideClampsOutOfRange(t *testing.T) {
	p := parseAndBuild(t, Options{}, "# one\n\n<!-- mdslide: end_slide -->\n\n# two\n")
	assert.True(t, p.GoToSlide(99))
	assert.Equal(t, 1, p.CurrentSlideIndex)
	assert.False(t, p.GoToSlide(99))
}

func TestDemoBuildsWithoutError(t *testing.T) {
	p := parseAndBuild(t, Options{}, Demo())
	assert.True(t, len(p.Slides) >= 3)
}
