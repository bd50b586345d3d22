package presenter

import (
	"strings"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdslide/mdslide/internal/theme"
)

func gridWithText(rows, cols int, text string) *gridDrawer {
	g := newGridDrawer(termenv.TrueColor, rows, cols)
	g.MoveTo(0, 0)
	g.WriteStyled(text, theme.TextStyle{})
	return g
}

func TestRasterizeProducesOneCellPerColumn(t *testing.T) {
	g := gridWithText(2, 5, "ab")
	grid := g.rasterize()
	require.Len(t, grid, 2)
	require.Len(t, grid[0], 5)
	assert.Equal(t, "a", grid[0][0].text)
	assert.Equal(t, "b", grid[0][1].text)
	assert.Equal(t, " ", grid[0][2].text)
}

func TestCollapseHorizontalTransitionFramesProgress(t *testing.T) {
	from := gridWithText(1, 10, "aaaaaaaaaa")
	to := gridWithText(1, 10, "bbbbbbbbbb")

	tr := NewCollapseHorizontalTransition(from, to, TransitionNext)
	total := tr.TotalFrames()
	assert.Equal(t, 5, total)

	first := tr.Frame(0)
	assert.True(t, strings.Contains(first, "a"))

	last := tr.Frame(total)
	assert.Equal(t, "bbbbbbbbbb", strings.TrimRight(last, "\n"))
}

func TestCollapseHorizontalTransitionReversesForPrevious(t *testing.T) {
	from := gridWithText(1, 10, "aaaaaaaaaa")
	to := gridWithText(1, 10, "bbbbbbbbbb")

	nextTr := NewCollapseHorizontalTransition(from, to, TransitionNext)
	prevTr := NewCollapseHorizontalTransition(from, to, TransitionPrevious)

	assert.Equal(t, "bbbbbbbbbb", strings.TrimRight(nextTr.Frame(nextTr.TotalFrames()), "\n"))
	assert.Equal(t, "aaaaaaaaaa", strings.TrimRight(prevTr.Frame(prevTr.TotalFrames()), "\n"))
}

func TestFrameClampsOutOfRangeStep(t *testing.T) {
	from := gridWithText(1, 6, "aaaaaa")
	to := gridWithText(1, 6, "bbbbbb")
	tr := NewCollapseHorizontalTransition(from, to, TransitionNext)

	assert.Equal(t, tr.Frame(tr.TotalFrames()), tr.Frame(tr.TotalFrames()+50))
	assert.Equal(t, tr.Frame(0), tr.Frame(-5))
}
