package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdslide/mdslide/internal/theme"
)

type recordingDrawer struct {
	moves   []Rect
	written []string
	cleared int
}

func (r *recordingDrawer) MoveTo(row, col int) {
	r.moves = append(r.moves, Rect{Row: row, Col: col})
}
func (r *recordingDrawer) WriteStyled(text string, _ theme.TextStyle) {
	r.written = append(r.written, text)
}
func (r *recordingDrawer) WriteRaw(text string) {
	r.written = append(r.written, text)
}
func (r *recordingDrawer) FillBackground(Rect, theme.Color) {}
func (r *recordingDrawer) Clear()                           { r.cleared++ }

func TestEngineTerminalTooSmall(t *testing.T) {
	e := &Engine{}
	err := e.Run(nil, WindowSize{Rows: 1, Columns: 1})
	assert.ErrorIs(t, err, ErrTerminalTooSmall)
}

func TestEngineRendersTextLeftAligned(t *testing.T) {
	d := &recordingDrawer{}
	e := &Engine{Drawer: d}
	ops := []Operation{
		RenderText{
			Line:      WeightedLine{Line: Line{{Content: "hello"}}},
			Alignment: theme.Alignment{Kind: theme.AlignLeft},
		},
	}
	require.NoError(t, e.Run(ops, WindowSize{Rows: 24, Columns: 80}))
	require.Equal(t, []string{"hello"}, d.written)
}

func TestEngineLayoutStackBalance(t *testing.T) {
	e := &Engine{}
	ops := []Operation{
		ApplyMargin{Margin: MarginProperties{Horizontal: theme.Margin{Fixed: 2}}},
		InitColumnLayout{Weights: []uint8{1, 1}},
		EnterColumn{Column: 0},
		ExitLayout{},
		PopMargin{},
	}
	assert.NoError(t, e.Run(ops, WindowSize{Rows: 24, Columns: 80}))
}

func TestEngineUnbalancedLayoutIsError(t *testing.T) {
	e := &Engine{}
	ops := []Operation{
		ApplyMargin{Margin: MarginProperties{Horizontal: theme.Margin{Fixed: 2}}},
	}
	err := e.Run(ops, WindowSize{Rows: 24, Columns: 80})
	assert.ErrorIs(t, err, ErrInvalidLayoutEnter)
}

func TestEngineSequentialColumnSwitchesWithoutExitLayout(t *testing.T) {
	d := &recordingDrawer{}
	e := &Engine{Drawer: d}
	ops := []Operation{
		InitColumnLayout{Weights: []uint8{1, 1}},
		EnterColumn{Column: 0},
		RenderText{Line: WeightedLine{Line: Line{{Content: "left"}}}, Alignment: theme.Alignment{Kind: theme.AlignLeft}},
		EnterColumn{Column: 1},
		RenderText{Line: WeightedLine{Line: Line{{Content: "right"}}}, Alignment: theme.Alignment{Kind: theme.AlignLeft}},
		ExitLayout{},
	}
	require.NoError(t, e.Run(ops, WindowSize{Rows: 24, Columns: 80}))
	assert.Equal(t, []string{"left", "right"}, d.written)
}

func TestEngineEnterColumnOutOfRangeErrors(t *testing.T) {
	e := &Engine{}
	ops := []Operation{
		InitColumnLayout{Weights: []uint8{1, 1}},
		EnterColumn{Column: 5},
	}
	err := e.Run(ops, WindowSize{Rows: 24, Columns: 80})
	assert.ErrorIs(t, err, ErrInvalidLayoutEnter)
}

func TestAlignmentStart(t *testing.T) {
	left := theme.Alignment{Kind: theme.AlignLeft, Margin: theme.Margin{Fixed: 4}}
	assert.Equal(t, 4, left.Start(10, 80))

	right := theme.Alignment{Kind: theme.AlignRight, Margin: theme.Margin{Fixed: 4}}
	assert.Equal(t, 80-4-10, right.Start(10, 80))

	center := theme.Alignment{Kind: theme.AlignCenter, MinimumSize: 20}
	start := center.Start(10, 80)
	assert.True(t, start >= 0 && start <= 80)
}

func TestWrapGraphemes(t *testing.T) {
	lines := WrapGraphemes("hello world", 5)
	assert.Equal(t, []string{"hello", " worl", "d"}, lines)
}
