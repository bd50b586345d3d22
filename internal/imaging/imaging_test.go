package imaging

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdslide/mdslide/internal/render"
)

func TestParseProtocol(t *testing.T) {
	cases := map[string]Protocol{
		"":             ProtocolAuto,
		"auto":         ProtocolAuto,
		"iterm2":       ProtocolITerm2,
		"Kitty-Local":  ProtocolKittyLocal,
		"kitty-remote": ProtocolKittyRemote,
		"sixel":        ProtocolSixel,
		"ascii-blocks": ProtocolASCIIBlocks,
	}
	for in, want := range cases {
		got, err := ParseProtocol(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseProtocol("bogus")
	assert.ErrorContains(t, err, "unknown image protocol")
}

func TestDetect(t *testing.T) {
	t.Setenv("KITTY_WINDOW_ID", "")
	t.Setenv("TERM", "xterm-256color")
	t.Setenv("TERM_PROGRAM", "")
	assert.Equal(t, ProtocolASCIIBlocks, Detect())

	t.Setenv("KITTY_WINDOW_ID", "1")
	assert.Equal(t, ProtocolKittyLocal, Detect())

	t.Setenv("KITTY_WINDOW_ID", "")
	t.Setenv("TERM", "xterm-kitty")
	assert.Equal(t, ProtocolKittyLocal, Detect())

	t.Setenv("TERM", "xterm-256color")
	t.Setenv("TERM_PROGRAM", "iTerm.app")
	assert.Equal(t, ProtocolITerm2, Detect())
}

func TestScaledRows(t *testing.T) {
	img := render.Image{Width: 100, Height: 50}
	assert.Equal(t, 25, scaledRows(img, 100))
	assert.Equal(t, 1, scaledRows(img, 0))
}

func TestRowsUsedShrinkIfNeeded(t *testing.T) {
	img := render.Image{Width: 200, Height: 100}
	at := render.Rect{Width: 50, Height: 50}
	rows := rowsUsed(img, at, render.ImageSizePolicy{Kind: render.ImageShrinkIfNeeded})
	assert.Equal(t, scaledRows(img, 50), rows)

	img.Width, img.Height = 0, 0
	assert.Equal(t, 1, rowsUsed(img, at, render.ImageSizePolicy{}))
}

func TestPrintFallsBackToASCIIForMissingFile(t *testing.T) {
	var buf bytes.Buffer
	p := &Printer{Protocol: ProtocolITerm2, Out: &buf}
	rows, err := p.Print(render.Image{Path: "/nonexistent/demo.png", Width: 10, Height: 10},
		render.Rect{Row: 0, Col: 0, Width: 10, Height: 5}, render.ImageSizePolicy{})
	require.NoError(t, err)
	assert.Equal(t, 5, rows)
	assert.Contains(t, buf.String(), "demo.png")
	assert.Contains(t, buf.String(), "+")
}

func TestPrintITerm2EmitsEscapeSequence(t *testing.T) {
	f, err := os.CreateTemp("", "mdslide-img-*.png")
	require.NoError(t, err)
	defer os.Remove(f.Name())
	_, err = f.WriteString("fake-image-bytes")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	var buf bytes.Buffer
	p := &Printer{Protocol: ProtocolITerm2, Out: &buf}
	rows, err := p.Print(render.Image{Path: f.Name(), Width: 20, Height: 20},
		render.Rect{Row: 1, Col: 2, Width: 20, Height: 10}, render.ImageSizePolicy{})
	require.NoError(t, err)
	assert.Equal(t, scaledRows(render.Image{Width: 20, Height: 20}, 20), rows)
	assert.True(t, strings.Contains(buf.String(), "\x1b]1337;File="))
}

func TestPrintASCIIBordersLabel(t *testing.T) {
	var buf bytes.Buffer
	p := &Printer{Protocol: ProtocolASCIIBlocks, Out: &buf}
	_, err := p.Print(render.Image{Path: "diagram.png", Width: 10, Height: 10},
		render.Rect{Row: 0, Col: 0, Width: 14, Height: 6}, render.ImageSizePolicy{})
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "diagram.png")
	assert.Contains(t, out, "+------------+")
}
