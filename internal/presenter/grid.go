package presenter

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/termenv"

	"github.com/mdslide/mdslide/internal/render"
	"github.com/mdslide/mdslide/internal/theme"
)

// segment is one piece of a row's content, written by a single
// WriteStyled/WriteRaw call. raw segments already carry their own escape
// sequences and are emitted verbatim; styled segments are rendered through
// theme.TextStyle.Lipgloss at Render time.
type segment struct {
	col   int
	text  string
	width int
	style theme.TextStyle
	raw   bool
}

// gridDrawer implements render.Drawer by buffering an entire frame's worth
// of writes into per-row segment lists instead of touching a real
// terminal, so the bubbletea model can turn a frame into the plain string
// View() requires. Grounded on _examples/asynkron-GoAgent/internal/tui/tui.go's
// bubbletea idiom: the engine still owns cursor/layout logic
// (internal/render/engine.go), this only adapts its output sink.
type gridDrawer struct {
	profile termenv.Profile
	rows    int
	cols    int
	lines   [][]segment
	fillBG  []theme.Color // one per row: background painted by the most recent FillBackground call covering it

	row, col int
}

func newGridDrawer(profile termenv.Profile, rows, cols int) *gridDrawer {
	return &gridDrawer{
		profile: profile,
		rows:    rows,
		cols:    cols,
		lines:   make([][]segment, rows),
		fillBG:  make([]theme.Color, rows),
	}
}

func (g *gridDrawer) MoveTo(row, col int) {
	g.row, g.col = row, col
}

func (g *gridDrawer) WriteStyled(text string, style theme.TextStyle) {
	g.write(text, style, false)
}

func (g *gridDrawer) WriteRaw(text string) {
	g.write(text, theme.TextStyle{}, true)
}

func (g *gridDrawer) write(text string, style theme.TextStyle, raw bool) {
	if g.row < 0 || g.row >= g.rows {
		return
	}
	w := runewidth.StringWidth(text)
	g.lines[g.row] = append(g.lines[g.row], segment{col: g.col, text: text, width: w, style: style, raw: raw})
	g.col += w
}

func (g *gridDrawer) FillBackground(rect render.Rect, bg theme.Color) {
	for r := rect.Row; r < rect.Row+rect.Height && r < g.rows; r++ {
		if r < 0 {
			continue
		}
		g.fillBG[r] = bg
	}
}

func (g *gridDrawer) Clear() {
	g.lines = make([][]segment, g.rows)
	g.fillBG = make([]theme.Color, g.rows)
	g.row, g.col = 0, 0
}

// Render flattens the buffered frame into a string suitable for
// bubbletea's View(), filling any column a segment didn't reach with the
// row's background fill (or a plain space).
func (g *gridDrawer) Render() string {
	var out strings.Builder
	for r := 0; r < g.rows; r++ {
		out.WriteString(g.renderRow(r))
		if r < g.rows-1 {
			out.WriteByte('\n')
		}
	}
	return out.String()
}

func (g *gridDrawer) renderRow(r int) string {
	fill := g.fillBackgroundStyle(r)
	var b strings.Builder
	col := 0
	for _, seg := range g.lines[r] {
		if seg.col > col {
			b.WriteString(fill.Render(strings.Repeat(" ", seg.col-col)))
			col = seg.col
		}
		if seg.raw {
			b.WriteString(seg.text)
		} else {
			b.WriteString(seg.style.Lipgloss(g.profile).Inherit(fill).Render(seg.text))
		}
		col += seg.width
	}
	if col < g.cols {
		b.WriteString(fill.Render(strings.Repeat(" ", g.cols-col)))
	}
	return b.String()
}

func (g *gridDrawer) fillBackgroundStyle(r int) lipgloss.Style {
	bg := g.fillBG[r]
	if bg.IsZero() {
		return lipgloss.NewStyle()
	}
	return lipgloss.NewStyle().Background(bg.Lipgloss(g.profile))
}
