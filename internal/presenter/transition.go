package presenter

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/mdslide/mdslide/internal/theme"
)

// Transition plays a handful of in-between frames while moving from one
// slide to another. Grounded on
// _examples/original_source/src/transitions/collapse_horizontal.rs:
// "collapse_horizontal" is the only transition the original implements, and
// it stays a presenter-loop concern rather than a render-engine one — each
// frame is just another rendered grid, so the engine never has to know a
// transition is happening.
type Transition interface {
	// TotalFrames returns the last frame index Frame accepts: n runs from
	// 0 (the old frame) to TotalFrames() (the new frame), both inclusive.
	TotalFrames() int
	// Frame renders the nth intermediate frame as a string ready for
	// bubbletea's View().
	Frame(n int) string
}

// gridCell is one rasterized terminal cell: either a single styled rune or
// part of an already-escaped raw run (see gridDrawer.rasterize). Wide runes
// and raw runs are approximated to one cell per rune/byte-run rather than
// tracking true display width, which is acceptable for a between-slides
// visual flourish but would not be for the engine's own layout math.
type gridCell struct {
	text  string
	style theme.TextStyle
	raw   bool
}

// rasterize flattens a buffered frame into a full rows x cols grid of
// cells, so two frames can be spliced column-by-column the way
// collapse_horizontal.rs's build_frame does. Columns a segment never wrote
// default to a single blank cell.
func (g *gridDrawer) rasterize() [][]gridCell {
	grid := make([][]gridCell, g.rows)
	for r := 0; r < g.rows; r++ {
		row := make([]gridCell, g.cols)
		for c := range row {
			row[c] = gridCell{text: " "}
		}
		for _, seg := range g.lines[r] {
			if seg.raw {
				if seg.col >= 0 && seg.col < g.cols {
					row[seg.col] = gridCell{text: seg.text, raw: true}
					for c := seg.col + 1; c < seg.col+seg.width && c < g.cols; c++ {
						row[c] = gridCell{raw: true}
					}
				}
				continue
			}
			for i, ru := range []rune(seg.text) {
				c := seg.col + i
				if c < 0 || c >= g.cols {
					continue
				}
				row[c] = gridCell{text: string(ru), style: seg.style}
			}
		}
		grid[r] = row
	}
	return grid
}

// collapseHorizontalTransition implements Transition by, for frame n,
// taking the new slide's first and last n columns of every row and the old
// slide's middle (cols-2n) columns — the same prefix/middle/suffix splice
// collapse_horizontal.rs's build_frame performs, just over gridCell rows
// instead of TerminalGrid cells.
type collapseHorizontalTransition struct {
	from, to [][]gridCell
	fillBG   []theme.Color
	profile  termenv.Profile
	rows     int
	cols     int
}

// direction of a transition mirrors TransitionDirection in the original:
// Next collapses the old frame away to reveal the new one, Previous runs
// the same animation with old/new swapped.
type TransitionDirection int

const (
	TransitionNext TransitionDirection = iota
	TransitionPrevious
)

// NewCollapseHorizontalTransition builds a Transition between two already
// fully-rendered frames. from/to should be sized identically (same rows and
// cols the presenter's current window uses).
func NewCollapseHorizontalTransition(fromGrid, toGrid *gridDrawer, direction TransitionDirection) Transition {
	if direction == TransitionPrevious {
		fromGrid, toGrid = toGrid, fromGrid
	}
	return &collapseHorizontalTransition{
		from:    fromGrid.rasterize(),
		to:      toGrid.rasterize(),
		fillBG:  fromGrid.fillBG,
		profile: fromGrid.profile,
		rows:    fromGrid.rows,
		cols:    fromGrid.cols,
	}
}

// TotalFrames matches collapse_horizontal.rs: from.rows[0].len() / 2.
func (t *collapseHorizontalTransition) TotalFrames() int {
	return t.cols / 2
}

func (t *collapseHorizontalTransition) Frame(n int) string {
	if n < 0 {
		n = 0
	}
	if n > t.cols/2 {
		n = t.cols / 2
	}

	var out strings.Builder
	for r := 0; r < t.rows; r++ {
		row := make([]gridCell, 0, t.cols)
		row = append(row, t.to[r][:n]...)
		row = append(row, t.from[r][n:t.cols-n]...)
		row = append(row, t.to[r][t.cols-n:]...)
		out.WriteString(renderCellRow(row, t.profile, t.fillBG[r]))
		if r < t.rows-1 {
			out.WriteByte('\n')
		}
	}
	return out.String()
}

// renderCellRow batches consecutive cells sharing a style (or consecutive
// raw cells) into one lipgloss.Render call instead of one per rune.
func renderCellRow(row []gridCell, profile termenv.Profile, bg theme.Color) string {
	fill := lipgloss.NewStyle()
	if !bg.IsZero() {
		fill = fill.Background(bg.Lipgloss(profile))
	}

	var b strings.Builder
	i := 0
	for i < len(row) {
		if row[i].raw {
			j := i
			for j < len(row) && row[j].raw {
				b.WriteString(row[j].text)
				j++
			}
			i = j
			continue
		}
		style := row[i].style
		var text strings.Builder
		j := i
		for j < len(row) && !row[j].raw && row[j].style == style {
			text.WriteString(row[j].text)
			j++
		}
		b.WriteString(style.Lipgloss(profile).Inherit(fill).Render(text.String()))
		i = j
	}
	return b.String()
}
