package render

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/mdslide/mdslide/internal/theme"
)

// TerminalDrawer is the default Drawer: raw cursor-positioning escape
// sequences plus lipgloss-rendered styled spans, written directly to a
// terminal file. Image painting is not this type's job — it only reserves
// the row advance the ImagePrinter collaborator reports.
type TerminalDrawer struct {
	Out     io.Writer
	Profile termenv.Profile
}

func (d *TerminalDrawer) MoveTo(row, col int) {
	fmt.Fprintf(d.Out, "\x1b[%d;%dH", row+1, col+1)
}

func (d *TerminalDrawer) WriteStyled(text string, style theme.TextStyle) {
	if text == "" {
		return
	}
	st := style.Lipgloss(d.Profile)
	io.WriteString(d.Out, st.Render(text))
}

func (d *TerminalDrawer) WriteRaw(text string) {
	io.WriteString(d.Out, text)
}

func (d *TerminalDrawer) FillBackground(rect Rect, bg theme.Color) {
	if bg.IsZero() {
		return
	}
	st := lipgloss.NewStyle().Background(bg.Lipgloss(d.Profile))
	blank := st.Render(spaces(rect.Width))
	for r := 0; r < rect.Height; r++ {
		d.MoveTo(rect.Row+r, rect.Col)
		io.WriteString(d.Out, blank)
	}
}

func (d *TerminalDrawer) Clear() {
	io.WriteString(d.Out, "\x1b[2J")
}

func spaces(n int) string {
	if n <= 0 {
		return ""
	}
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}
