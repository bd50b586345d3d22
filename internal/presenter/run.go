package presenter

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Run launches the interactive presenter and blocks until the viewer
// exits. Returns a POSIX-style exit code, matching
// _examples/asynkron-GoAgent/internal/tui/tui.go's Run.
func Run(ctx context.Context, opts Options) int {
	opts.setDefaults()
	if err := opts.validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	// Prevent OSC background-color queries from contaminating stdin by
	// fixing lipgloss/termenv's profile and background up front.
	lipgloss.SetColorProfile(termenv.TrueColor)
	lipgloss.SetHasDarkBackground(true)

	m := newModel(opts)
	defer m.Shutdown()

	program := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithContext(ctx),
	)
	if _, err := program.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "presenter error:", err)
		return 1
	}
	if m.state.IsFailure() && opts.Mode == ModeExport {
		return 1
	}
	return 0
}
