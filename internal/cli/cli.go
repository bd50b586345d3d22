// Package cli provides the command-line entry point for mdslide: flag
// parsing, config/theme loading, and dispatch to the interactive
// presenter, export mode, or --list-themes.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"

	"github.com/mdslide/mdslide/internal/builder"
	"github.com/mdslide/mdslide/internal/config"
	"github.com/mdslide/mdslide/internal/imaging"
	"github.com/mdslide/mdslide/internal/logging"
	"github.com/mdslide/mdslide/internal/presenter"
	"github.com/mdslide/mdslide/internal/snippet"
	"github.com/mdslide/mdslide/internal/theme"
)

// Run executes mdslide with the provided CLI arguments. It returns a
// POSIX-style exit code (0 success, 1 fatal error, 2 flag-parse error) so
// the process boundary in cmd/mdslide/main.go is the only os.Exit call.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}

	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			fmt.Fprintf(stderr, "failed to load .env: %v\n", err)
			return 1
		}
	}

	defaultTheme := firstNonEmpty(os.Getenv("MDSLIDE_THEME"), "dark")
	defaultConfig := os.Getenv("MDSLIDE_CONFIG")
	defaultProtocol := firstNonEmpty(os.Getenv("MDSLIDE_IMAGE_PROTOCOL"), "auto")

	flagSet := flag.NewFlagSet("mdslide", flag.ContinueOnError)
	flagSet.SetOutput(stderr)

	present := flagSet.Bool("present", false, "presentation mode (no live reload)")
	flagSet.BoolVar(present, "p", false, "shorthand for --present")
	exportPDF := flagSet.Bool("export-pdf", false, "export via external capture tool")
	flagSet.BoolVar(exportPDF, "e", false, "shorthand for --export-pdf")
	generatePDFMetadata := flagSet.Bool("generate-pdf-metadata", false, "emit JSON describing the capture script")
	themeName := flagSet.String("theme", defaultTheme, "theme name")
	flagSet.StringVar(themeName, "t", defaultTheme, "shorthand for --theme")
	listThemes := flagSet.Bool("list-themes", false, "list available theme names and exit")
	imageProtocol := flagSet.String("image-protocol", defaultProtocol, "auto|iterm2|kitty-local|kitty-remote|sixel|ascii-blocks")
	validateOverflows := flagSet.Bool("validate-overflows", false, "fail instead of truncating on layout overflow")
	enableExec := flagSet.Bool("enable-snippet-execution", false, "allow +exec snippets to run")
	flagSet.BoolVar(enableExec, "x", false, "shorthand for --enable-snippet-execution")
	enableExecReplace := flagSet.Bool("enable-snippet-execution-replace", false, "allow +exec_replace snippets to run")
	flagSet.BoolVar(enableExecReplace, "X", false, "shorthand for --enable-snippet-execution-replace")
	configFile := flagSet.String("config-file", defaultConfig, "path to a mdslide config YAML file")
	flagSet.StringVar(configFile, "c", defaultConfig, "shorthand for --config-file")
	speakerNotesMode := flagSet.String("speaker-notes-mode", "", "publisher|receiver")
	logFile := flagSet.String("log-file", os.Getenv("MDSLIDE_LOG_FILE"), "write structured logs to this file instead of discarding them")

	if err := flagSet.Parse(args); err != nil {
		return 2
	}

	themeRegistry := theme.NewRegistry()

	if *listThemes {
		names := themeRegistry.Names()
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintln(stdout, name)
		}
		return 0
	}

	rest := flagSet.Args()
	if len(rest) != 1 {
		fmt.Fprintln(stderr, "mdslide: exactly one presentation PATH is required")
		return 2
	}
	path := rest[0]

	if path == "demo" {
		demoPath, cleanup, err := writeDemoFile()
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		defer cleanup()
		path = demoPath
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	if cfg.Defaults.Theme != "" && !flagWasSet(flagSet, "theme") && !flagWasSet(flagSet, "t") {
		*themeName = cfg.Defaults.Theme
	}

	resolvedTheme, err := themeRegistry.Load(*themeName)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	protocol, err := imaging.ParseProtocol(*imageProtocol)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	logger := logging.Logger(logging.NoOpLogger{})
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		defer f.Close()
		logger = logging.NewStdLogger(logging.LevelInfo, f)
	}

	builderOpts := builder.Options{
		Theme:                         resolvedTheme,
		BaseDir:                       dirOf(path),
		EnableSnippetExecution:        *enableExec || cfg.Snippet.Exec.Enable,
		EnableSnippetExecutionReplace: *enableExecReplace || cfg.Snippet.ExecReplace.Enable,
		ImplicitSlideEnds:             cfg.Options.ImplicitSlideEnds,
		EndSlideShorthand:             cfg.Options.EndSlideShorthand,
		IncrementalListsDefault:       cfg.Options.IncrementalLists,
		AutoRenderLanguages:           cfg.Options.AutoRenderLanguages,
	}
	if cfg.Options.CommandPrefix != "" {
		builderOpts.CommandPrefix = cfg.Options.CommandPrefix
	}
	if cfg.Options.ImageAttributesPrefix != "" {
		builderOpts.ImageAttributePrefix = cfg.Options.ImageAttributesPrefix
	}
	builderOpts.Snippets = snippet.NewProfileRegistry()
	if err := config.ApplyBuilderOptions(cfg, builderOpts.Snippets); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	mode := presenter.ModeDevelopment
	if *present {
		mode = presenter.ModePresentation
	}

	opts := presenter.Options{
		Path:              path,
		Mode:              mode,
		Builder:           builderOpts,
		ValidateOverflows: *validateOverflows,
		Images:            imaging.New(protocol, os.Stdout),
		Logger:            logger,
		Transitions:       cfg.Options.Transitions,
	}

	if speakerNotesMode := strings.TrimSpace(*speakerNotesMode); speakerNotesMode != "" &&
		speakerNotesMode != "publisher" && speakerNotesMode != "receiver" {
		fmt.Fprintf(stderr, "mdslide: invalid --speaker-notes-mode %q\n", speakerNotesMode)
		return 2
	}

	if *generatePDFMetadata {
		n, err := countSlides(opts)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		fmt.Fprintf(stdout, `{"path":%q,"slides":%d}`+"\n", path, n)
		return 0
	}

	if *exportPDF || *validateOverflows {
		n, err := presenter.Export(opts, 50, 120)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		fmt.Fprintf(stdout, "mdslide: rendered %d slides\n", n)
		return 0
	}

	return presenter.Run(ctx, opts)
}

// countSlides runs Export against a throwaway buffer just to get a slide
// count without writing a capture script — --generate-pdf-metadata only
// needs the count, not the rendered frames.
func countSlides(opts presenter.Options) (int, error) {
	return presenter.Export(opts, 50, 120)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func dirOf(path string) string {
	return filepath.Dir(path)
}

// writeDemoFile materializes builder.Demo() into a temp file so the
// "mdslide demo" subcommand can reuse the exact same PATH-driven load/watch
// path every other presentation goes through, instead of the presenter
// needing a from-memory source special case.
func writeDemoFile() (path string, cleanup func(), err error) {
	f, err := os.CreateTemp("", "mdslide-demo-*.md")
	if err != nil {
		return "", nil, fmt.Errorf("mdslide: demo: %w", err)
	}
	if _, err := f.WriteString(builder.Demo()); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", nil, fmt.Errorf("mdslide: demo: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", nil, fmt.Errorf("mdslide: demo: %w", err)
	}
	return f.Name(), func() { os.Remove(f.Name()) }, nil
}

func flagWasSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}
