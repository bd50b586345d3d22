package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdslide/mdslide/internal/presenter"
	"github.com/mdslide/mdslide/internal/snippet"
)

func TestParseDefaultsAndOptions(t *testing.T) {
	cfg, err := Parse([]byte(`
defaults:
  theme: dark
options:
  incremental_lists: true
  transitions: true
  auto_render_languages: [mermaid, typst]
`))
	require.NoError(t, err)
	assert.Equal(t, "dark", cfg.Defaults.Theme)
	assert.True(t, cfg.Options.IncrementalLists)
	assert.True(t, cfg.Options.Transitions)
	assert.Equal(t, []string{"mermaid", "typst"}, cfg.Options.AutoRenderLanguages)
}

func TestParseRejectsUnknownTopLevelKey(t *testing.T) {
	_, err := Parse([]byte("bogus: true\n"))
	assert.ErrorContains(t, err, "unknown top-level key")
}

func TestParseRejectsUnknownNestedKey(t *testing.T) {
	_, err := Parse([]byte("options:\n  nonsense: true\n"))
	assert.Error(t, err)
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestParseRejectsBadSpeakerNotesMode(t *testing.T) {
	_, err := Parse([]byte("speaker_notes:\n  mode: sideways\n"))
	assert.Error(t, err)
}

func TestLoadMissingPathReturnsDefault(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	cfg, err = Load("/nonexistent/mdslide.yaml")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestApplyBuilderOptionsRegistersCustomProfile(t *testing.T) {
	cfg, err := Parse([]byte(`
snippet:
  custom:
    rust:
      filename: main.rs
      commands:
        - ["rustc", "$pwd/main.rs"]
`))
	require.NoError(t, err)

	registry := snippet.NewProfileRegistry()
	require.NoError(t, ApplyBuilderOptions(cfg, registry))

	profile, ok := registry.Lookup("rust")
	require.True(t, ok)
	assert.Equal(t, "main.rs", profile.Filename)
}

func TestBindingsOverlayOverridesOnlyNamedCommands(t *testing.T) {
	cfg, err := Parse([]byte(`
bindings:
  next: ["n", "l"]
`))
	require.NoError(t, err)

	bindings, err := Bindings(cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"n", "l"}, bindings[presenter.CmdNext])
	assert.Equal(t, presenter.DefaultBindings()[presenter.CmdExit], bindings[presenter.CmdExit])
}

func TestBindingsRejectsUnknownCommandName(t *testing.T) {
	cfg, err := Parse([]byte(`
bindings:
  teleport: ["t"]
`))
	require.NoError(t, err)

	_, err = Bindings(cfg)
	assert.ErrorContains(t, err, "unknown command")
}
