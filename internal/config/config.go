// Package config loads mdslide's YAML config file (spec.md §6): top-level
// keys `defaults`, `options`, `bindings`, `snippet`, `typst`, `mermaid`,
// `speaker_notes`. Strict-mode unknown-key rejection and schema validation
// are grounded directly on the teacher's
// validatePlanAgainstSchema/loadPlanSchema sync.Once-memoized loader
// (internal/core/runtime/runtime.go).
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/mdslide/mdslide/internal/presenter"
	"github.com/mdslide/mdslide/internal/snippet"
)

// SnippetExecConfig is the `snippet.exec`/`snippet.exec_replace` YAML shape.
type SnippetExecConfig struct {
	Enable bool `yaml:"enable" json:"enable"`
}

// CustomSnippetProfile is one `snippet.custom.<lang>` entry. Custom profiles
// sit directly under `snippet`; a `custom` key under `snippet.exec` is not
// read.
type CustomSnippetProfile struct {
	Filename         string            `yaml:"filename" json:"filename"`
	Commands         [][]string        `yaml:"commands" json:"commands"`
	Environment      map[string]string `yaml:"environment,omitempty" json:"environment,omitempty"`
	HiddenLinePrefix string            `yaml:"hidden_line_prefix,omitempty" json:"hidden_line_prefix,omitempty"`
}

// SnippetConfig is the `snippet` top-level key.
type SnippetConfig struct {
	Exec        SnippetExecConfig               `yaml:"exec" json:"exec"`
	ExecReplace SnippetExecConfig               `yaml:"exec_replace" json:"exec_replace"`
	Custom      map[string]CustomSnippetProfile `yaml:"custom,omitempty" json:"custom,omitempty"`
}

// OptionsConfig is the `options` top-level key, matching spec.md §6's
// `options.{implicit_slide_ends,command_prefix,image_attributes_prefix,
// incremental_lists,end_slide_shorthand,strict_front_matter_parsing,
// auto_render_languages}`.
type OptionsConfig struct {
	ImplicitSlideEnds        bool     `yaml:"implicit_slide_ends,omitempty" json:"implicit_slide_ends,omitempty"`
	CommandPrefix            string   `yaml:"command_prefix,omitempty" json:"command_prefix,omitempty"`
	ImageAttributesPrefix    string   `yaml:"image_attributes_prefix,omitempty" json:"image_attributes_prefix,omitempty"`
	IncrementalLists         bool     `yaml:"incremental_lists,omitempty" json:"incremental_lists,omitempty"`
	EndSlideShorthand        bool     `yaml:"end_slide_shorthand,omitempty" json:"end_slide_shorthand,omitempty"`
	StrictFrontMatterParsing bool     `yaml:"strict_front_matter_parsing,omitempty" json:"strict_front_matter_parsing,omitempty"`
	AutoRenderLanguages      []string `yaml:"auto_render_languages,omitempty" json:"auto_render_languages,omitempty"`
	Transitions              bool     `yaml:"transitions,omitempty" json:"transitions,omitempty"`
}

// DefaultsConfig is the `defaults` top-level key: the theme applied when
// neither a front-matter override nor --theme is given.
type DefaultsConfig struct {
	Theme string `yaml:"theme,omitempty" json:"theme,omitempty"`
}

// TypstConfig/MermaidConfig are the `typst`/`mermaid` top-level keys: the
// external renderer invocation mdslide shells out to for `+render` blocks
// of those languages (spec.md §4.D's ReprRender path), expressed the same
// shape as a custom snippet profile since both just materialize-then-run.
type TypstConfig struct {
	Command []string `yaml:"command,omitempty" json:"command,omitempty"`
	PPI     int      `yaml:"ppi,omitempty" json:"ppi,omitempty"`
}

type MermaidConfig struct {
	Command []string `yaml:"command,omitempty" json:"command,omitempty"`
	Scale   int      `yaml:"scale,omitempty" json:"scale,omitempty"`
}

// SpeakerNotesConfig is the `speaker_notes` top-level key (spec.md §6's
// "Speaker notes IPC (out of core)"): how mdslide publishes/subscribes to
// GoToSlide/Exit commands keyed by the presentation filename.
type SpeakerNotesConfig struct {
	Mode string `yaml:"mode,omitempty" json:"mode,omitempty"` // "publisher" or "receiver"
}

// Config is the fully decoded top-level document.
type Config struct {
	Defaults     DefaultsConfig      `yaml:"defaults,omitempty" json:"defaults,omitempty"`
	Options      OptionsConfig       `yaml:"options,omitempty" json:"options,omitempty"`
	Bindings     map[string][]string `yaml:"bindings,omitempty" json:"bindings,omitempty"`
	Snippet      SnippetConfig       `yaml:"snippet,omitempty" json:"snippet,omitempty"`
	Typst        TypstConfig         `yaml:"typst,omitempty" json:"typst,omitempty"`
	Mermaid      MermaidConfig       `yaml:"mermaid,omitempty" json:"mermaid,omitempty"`
	SpeakerNotes SpeakerNotesConfig  `yaml:"speaker_notes,omitempty" json:"speaker_notes,omitempty"`
}

var topLevelKeys = map[string]bool{
	"defaults": true, "options": true, "bindings": true,
	"snippet": true, "typst": true, "mermaid": true, "speaker_notes": true,
}

// Load reads and validates the config file at path. A missing path is not
// an error — Default() is returned instead, matching the CLI's optional
// -c/--config-file flag.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	return Parse(data)
}

// Default returns an empty, schema-valid configuration (every field at its
// zero value; internal/presenter.Options.setDefaults and
// internal/builder.Options.setDefaults fill in the actual runtime
// defaults).
func Default() *Config {
	return &Config{}
}

// Parse decodes data in strict mode: unknown top-level keys are rejected
// by walking the raw yaml.Node's mapping keys before decoding into Config,
// since yaml.v3 has no UnmarshalStrict (unlike v2). The raw document is
// then round-tripped through encoding/json and validated against the
// config schema via gojsonschema, so unknown nested keys are rejected too.
func Parse(data []byte) (*Config, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("config: parsing yaml: %w", err)
	}
	if err := checkStrictKeys(&root); err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: decoding: %w", err)
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("config: decoding: %w", err)
	}
	if doc == nil {
		doc = map[string]any{}
	}
	if err := validateAgainstSchema(doc); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// checkStrictKeys walks root's top-level mapping (root is a DocumentNode
// wrapping one MappingNode) and rejects any key not in topLevelKeys.
func checkStrictKeys(root *yaml.Node) error {
	if len(root.Content) == 0 {
		return nil
	}
	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i < len(doc.Content); i += 2 {
		key := doc.Content[i].Value
		if !topLevelKeys[key] {
			return fmt.Errorf("config: unknown top-level key %q", key)
		}
	}
	return nil
}

var (
	schemaLoader     gojsonschema.JSONLoader
	schemaLoaderErr  error
	schemaLoaderOnce sync.Once
)

func loadSchema() (gojsonschema.JSONLoader, error) {
	schemaLoaderOnce.Do(func() {
		schemaLoader = gojsonschema.NewGoLoader(configSchema())
	})
	return schemaLoader, schemaLoaderErr
}

func validateAgainstSchema(doc any) error {
	loader, err := loadSchema()
	if err != nil {
		return fmt.Errorf("config: load schema: %w", err)
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("config: marshal for validation: %w", err)
	}

	result, err := gojsonschema.Validate(loader, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("config: schema validation error: %w", err)
	}
	if result.Valid() {
		return nil
	}

	issues := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		issues = append(issues, desc.String())
	}
	return &ValidationError{Issues: issues}
}

// ValidationError reports every schema violation found in one config
// document.
type ValidationError struct{ Issues []string }

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: schema validation failed: %v", e.Issues)
}

// configSchema returns the inline JSON Schema config documents validate
// against, built as a Go map the way the teacher's schema.PlanResponseSchema
// constructs its schema programmatically rather than embedding a JSON file.
func configSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"defaults": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"properties": map[string]any{
					"theme": map[string]any{"type": "string"},
				},
			},
			"options": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"properties": map[string]any{
					"implicit_slide_ends":         map[string]any{"type": "boolean"},
					"command_prefix":              map[string]any{"type": "string"},
					"image_attributes_prefix":     map[string]any{"type": "string"},
					"incremental_lists":           map[string]any{"type": "boolean"},
					"end_slide_shorthand":         map[string]any{"type": "boolean"},
					"strict_front_matter_parsing": map[string]any{"type": "boolean"},
					"auto_render_languages":       map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
					"transitions":                 map[string]any{"type": "boolean"},
				},
			},
			"bindings": map[string]any{
				"type": "object",
				"additionalProperties": map[string]any{
					"type":  "array",
					"items": map[string]any{"type": "string"},
				},
			},
			"snippet": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"properties": map[string]any{
					"exec":         execSchema(),
					"exec_replace": execSchema(),
					"custom": map[string]any{
						"type": "object",
						"additionalProperties": map[string]any{
							"type":                 "object",
							"additionalProperties": false,
							"properties": map[string]any{
								"filename": map[string]any{"type": "string"},
								"commands": map[string]any{
									"type":  "array",
									"items": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
								},
								"environment":        map[string]any{"type": "object"},
								"hidden_line_prefix": map[string]any{"type": "string"},
							},
						},
					},
				},
			},
			"typst": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"properties": map[string]any{
					"command": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
					"ppi":     map[string]any{"type": "integer"},
				},
			},
			"mermaid": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"properties": map[string]any{
					"command": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
					"scale":   map[string]any{"type": "integer"},
				},
			},
			"speaker_notes": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"properties": map[string]any{
					"mode": map[string]any{"type": "string", "enum": []any{"publisher", "receiver"}},
				},
			},
		},
	}
}

func execSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"enable": map[string]any{"type": "boolean"},
		},
	}
}

// ApplyBuilderOptions registers each of cfg's `snippet.custom` profiles in
// registry as an override of the built-in profile for that language. It
// does not touch the `options` keys; cli.go copies those into
// builder.Options itself.
func ApplyBuilderOptions(cfg *Config, registry *snippet.ProfileRegistry) error {
	for lang, custom := range cfg.Snippet.Custom {
		profile := snippet.Profile{
			Filename:         custom.Filename,
			Commands:         custom.Commands,
			Environment:      custom.Environment,
			HiddenLinePrefix: custom.HiddenLinePrefix,
		}
		if err := registry.Override(lang, profile); err != nil {
			return fmt.Errorf("config: snippet.custom.%s: %w", lang, err)
		}
	}
	return nil
}

// Bindings converts cfg's `bindings` map into presenter.Bindings keyed by
// Command, merging over DefaultBindings() so a config only needs to
// mention the keys it wants to override — any default the config is
// silent on keeps its original sequence set.
func Bindings(cfg *Config) (presenter.Bindings, error) {
	out := presenter.DefaultBindings()
	for name, seqs := range cfg.Bindings {
		cmd, ok := commandByName[name]
		if !ok {
			return nil, fmt.Errorf("config: bindings: unknown command %q", name)
		}
		out[cmd] = seqs
	}
	if conflicts := out.Conflicts(); len(conflicts) > 0 {
		return nil, conflicts[0]
	}
	return out, nil
}

var commandByName = map[string]presenter.Command{
	"next":                    presenter.CmdNext,
	"next_fast":               presenter.CmdNextFast,
	"previous":                presenter.CmdPrevious,
	"previous_fast":           presenter.CmdPreviousFast,
	"first_slide":             presenter.CmdFirstSlide,
	"last_slide":              presenter.CmdLastSlide,
	"go_to_slide":             presenter.CmdGoToSlide,
	"render_async_operations": presenter.CmdRenderAsyncOperations,
	"toggle_slide_index":      presenter.CmdToggleSlideIndex,
	"toggle_key_bindings":     presenter.CmdToggleKeyBindingsConfig,
	"close_modal":             presenter.CmdCloseModal,
	"reload":                  presenter.CmdReload,
	"hard_reload":             presenter.CmdHardReload,
	"exit":                    presenter.CmdExit,
	"suspend":                 presenter.CmdSuspend,
	"redraw":                  presenter.CmdRedraw,
}
