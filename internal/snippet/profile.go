package snippet

import "fmt"

// Profile is a language's declarative execution recipe: materialize the
// snippet to Filename, then run each Commands entry in order.
type Profile struct {
	Filename         string
	Environment      map[string]string
	Commands         [][]string // each entry is one argv
	HiddenLinePrefix string     // lines with this prefix are stripped before materializing, still counted for highlighting
}

// Validate enforces "an empty filename, empty commands, or empty argv is a
// configuration error".
func (p Profile) Validate(language string) error {
	if p.Filename == "" {
		return fmt.Errorf("snippet: profile %q has no filename", language)
	}
	if len(p.Commands) == 0 {
		return fmt.Errorf("snippet: profile %q has no commands", language)
	}
	for _, argv := range p.Commands {
		if len(argv) == 0 {
			return fmt.Errorf("snippet: profile %q has an empty command", language)
		}
	}
	return nil
}

// ProfileRegistry holds the built-in language profiles plus any user
// overrides; at most one profile is active per language.
type ProfileRegistry struct {
	profiles map[string]Profile
}

// NewProfileRegistry builds a registry seeded with mdslide's built-in
// language profiles.
func NewProfileRegistry() *ProfileRegistry {
	r := &ProfileRegistry{profiles: map[string]Profile{}}
	for lang, p := range builtinProfiles {
		r.profiles[lang] = p
	}
	return r
}

// Override replaces (or adds) the profile for language, validating it
// first.
func (r *ProfileRegistry) Override(language string, p Profile) error {
	if err := p.Validate(language); err != nil {
		return err
	}
	r.profiles[language] = p
	return nil
}

// Lookup returns the profile for language, if any.
func (r *ProfileRegistry) Lookup(language string) (Profile, bool) {
	p, ok := r.profiles[language]
	return p, ok
}

var builtinProfiles = map[string]Profile{
	"python": {
		Filename: "snippet.py",
		Commands: [][]string{{"python3", "$pwd/snippet.py"}},
	},
	"bash": {
		Filename: "snippet.sh",
		Commands: [][]string{{"bash", "$pwd/snippet.sh"}},
	},
	"sh": {
		Filename: "snippet.sh",
		Commands: [][]string{{"sh", "$pwd/snippet.sh"}},
	},
	"go": {
		Filename: "snippet.go",
		Commands: [][]string{{"go", "run", "$pwd/snippet.go"}},
	},
	"rust": {
		Filename: "snippet.rs",
		Commands: [][]string{
			{"rustc", "-o", "$pwd/snippet", "$pwd/snippet.rs"},
			{"$pwd/snippet"},
		},
	},
	"javascript": {
		Filename: "snippet.js",
		Commands: [][]string{{"node", "$pwd/snippet.js"}},
	},
	"typst": {
		Filename: "snippet.typ",
		Commands: [][]string{{"typst", "compile", "$pwd/snippet.typ", "$pwd/snippet.png"}},
	},
	"mermaid": {
		Filename: "snippet.mmd",
		Commands: [][]string{{"mmdc", "-i", "$pwd/snippet.mmd", "-o", "$pwd/snippet.png"}},
	},
}
