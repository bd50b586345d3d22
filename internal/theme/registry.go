package theme

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Registry holds built-in themes (compiled in as embedded YAML strings, see
// builtin.go) plus any user themes loaded from a directory, and resolves
// `extends` chains topologically before a Theme is handed to the builder.
type Registry struct {
	builtin map[string]Raw
	custom  map[string]Raw
	cache   map[string]*Theme
}

// NewRegistry builds a registry seeded with the built-in theme set.
func NewRegistry() *Registry {
	r := &Registry{builtin: map[string]Raw{}, custom: map[string]Raw{}, cache: map[string]*Theme{}}
	for name, contents := range builtinThemes {
		var raw Raw
		if err := yaml.Unmarshal([]byte(contents), &raw); err != nil {
			panic(fmt.Sprintf("theme: corrupted built-in theme %q: %v", name, err))
		}
		r.builtin[name] = raw
	}
	return r
}

// RegisterDirectory loads every *.yaml file in dir as a custom theme named
// after its filename (minus extension). A theme name colliding with a
// built-in is an error; a missing directory is not.
func (r *Registry) RegisterDirectory(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		name := strings.TrimSuffix(e.Name(), ".yaml")
		if _, ok := r.builtin[name]; ok {
			return fmt.Errorf("theme: %q duplicates a built-in theme name", name)
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return err
		}
		var raw Raw
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("theme: parsing %s: %w", e.Name(), err)
		}
		r.custom[name] = raw
	}
	return r.resolveExtends()
}

// resolveExtends flattens every custom theme's `extends` chain in
// topological order, same shape as the teacher's dependents/ready worklist.
func (r *Registry) resolveExtends() error {
	dependents := map[string][]string{}
	ready := []string{}
	for name, raw := range r.custom {
		if _, ok := dependents[name]; !ok {
			dependents[name] = nil
		}
		if raw.Extends == "" {
			ready = append(ready, name)
			continue
		}
		if _, isBuiltin := r.builtin[raw.Extends]; isBuiltin {
			ready = append(ready, name)
			continue
		}
		dependents[raw.Extends] = append(dependents[raw.Extends], name)
	}

	for name := range dependents {
		raw := r.custom[name]
		if raw.Extends == "" {
			continue
		}
		if _, ok := r.builtin[raw.Extends]; ok {
			continue
		}
		if _, ok := r.custom[raw.Extends]; !ok {
			return &ErrThemeNotFound{Name: raw.Extends}
		}
	}

	for len(ready) > 0 {
		name := ready[len(ready)-1]
		ready = ready[:len(ready)-1]

		raw := r.custom[name]
		if raw.Extends != "" {
			base, ok := r.lookupRaw(raw.Extends)
			if !ok {
				return &ErrThemeNotFound{Name: raw.Extends}
			}
			r.custom[name] = base.Merge(raw)
		}

		if deps, ok := dependents[name]; ok {
			ready = append(ready, deps...)
			delete(dependents, name)
		}
	}

	var remaining []string
	for name, deps := range dependents {
		if len(deps) > 0 || r.custom[name].Extends != "" {
			remaining = append(remaining, name)
		}
	}
	if len(remaining) > 0 {
		return &ErrExtensionLoop{Themes: remaining}
	}
	return nil
}

func (r *Registry) lookupRaw(name string) (Raw, bool) {
	if raw, ok := r.custom[name]; ok {
		return raw, true
	}
	if raw, ok := r.builtin[name]; ok {
		return raw, true
	}
	return Raw{}, false
}

// Load resolves name (built-in or custom) into a fully-resolved Theme,
// substituting palette references and failing the build outright if any
// reference is unresolved.
func (r *Registry) Load(name string) (*Theme, error) {
	if cached, ok := r.cache[name]; ok {
		return cached, nil
	}
	raw, ok := r.lookupRaw(name)
	if !ok {
		return nil, &ErrThemeNotFound{Name: name}
	}
	if raw.Extends != "" {
		base, ok := r.lookupRaw(raw.Extends)
		if !ok {
			return nil, &ErrThemeNotFound{Name: raw.Extends}
		}
		raw = base.Merge(raw)
	}
	resolved, err := Resolve(name, raw)
	if err != nil {
		return nil, err
	}
	r.cache[name] = resolved
	return resolved, nil
}

// Names lists every loadable theme name, built-in first.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.builtin)+len(r.custom))
	for name := range r.builtin {
		names = append(names, name)
	}
	for name := range r.custom {
		names = append(names, name)
	}
	return names
}
