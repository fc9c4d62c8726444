package validators

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"
)

// Registry resolves validator names. Built-in names win over custom ones.
// Custom names map to dotted paths in a Library and are imported on first use;
// the result is cached until ClearCache or Configure is called.
type Registry struct {
	lib *Library

	mu     sync.RWMutex
	custom map[string]string
	cache  map[string]Constructor
}

// NewRegistry creates a registry over lib with the given custom name to path table.
// A nil lib means DefaultLibrary.
func NewRegistry(lib *Library, custom map[string]string) *Registry {
	if lib == nil {
		lib = DefaultLibrary
	}
	r := &Registry{lib: lib}
	r.Configure(custom)
	return r
}

// Configure replaces the custom table and drops every cached import.
func (r *Registry) Configure(custom map[string]string) {
	table := make(map[string]string, len(custom))
	for name, path := range custom {
		table[name] = path
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.custom = table
	r.cache = make(map[string]Constructor)
}

// ClearCache drops every cached custom import so the next lookup re-imports.
func (r *Registry) ClearCache() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache = make(map[string]Constructor)
}

// Lookup resolves name. found is false when the name is neither built in nor
// configured; err is set when a configured path fails to import.
func (r *Registry) Lookup(name string) (c Constructor, found bool, err error) {
	if c, ok := Builtin(name); ok {
		return c, true, nil
	}

	r.mu.RLock()
	path, configured := r.custom[name]
	cached, hit := r.cache[name]
	r.mu.RUnlock()

	if !configured {
		return nil, false, nil
	}
	if hit {
		return cached, true, nil
	}

	c, err = r.lib.Import(path)
	if err != nil {
		return nil, true, fmt.Errorf("validator %q: %w", name, err)
	}

	// Concurrent first imports of the same name store the same constructor.
	r.mu.Lock()
	r.cache[name] = c
	r.mu.Unlock()
	return c, true, nil
}

// Known reports whether name resolves to a validator.
func (r *Registry) Known(name string) bool {
	_, found, err := r.Lookup(name)
	return found && err == nil
}

// Build resolves name and configures it with params.
func (r *Registry) Build(name string, params map[string]any) (Predicate, error) {
	c, found, err := r.Lookup(name)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrUnknownValidator, name)
	}
	pred, err := c.Build(Params(params))
	if err != nil {
		return nil, fmt.Errorf("validator %q: %w", name, err)
	}
	return pred, nil
}

// Available returns every usable validator name with its display label.
// Custom validators are labelled from their name with a "(custom)" suffix.
func (r *Registry) Available() map[string]string {
	out := make(map[string]string, len(builtins))
	for name, b := range builtins {
		out[name] = b.label
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	for name := range r.custom {
		if _, ok := out[name]; ok {
			continue
		}
		out[name] = customLabel(name)
	}
	return out
}

// Names returns the sorted list of available validator names.
func (r *Registry) Names() []string {
	available := r.Available()
	names := make([]string, 0, len(available))
	for name := range available {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func customLabel(name string) string {
	words := strings.Fields(strings.ReplaceAll(name, "_", " "))
	for i, w := range words {
		first, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(first)) + strings.ToLower(w[size:])
	}
	return strings.Join(words, " ") + " (custom)"
}
