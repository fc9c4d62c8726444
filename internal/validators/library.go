package validators

import (
	"fmt"
	"strings"
	"sync"
)

// Library is the table of validators compiled into the binary, addressed by
// dotted paths of the form "module.path.Attribute". Configuration refers to
// custom validators by these paths.
type Library struct {
	mu      sync.RWMutex
	modules map[string]map[string]Constructor
}

// DefaultLibrary is the process-wide library that packages register into from init.
var DefaultLibrary = NewLibrary()

// NewLibrary creates an empty library.
func NewLibrary() *Library {
	return &Library{modules: make(map[string]map[string]Constructor)}
}

// Register adds c under path. Registering the same path twice replaces the entry.
func (l *Library) Register(path string, c Constructor) error {
	module, attr, err := splitPath(path)
	if err != nil {
		return err
	}
	if c == nil {
		return fmt.Errorf("%w: nil constructor for %q", ErrInvalidPath, path)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.modules[module] == nil {
		l.modules[module] = make(map[string]Constructor)
	}
	l.modules[module][attr] = c
	return nil
}

// MustRegister is Register for init-time use; it panics on a malformed path.
func (l *Library) MustRegister(path string, c Constructor) {
	if err := l.Register(path, c); err != nil {
		// ALLOW-PANIC: registration happens at init with constant paths
		panic(err)
	}
}

// Register adds c to DefaultLibrary.
func Register(path string, c Constructor) {
	DefaultLibrary.MustRegister(path, c)
}

// Import resolves a dotted path. The three failure modes are distinguishable with
// errors.Is: ErrInvalidPath, ErrModuleNotFound and ErrAttributeNotFound.
func (l *Library) Import(path string) (Constructor, error) {
	module, attr, err := splitPath(path)
	if err != nil {
		return nil, err
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	attrs, ok := l.modules[module]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrModuleNotFound, module)
	}
	c, ok := attrs[attr]
	if !ok {
		return nil, fmt.Errorf("module %q %w %q", module, ErrAttributeNotFound, attr)
	}
	return c, nil
}

// Paths lists every registered path.
func (l *Library) Paths() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var paths []string
	for module, attrs := range l.modules {
		for attr := range attrs {
			paths = append(paths, module+"."+attr)
		}
	}
	return paths
}

func splitPath(path string) (string, string, error) {
	idx := strings.LastIndex(path, ".")
	if idx <= 0 || idx == len(path)-1 {
		return "", "", fmt.Errorf("%w %q", ErrInvalidPath, path)
	}
	module, attr := path[:idx], path[idx+1:]
	for _, segment := range strings.Split(module, ".") {
		if segment == "" || strings.ContainsAny(segment, " \t/\\") {
			return "", "", fmt.Errorf("%w %q: malformed module %q", ErrInvalidPath, path, module)
		}
	}
	return module, attr, nil
}
