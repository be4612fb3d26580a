package shader

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
)

//go:embed assets/*.wgsl
var programFS embed.FS

// ErrUnknownProgram is returned when a program key has no source.
var ErrUnknownProgram = errors.New("shader: unknown program")

// library is the implementation of the Library interface.
type library struct {
	mu          *sync.Mutex
	overrideDir string
	shaders     map[string]Shader
}

// Library resolves program keys to shaders. Sources come from the embedded assets unless the
// override directory holds a <key>.wgsl file. It is safe for concurrent use: the file watcher
// reloads programs while the render goroutine reads them.
type Library interface {
	// Shader retrieves the current shader for a program key.
	//
	// Parameters:
	//   - key: the program key
	//
	// Returns:
	//   - Shader: the shader
	//   - error: ErrUnknownProgram if the key has no source
	Shader(key string) (Shader, error)

	// Reload re-reads a program from disk (or the embedded copy) and bumps its version.
	// On failure the previous shader stays in place.
	//
	// Parameters:
	//   - key: the program key
	//
	// Returns:
	//   - Shader: the reloaded shader
	//   - error: an error if the source could not be read or pre-processed
	Reload(key string) (Shader, error)

	// Keys returns every loaded program key in sorted order.
	//
	// Returns:
	//   - []string: the keys
	Keys() []string

	// OverrideDir returns the override directory, or "" if none is set.
	//
	// Returns:
	//   - string: the directory
	OverrideDir() string

	// KeyForPath maps a file path inside the override directory to its program key.
	//
	// Parameters:
	//   - path: the file path
	//
	// Returns:
	//   - string: the program key
	//   - bool: true if the path names a known program source
	KeyForPath(path string) (string, bool)
}

var _ Library = &library{}

// LibraryBuilderOption is a functional option for configuring a Library.
type LibraryBuilderOption func(*library)

// WithOverrideDir sets a directory whose <key>.wgsl files replace the embedded sources.
//
// Parameters:
//   - dir: the directory path; "" disables overrides
//
// Returns:
//   - LibraryBuilderOption: option function to apply
func WithOverrideDir(dir string) LibraryBuilderOption {
	return func(l *library) {
		l.overrideDir = dir
	}
}

// NewLibrary loads every built-in program.
//
// Parameters:
//   - options: functional options to configure the library
//
// Returns:
//   - Library: the loaded library
//   - error: an error if any program fails to load
func NewLibrary(options ...LibraryBuilderOption) (Library, error) {
	l := &library{
		mu:      &sync.Mutex{},
		shaders: make(map[string]Shader, len(Programs)),
	}
	for _, opt := range options {
		opt(l)
	}

	for _, key := range Programs {
		if _, err := l.Reload(key); err != nil {
			return nil, err
		}
	}
	return l, nil
}

func (l *library) Shader(key string) (Shader, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.shaders[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProgram, key)
	}
	return s, nil
}

func (l *library) Reload(key string) (Shader, error) {
	source, err := l.readSource(key)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	version := 1
	if prev, ok := l.shaders[key]; ok {
		version = prev.Version() + 1
	}
	s, err := NewShader(key, source, version)
	if err != nil {
		return nil, err
	}
	l.shaders[key] = s
	return s, nil
}

func (l *library) Keys() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	keys := make([]string, 0, len(l.shaders))
	for k := range l.shaders {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func (l *library) OverrideDir() string {
	return l.overrideDir
}

func (l *library) KeyForPath(path string) (string, bool) {
	if filepath.Ext(path) != ".wgsl" {
		return "", false
	}
	key := strings.TrimSuffix(filepath.Base(path), ".wgsl")
	return key, slices.Contains(Programs, key)
}

// readSource prefers the override directory and falls back to the embedded copy.
func (l *library) readSource(key string) (string, error) {
	if l.overrideDir != "" {
		data, err := os.ReadFile(filepath.Join(l.overrideDir, key+".wgsl"))
		if err == nil {
			return string(data), nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("shader %s: %w", key, err)
		}
	}
	data, err := programFS.ReadFile("assets/" + key + ".wgsl")
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownProgram, key)
	}
	return string(data), nil
}
