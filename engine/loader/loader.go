// Package loader reads the static assets of the scene (line data, baked texture and model)
// on a worker pool and hands the results back as awaitable tasks.
package loader

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/scrollbot/common"
)

// LoadError wraps an asset failure with the asset kind and path.
type LoadError struct {
	Kind string
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loader: load %s %s: %v", e.Kind, e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// loader is the implementation of the Loader interface.
type loader struct {
	mu      *sync.Mutex
	pool    worker.DynamicWorkerPool
	workers int
	logger  *slog.Logger
	decoder MeshDecoder
	backend loaderBackend
	models  map[string]*Task[*Model]
}

// Loader loads assets asynchronously. Every Load* call returns immediately with a task;
// the work runs on the loader's worker pool.
type Loader interface {
	// LoadLines reads and validates the line data JSON file.
	//
	// Parameters:
	//   - path: the file path
	//
	// Returns:
	//   - *Task[*Lines]: the pending lines
	LoadLines(path string) *Task[*Lines]

	// LoadTexture reads and decodes an image as an sRGB color texture without vertical flip.
	//
	// Parameters:
	//   - path: the file path
	//
	// Returns:
	//   - *Task[*common.TextureStagingData]: the pending pixels
	LoadTexture(path string) *Task[*common.TextureStagingData]

	// LoadModel imports a .glb/.gltf model. Repeated calls for the same path share one task.
	//
	// Parameters:
	//   - path: the file path
	//
	// Returns:
	//   - *Task[*Model]: the pending model
	LoadModel(path string) *Task[*Model]

	// LoadModelReader imports a model from a stream.
	//
	// Parameters:
	//   - name: the model name
	//   - r: the reader providing glTF JSON or GLB data
	//
	// Returns:
	//   - *Task[*Model]: the pending model
	LoadModelReader(name string, r io.Reader) *Task[*Model]

	// Release stops the worker pool. Pending tasks may never complete afterwards.
	Release()
}

var _ Loader = &loader{}

// NewLoader creates a Loader backed by a worker pool.
//
// Parameters:
//   - options: functional options to configure the Loader
//
// Returns:
//   - Loader: the new loader
func NewLoader(options ...LoaderBuilderOption) Loader {
	l := &loader{
		mu:      &sync.Mutex{},
		workers: max(runtime.NumCPU()-1, 1),
		logger:  slog.Default(),
		models:  make(map[string]*Task[*Model]),
	}
	for _, opt := range options {
		opt(l)
	}
	if l.decoder == nil {
		l.decoder = NewMeshDecoder()
	}
	l.backend = newGLTFLoaderBackend(l.decoder)
	l.pool = worker.NewDynamicWorkerPool(l.workers, 256, 1*time.Second)
	return l
}

func (l *loader) LoadLines(path string) *Task[*Lines] {
	return run(l, "lines", path, func() (*Lines, error) {
		return readLines(path)
	})
}

func (l *loader) LoadTexture(path string) *Task[*common.TextureStagingData] {
	return run(l, "texture", path, func() (*common.TextureStagingData, error) {
		img := &common.ImageTexture{Path: path, FlipY: false, SRGB: true}
		tex, err := img.Decode()
		if err != nil {
			return nil, err
		}
		return &tex, nil
	})
}

func (l *loader) LoadModel(path string) *Task[*Model] {
	l.mu.Lock()
	defer l.mu.Unlock()
	if t, ok := l.models[path]; ok {
		return t
	}

	var t *Task[*Model]
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".gltf", ".glb":
		t = run(l, "model", path, func() (*Model, error) {
			return l.backend.Load(path)
		})
	default:
		t = Resolved[*Model](nil, &LoadError{Kind: "model", Path: path, Err: fmt.Errorf("unsupported model format %q", ext)})
	}
	l.models[path] = t
	return t
}

func (l *loader) LoadModelReader(name string, r io.Reader) *Task[*Model] {
	return run(l, "model", name, func() (*Model, error) {
		return l.backend.LoadReader(name, r)
	})
}

func (l *loader) Release() {
	l.pool.Stop()
}

// run submits fn to the pool, timing it and converting failures and panics into *LoadError.
func run[T any](l *loader, kind, path string, fn func() (T, error)) *Task[T] {
	return submit(l.pool, func() (value T, err error) {
		start := time.Now()
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
			if err != nil {
				err = &LoadError{Kind: kind, Path: path, Err: err}
				l.logger.Debug("asset load failed", "kind", kind, "path", path, "error", err)
				return
			}
			l.logger.Info("asset loaded", "kind", kind, "path", path, "duration", time.Since(start))
		}()
		return fn()
	})
}
