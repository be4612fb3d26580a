package loader

import "log/slog"

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithWorkers sets the number of pool workers. Values <= 0 keep the default of NumCPU-1.
//
// Parameters:
//   - n: the worker count
//
// Returns:
//   - LoaderBuilderOption: a function that applies the option to a loader
func WithWorkers(n int) LoaderBuilderOption {
	return func(l *loader) {
		if n > 0 {
			l.workers = n
		}
	}
}

// WithLogger sets the logger used for load timings and failures.
//
// Parameters:
//   - logger: the logger
//
// Returns:
//   - LoaderBuilderOption: a function that applies the option to a loader
func WithLogger(logger *slog.Logger) LoaderBuilderOption {
	return func(l *loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithModel pre-populates the model cache, so LoadModel(key) resolves without touching disk.
//
// Parameters:
//   - key: the path the model is registered under
//   - m: the model
//
// Returns:
//   - LoaderBuilderOption: a function that applies the option to a loader
func WithModel(key string, m *Model) LoaderBuilderOption {
	return func(l *loader) {
		l.models[key] = Resolved(m, nil)
	}
}

// WithMeshDecoder replaces the Draco decoder used for KHR_draco_mesh_compression primitives.
//
// Parameters:
//   - d: the decoder
//
// Returns:
//   - LoaderBuilderOption: a function that applies the option to a loader
func WithMeshDecoder(d MeshDecoder) LoaderBuilderOption {
	return func(l *loader) {
		l.decoder = d
	}
}
