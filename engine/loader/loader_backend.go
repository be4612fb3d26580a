package loader

import "io"

// loaderBackend defines the format-specific half of model loading.
type loaderBackend interface {
	// Load imports a model from the given file path.
	//
	// Parameters:
	//   - path: the file path to load
	//
	// Returns:
	//   - *Model: the imported model
	//   - error: error if loading fails
	Load(path string) (*Model, error)

	// LoadReader imports a model from a reader stream.
	//
	// Parameters:
	//   - name: the name given to the model root
	//   - r: the reader providing model data
	//
	// Returns:
	//   - *Model: the imported model
	//   - error: error if loading fails
	LoadReader(name string, r io.Reader) (*Model, error)
}
