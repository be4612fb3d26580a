package input

// StateBuilderOption is a functional option for configuring a State.
type StateBuilderOption func(*State)

// WithViewport seeds the viewport metrics without notifying listeners.
//
// Parameters:
//   - width: the viewport width in logical pixels
//   - height: the viewport height in logical pixels
//   - pixelRatio: the device pixel ratio
//
// Returns:
//   - StateBuilderOption: option function to apply
func WithViewport(width, height int, pixelRatio float64) StateBuilderOption {
	return func(s *State) {
		s.snap.Width, s.snap.Height = width, height
		if pixelRatio > 0 {
			s.snap.PixelRatio = pixelRatio
		}
	}
}

// WithClientHeight seeds the document height.
//
// Parameters:
//   - height: the document height in logical pixels
//
// Returns:
//   - StateBuilderOption: option function to apply
func WithClientHeight(height float64) StateBuilderOption {
	return func(s *State) {
		s.snap.ClientHeight = height
	}
}
