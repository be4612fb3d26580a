package input

// DocumentBuilderOption is a functional option for configuring a Document.
type DocumentBuilderOption func(*Document)

// WithScrollStep sets the distance one wheel notch scrolls. Non-positive values are ignored.
//
// Parameters:
//   - step: pixels per notch
//
// Returns:
//   - DocumentBuilderOption: option function to apply
func WithScrollStep(step float64) DocumentBuilderOption {
	return func(d *Document) {
		if step > 0 {
			d.step = step
		}
	}
}

// WithViewportHeight sets the initial visible height.
//
// Parameters:
//   - height: the viewport height in logical pixels
//
// Returns:
//   - DocumentBuilderOption: option function to apply
func WithViewportHeight(height float64) DocumentBuilderOption {
	return func(d *Document) {
		d.viewportHeight = max(height, 0)
	}
}
