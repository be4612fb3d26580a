package stage

import (
	"errors"
	"math"
)

// ReactiveRange is the reactive length reached when the document is scrolled by its full height.
const ReactiveRange = 75.0

var (
	// ErrInvalidClientHeight is returned when the document height is zero, negative or not finite.
	ErrInvalidClientHeight = errors.New("stage: client height must be positive")
	// ErrInvalidScrollOffset is returned when the scroll offset is not finite.
	ErrInvalidScrollOffset = errors.New("stage: scroll offset must be finite")
)

// ReactiveLength maps the scroll position to the distance along the lines that reacts to it:
// (scrollY / clientHeight) * ReactiveRange.
//
// Parameters:
//   - scrollY: the scroll offset
//   - clientHeight: the document height
//
// Returns:
//   - float32: the reactive length
//   - error: ErrInvalidClientHeight or ErrInvalidScrollOffset; the result is then 0
func ReactiveLength(scrollY, clientHeight float64) (float32, error) {
	if !(clientHeight > 0) || math.IsInf(clientHeight, 0) {
		return 0, ErrInvalidClientHeight
	}
	if math.IsNaN(scrollY) || math.IsInf(scrollY, 0) {
		return 0, ErrInvalidScrollOffset
	}
	return float32(scrollY / clientHeight * ReactiveRange), nil
}
