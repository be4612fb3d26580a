package scene

// Layer indices used by the compositor.
const (
	// LayerBase is the layer rendered by the direct, un-bloomed pass.
	LayerBase = 0
	// LayerBloom is the layer isolated by the bloom pass.
	LayerBloom = 1
)

// Layers is a 32-bit membership mask. A node is drawn by a camera when the two masks share at least one bit.
// The zero value has no layer enabled; NewLayers returns a mask with only layer 0 enabled.
type Layers struct {
	mask uint32
}

// NewLayers returns a mask containing only the base layer.
//
// Returns:
//   - Layers: the new mask
func NewLayers() Layers {
	return Layers{mask: 1 << LayerBase}
}

// Set makes the mask contain exactly the given layer.
//
// Parameters:
//   - layer: the layer index in [0, 31]
func (l *Layers) Set(layer int) {
	l.mask = bit(layer)
}

// Enable adds the given layer to the mask.
func (l *Layers) Enable(layer int) {
	l.mask |= bit(layer)
}

// Disable removes the given layer from the mask.
func (l *Layers) Disable(layer int) {
	l.mask &^= bit(layer)
}

// EnableAll adds every layer to the mask.
func (l *Layers) EnableAll() {
	l.mask = ^uint32(0)
}

// DisableAll clears the mask.
func (l *Layers) DisableAll() {
	l.mask = 0
}

// Test reports whether the two masks share at least one layer.
//
// Parameters:
//   - other: the mask to test against
//
// Returns:
//   - bool: true if any layer is enabled in both
func (l Layers) Test(other Layers) bool {
	return l.mask&other.mask != 0
}

// IsEnabled reports whether the given layer is in the mask.
func (l Layers) IsEnabled(layer int) bool {
	return l.mask&bit(layer) != 0
}

// Mask returns the raw bit mask.
func (l Layers) Mask() uint32 {
	return l.mask
}

func bit(layer int) uint32 {
	if layer < 0 || layer > 31 {
		return 0
	}
	return 1 << uint(layer)
}
