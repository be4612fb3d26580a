//go:build !cgo

package loader

import (
	"fmt"

	"github.com/qmuntal/gltf"
)

// unavailableDecoder reports every compressed primitive as undecodable.
type unavailableDecoder struct{}

// NewMeshDecoder returns a decoder that always fails: the Draco library needs cgo.
//
// Returns:
//   - MeshDecoder: the decoder
func NewMeshDecoder() MeshDecoder {
	return unavailableDecoder{}
}

func (unavailableDecoder) DecodeMesh([]byte, gltf.Attribute) (*DecodedMesh, error) {
	return nil, fmt.Errorf("%w: built without cgo", ErrCompressedPrimitive)
}
