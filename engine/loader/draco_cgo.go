//go:build cgo

package loader

import (
	"fmt"

	"github.com/qmuntal/draco-go/draco"
	"github.com/qmuntal/gltf"
)

// dracoDecoder decodes Draco payloads with the native Draco library.
type dracoDecoder struct{}

var _ MeshDecoder = &dracoDecoder{}

// NewMeshDecoder returns the Draco decoder linked into this build.
//
// Returns:
//   - MeshDecoder: the decoder
func NewMeshDecoder() MeshDecoder {
	return &dracoDecoder{}
}

func (d *dracoDecoder) DecodeMesh(data []byte, attributes gltf.Attribute) (*DecodedMesh, error) {
	m := draco.NewMesh()
	if err := draco.NewDecoder().DecodeMesh(data, m); err != nil {
		return nil, fmt.Errorf("draco: %w", err)
	}
	n := int(m.NumPoints())

	out := &DecodedMesh{Indices: m.Faces(nil)}
	pos, err := dracoFloats(m, attributes, gltf.POSITION, n, 3)
	if err != nil {
		return nil, err
	}
	out.Positions = make([][3]float32, n)
	for i := range out.Positions {
		copy(out.Positions[i][:], pos[i*3:])
	}

	if _, ok := attributes[gltf.NORMAL]; ok {
		nrm, err := dracoFloats(m, attributes, gltf.NORMAL, n, 3)
		if err != nil {
			return nil, err
		}
		out.Normals = make([][3]float32, n)
		for i := range out.Normals {
			copy(out.Normals[i][:], nrm[i*3:])
		}
	}
	if _, ok := attributes[gltf.TEXCOORD_0]; ok {
		uv, err := dracoFloats(m, attributes, gltf.TEXCOORD_0, n, 2)
		if err != nil {
			return nil, err
		}
		out.UVs = make([][2]float32, n)
		for i := range out.UVs {
			copy(out.UVs[i][:], uv[i*2:])
		}
	}
	return out, nil
}

// dracoFloats reads one attribute as n*components float32 values.
func dracoFloats(m *draco.Mesh, attributes gltf.Attribute, semantic string, n, components int) ([]float32, error) {
	attr := m.AttrByUniqueID(attributes[semantic])
	if attr == nil {
		return nil, fmt.Errorf("draco: no attribute %d for %s", attributes[semantic], semantic)
	}
	data, ok := m.AttrData(attr, make([]float32, n*components))
	if !ok {
		return nil, fmt.Errorf("draco: read %s", semantic)
	}
	values, ok := data.([]float32)
	if !ok || len(values) < n*components {
		return nil, fmt.Errorf("draco: %s has %d components, want %d", semantic, len(values)/max(n, 1), components)
	}
	return values, nil
}
