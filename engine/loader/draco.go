package loader

import (
	"encoding/json"
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// ExtDracoMeshCompression is the glTF extension name of Draco-compressed primitives.
const ExtDracoMeshCompression = "KHR_draco_mesh_compression"

// DecodedMesh is the vertex data recovered from a compressed primitive.
type DecodedMesh struct {
	Positions [][3]float32
	Normals   [][3]float32
	UVs       [][2]float32
	Indices   []uint32
}

// MeshDecoder decodes the payload of a KHR_draco_mesh_compression primitive.
type MeshDecoder interface {
	// DecodeMesh decodes a compressed buffer view.
	//
	// Parameters:
	//   - data: the bytes of the buffer view named by the extension
	//   - attributes: glTF attribute semantic to Draco attribute unique id
	//
	// Returns:
	//   - *DecodedMesh: the triangle list; Positions and Indices are always set
	//   - error: an error if the payload cannot be decoded
	DecodeMesh(data []byte, attributes gltf.Attribute) (*DecodedMesh, error)
}

// dracoExtension is the extension object of a compressed primitive.
type dracoExtension struct {
	BufferView uint32         `json:"bufferView"`
	Attributes gltf.Attribute `json:"attributes"`
}

// parseDracoExtension reads the extension object. Unregistered extensions are decoded by gltf as
// json.RawMessage; documents built in memory may carry any JSON-marshalable value instead.
func parseDracoExtension(v any) (*dracoExtension, error) {
	var raw []byte
	switch ext := v.(type) {
	case *dracoExtension:
		return ext, nil
	case json.RawMessage:
		raw = ext
	case []byte:
		raw = ext
	default:
		var err error
		if raw, err = json.Marshal(ext); err != nil {
			return nil, fmt.Errorf("encode %s: %w", ExtDracoMeshCompression, err)
		}
	}
	ext := new(dracoExtension)
	if err := json.Unmarshal(raw, ext); err != nil {
		return nil, fmt.Errorf("decode %s: %w", ExtDracoMeshCompression, err)
	}
	if _, ok := ext.Attributes[gltf.POSITION]; !ok {
		return nil, fmt.Errorf("%s: no POSITION attribute", ExtDracoMeshCompression)
	}
	return ext, nil
}

// decodeCompressedPrimitive decodes the buffer view referenced by the primitive's Draco extension.
func decodeCompressedPrimitive(doc *gltf.Document, decoder MeshDecoder, v any) (*DecodedMesh, error) {
	ext, err := parseDracoExtension(v)
	if err != nil {
		return nil, err
	}
	if int(ext.BufferView) >= len(doc.BufferViews) {
		return nil, fmt.Errorf("buffer view index %d out of range", ext.BufferView)
	}
	data, err := modeler.ReadBufferView(doc, doc.BufferViews[ext.BufferView])
	if err != nil {
		return nil, fmt.Errorf("read buffer view %d: %w", ext.BufferView, err)
	}
	mesh, err := decoder.DecodeMesh(data, ext.Attributes)
	if err != nil {
		return nil, err
	}
	if len(mesh.Positions) == 0 {
		return nil, fmt.Errorf("%s: decoded mesh has no positions", ExtDracoMeshCompression)
	}
	for _, i := range mesh.Indices {
		if int(i) >= len(mesh.Positions) {
			return nil, fmt.Errorf("%s: index %d out of range", ExtDracoMeshCompression, i)
		}
	}
	return mesh, nil
}
