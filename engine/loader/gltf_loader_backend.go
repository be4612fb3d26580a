package loader

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/scrollbot/engine/geometry"
	"github.com/Carmen-Shannon/scrollbot/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// gltfLoaderBackendImpl is the implementation of gltfLoaderBackend.
type gltfLoaderBackendImpl struct {
	decoder MeshDecoder
}

// gltfLoaderBackend is a loaderBackend implementation for glTF/GLB files built on qmuntal/gltf.
type gltfLoaderBackend interface {
	loaderBackend
}

var _ gltfLoaderBackend = &gltfLoaderBackendImpl{}

// newGLTFLoaderBackend creates a new glTF loader backend.
//
// Parameters:
//   - decoder: decodes Draco-compressed primitives
//
// Returns:
//   - gltfLoaderBackend: the loader backend for glTF/GLB files
func newGLTFLoaderBackend(decoder MeshDecoder) gltfLoaderBackend {
	return &gltfLoaderBackendImpl{decoder: decoder}
}

func (b *gltfLoaderBackendImpl) Load(path string) (*Model, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return ModelFromDocument(name, doc, b.decoder)
}

func (b *gltfLoaderBackendImpl) LoadReader(name string, r io.Reader) (*Model, error) {
	doc := new(gltf.Document)
	if err := gltf.NewDecoder(r).Decode(doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return ModelFromDocument(name, doc, b.decoder)
}

// ModelFromDocument converts a decoded glTF document into a node hierarchy.
// The default scene (or the first scene) is imported. Each node becomes a scene.Node with its
// local transform. A mesh with one primitive is attached to the node itself; a mesh with several
// primitives gets one child node per primitive. KHR_draco_mesh_compression primitives are
// decoded with decoder, or NewMeshDecoder() when it is nil.
//
// Parameters:
//   - name: the fallback model name
//   - doc: the decoded document
//   - decoder: the Draco decoder, may be nil
//
// Returns:
//   - *Model: the imported model
//   - error: an error if the document has no scene or a primitive cannot be read or decoded
func ModelFromDocument(name string, doc *gltf.Document, decoder MeshDecoder) (*Model, error) {
	if len(doc.Scenes) == 0 {
		return nil, fmt.Errorf("%s: document has no scene", name)
	}
	if decoder == nil {
		decoder = NewMeshDecoder()
	}
	sceneIndex := 0
	if doc.Scene != nil && int(*doc.Scene) < len(doc.Scenes) {
		sceneIndex = int(*doc.Scene)
	}
	gs := doc.Scenes[sceneIndex]
	if gs.Name != "" {
		name = gs.Name
	}

	m := &Model{Name: name, Root: scene.NewNode(name)}
	imp := &gltfImport{doc: doc, decoder: decoder, model: m, visiting: make(map[int]bool)}
	for _, idx := range gs.Nodes {
		n, err := imp.node(int(idx))
		if err != nil {
			return nil, err
		}
		m.Root.Add(n)
	}
	return m, nil
}

// gltfImport carries the state of one document conversion.
type gltfImport struct {
	doc      *gltf.Document
	decoder  MeshDecoder
	model    *Model
	geometry map[int][]*geometry.Geometry
	visiting map[int]bool
}

func (imp *gltfImport) node(idx int) (*scene.Node, error) {
	if idx < 0 || idx >= len(imp.doc.Nodes) {
		return nil, fmt.Errorf("node index %d out of range", idx)
	}
	if imp.visiting[idx] {
		return nil, fmt.Errorf("node %d: cycle in node hierarchy", idx)
	}
	imp.visiting[idx] = true
	defer delete(imp.visiting, idx)

	gn := imp.doc.Nodes[idx]
	name := gn.Name
	if name == "" {
		name = fmt.Sprintf("node_%d", idx)
	}
	pos, rot, scale := nodeTransform(gn)
	n := scene.NewNode(name, scene.WithPosition(pos), scene.WithRotation(rot), scene.WithScale(scale))

	if gn.Mesh != nil {
		geoms, err := imp.mesh(int(*gn.Mesh))
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", name, err)
		}
		switch len(geoms) {
		case 0:
		case 1:
			scene.WithMesh(geoms[0], nil)(n)
			imp.model.MeshCount++
		default:
			for i, g := range geoms {
				n.Add(scene.NewNode(fmt.Sprintf("%s_%d", name, i), scene.WithMesh(g, nil)))
				imp.model.MeshCount++
			}
		}
	}

	for _, c := range gn.Children {
		child, err := imp.node(int(c))
		if err != nil {
			return nil, err
		}
		n.Add(child)
	}
	return n, nil
}

// mesh reads every primitive of a mesh once; nodes sharing a mesh share its geometry.
func (imp *gltfImport) mesh(idx int) ([]*geometry.Geometry, error) {
	if g, ok := imp.geometry[idx]; ok {
		return g, nil
	}
	if idx < 0 || idx >= len(imp.doc.Meshes) {
		return nil, fmt.Errorf("mesh index %d out of range", idx)
	}
	gm := imp.doc.Meshes[idx]
	var out []*geometry.Geometry
	for pi, prim := range gm.Primitives {
		label := fmt.Sprintf("%s/%d", gm.Name, pi)
		if prim.Mode != gltf.PrimitiveTriangles {
			imp.model.Warnings = append(imp.model.Warnings, fmt.Errorf("mesh %q primitive %d: skipped non-triangle mode %v", gm.Name, pi, prim.Mode))
			continue
		}
		var g *geometry.Geometry
		var err error
		if ext, ok := prim.Extensions[ExtDracoMeshCompression]; ok {
			g, err = imp.compressed(label, ext)
		} else {
			g, err = readPrimitive(imp.doc, label, prim)
		}
		if err != nil {
			return nil, fmt.Errorf("mesh %q primitive %d: %w", gm.Name, pi, err)
		}
		out = append(out, g)
	}
	if imp.geometry == nil {
		imp.geometry = make(map[int][]*geometry.Geometry)
	}
	imp.geometry[idx] = out
	return out, nil
}

// compressed decodes a Draco primitive; a decoder failure is wrapped with ErrCompressedPrimitive.
func (imp *gltfImport) compressed(label string, ext any) (*geometry.Geometry, error) {
	mesh, err := decodeCompressedPrimitive(imp.doc, imp.decoder, ext)
	if err != nil {
		if errors.Is(err, ErrCompressedPrimitive) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrCompressedPrimitive, err)
	}
	return buildGeometry(label, mesh.Positions, mesh.Normals, mesh.UVs, mesh.Indices), nil
}

func readPrimitive(doc *gltf.Document, label string, prim *gltf.Primitive) (*geometry.Geometry, error) {
	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil, fmt.Errorf("no POSITION attribute")
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return nil, fmt.Errorf("read positions: %w", err)
	}

	var normals [][3]float32
	if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
		if normals, err = modeler.ReadNormal(doc, doc.Accessors[idx], nil); err != nil {
			return nil, fmt.Errorf("read normals: %w", err)
		}
	}
	var uvs [][2]float32
	if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		if uvs, err = modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil); err != nil {
			return nil, fmt.Errorf("read texture coordinates: %w", err)
		}
	}

	var indices []uint32
	if prim.Indices != nil {
		if indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil); err != nil {
			return nil, fmt.Errorf("read indices: %w", err)
		}
	}
	return buildGeometry(label, positions, normals, uvs, indices), nil
}

// buildGeometry interleaves vertex attributes. Missing normals default to +Y; nil indices draw the
// vertices in order.
func buildGeometry(label string, positions, normals [][3]float32, uvs [][2]float32, indices []uint32) *geometry.Geometry {
	vertices := make([]geometry.Vertex, len(positions))
	for i, p := range positions {
		v := geometry.Vertex{Position: p, Normal: [3]float32{0, 1, 0}}
		if i < len(normals) {
			v.Normal = normals[i]
		}
		if i < len(uvs) {
			v.UV = uvs[i]
		}
		vertices[i] = v
	}

	if indices == nil {
		indices = make([]uint32, len(positions))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}
	return geometry.NewGeometry(label, vertices, indices)
}

// nodeTransform returns the local TRS of a node, decomposing the matrix form when it is used.
func nodeTransform(n *gltf.Node) ([3]float32, [4]float32, [3]float32) {
	if n.Matrix != [16]float64{} && n.Matrix != gltf.DefaultMatrix {
		var m mgl32.Mat4
		for i, v := range n.Matrix {
			m[i] = float32(v)
		}
		t := m.Col(3).Vec3()
		s := mgl32.Vec3{m.Col(0).Vec3().Len(), m.Col(1).Vec3().Len(), m.Col(2).Vec3().Len()}
		rot := mgl32.Mat4{}
		for c := range 3 {
			col := m.Col(c).Vec3()
			if s[c] != 0 {
				col = col.Mul(1 / s[c])
			}
			rot.SetCol(c, col.Vec4(0))
		}
		rot.SetCol(3, mgl32.Vec4{0, 0, 0, 1})
		q := mgl32.Mat4ToQuat(rot).Normalize()
		return [3]float32(t), [4]float32{q.V[0], q.V[1], q.V[2], q.W}, [3]float32(s)
	}

	t := n.TranslationOrDefault()
	r := n.RotationOrDefault()
	s := n.ScaleOrDefault()
	return [3]float32{float32(t[0]), float32(t[1]), float32(t[2])},
		[4]float32{float32(r[0]), float32(r[1]), float32(r[2]), float32(r[3])},
		[3]float32{float32(s[0]), float32(s[1]), float32(s[2])}
}
