// Package geometry holds indexed triangle meshes and the curve and tube generators that produce them.
package geometry

import (
	"unsafe"

	"github.com/Carmen-Shannon/scrollbot/common"
	"github.com/chewxy/math32"
	"github.com/google/uuid"
)

// Vertex is the interleaved vertex layout shared by every mesh program.
// Size: 32 bytes (position 0, normal 12, uv 24).
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
	UV       [2]float32
}

// VertexStride is the byte size of one Vertex in a vertex buffer.
const VertexStride = uint64(unsafe.Sizeof(Vertex{}))

// Geometry is an immutable indexed triangle mesh with a precomputed bounding sphere.
type Geometry struct {
	id       uuid.UUID
	label    string
	vertices []Vertex
	indices  []uint32

	center [3]float32
	radius float32
}

// NewGeometry creates a Geometry from vertex and index data and computes its bounding sphere.
//
// Parameters:
//   - label: a debug label used for GPU resource names
//   - vertices: the vertex data
//   - indices: triangle list indices into vertices
//
// Returns:
//   - *Geometry: the new geometry
func NewGeometry(label string, vertices []Vertex, indices []uint32) *Geometry {
	g := &Geometry{
		id:       uuid.New(),
		label:    label,
		vertices: vertices,
		indices:  indices,
	}
	g.computeBoundingSphere()
	return g
}

// ID returns the unique identifier of the geometry.
func (g *Geometry) ID() uuid.UUID { return g.id }

// Label returns the debug label of the geometry.
func (g *Geometry) Label() string { return g.label }

// Vertices returns the vertex data. Callers must not modify it.
func (g *Geometry) Vertices() []Vertex { return g.vertices }

// Indices returns the index data. Callers must not modify it.
func (g *Geometry) Indices() []uint32 { return g.indices }

// VertexCount returns the number of vertices.
func (g *Geometry) VertexCount() int { return len(g.vertices) }

// IndexCount returns the number of indices.
func (g *Geometry) IndexCount() int { return len(g.indices) }

// VertexBytes returns a byte view of the vertex data for GPU upload.
func (g *Geometry) VertexBytes() []byte { return common.SliceToBytes(g.vertices) }

// IndexBytes returns a byte view of the index data for GPU upload.
func (g *Geometry) IndexBytes() []byte { return common.SliceToBytes(g.indices) }

// BoundingSphere returns the local-space bounding sphere.
//
// Returns:
//   - [3]float32: sphere center
//   - float32: sphere radius
func (g *Geometry) BoundingSphere() ([3]float32, float32) {
	return g.center, g.radius
}

// computeBoundingSphere centers the sphere on the AABB midpoint and takes the farthest vertex as radius.
func (g *Geometry) computeBoundingSphere() {
	if len(g.vertices) == 0 {
		return
	}
	lo := g.vertices[0].Position
	hi := lo
	for _, v := range g.vertices[1:] {
		for i := 0; i < 3; i++ {
			lo[i] = math32.Min(lo[i], v.Position[i])
			hi[i] = math32.Max(hi[i], v.Position[i])
		}
	}
	for i := 0; i < 3; i++ {
		g.center[i] = (lo[i] + hi[i]) / 2
	}
	var r2 float32
	for _, v := range g.vertices {
		dx := v.Position[0] - g.center[0]
		dy := v.Position[1] - g.center[1]
		dz := v.Position[2] - g.center[2]
		r2 = math32.Max(r2, dx*dx+dy*dy+dz*dz)
	}
	g.radius = math32.Sqrt(r2)
}
