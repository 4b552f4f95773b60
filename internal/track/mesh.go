// Package track builds extruded road geometry from Bezier node graphs.
package track

import "github.com/Faultbox/midgard-tracks/pkg/formats"

// Vertex represents a track mesh vertex.
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
	TexCoord [2]float32
}

// Mesh is the extruded geometry of one spline.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
	Bounds   Bounds

	// Object is the host object carrying this mesh.
	Object ObjectID
	// Version increments on every rebuild.
	Version uint64
}

// Bounds holds an axis-aligned bounding box.
type Bounds struct {
	Min [3]float32
	Max [3]float32
}

func emptyBounds() Bounds {
	return Bounds{
		Min: [3]float32{1e10, 1e10, 1e10},
		Max: [3]float32{-1e10, -1e10, -1e10},
	}
}

// Empty reports whether no point has been added.
func (b Bounds) Empty() bool {
	return b.Min[0] > b.Max[0]
}

// Extend grows b to include p.
func (b *Bounds) Extend(p [3]float32) {
	for i := range 3 {
		if p[i] < b.Min[i] {
			b.Min[i] = p[i]
		}
		if p[i] > b.Max[i] {
			b.Max[i] = p[i]
		}
	}
}

// Union grows b to include other.
func (b *Bounds) Union(other Bounds) {
	if other.Empty() {
		return
	}
	b.Extend(other.Min)
	b.Extend(other.Max)
}

// Center returns the box midpoint.
func (b Bounds) Center() [3]float32 {
	return [3]float32{
		(b.Min[0] + b.Max[0]) / 2,
		(b.Min[1] + b.Max[1]) / 2,
		(b.Min[2] + b.Max[2]) / 2,
	}
}

// Size returns the box extents.
func (b Bounds) Size() [3]float32 {
	return [3]float32{b.Max[0] - b.Min[0], b.Max[1] - b.Min[1], b.Max[2] - b.Min[2]}
}

// Clear drops all geometry.
func (m *Mesh) Clear() {
	m.Vertices = nil
	m.Indices = nil
	m.Bounds = emptyBounds()
	m.Version++
}

// Set replaces the mesh contents and recomputes its bounds.
func (m *Mesh) Set(vertices []Vertex, indices []uint32) {
	m.Clear()
	m.Vertices = vertices
	m.Indices = indices
	for i := range vertices {
		m.Bounds.Extend(vertices[i].Position)
	}
}

// TriangleCount returns the number of indexed triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// OBJ converts the mesh for Wavefront export.
func (m *Mesh) OBJ(name string) formats.OBJMesh {
	out := formats.OBJMesh{
		Name:      name,
		Positions: make([][3]float32, len(m.Vertices)),
		Normals:   make([][3]float32, len(m.Vertices)),
		UVs:       make([][2]float32, len(m.Vertices)),
		Indices:   m.Indices,
	}
	for i, v := range m.Vertices {
		out.Positions[i] = v.Position
		out.Normals[i] = v.Normal
		out.UVs[i] = v.TexCoord
	}
	return out
}
