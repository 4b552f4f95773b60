package track

import (
	stdmath "math"

	"github.com/Faultbox/midgard-tracks/pkg/math"
)

// Side selects one half of a mirrored road cross-section.
//
// Sides are named after the frame axes, not the driver: SideRight lies
// along the node's Right() axis (local +X, up × forward). With Y up and
// Z forward that is the driver's left hand.
type Side int

// Road sides. The left side is the right profile mirrored across X = 0.
const (
	SideRight Side = iota
	SideLeft
)

// String returns the side name.
func (s Side) String() string {
	if s == SideLeft {
		return "left"
	}
	return "right"
}

// Edge connects two profile vertices.
type Edge struct {
	A, B int
}

// Profile is the 2D half cross-section swept along a spline. It spans X in
// [0, 1] from the centerline outward. A flat variant and a banked variant
// are kept side by side and blended by a curvature weight.
type Profile struct {
	Vertices       []math.Vec2
	Normals        []math.Vec2
	CurvedVertices []math.Vec2
	CurvedNormals  []math.Vec2
	U              []float32
	Edges          []Edge

	bankAngle  float32
	sides      int
	resolution int
}

// NewProfile creates an uninitialized profile whose banked variant rises
// through bankAngle radians at the outer edge.
func NewProfile(bankAngle float32) *Profile {
	return &Profile{bankAngle: bankAngle}
}

// Initialize rebuilds the profile for the given side count and resolution.
// Resolutions below 1 are treated as 1. Repeated calls with the same
// arguments keep the existing arrays.
func (p *Profile) Initialize(sides, resolution int) {
	if resolution < 1 {
		resolution = 1
	}
	if sides < 1 {
		sides = 1
	}
	if sides > 2 {
		sides = 2
	}
	if p.sides == sides && p.resolution == resolution && len(p.Vertices) > 0 {
		return
	}
	p.sides = sides
	p.resolution = resolution

	n := resolution + 1
	p.Vertices = make([]math.Vec2, n)
	p.Normals = make([]math.Vec2, n)
	p.CurvedVertices = make([]math.Vec2, n)
	p.CurvedNormals = make([]math.Vec2, n)
	p.U = make([]float32, n)
	p.Edges = make([]Edge, resolution)

	// The banked variant is an arc of unit length so both variants span the
	// same surface width.
	radius := float32(0)
	if p.bankAngle > math.Epsilon {
		radius = 1 / p.bankAngle
	}

	for i := range n {
		f := float32(i) / float32(resolution)
		p.Vertices[i] = math.Vec2{X: f}
		p.Normals[i] = math.Vec2{Y: 1}

		if radius == 0 {
			p.CurvedVertices[i] = p.Vertices[i]
			p.CurvedNormals[i] = p.Normals[i]
		} else {
			theta := float64(f * p.bankAngle)
			sin := float32(stdmath.Sin(theta))
			cos := float32(stdmath.Cos(theta))
			p.CurvedVertices[i] = math.Vec2{X: radius * sin, Y: radius * (1 - cos)}
			p.CurvedNormals[i] = math.Vec2{X: -sin, Y: cos}
		}

		if sides == 2 {
			p.U[i] = 0.5 + 0.5*f
		} else {
			p.U[i] = f
		}
	}

	for i := range resolution {
		p.Edges[i] = Edge{A: i, B: i + 1}
	}
}

// Sides returns the side count of the last Initialize call.
func (p *Profile) Sides() int {
	return p.sides
}

// Resolution returns the segment count of the last Initialize call.
func (p *Profile) Resolution() int {
	return p.resolution
}

// VertexCount returns the number of vertices per profile ring.
func (p *Profile) VertexCount() int {
	return len(p.Vertices)
}

// EdgeCount returns the number of edges per profile ring.
func (p *Profile) EdgeCount() int {
	return len(p.Edges)
}

// Blend returns vertex i interpolated between the flat and banked variants.
// The curvature weight is clamped to [0, 1].
func (p *Profile) Blend(i int, curvature float32) (vertex, normal math.Vec2) {
	c := math.Clamp(curvature, 0, 1)
	vertex = p.Vertices[i].Lerp(p.CurvedVertices[i], c)
	normal = p.Normals[i].Lerp(p.CurvedNormals[i], c).Normalize()
	return vertex, normal
}
