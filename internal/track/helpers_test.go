package track

import (
	stdmath "math"
	"testing"

	"github.com/Faultbox/midgard-tracks/pkg/math"
)

func near(a, b, tol float32) bool {
	return stdmath.Abs(float64(a-b)) <= float64(tol)
}

func vecNear(a, b math.Vec3, tol float32) bool {
	return near(a.X, b.X, tol) && near(a.Y, b.Y, tol) && near(a.Z, b.Z, tol)
}

func toVec3(a [3]float32) math.Vec3 {
	return math.Vec3{X: a[0], Y: a[1], Z: a[2]}
}

// testSettings mirrors the defaults with a coarser profile.
func testSettings() Settings {
	s := DefaultSettings()
	s.HorizontalResolution = 4
	return s
}

// straightSpline returns a spline from the origin to (0, 0, 20) with
// handles of 20/3 along +Z.
func straightSpline() (*NodeArena, *Spline) {
	arena := &NodeArena{}
	handle := float32(20.0 / 3.0)
	a := arena.Insert(NewNode(math.Vec3{}, math.QuatIdentity(), handle))
	b := arena.Insert(NewNode(math.Vec3{Z: 20}, math.QuatIdentity(), handle))
	return arena, NewSpline(arena, a, b)
}

// checkWinding verifies every triangle's geometric normal agrees with the
// averaged vertex normal.
func checkWinding(t *testing.T, m *Mesh) {
	t.Helper()
	for i := 0; i+2 < len(m.Indices); i += 3 {
		v0 := m.Vertices[m.Indices[i]]
		v1 := m.Vertices[m.Indices[i+1]]
		v2 := m.Vertices[m.Indices[i+2]]
		p0, p1, p2 := toVec3(v0.Position), toVec3(v1.Position), toVec3(v2.Position)
		face := p1.Sub(p0).Cross(p2.Sub(p0))
		if face.Length() < 1e-6 {
			continue
		}
		n := toVec3(v0.Normal).Add(toVec3(v1.Normal)).Add(toVec3(v2.Normal))
		if face.Dot(n) <= 0 {
			t.Fatalf("triangle %d winds against its normals: face %v, normal %v", i/3, face, n)
		}
	}
}
