package math

import (
	"math"
	"testing"
)

func vecNear(a, b Vec3, tol float32) bool {
	return absf(a.X-b.X) <= tol && absf(a.Y-b.Y) <= tol && absf(a.Z-b.Z) <= tol
}

func TestQuatIdentity(t *testing.T) {
	q := QuatIdentity()
	if q.X != 0 || q.Y != 0 || q.Z != 0 || q.W != 1 {
		t.Errorf("Identity quaternion should be (0,0,0,1), got (%v,%v,%v,%v)", q.X, q.Y, q.Z, q.W)
	}
	v := Vec3{1, 2, 3}
	if got := q.Rotate(v); got != v {
		t.Errorf("identity Rotate(%v) = %v", v, got)
	}
}

func TestQuatNormalize(t *testing.T) {
	q := Quat{X: 1, Y: 2, Z: 3, W: 4}
	n := q.Normalize()

	length := float32(math.Sqrt(float64(n.X*n.X + n.Y*n.Y + n.Z*n.Z + n.W*n.W)))
	if math.Abs(float64(length-1.0)) > 0.0001 {
		t.Errorf("Normalized quaternion length should be 1, got %v", length)
	}

	if z := (Quat{}).Normalize(); z != QuatIdentity() {
		t.Errorf("zero quaternion should normalize to identity, got %v", z)
	}
}

func TestQuatFromAxisAngle(t *testing.T) {
	// 90 degrees around Y axis
	q := QuatFromAxisAngle(Vec3{X: 0, Y: 1, Z: 0}, float32(math.Pi/2))

	expectedW := float32(math.Cos(math.Pi / 4))
	expectedY := float32(math.Sin(math.Pi / 4))

	if math.Abs(float64(q.W-expectedW)) > 0.001 {
		t.Errorf("QuatFromAxisAngle W: expected %v, got %v", expectedW, q.W)
	}
	if math.Abs(float64(q.Y-expectedY)) > 0.001 {
		t.Errorf("QuatFromAxisAngle Y: expected %v, got %v", expectedY, q.Y)
	}
}

func TestQuatRotate(t *testing.T) {
	q := QuatFromAxisAngle(Vec3Up, float32(math.Pi/2))

	if got := q.Rotate(Vec3Forward); !vecNear(got, Vec3Right, 1e-5) {
		t.Errorf("Rotate(+Z) = %v, want +X", got)
	}
	if got := q.Rotate(Vec3Right); !vecNear(got, Vec3{0, 0, -1}, 1e-5) {
		t.Errorf("Rotate(+X) = %v, want -Z", got)
	}
	if got := q.Conjugate().Rotate(Vec3Right); !vecNear(got, Vec3Forward, 1e-5) {
		t.Errorf("Conjugate().Rotate(+X) = %v, want +Z", got)
	}
}

func TestQuatToMat4MatchesRotate(t *testing.T) {
	q := QuatFromAxisAngle(Vec3{1, 1, 0}.Normalize(), 0.7)
	m := q.ToMat4()

	for _, v := range []Vec3{Vec3Right, Vec3Up, Vec3Forward, {1, -2, 3}} {
		want := q.Rotate(v)
		got := m.TransformVec3(v)
		if !vecNear(got, want, 1e-5) {
			t.Errorf("ToMat4 * %v = %v, Rotate = %v", v, got, want)
		}
	}
}

func TestQuatLookRotation(t *testing.T) {
	tests := []struct {
		name    string
		forward Vec3
		up      Vec3
		wantUp  Vec3
	}{
		{"identity", Vec3Forward, Vec3Up, Vec3Up},
		{"yaw right", Vec3Right, Vec3Up, Vec3Up},
		{"tilted up", Vec3{0, 1, 1}, Vec3Up, Vec3{0, 1, -1}.Normalize()},
		{"rolled", Vec3Forward, Vec3{1, 1, 0}, Vec3{1, 1, 0}.Normalize()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := QuatLookRotation(tt.forward, tt.up)
			if got := q.Forward(); !vecNear(got, tt.forward.Normalize(), 1e-5) {
				t.Errorf("Forward() = %v, want %v", got, tt.forward.Normalize())
			}
			if got := q.Up(); !vecNear(got, tt.wantUp, 1e-5) {
				t.Errorf("Up() = %v, want %v", got, tt.wantUp)
			}
		})
	}
}

func TestQuatLookRotationDegenerate(t *testing.T) {
	if q := QuatLookRotation(Vec3{}, Vec3Up); q != QuatIdentity() {
		t.Errorf("zero forward should give identity, got %v", q)
	}

	// up parallel to forward still yields a proper rotation
	q := QuatLookRotation(Vec3Up, Vec3Up)
	if got := q.Forward(); !vecNear(got, Vec3Up, 1e-5) {
		t.Errorf("Forward() = %v, want +Y", got)
	}
	if d := q.Up().Dot(Vec3Up); absf(d) > 1e-5 {
		t.Errorf("Up() should be perpendicular to forward, dot = %v", d)
	}
}
