package track

import "github.com/Faultbox/midgard-tracks/pkg/math"

// Frame is an oriented, scaled point along a spline. Profile coordinates are
// mapped with X lateral, Y up and Z along the spline.
type Frame struct {
	Position math.Vec3
	Rotation math.Quat
	Scale    math.Vec3
}

// LocalToWorld applies scale, then rotation, then translation.
func (f Frame) LocalToWorld(p math.Vec3) math.Vec3 {
	return f.Position.Add(f.Rotation.Rotate(p.Mul(f.Scale)))
}

// LocalToWorldDirection applies scale and rotation only. The result is not
// normalized.
func (f Frame) LocalToWorldDirection(d math.Vec3) math.Vec3 {
	return f.Rotation.Rotate(d.Mul(f.Scale))
}

// Matrix returns the frame as a TRS matrix.
func (f Frame) Matrix() math.Mat4 {
	return math.Compose(f.Position, f.Rotation, f.Scale)
}
