package track

import "github.com/Faultbox/midgard-tracks/pkg/math"

// arcChords is the chord count used to approximate arc length.
const arcChords = 100

// Spline is a cubic Bezier segment between two nodes of the same arena.
// Its control points are start, start's front control, end's back control
// and end. A spline with an unresolved endpoint evaluates to zero vectors
// and the identity rotation.
type Spline struct {
	Start NodeHandle
	End   NodeHandle

	// Object is the host object carrying this spline.
	Object ObjectID

	nodes  *NodeArena
	frames []Frame
}

// NewSpline creates a spline over nodes in arena.
func NewSpline(arena *NodeArena, start, end NodeHandle) *Spline {
	return &Spline{Start: start, End: end, nodes: arena}
}

func (s *Spline) endpoints() (a, b *Node, ok bool) {
	if s.nodes == nil {
		return nil, nil, false
	}
	a = s.nodes.Get(s.Start)
	b = s.nodes.Get(s.End)
	return a, b, a != nil && b != nil
}

// Connected reports whether both endpoints resolve.
func (s *Spline) Connected() bool {
	_, _, ok := s.endpoints()
	return ok
}

// ControlPoints returns the four world-space control points.
func (s *Spline) ControlPoints() (p0, p1, p2, p3 math.Vec3, ok bool) {
	a, b, ok := s.endpoints()
	if !ok {
		return
	}
	return a.Position, a.FrontControl(), b.BackControl(), b.Position, true
}

// Position evaluates the curve at t in [0, 1].
func (s *Spline) Position(t float32) math.Vec3 {
	p0, p1, p2, p3, ok := s.ControlPoints()
	if !ok {
		return math.Vec3{}
	}
	omt := 1 - t
	return p0.Scale(omt * omt * omt).
		Add(p1.Scale(3 * omt * omt * t)).
		Add(p2.Scale(3 * omt * t * t)).
		Add(p3.Scale(t * t * t))
}

// Tangent returns the normalized first derivative at t. It is zero where
// the derivative vanishes.
func (s *Spline) Tangent(t float32) math.Vec3 {
	p0, p1, p2, p3, ok := s.ControlPoints()
	if !ok {
		return math.Vec3{}
	}
	omt := 1 - t
	d := p1.Sub(p0).Scale(omt * omt).
		Add(p2.Sub(p1).Scale(2 * omt * t)).
		Add(p3.Sub(p2).Scale(t * t))
	return d.Normalize()
}

// Binormal returns up × tangent. It is not normalized.
func (s *Spline) Binormal(t float32, up math.Vec3) math.Vec3 {
	return up.Cross(s.Tangent(t))
}

// Normal returns the unit vector perpendicular to the tangent closest to up.
func (s *Spline) Normal(t float32, up math.Vec3) math.Vec3 {
	tangent := s.Tangent(t)
	return tangent.Cross(up.Cross(tangent)).Normalize()
}

// Orientation returns the rotation looking along the tangent with the
// normal as up.
func (s *Spline) Orientation(t float32, up math.Vec3) math.Quat {
	if _, _, ok := s.endpoints(); !ok {
		return math.QuatIdentity()
	}
	return math.QuatLookRotation(s.Tangent(t), s.Normal(t, up))
}

// Up interpolates the endpoint up axes at t.
func (s *Spline) Up(t float32) math.Vec3 {
	a, b, ok := s.endpoints()
	if !ok {
		return math.Vec3{}
	}
	return a.Up().Lerp(b.Up(), t)
}

// ArcLength approximates the curve length with fixed chords.
func (s *Spline) ArcLength() float32 {
	if !s.Connected() {
		return 0
	}
	var length float32
	prev := s.Position(0)
	for i := 1; i <= arcChords; i++ {
		p := s.Position(float32(i) / arcChords)
		length += p.Distance(prev)
		prev = p
	}
	return length
}

// Frames returns the cross-section frames of the last extrusion.
func (s *Spline) Frames() []Frame {
	return s.frames
}
