package track

import "github.com/Faultbox/midgard-tracks/pkg/math"

// bothSides is the side order of a full road: the right block is emitted
// first and the left block follows it.
var bothSides = []Side{SideRight, SideLeft}

// Extrude sweeps both profile halves along the spline into mesh.
func (s *Spline) Extrude(mesh *Mesh, profile *Profile, settings Settings) {
	s.extrude(mesh, profile, settings, bothSides)
}

// ExtrudeSide sweeps a single profile half along the spline into mesh.
func (s *Spline) ExtrudeSide(mesh *Mesh, profile *Profile, settings Settings, side Side) {
	s.extrude(mesh, profile, settings, []Side{side})
}

func (s *Spline) extrude(mesh *Mesh, profile *Profile, settings Settings, sides []Side) {
	a, b, ok := s.endpoints()
	if !ok {
		mesh.Clear()
		s.frames = nil
		return
	}

	profile.Initialize(len(sides), settings.HorizontalResolution)
	arcLength := s.ArcLength()
	divisions := settings.Divisions(arcLength)

	frames := make([]Frame, divisions+1)
	widths := make([]float32, divisions+1)
	for i := range frames {
		t := float32(i) / float32(divisions)
		up := a.Up().Lerp(b.Up(), t)
		width := settings.TrackWidth * math.Lerp(a.WidthModifier, b.WidthModifier, t)
		half := width / 2
		widths[i] = width
		frames[i] = Frame{
			Position: s.Position(t),
			Rotation: s.Orientation(t, up),
			Scale:    math.Vec3{X: half, Y: half, Z: 1},
		}
	}

	ring := profile.VertexCount()
	vertices := make([]Vertex, 0, len(frames)*ring*len(sides))
	indices := make([]uint32, 0, divisions*profile.EdgeCount()*6*len(sides))

	for _, side := range sides {
		offset := uint32(len(vertices))
		mirrored := side == SideLeft

		for i, f := range frames {
			t := float32(i) / float32(divisions)
			curvature := math.Lerp(a.Curvature(side), b.Curvature(side), t)
			v := float32(0)
			if widths[i] > math.Epsilon {
				v = t * arcLength / widths[i]
			}

			for j := range ring {
				p, n := profile.Blend(j, curvature)
				u := profile.U[j]
				if mirrored {
					p.X = -p.X
					n.X = -n.X
					u = 1 - u
				}
				vertices = append(vertices, Vertex{
					Position: f.LocalToWorld(p.Vec3()).Array(),
					Normal:   f.LocalToWorldDirection(n.Vec3()).Normalize().Array(),
					TexCoord: [2]float32{u, v},
				})
			}
		}

		indices = appendStrip(indices, profile.Edges, divisions, uint32(ring), offset, mirrored)
	}

	mesh.Set(vertices, indices)
	s.frames = frames
}

// appendStrip emits two triangles per edge per division. Faces wind so the
// geometric normal agrees with the profile normal; mirrored rings reverse
// the order.
func appendStrip(indices []uint32, edges []Edge, divisions int, ring, offset uint32, mirrored bool) []uint32 {
	for d := range uint32(divisions) {
		row := offset + d*ring
		next := row + ring
		for _, e := range edges {
			a := row + uint32(e.A)
			b := row + uint32(e.B)
			c := next + uint32(e.A)
			dd := next + uint32(e.B)
			if mirrored {
				indices = append(indices, a, b, c, b, dd, c)
			} else {
				indices = append(indices, a, c, b, b, c, dd)
			}
		}
	}
	return indices
}
