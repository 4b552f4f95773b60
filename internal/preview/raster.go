package preview

import (
	"image/color"
	"math"
)

// vertex is a projected vertex in pixel space.
type vertex struct {
	x, y, z float64
	shade   float64
	u       float64
}

// rasterizeTriangle fills one triangle with interpolated shade and a
// z-buffer test. The inner loop does not allocate.
func rasterizeTriangle(fb *FrameBuffer, a, b, c vertex, surface color.NRGBA, marking *color.NRGBA) {
	x0, y0 := a.x, a.y
	x1, y1 := b.x, b.y
	x2, y2 := c.x, c.y

	minX := int(math.Floor(math.Min(math.Min(x0, x1), x2)))
	maxX := int(math.Ceil(math.Max(math.Max(x0, x1), x2)))
	minY := int(math.Floor(math.Min(math.Min(y0, y1), y2)))
	maxY := int(math.Ceil(math.Max(math.Max(y0, y1), y2)))

	if minX < 0 {
		minX = 0
	}
	if maxX >= fb.Width {
		maxX = fb.Width - 1
	}
	if minY < 0 {
		minY = 0
	}
	if maxY >= fb.Height {
		maxY = fb.Height - 1
	}
	if minX > maxX || minY > maxY {
		return
	}

	// Barycentric setup
	det := (y1-y2)*(x0-x2) + (x2-x1)*(y0-y2)
	if det > -1e-12 && det < 1e-12 {
		return
	}
	invDet := 1.0 / det

	dy12 := y1 - y2
	dx21 := x2 - x1
	dy20 := y2 - y0
	dx02 := x0 - x2

	for sy := minY; sy <= maxY; sy++ {
		dsy := float64(sy) + 0.5 - y2
		rowOff := sy * fb.Width
		for sx := minX; sx <= maxX; sx++ {
			dsx := float64(sx) + 0.5 - x2
			w0 := (dy12*dsx + dx21*dsy) * invDet
			w1 := (dy20*dsx + dx02*dsy) * invDet
			w2 := 1.0 - w0 - w1

			if w0 < -1e-6 || w1 < -1e-6 || w2 < -1e-6 {
				continue
			}

			z := w0*a.z + w1*b.z + w2*c.z
			idx := rowOff + sx
			if z >= fb.Depth[idx] {
				continue
			}
			fb.Depth[idx] = z

			col := surface
			if marking != nil {
				u := w0*a.u + w1*b.u + w2*c.u
				if isMarking(u) {
					col = *marking
				}
			}

			shade := w0*a.shade + w1*b.shade + w2*c.shade
			p := idx * 4
			fb.Color[p] = clamp8(float64(col.R) * shade)
			fb.Color[p+1] = clamp8(float64(col.G) * shade)
			fb.Color[p+2] = clamp8(float64(col.B) * shade)
			fb.Color[p+3] = 255
		}
	}
}

// isMarking reports whether texture coordinate u falls on the centerline or
// an outer edge line.
func isMarking(u float64) bool {
	const half = 0.03
	return math.Abs(u-0.5) < half || u < half || u > 1-half
}

func clamp8(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
