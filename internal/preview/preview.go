// Package preview renders track meshes to a top-down shaded image without a GPU.
package preview

import (
	"image"
	"image/color"
	stdmath "math"

	"go.uber.org/zap"
	"golang.org/x/image/draw"

	"github.com/Faultbox/midgard-tracks/internal/config"
	"github.com/Faultbox/midgard-tracks/internal/engine/lighting"
	"github.com/Faultbox/midgard-tracks/internal/track"
	"github.com/Faultbox/midgard-tracks/pkg/math"
)

// Options controls preview rendering.
type Options struct {
	Size        int     // output width and height in pixels
	Supersample int     // render scale before downsampling
	Padding     float32 // margin as a fraction of the track extent

	Background color.NRGBA
	Surface    color.NRGBA
	Marking    color.NRGBA
	Markings   bool // paint centerline and edge lines from texture U

	LightDir math.Vec3
	Ambient  float32

	Logger *zap.Logger
}

// DefaultOptions returns the preview defaults.
func DefaultOptions() Options {
	return OptionsFromConfig(config.Default().Preview)
}

// OptionsFromConfig builds options from the preview config section.
func OptionsFromConfig(c config.PreviewConfig) Options {
	return Options{
		Size:        c.Size,
		Supersample: c.Supersample,
		Padding:     c.Padding,
		Background:  color.NRGBA{R: 32, G: 96, B: 40, A: 255},
		Surface:     color.NRGBA{R: 120, G: 120, B: 128, A: 255},
		Marking:     color.NRGBA{R: 240, G: 240, B: 230, A: 255},
		Markings:    true,
		LightDir:    lighting.DefaultSun(),
		Ambient:     0.35,
	}
}

func (o *Options) normalize() {
	if o.Size < 1 {
		o.Size = 1
	}
	if o.Supersample < 1 {
		o.Supersample = 1
	}
	if o.Padding < 0 {
		o.Padding = 0
	}
	if o.LightDir.IsZero() {
		o.LightDir = math.Vec3Up
	}
	o.LightDir = o.LightDir.Normalize()
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
}

// Render draws meshes from above with an orthographic camera framing their
// combined bounds. Empty input yields a background-filled image.
func Render(meshes []*track.Mesh, opts Options) *image.NRGBA {
	opts.normalize()
	renderSize := opts.Size * opts.Supersample

	bounds := track.Bounds{
		Min: [3]float32{1e10, 1e10, 1e10},
		Max: [3]float32{-1e10, -1e10, -1e10},
	}
	triangles := 0
	for _, m := range meshes {
		bounds.Union(m.Bounds)
		triangles += m.TriangleCount()
	}
	fb := NewFrameBuffer(renderSize, renderSize, opts.Background)
	if bounds.Empty() || triangles == 0 {
		opts.Logger.Debug("preview of empty geometry")
		return Downsample(fb.Image(), opts.Size)
	}

	vp := viewProjection(bounds, opts.Padding)
	for _, m := range meshes {
		drawMesh(fb, m, vp, &opts)
	}

	opts.Logger.Debug("preview rendered",
		zap.Int("meshes", len(meshes)),
		zap.Int("triangles", triangles),
		zap.Int("size", opts.Size),
		zap.Int("supersample", opts.Supersample))

	return Downsample(fb.Image(), opts.Size)
}

// viewProjection frames bounds in a square orthographic view looking down
// -Y with +X to the right.
func viewProjection(b track.Bounds, padding float32) math.Mat4 {
	c := b.Center()
	s := b.Size()
	center := math.Vec3{X: c[0], Y: c[1], Z: c[2]}

	extent := s[0]
	if s[2] > extent {
		extent = s[2]
	}
	half := extent * (1 + 2*padding) / 2
	if half < 1e-3 {
		half = 1
	}

	lift := s[1] + 10
	eye := center.Add(math.Vec3{Y: lift})
	view := math.LookAt(eye, center, math.Vec3{Z: -1})
	proj := math.Ortho(-half, half, -half, half, 0.1, 2*lift+s[1])
	return proj.Mul(view)
}

func drawMesh(fb *FrameBuffer, m *track.Mesh, vp math.Mat4, opts *Options) {
	size := float64(fb.Width)
	projected := make([]vertex, len(m.Vertices))
	for i, v := range m.Vertices {
		p := vp.TransformPoint(v.Position)
		n := math.Vec3{X: v.Normal[0], Y: v.Normal[1], Z: v.Normal[2]}
		diffuse := float32(stdmath.Abs(float64(n.Dot(opts.LightDir))))
		projected[i] = vertex{
			x:     (float64(p[0]) + 1) / 2 * size,
			y:     (1 - float64(p[1])) / 2 * size,
			z:     float64(p[2]),
			shade: float64(opts.Ambient + (1-opts.Ambient)*diffuse),
			u:     float64(v.TexCoord[0]),
		}
	}

	var marking *color.NRGBA
	if opts.Markings {
		marking = &opts.Marking
	}
	for i := 0; i+2 < len(m.Indices); i += 3 {
		a, b, c := m.Indices[i], m.Indices[i+1], m.Indices[i+2]
		if int(a) >= len(projected) || int(b) >= len(projected) || int(c) >= len(projected) {
			continue
		}
		rasterizeTriangle(fb, projected[a], projected[b], projected[c], opts.Surface, marking)
	}
}

// Downsample scales img to targetSize with premultiplied-alpha CatmullRom
// filtering. Images already at or below the target are returned unchanged.
func Downsample(img *image.NRGBA, targetSize int) *image.NRGBA {
	b := img.Bounds()
	if b.Dx() <= targetSize && b.Dy() <= targetSize {
		return img
	}

	premul := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			si := img.PixOffset(x, y)
			di := premul.PixOffset(x, y)
			a := float64(img.Pix[si+3]) / 255.0
			premul.Pix[di] = uint8(float64(img.Pix[si])*a + 0.5)
			premul.Pix[di+1] = uint8(float64(img.Pix[si+1])*a + 0.5)
			premul.Pix[di+2] = uint8(float64(img.Pix[si+2])*a + 0.5)
			premul.Pix[di+3] = img.Pix[si+3]
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, targetSize, targetSize))
	draw.CatmullRom.Scale(dst, dst.Bounds(), premul, premul.Bounds(), draw.Src, nil)

	result := image.NewNRGBA(dst.Bounds())
	for y := range targetSize {
		for x := range targetSize {
			si := dst.PixOffset(x, y)
			di := result.PixOffset(x, y)
			a := float64(dst.Pix[si+3])
			if a > 1 {
				inv := 255.0 / a
				result.Pix[di] = clamp8(float64(dst.Pix[si]) * inv)
				result.Pix[di+1] = clamp8(float64(dst.Pix[si+1]) * inv)
				result.Pix[di+2] = clamp8(float64(dst.Pix[si+2]) * inv)
			}
			result.Pix[di+3] = dst.Pix[si+3]
		}
	}
	return result
}
