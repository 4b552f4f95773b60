package preview

import (
	"image"
	"image/color"
	"math"
)

// FrameBuffer holds the render target as flat slices.
type FrameBuffer struct {
	Width  int
	Height int
	Color  []uint8   // RGBA interleaved, len = W*H*4
	Depth  []float64 // NDC depth per pixel, smaller is nearer
}

// NewFrameBuffer allocates a buffer cleared to bg with an empty depth buffer.
func NewFrameBuffer(w, h int, bg color.NRGBA) *FrameBuffer {
	n := w * h
	fb := &FrameBuffer{
		Width:  w,
		Height: h,
		Color:  make([]uint8, n*4),
		Depth:  make([]float64, n),
	}
	for i := range n {
		fb.Depth[i] = math.Inf(1)
		fb.Color[i*4] = bg.R
		fb.Color[i*4+1] = bg.G
		fb.Color[i*4+2] = bg.B
		fb.Color[i*4+3] = bg.A
	}
	return fb
}

// Image copies the color buffer into an NRGBA image.
func (fb *FrameBuffer) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	copy(img.Pix, fb.Color)
	return img
}
