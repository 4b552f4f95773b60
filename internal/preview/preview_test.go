package preview

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"testing"

	"github.com/Faultbox/midgard-tracks/internal/track"
)

func testOptions() Options {
	o := DefaultOptions()
	o.Size = 128
	o.Supersample = 2
	o.Markings = false
	return o
}

// straightRoad builds a curve running 40 units along +Z.
func straightRoad(t *testing.T) []*track.Mesh {
	t.Helper()
	c := track.NewCurve(track.Config{
		Name:      "road",
		Transform: track.IdentityPose(),
		Settings:  track.DefaultSettings(),
	})
	for range 2 {
		if err := c.AddSpline(); err != nil {
			t.Fatal(err)
		}
	}
	c.Extrude()
	return c.Meshes()
}

func TestRenderEmpty(t *testing.T) {
	opts := testOptions()
	img := Render(nil, opts)
	if img.Bounds().Dx() != 128 || img.Bounds().Dy() != 128 {
		t.Fatalf("size = %v, want 128x128", img.Bounds())
	}
	if got := img.NRGBAAt(64, 64); !colorNear(got, opts.Background) {
		t.Errorf("center = %v, want background %v", got, opts.Background)
	}
}

func TestRenderStraightRoad(t *testing.T) {
	opts := testOptions()
	img := Render(straightRoad(t), opts)

	if img.Bounds().Dx() != opts.Size {
		t.Fatalf("width = %d, want %d", img.Bounds().Dx(), opts.Size)
	}

	// The road runs vertically through the middle of the frame.
	center := img.NRGBAAt(64, 64)
	if colorNear(center, opts.Background) {
		t.Error("center pixel should be road surface")
	}
	if !isGray(center) {
		t.Errorf("center pixel %v should be shaded surface", center)
	}
	side := img.NRGBAAt(8, 64)
	if !colorNear(side, opts.Background) {
		t.Errorf("side pixel = %v, want background", side)
	}
}

func TestRenderMarkings(t *testing.T) {
	opts := testOptions()
	opts.Size = 256
	opts.Supersample = 1
	opts.Markings = true
	img := Render(straightRoad(t), opts)

	// The centerline sits at u = 0.5 in the middle column.
	mid := img.NRGBAAt(128, 128)
	if mid.R < 200 {
		t.Errorf("centerline pixel %v should be marking colored", mid)
	}
}

func TestViewProjectionOrientation(t *testing.T) {
	b := track.Bounds{Min: [3]float32{-10, 0, -10}, Max: [3]float32{10, 0, 10}}
	vp := viewProjection(b, 0)

	right := vp.TransformPoint([3]float32{10, 0, 0})
	if right[0] < 0.99 {
		t.Errorf("+X edge maps to NDC x %v, want 1", right[0])
	}
	near := vp.TransformPoint([3]float32{0, 5, 0})
	far := vp.TransformPoint([3]float32{0, 0, 0})
	if near[2] >= far[2] {
		t.Errorf("higher point should be nearer: %v >= %v", near[2], far[2])
	}
}

func TestDownsample(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for i := 0; i < len(src.Pix); i += 4 {
		src.Pix[i], src.Pix[i+1], src.Pix[i+2], src.Pix[i+3] = 200, 100, 50, 255
	}
	dst := Downsample(src, 4)
	if dst.Bounds().Dx() != 4 {
		t.Fatalf("width = %d, want 4", dst.Bounds().Dx())
	}
	if got := dst.NRGBAAt(2, 2); !colorNear(got, color.NRGBA{R: 200, G: 100, B: 50, A: 255}) {
		t.Errorf("uniform image changed color: %v", got)
	}
	if Downsample(src, 8) != src {
		t.Error("image at target size should be returned unchanged")
	}
}

func TestEncode(t *testing.T) {
	img := Render(straightRoad(t), testOptions())

	var buf bytes.Buffer
	if err := Encode(&buf, img, FormatPNG); err != nil {
		t.Fatalf("PNG: %v", err)
	}
	decoded, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Bounds() != img.Bounds() {
		t.Errorf("decoded bounds = %v", decoded.Bounds())
	}

	buf.Reset()
	if err := Encode(&buf, img, FormatWebP); err != nil {
		t.Fatalf("WebP: %v", err)
	}
	data := buf.Bytes()
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WEBP" {
		t.Errorf("not a WebP container: %q", data[:min(len(data), 12)])
	}

	if err := Encode(&buf, img, Format("gif")); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "road.png")
	if err := WriteFile(path, Render(nil, testOptions()), FormatPNG); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestFormats(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"a.png", FormatPNG},
		{"a.WEBP", FormatWebP},
		{"a.jpg", FormatWebP},
		{"noext", FormatWebP},
	}
	for _, tt := range tests {
		if got := FormatFromPath(tt.path, FormatWebP); got != tt.want {
			t.Errorf("FormatFromPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
	if _, err := ParseFormat("bmp"); err == nil {
		t.Error("ParseFormat should reject bmp")
	}
}

func isGray(c color.NRGBA) bool {
	d := func(a, b uint8) int {
		if a > b {
			return int(a - b)
		}
		return int(b - a)
	}
	return d(c.R, c.G) < 24 && d(c.G, c.B) < 24
}

func colorNear(a, b color.NRGBA) bool {
	d := func(x, y uint8) bool {
		if x > y {
			return x-y <= 2
		}
		return y-x <= 2
	}
	return d(a.R, b.R) && d(a.G, b.G) && d(a.B, b.B) && d(a.A, b.A)
}
