package starmap

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
)

// CaptureImage reads back the rendered frame as a straight-alpha NRGBA
// image suitable for sharing or encoding. Must be called during Draw, after
// the frame has been rendered into src.
func CaptureImage(src *ebiten.Image) *image.NRGBA {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	pixels := make([]byte, 4*w*h)
	src.ReadPixels(pixels)

	// Convert premultiplied RGBA to straight-alpha NRGBA.
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(pixels); i += 4 {
		r, g, b, a := pixels[i], pixels[i+1], pixels[i+2], pixels[i+3]
		if a > 0 && a < 255 {
			r = uint8(min(int(r)*255/int(a), 255))
			g = uint8(min(int(g)*255/int(a), 255))
			b = uint8(min(int(b)*255/int(a), 255))
		}
		img.Pix[i] = r
		img.Pix[i+1] = g
		img.Pix[i+2] = b
		img.Pix[i+3] = a
	}
	return img
}

// Capture renders one frame of the view into an offscreen image, stamps the
// configured watermark into its bottom-right corner, and returns the pixels
// as straight-alpha NRGBA.
func (v *View) Capture() *image.NRGBA {
	w := int(v.state.ViewportW)
	h := int(v.state.ViewportH)
	off := ebiten.NewImage(w, h)
	v.pipeline.Frame(off, &v.state, 0)
	v.drawWatermark(off)
	img := CaptureImage(off)
	off.Deallocate()
	return img
}

// drawWatermark stamps the watermark text into the bottom-right corner.
func (v *View) drawWatermark(dst *ebiten.Image) {
	if v.watermark == "" {
		return
	}
	face := v.pipeline.labelFace(false)
	if face == nil {
		return
	}
	tw, th := text.Measure(v.watermark, face, 0)
	b := dst.Bounds()
	var op text.DrawOptions
	op.GeoM.Translate(float64(b.Max.X)-tw-12, float64(b.Max.Y)-th-10)
	op.ColorScale.Scale(0.55, 0.55, 0.6, 0.55)
	text.Draw(dst, v.watermark, face, &op)
}

// SaveCapture writes a capture of the view to a timestamped PNG under dir.
// The label becomes part of the file name.
func (v *View) SaveCapture(dir, label string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("capture: mkdir %s: %w", dir, err)
	}
	img := v.Capture()

	stamp := time.Now().Format("20060102_150405")
	path := fmt.Sprintf("%s/%s_%s.png", dir, stamp, sanitizeLabel(label))
	if err := writePNG(path, img); err != nil {
		return "", err
	}
	return path, nil
}

// writePNG encodes an image to a PNG file at the given path.
func writePNG(path string, img *image.NRGBA) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// sanitizeLabel replaces characters that are unsafe in file names with
// underscores and falls back to "map" for empty strings.
func sanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "map"
	}
	var b strings.Builder
	b.Grow(len(label))
	for _, r := range label {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9', r == '-', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
