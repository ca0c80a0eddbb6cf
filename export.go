package driftcanvas

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	xdraw "golang.org/x/image/draw"
)

// ScaleToLongest resamples img so its longer dimension equals longest,
// preserving aspect ratio. Images already at or below the target are still
// resampled up, matching the fixed-size download contract.
func ScaleToLongest(img image.Image, longest int) *image.NRGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 || longest <= 0 {
		return image.NewNRGBA(image.Rect(0, 0, 1, 1))
	}
	var outW, outH int
	if w >= h {
		outW = longest
		outH = longest * h / w
	} else {
		outH = longest
		outW = longest * w / h
	}
	if outW < 1 {
		outW = 1
	}
	if outH < 1 {
		outH = 1
	}
	out := image.NewNRGBA(image.Rect(0, 0, outW, outH))
	xdraw.CatmullRom.Scale(out, out.Bounds(), img, b, xdraw.Src, nil)
	return out
}

// ExportObjectPNG writes the object's image as a PNG in dir, scaled so the
// longer dimension is ExportLongestSide pixels. The processed (keyed) image
// is written unless the object is showing its original. Returns the path of
// the written file.
func ExportObjectPNG(dir string, o *Object, threshold int) (string, error) {
	if len(o.GeneratedData) == 0 {
		return "", ErrNoImage
	}

	var img image.Image
	if o.ShowOriginal {
		decoded, _, err := image.Decode(bytes.NewReader(o.GeneratedData))
		if err != nil {
			return "", fmt.Errorf("decode original: %w", err)
		}
		img = decoded
	} else {
		// Re-key from the stored bytes; deterministic, so this matches what
		// is on screen.
		processed, _, err := ProcessImageData(o.GeneratedData, threshold)
		if err != nil {
			return "", fmt.Errorf("process image: %w", err)
		}
		img = processed
	}

	scaled := ScaleToLongest(img, ExportLongestSide)
	path := exportPath(dir, fmt.Sprintf("object-%d", o.ID))
	if err := writePNG(path, scaled); err != nil {
		return "", err
	}
	return path, nil
}

// ExportCanvasPNG captures the rendered frame at native resolution and
// writes it as a PNG in dir. Must be called during Draw with the frame's
// screen image. Returns the path of the written file.
func ExportCanvasPNG(dir string, screen *ebiten.Image) (string, error) {
	if screen == nil {
		return "", fmt.Errorf("export canvas: no screen")
	}
	b := screen.Bounds()
	w, h := b.Dx(), b.Dy()
	pixels := make([]byte, 4*w*h)
	screen.ReadPixels(pixels)

	// Convert premultiplied RGBA to straight-alpha NRGBA.
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(pixels); i += 4 {
		r, g, bb, a := pixels[i], pixels[i+1], pixels[i+2], pixels[i+3]
		if a > 0 && a < 255 {
			r = uint8(min(int(r)*255/int(a), 255))
			g = uint8(min(int(g)*255/int(a), 255))
			bb = uint8(min(int(bb)*255/int(a), 255))
		}
		img.Pix[i] = r
		img.Pix[i+1] = g
		img.Pix[i+2] = bb
		img.Pix[i+3] = a
	}

	path := exportPath(dir, "canvas")
	if err := writePNG(path, img); err != nil {
		return "", err
	}
	return path, nil
}

// exportPath builds a timestamped file path inside dir.
func exportPath(dir, label string) string {
	stamp := time.Now().Format("20060102_150405")
	return filepath.Join(dir, fmt.Sprintf("%s_%s.png", stamp, sanitizeLabel(label)))
}

// writePNG encodes an image to a PNG file at the given path, creating the
// directory if needed.
func writePNG(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}
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
// underscores and falls back to "unlabeled" for empty strings.
func sanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "unlabeled"
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
