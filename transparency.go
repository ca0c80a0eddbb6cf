package driftcanvas

import (
	"bytes"
	"image"
	"image/draw"

	// Register the decoders for the formats users can drop on the canvas.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

// RemoveBackground keys out the background of img and returns the result as a
// straight-alpha NRGBA image plus the tight bounding rectangle of the pixels
// that survived, in source-pixel coordinates.
//
// The background color is taken from the single top-left pixel. Every pixel
// whose squared-Euclidean RGB distance to it is at or below threshold has its
// alpha set to zero. Bounds are computed in a second pass after the full
// pixel buffer is committed; if no pixel survives, the full image extent is
// returned so callers always get a usable rectangle.
func RemoveBackground(img image.Image, threshold int) (*image.NRGBA, image.Rectangle) {
	b := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)

	if b.Dx() == 0 || b.Dy() == 0 {
		return out, out.Bounds()
	}

	// Pass 1: zero the alpha of everything close to the top-left pixel.
	bgR := int(out.Pix[0])
	bgG := int(out.Pix[1])
	bgB := int(out.Pix[2])
	for i := 0; i < len(out.Pix); i += 4 {
		dr := int(out.Pix[i]) - bgR
		dg := int(out.Pix[i+1]) - bgG
		db := int(out.Pix[i+2]) - bgB
		if dr*dr+dg*dg+db*db <= threshold {
			out.Pix[i+3] = 0
		}
	}

	// Pass 2: tight bounds of the remaining opaque pixels.
	bounds := opaqueBounds(out)
	if bounds.Empty() {
		bounds = out.Bounds()
	}
	return out, bounds
}

// opaqueBounds returns the minimal rectangle enclosing every pixel with
// nonzero alpha. Returns an empty rectangle if the image is fully
// transparent.
func opaqueBounds(img *image.NRGBA) image.Rectangle {
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()

	minX, minY := w, h
	maxX, maxY := -1, -1
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for x := 0; x < w; x++ {
			if row[x*4+3] == 0 {
				continue
			}
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}
		}
	}
	if maxX < 0 {
		return image.Rectangle{}
	}
	return image.Rect(minX, minY, maxX+1, maxY+1)
}

// ProcessImageData decodes raw image bytes and runs background removal.
// On decode failure it degrades gracefully to a 1x1 transparent image with
// full-extent bounds. The returned error is diagnostic only; the image and
// bounds are always usable.
func ProcessImageData(data []byte, threshold int) (*image.NRGBA, image.Rectangle, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		fallback := image.NewNRGBA(image.Rect(0, 0, 1, 1))
		return fallback, fallback.Bounds(), err
	}
	out, bounds := RemoveBackground(src, threshold)
	return out, bounds, nil
}
