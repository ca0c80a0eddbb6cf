package driftcanvas

import (
	"image"
	"testing"
)

// readyObject returns an object that has completed one generation with the
// given native pixel size and content bounds.
func readyObject(pixelW, pixelH int, bounds image.Rectangle) *Object {
	o := &Object{Source: SourceText, SourceText: "test"}
	if err := o.BeginGeneration(); err != nil {
		panic(err)
	}
	o.FinishGeneration(pixelW, pixelH, bounds)
	return o
}

func TestBeginGenerationSingleFlight(t *testing.T) {
	o := &Object{}
	if err := o.BeginGeneration(); err != nil {
		t.Fatalf("first begin: %v", err)
	}
	if err := o.BeginGeneration(); err != ErrGenerationBusy {
		t.Errorf("second begin = %v, want ErrGenerationBusy", err)
	}
	o.FinishGeneration(10, 10, image.Rect(0, 0, 10, 10))
	if err := o.BeginGeneration(); err != nil {
		t.Errorf("begin after finish: %v", err)
	}
}

func TestFinishGenerationSizesFromAspect(t *testing.T) {
	o := readyObject(1024, 512, image.Rect(0, 0, 1024, 512))
	if o.Width != DefaultObjectWidth {
		t.Errorf("width = %v, want %v", o.Width, DefaultObjectWidth)
	}
	if !approxEqual(o.Height, DefaultObjectWidth/2, epsilon) {
		t.Errorf("height = %v, want half the width for a 2:1 image", o.Height)
	}
	if o.State() != GenReady {
		t.Errorf("state = %v, want ready", o.State())
	}
}

func TestFinishGenerationKeepsWidthOnVariation(t *testing.T) {
	o := &Object{Variation: true, Width: 600, Height: 600}
	_ = o.BeginGeneration()
	o.FinishGeneration(800, 400, image.Rect(0, 0, 800, 400))
	if o.Width != 600 {
		t.Errorf("width = %v, want the pre-remix 600", o.Width)
	}
	if !approxEqual(o.Height, 300, epsilon) {
		t.Errorf("height = %v, want 300 from the new aspect", o.Height)
	}
}

func TestFinishGenerationClipsBoundsToPixels(t *testing.T) {
	o := readyObject(100, 100, image.Rect(-5, 50, 200, 200))
	if o.ContentBounds != image.Rect(0, 50, 100, 100) {
		t.Errorf("bounds = %v, want clipped to the image extent", o.ContentBounds)
	}
}

func TestScaleByClampsWidth(t *testing.T) {
	o := readyObject(100, 100, image.Rect(0, 0, 100, 100))
	o.ScaleBy(1000)
	if o.Width != MaxObjectWidth {
		t.Errorf("width = %v, want clamp at %v", o.Width, MaxObjectWidth)
	}
	o.ScaleBy(1e-6)
	if o.Width != MinObjectWidth {
		t.Errorf("width = %v, want clamp at %v", o.Width, MinObjectWidth)
	}
}

func TestSetWidthAnchoredKeepsCenter(t *testing.T) {
	o := readyObject(200, 100, image.Rect(0, 0, 200, 100))
	o.X, o.Y = 40, 60
	before := o.Center()

	o.SetWidthAnchored(700)

	after := o.Center()
	if !approxEqual(after.X, before.X, 1e-9) || !approxEqual(after.Y, before.Y, 1e-9) {
		t.Errorf("center moved from %+v to %+v", before, after)
	}
	if o.Width != 700 || !approxEqual(o.Height, 350, epsilon) {
		t.Errorf("size = (%v, %v), want (700, 350)", o.Width, o.Height)
	}
}

func TestWorldContentRectScalesBounds(t *testing.T) {
	o := readyObject(100, 100, image.Rect(20, 10, 80, 90))
	o.X, o.Y = 0, 0
	o.Width, o.Height = 200, 200

	r := o.WorldContentRect()
	if !approxEqual(r.X, 40, epsilon) || !approxEqual(r.Y, 20, epsilon) {
		t.Errorf("origin = (%v, %v), want (40, 20)", r.X, r.Y)
	}
	if !approxEqual(r.Width, 120, epsilon) || !approxEqual(r.Height, 160, epsilon) {
		t.Errorf("size = (%v, %v), want (120, 160)", r.Width, r.Height)
	}
}

func TestWorldContentRectMirrorsWhenFlipped(t *testing.T) {
	o := readyObject(100, 100, image.Rect(10, 0, 40, 100))
	o.X, o.Y = 0, 0
	o.Width, o.Height = 100, 100

	o.FlippedHorizontally = true
	r := o.WorldContentRect()
	// Content at pixels [10,40) mirrors to [60,90).
	if !approxEqual(r.X, 60, epsilon) || !approxEqual(r.Width, 30, epsilon) {
		t.Errorf("flipped content = (x=%v, w=%v), want (60, 30)", r.X, r.Width)
	}
}

func TestHitByUsesContentBoundsWhenReady(t *testing.T) {
	o := readyObject(100, 100, image.Rect(40, 40, 60, 60))
	o.X, o.Y = 0, 0
	o.Width, o.Height = 100, 100

	if o.HitBy(50, 50) != true {
		t.Error("center of content should hit")
	}
	if o.HitBy(5, 5) {
		t.Error("transparent padding should not hit")
	}
}

func TestHitByUsesFullRectWhilePending(t *testing.T) {
	o := &Object{X: 0, Y: 0, Width: 100, Height: 100}
	_ = o.BeginGeneration()
	if !o.HitBy(5, 5) {
		t.Error("full extent should hit while a generation is pending")
	}
	if o.HitBy(150, 50) {
		t.Error("outside the extent should never hit")
	}
}

func TestFailGenerationKeepsGeometry(t *testing.T) {
	o := readyObject(100, 50, image.Rect(0, 0, 100, 50))
	w, h := o.Width, o.Height
	_ = o.BeginGeneration()
	o.FailGeneration()
	if o.State() != GenFailed {
		t.Errorf("state = %v, want failed", o.State())
	}
	if o.Width != w || o.Height != h {
		t.Error("failure must not disturb display geometry")
	}
}
