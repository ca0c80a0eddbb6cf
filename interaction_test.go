package driftcanvas

import (
	"math"
	"testing"
)

func newTestController() (*Controller, *Scene, *View) {
	s := NewScene()
	v := NewView()
	return NewController(s, v), s, v
}

func TestDragKeepsGrabOffset(t *testing.T) {
	c, s, _ := newTestController()
	o := placeReady(s, 100, 100, 200)

	// Grab 30,40 inside the object, drag to another point.
	c.PointerDown(130, 140)
	if s.Selected != o.ID {
		t.Fatal("press on an object must select it")
	}
	c.PointerMove(500, 400)
	if !approxEqual(o.X, 470, epsilon) || !approxEqual(o.Y, 360, epsilon) {
		t.Errorf("object at (%v, %v), want (470, 360): grab offset must hold", o.X, o.Y)
	}
	c.PointerUp()
	if c.Mode() != int(modeIdle) {
		t.Errorf("mode = %d after release, want idle", c.Mode())
	}
}

func TestDragAccountsForZoom(t *testing.T) {
	c, s, v := newTestController()
	o := placeReady(s, 0, 0, 100)
	v.Scale = 2

	c.PointerDown(100, 100) // world (50, 50), offset (50, 50)
	c.PointerMove(200, 200) // world (100, 100)
	if !approxEqual(o.X, 50, epsilon) || !approxEqual(o.Y, 50, epsilon) {
		t.Errorf("object at (%v, %v), want (50, 50)", o.X, o.Y)
	}
}

func TestPressOnEmptyCanvasPans(t *testing.T) {
	c, s, v := newTestController()
	o := placeReady(s, 0, 0, 100)
	s.Selected = o.ID

	c.PointerDown(500, 500)
	if s.Selected != 0 {
		t.Error("press on empty canvas must clear the selection")
	}
	c.PointerMove(520, 470)
	if !approxEqual(v.OffsetX, 20, epsilon) || !approxEqual(v.OffsetY, -30, epsilon) {
		t.Errorf("offset = (%v, %v), want (20, -30)", v.OffsetX, v.OffsetY)
	}
	if !approxEqual(o.X, 0, epsilon) {
		t.Error("panning must not move objects")
	}
}

func TestDragSurvivesObjectDeletion(t *testing.T) {
	c, s, _ := newTestController()
	o := placeReady(s, 0, 0, 100)

	c.PointerDown(50, 50)
	s.Remove(o.ID)
	c.PointerMove(60, 60) // must not panic
	if c.Mode() != int(modeIdle) {
		t.Errorf("mode = %d, want idle after the target vanished", c.Mode())
	}
}

func TestWheelOverObjectScalesIt(t *testing.T) {
	c, s, v := newTestController()
	o := placeReady(s, 0, 0, 100)
	startScale := v.Scale

	c.Wheel(50, 50, 1)
	if !approxEqual(o.Width, 100*WheelScaleStep, epsilon) {
		t.Errorf("width = %v, want one 10%% step", o.Width)
	}
	if v.Scale != startScale {
		t.Error("scrolling over an object must not zoom the view")
	}
}

func TestWheelOverEmptyCanvasZoomsTowardCursor(t *testing.T) {
	c, _, v := newTestController()
	wx, wy := v.ScreenToWorld(300, 200)

	c.Wheel(300, 200, 3)

	want := math.Pow(WheelZoomStep, 3)
	if !approxEqual(v.Scale, want, epsilon) {
		t.Errorf("scale = %v, want %v", v.Scale, want)
	}
	sx, sy := v.WorldToScreen(wx, wy)
	if !approxEqual(sx, 300, 1e-9) || !approxEqual(sy, 200, 1e-9) {
		t.Errorf("cursor anchor drifted to (%v, %v)", sx, sy)
	}
}

func TestWheelOverPendingObjectZoomsCanvas(t *testing.T) {
	c, s, v := newTestController()
	o := s.NewTextObject(50, 50, "pending")
	_ = o.BeginGeneration()

	c.Wheel(50, 50, 1)
	if !approxEqual(v.Scale, WheelZoomStep, epsilon) {
		t.Error("a pending placeholder must not swallow canvas zoom")
	}
}

func TestPinchOnObjectScalesByDistanceRatio(t *testing.T) {
	c, s, _ := newTestController()
	o := placeReady(s, 0, 0, 200)
	center := o.Center()

	c.PinchBegin(Vec2{X: 80, Y: 100}, Vec2{X: 120, Y: 100})
	if c.Mode() != int(modePinchObject) {
		t.Fatalf("mode = %d, want object pinch when the midpoint hits", c.Mode())
	}
	if s.Selected != o.ID {
		t.Error("object pinch must select its target")
	}

	// Spread to double the distance.
	c.PinchMove(Vec2{X: 60, Y: 100}, Vec2{X: 140, Y: 100})
	if !approxEqual(o.Width, 400, epsilon) {
		t.Errorf("width = %v, want 400 at 2x spread", o.Width)
	}
	after := o.Center()
	if !approxEqual(after.X, center.X, 1e-9) || !approxEqual(after.Y, center.Y, 1e-9) {
		t.Error("object pinch must scale about the center")
	}

	// The ratio is against the initial distance, not cumulative.
	c.PinchMove(Vec2{X: 80, Y: 100}, Vec2{X: 120, Y: 100})
	if !approxEqual(o.Width, 200, epsilon) {
		t.Errorf("width = %v, want back to 200 at 1x spread", o.Width)
	}
	c.PinchEnd()
	if c.Mode() != int(modeIdle) {
		t.Error("pinch end must return to idle")
	}
}

func TestPinchOnEmptyCanvasZoomsAndPans(t *testing.T) {
	c, _, v := newTestController()

	c.PinchBegin(Vec2{X: 300, Y: 300}, Vec2{X: 500, Y: 300})
	if c.Mode() != int(modePinchCanvas) {
		t.Fatalf("mode = %d, want canvas pinch on empty space", c.Mode())
	}
	mid := Vec2{X: 400, Y: 300}
	wx, wy := v.ScreenToWorld(mid.X, mid.Y)

	// Same midpoint, double the spread: pure zoom anchored at the midpoint.
	c.PinchMove(Vec2{X: 200, Y: 300}, Vec2{X: 600, Y: 300})
	if !approxEqual(v.Scale, 2, epsilon) {
		t.Errorf("scale = %v, want 2", v.Scale)
	}
	sx, sy := v.WorldToScreen(wx, wy)
	if !approxEqual(sx, mid.X, 1e-9) || !approxEqual(sy, mid.Y, 1e-9) {
		t.Errorf("midpoint anchor drifted to (%v, %v)", sx, sy)
	}

	// Midpoint drift with constant spread: pure pan.
	c.PinchMove(Vec2{X: 250, Y: 320}, Vec2{X: 650, Y: 320})
	sx, sy = v.WorldToScreen(wx, wy)
	if !approxEqual(sx, 450, 1e-9) || !approxEqual(sy, 320, 1e-9) {
		t.Errorf("anchor = (%v, %v), want it to follow the midpoint to (450, 320)", sx, sy)
	}
}

func TestPinchDisambiguatesAtMidpoint(t *testing.T) {
	c, s, _ := newTestController()
	placeReady(s, 0, 0, 100)

	// Fingers straddle the object but the midpoint misses it.
	c.PinchBegin(Vec2{X: 50, Y: 320}, Vec2{X: 50, Y: -100})
	if c.Mode() != int(modePinchCanvas) {
		t.Errorf("mode = %d, want canvas pinch when the midpoint misses", c.Mode())
	}
}

func TestNudgeCompensatesForZoom(t *testing.T) {
	c, s, v := newTestController()
	o := placeReady(s, 0, 0, 100)
	s.Selected = o.ID
	v.Scale = 2

	c.NudgeSelected(1, 0)
	if !approxEqual(o.X, ArrowStep/2, epsilon) {
		t.Errorf("x = %v, want half an arrow step at 2x zoom", o.X)
	}
	c.NudgeSelected(0, -1)
	if !approxEqual(o.Y, -ArrowStep/2, epsilon) {
		t.Errorf("y = %v", o.Y)
	}
}

func TestContentActionsRefusedWhileGenerating(t *testing.T) {
	c, s, _ := newTestController()
	o := s.NewTextObject(0, 0, "busy")
	_ = o.BeginGeneration()
	s.Selected = o.ID

	if err := c.FlipSelected(); err != ErrGenerationBusy {
		t.Errorf("flip = %v, want ErrGenerationBusy", err)
	}
	if err := c.ToggleOriginalSelected(); err != ErrGenerationBusy {
		t.Errorf("toggle = %v, want ErrGenerationBusy", err)
	}
	if err := c.DeleteSelected(); err != ErrGenerationBusy {
		t.Errorf("delete = %v, want ErrGenerationBusy", err)
	}
	if s.Object(o.ID) == nil {
		t.Error("refused delete must leave the object in place")
	}
}

func TestContentActionsWithoutSelection(t *testing.T) {
	c, _, _ := newTestController()
	if err := c.FlipSelected(); err != ErrNotFound {
		t.Errorf("flip = %v, want ErrNotFound", err)
	}
	if err := c.DeleteSelected(); err != ErrNotFound {
		t.Errorf("delete = %v, want ErrNotFound", err)
	}
}

func TestDeleteSelectedRemoves(t *testing.T) {
	c, s, _ := newTestController()
	o := placeReady(s, 0, 0, 100)
	s.Selected = o.ID

	if err := c.DeleteSelected(); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if s.Len() != 0 || s.Selected != 0 {
		t.Error("delete must remove the object and clear the selection")
	}
}

func TestHoverTracksTopmostObject(t *testing.T) {
	c, s, _ := newTestController()
	o := placeReady(s, 0, 0, 100)

	c.PointerMove(50, 50)
	if s.Hovered != o.ID {
		t.Error("moving over an object must set hover")
	}
	c.PointerMove(500, 500)
	if s.Hovered != 0 {
		t.Error("moving off must clear hover")
	}
}
