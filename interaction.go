package driftcanvas

import "math"

// mode is the controller's gesture state.
type mode uint8

const (
	modeIdle        mode = iota
	modePanning          // press on empty canvas, pointer held
	modeDragging         // press on an object, pointer held
	modePinchObject      // two fingers, gesture started on an object
	modePinchCanvas      // two fingers, gesture started on empty space
)

// Controller translates pointer, touch, and wheel input into scene and view
// mutations. It is free of any windowing dependency: the app shell feeds it
// screen coordinates, which makes the whole state machine unit-testable.
type Controller struct {
	scene *Scene
	view  *View

	mode mode

	// Drag state. The grab offset is fixed in world space at press time so
	// the object never slides under the pointer.
	dragID             int64
	dragOffX, dragOffY float64

	// Pan state: last pointer position in screen space.
	lastSX, lastSY float64

	// Pinch state.
	pinchID         int64 // object being pinch-scaled, 0 for canvas pinch
	pinchStartDist  float64
	pinchStartWidth float64
	pinchStartScale float64
	lastMid         Vec2
}

// NewController creates a controller bound to a scene and view.
func NewController(scene *Scene, view *View) *Controller {
	return &Controller{scene: scene, view: view}
}

// Mode exposes the current gesture state for the renderer (cursor styling)
// and tests.
func (c *Controller) Mode() int {
	return int(c.mode)
}

// SelectedObject returns the currently selected object, or nil.
func (c *Controller) SelectedObject() *Object {
	if c.scene.Selected == 0 {
		return nil
	}
	return c.scene.Object(c.scene.Selected)
}

// PointerDown runs the press half of the drag/pan state machine: hit-test at
// the screen point; on a hit select the object, record the world-space grab
// offset, and raise it to the front; otherwise start panning and clear the
// selection.
func (c *Controller) PointerDown(sx, sy float64) {
	wx, wy := c.view.ScreenToWorld(sx, sy)
	if o := c.scene.HitTest(wx, wy); o != nil {
		c.scene.Selected = o.ID
		c.scene.BringToFront(o.ID)
		c.mode = modeDragging
		c.dragID = o.ID
		c.dragOffX = wx - o.X
		c.dragOffY = wy - o.Y
		return
	}
	c.scene.Selected = 0
	c.mode = modePanning
	c.lastSX = sx
	c.lastSY = sy
}

// PointerMove advances an active drag or pan, or updates hover state when no
// button is held.
func (c *Controller) PointerMove(sx, sy float64) {
	switch c.mode {
	case modeDragging:
		o := c.scene.Object(c.dragID)
		if o == nil {
			// Deleted mid-drag by an async completion.
			c.mode = modeIdle
			return
		}
		wx, wy := c.view.ScreenToWorld(sx, sy)
		o.X = wx - c.dragOffX
		o.Y = wy - c.dragOffY
	case modePanning:
		c.view.PanBy(sx-c.lastSX, sy-c.lastSY)
		c.lastSX = sx
		c.lastSY = sy
	case modeIdle:
		wx, wy := c.view.ScreenToWorld(sx, sy)
		if o := c.scene.HitTest(wx, wy); o != nil {
			c.scene.Hovered = o.ID
		} else {
			c.scene.Hovered = 0
		}
	}
}

// PointerUp ends any drag or pan.
func (c *Controller) PointerUp() {
	if c.mode == modeDragging || c.mode == modePanning {
		c.mode = modeIdle
	}
}

// Wheel applies a scroll at the screen point. Over a completed object the
// notches scale that object 10% per step about its center; anywhere else
// they zoom the view toward the cursor. Scroll-up grows.
func (c *Controller) Wheel(sx, sy, notches float64) {
	if notches == 0 {
		return
	}
	wx, wy := c.view.ScreenToWorld(sx, sy)
	if o := c.scene.HitTest(wx, wy); o != nil && !o.Generating() {
		o.ScaleBy(math.Pow(WheelScaleStep, notches))
		return
	}
	c.view.ZoomAt(sx, sy, math.Pow(WheelZoomStep, notches))
}

// PinchBegin starts a two-finger gesture from two screen points. The hit
// test at the midpoint disambiguates: a non-generating object is pinch-
// scaled on its own; anything else pinches the canvas (pan + zoom together,
// since the midpoint drifts between samples).
func (c *Controller) PinchBegin(p0, p1 Vec2) {
	mid := midpoint(p0, p1)
	c.pinchStartDist = distance(p0, p1)
	c.lastMid = mid

	wx, wy := c.view.ScreenToWorld(mid.X, mid.Y)
	if o := c.scene.HitTest(wx, wy); o != nil && !o.Generating() {
		c.mode = modePinchObject
		c.pinchID = o.ID
		c.pinchStartWidth = o.Width
		c.scene.Selected = o.ID
		return
	}
	c.mode = modePinchCanvas
	c.pinchID = 0
	c.pinchStartScale = c.view.Scale
}

// PinchMove advances an active pinch with the two current screen points.
// Object pinch applies the live ratio of current to initial distance to the
// initial width; canvas pinch pans by the midpoint drift and zooms by the
// same ratio anchored at the midpoint.
func (c *Controller) PinchMove(p0, p1 Vec2) {
	if c.mode != modePinchObject && c.mode != modePinchCanvas {
		return
	}
	if c.pinchStartDist <= 0 {
		return
	}
	mid := midpoint(p0, p1)
	ratio := distance(p0, p1) / c.pinchStartDist

	if c.mode == modePinchObject {
		if o := c.scene.Object(c.pinchID); o != nil {
			o.SetWidthAnchored(c.pinchStartWidth * ratio)
		}
		c.lastMid = mid
		return
	}

	c.view.PanBy(mid.X-c.lastMid.X, mid.Y-c.lastMid.Y)
	c.view.SetZoom(mid.X, mid.Y, c.pinchStartScale*ratio)
	c.lastMid = mid
}

// PinchEnd clears pinch state unconditionally. Called whenever the touch
// count drops below two.
func (c *Controller) PinchEnd() {
	if c.mode == modePinchObject || c.mode == modePinchCanvas {
		c.mode = modeIdle
	}
	c.pinchID = 0
}

// NudgeSelected moves the selected object by one arrow step, compensated by
// the current zoom so the on-screen distance stays constant.
func (c *Controller) NudgeSelected(dx, dy float64) {
	o := c.SelectedObject()
	if o == nil {
		return
	}
	step := ArrowStep / c.view.Scale
	o.X += dx * step
	o.Y += dy * step
}

// FlipSelected mirrors the selected object horizontally. Refused while a
// generation is pending.
func (c *Controller) FlipSelected() error {
	o := c.SelectedObject()
	if o == nil {
		return ErrNotFound
	}
	if o.Generating() {
		return ErrGenerationBusy
	}
	o.FlippedHorizontally = !o.FlippedHorizontally
	return nil
}

// ToggleOriginalSelected switches the selected object between its processed
// and original image. Refused while a generation is pending.
func (c *Controller) ToggleOriginalSelected() error {
	o := c.SelectedObject()
	if o == nil {
		return ErrNotFound
	}
	if o.Generating() {
		return ErrGenerationBusy
	}
	o.ShowOriginal = !o.ShowOriginal
	return nil
}

// DeleteSelected removes the selected object. Refused while a generation is
// pending (the placeholder must resolve or fail on its own).
func (c *Controller) DeleteSelected() error {
	o := c.SelectedObject()
	if o == nil {
		return ErrNotFound
	}
	if o.Generating() {
		return ErrGenerationBusy
	}
	c.scene.Remove(o.ID)
	return nil
}

func midpoint(a, b Vec2) Vec2 {
	return Vec2{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}

func distance(a, b Vec2) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	return math.Sqrt(dx*dx + dy*dy)
}
