package driftcanvas

// View is the global pan/zoom state: a uniform scale and a screen-space
// translation. Every conversion between screen and world coordinates goes
// through it.
//
//	screen = world*Scale + Offset
type View struct {
	// Scale is the zoom factor, clamped to [MinZoom, MaxZoom].
	Scale float64
	// OffsetX and OffsetY are the screen-space translation.
	OffsetX, OffsetY float64
}

// NewView creates a view at 1:1 scale with no offset.
func NewView() *View {
	return &View{Scale: 1}
}

// WorldToScreen converts world coordinates to screen coordinates.
func (v *View) WorldToScreen(wx, wy float64) (sx, sy float64) {
	return wx*v.Scale + v.OffsetX, wy*v.Scale + v.OffsetY
}

// ScreenToWorld converts screen coordinates to world coordinates.
// Exact inverse of WorldToScreen for any valid scale.
func (v *View) ScreenToWorld(sx, sy float64) (wx, wy float64) {
	return (sx - v.OffsetX) / v.Scale, (sy - v.OffsetY) / v.Scale
}

// PanBy accumulates a raw screen-space pointer delta. Pan distance is
// independent of the current zoom.
func (v *View) PanBy(dx, dy float64) {
	v.OffsetX += dx
	v.OffsetY += dy
}

// ZoomAt multiplies the scale by factor, clamped to [MinZoom, MaxZoom], and
// recomputes the offset so the world point under the screen anchor (sx, sy)
// stays visually stationary:
//
//	newOffset = screenAnchor - worldAnchor*newScale
func (v *View) ZoomAt(sx, sy, factor float64) {
	wx, wy := v.ScreenToWorld(sx, sy)
	v.Scale = clamp(v.Scale*factor, MinZoom, MaxZoom)
	v.OffsetX = sx - wx*v.Scale
	v.OffsetY = sy - wy*v.Scale
}

// SetZoom sets the scale directly (clamped), anchored at the screen point
// (sx, sy). Used by canvas pinch, where the gesture supplies an absolute
// ratio rather than a per-event factor.
func (v *View) SetZoom(sx, sy, scale float64) {
	wx, wy := v.ScreenToWorld(sx, sy)
	v.Scale = clamp(scale, MinZoom, MaxZoom)
	v.OffsetX = sx - wx*v.Scale
	v.OffsetY = sy - wy*v.Scale
}

// VisibleBounds returns the world-space rectangle covered by a viewport of
// the given screen size. Used by the renderer to extend the grid across the
// whole visible area.
func (v *View) VisibleBounds(screenW, screenH float64) Rect {
	x0, y0 := v.ScreenToWorld(0, 0)
	x1, y1 := v.ScreenToWorld(screenW, screenH)
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}
