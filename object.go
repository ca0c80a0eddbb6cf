package driftcanvas

import "image"

// Object is a placed entity on the infinite canvas.
//
// Geometry lives in world space: (X, Y) is the top-left corner and
// Width/Height the display size. ContentBounds is the tight rectangle of
// opaque pixels in the processed image's own pixel space; hit testing and
// the selection ring use it so transparent padding is not interactive.
type Object struct {
	ID int64

	X, Y          float64
	Width, Height float64

	// ContentBounds is in processed-image pixel space, always inside
	// [0,PixelW]x[0,PixelH]. Zero until the first generation completes.
	ContentBounds image.Rectangle
	// PixelW and PixelH are the processed image's native dimensions.
	PixelW, PixelH int

	// Source identity: exactly one of SourceData/SourceText is set at
	// creation and never changes. SourceData holds the original encoded
	// image bytes for image-born objects so regenerate can resend them.
	Source     SourceKind
	SourceData []byte
	SourceText string

	// Variation marks remix-derived objects: they keep the previous image
	// visible under the loading overlay and use the caption loader.
	Variation bool
	// RemixPrompt is the remix instruction. Shown as the loader caption
	// while a remix generation is pending, and resent on regenerate.
	RemixPrompt string

	// GeneratedData holds the encoded image the model last returned, before
	// background removal. Remixes, suggestion fetches, and original-image
	// export all read from it.
	GeneratedData []byte

	FlippedHorizontally bool
	ShowOriginal        bool

	// Suggestions holds up to 5 short remix prompts fetched after a
	// successful generation. Best-effort; may be empty.
	Suggestions []string

	state GenState
}

// State returns the object's generation lifecycle state.
func (o *Object) State() GenState {
	return o.state
}

// Generating reports whether a generation request is in flight.
func (o *Object) Generating() bool {
	return o.state == GenPending
}

// BeginGeneration transitions the object into GenPending. It is the
// single-flight guard: a second begin while one is in flight returns
// ErrGenerationBusy, regardless of how the caller was invoked.
func (o *Object) BeginGeneration() error {
	if o.state == GenPending {
		return ErrGenerationBusy
	}
	o.state = GenPending
	return nil
}

// FinishGeneration installs the processed image geometry: native pixel size,
// content bounds, and a display size of DefaultObjectWidth with the height
// derived from the image's aspect ratio. Keeps the current width on remixes
// so the object doesn't jump under the user.
func (o *Object) FinishGeneration(pixelW, pixelH int, bounds image.Rectangle) {
	o.PixelW = pixelW
	o.PixelH = pixelH
	o.ContentBounds = bounds.Intersect(image.Rect(0, 0, pixelW, pixelH))

	width := DefaultObjectWidth
	if o.Variation && o.Width > 0 {
		width = o.Width
	}
	o.setWidthKeepingAspect(width)
	o.state = GenReady
}

// FailGeneration transitions to GenFailed. For a remix that already has an
// image the object stays usable; fresh objects are removed by the scene.
func (o *Object) FailGeneration() {
	o.state = GenFailed
}

// setWidthKeepingAspect sets the display width (clamped) and re-derives the
// height from the processed image's aspect ratio.
func (o *Object) setWidthKeepingAspect(width float64) {
	width = clamp(width, MinObjectWidth, MaxObjectWidth)
	o.Width = width
	if o.PixelW > 0 {
		o.Height = width * float64(o.PixelH) / float64(o.PixelW)
	} else if o.Height == 0 {
		o.Height = width
	}
}

// ScaleBy multiplies the display width by factor, clamped to
// [MinObjectWidth, MaxObjectWidth], keeping the object's center fixed and
// preserving aspect ratio.
func (o *Object) ScaleBy(factor float64) {
	o.SetWidthAnchored(o.Width * factor)
}

// SetWidthAnchored sets the display width (clamped, aspect preserved) while
// keeping the object's center stationary.
func (o *Object) SetWidthAnchored(width float64) {
	cx := o.X + o.Width/2
	cy := o.Y + o.Height/2
	o.setWidthKeepingAspect(width)
	o.X = cx - o.Width/2
	o.Y = cy - o.Height/2
}

// Center returns the object's world-space center point.
func (o *Object) Center() Vec2 {
	return Vec2{X: o.X + o.Width/2, Y: o.Y + o.Height/2}
}

// WorldRect returns the object's full rectangular extent in world space.
func (o *Object) WorldRect() Rect {
	return Rect{X: o.X, Y: o.Y, Width: o.Width, Height: o.Height}
}

// WorldContentRect returns the content bounds scaled into world space. Falls
// back to the full extent while no processed image exists.
func (o *Object) WorldContentRect() Rect {
	if o.PixelW == 0 || o.PixelH == 0 || o.ContentBounds.Empty() {
		return o.WorldRect()
	}
	sx := o.Width / float64(o.PixelW)
	sy := o.Height / float64(o.PixelH)

	b := o.ContentBounds
	minX := float64(b.Min.X)
	// Horizontal flip mirrors the content bounds inside the extent.
	if o.FlippedHorizontally {
		minX = float64(o.PixelW - b.Max.X)
	}
	return Rect{
		X:      o.X + minX*sx,
		Y:      o.Y + float64(b.Min.Y)*sy,
		Width:  float64(b.Dx()) * sx,
		Height: float64(b.Dy()) * sy,
	}
}

// HitBy reports whether the world point (wx, wy) hits this object. While a
// generation is pending the full rectangular extent counts, so a loading
// placeholder stays selectable; once complete the point must also fall
// inside the scaled content bounds, so the visible silhouette is what the
// user interacts with.
func (o *Object) HitBy(wx, wy float64) bool {
	if !o.WorldRect().Contains(wx, wy) {
		return false
	}
	if o.Generating() {
		return true
	}
	return o.WorldContentRect().Contains(wx, wy)
}
