package driftcanvas

import "errors"

// Vec2 is a 2D vector used for positions, offsets, sizes, and touch points
// throughout the API.
type Vec2 struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle in world space. The coordinate system has
// its origin at the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Intersects reports whether r and other overlap.
// Adjacent rectangles (sharing only an edge) are considered intersecting.
func (r Rect) Intersects(other Rect) bool {
	return r.X <= other.X+other.Width &&
		r.X+r.Width >= other.X &&
		r.Y <= other.Y+other.Height &&
		r.Y+r.Height >= other.Y
}

// GenState is the lifecycle state of an object's generation pipeline.
// Transitions are guarded by Object.BeginGeneration; GenPending → GenPending
// is rejected so two pipelines can never run for the same object.
type GenState uint8

const (
	GenIdle    GenState = iota // created, no pipeline started yet
	GenPending                 // a generation request is in flight
	GenFailed                  // the last generation failed
	GenReady                   // a processed image is installed
)

// String returns the state name for logging.
func (s GenState) String() string {
	switch s {
	case GenIdle:
		return "idle"
	case GenPending:
		return "pending"
	case GenFailed:
		return "failed"
	case GenReady:
		return "ready"
	default:
		return "unknown"
	}
}

// SourceKind distinguishes what an object was created from. Exactly one
// source is set at creation and never changes.
type SourceKind uint8

const (
	SourceImage SourceKind = iota // created from a dropped/duplicated raster image
	SourceText                    // created from a typed text prompt
)

// Sentinel errors returned by the scene model and generation pipeline.
var (
	// ErrGenerationBusy is returned when a generation is requested for an
	// object that already has one in flight (single-flight guard).
	ErrGenerationBusy = errors.New("driftcanvas: generation already in flight")

	// ErrNoImage is returned when the model reply contains no image part.
	ErrNoImage = errors.New("driftcanvas: model returned no image")

	// ErrNotFound is returned when an operation targets an object id that is
	// not (or no longer) in the scene.
	ErrNotFound = errors.New("driftcanvas: no such object")
)

// Tunables. World units are pre-zoom pixels.
const (
	// DefaultColorThreshold is the squared-Euclidean RGB distance below which
	// a pixel counts as background (20 per channel).
	DefaultColorThreshold = 20 * 20

	// MinZoom and MaxZoom clamp the view scale.
	MinZoom = 0.2
	MaxZoom = 3.0

	// MinObjectWidth and MaxObjectWidth clamp per-object display width.
	// DefaultObjectWidth is the display width given to a freshly generated
	// object before the user resizes it.
	MinObjectWidth     = 50.0
	MaxObjectWidth     = 1000.0
	DefaultObjectWidth = 375.0

	// WheelZoomStep multiplies the view scale per wheel notch over empty
	// canvas; WheelScaleStep multiplies an object's width per notch.
	WheelZoomStep  = 1.05
	WheelScaleStep = 1.1

	// GridSpacing is the distance between isometric grid lines in world units.
	GridSpacing = 50.0

	// ArrowStep is how far arrow keys move the selected object, in world units.
	ArrowStep = 25.0

	// ExportLongestSide is the longer dimension of a single-object PNG export.
	ExportLongestSide = 1000
)

// clamp restricts v to [lo, hi].
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
