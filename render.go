package driftcanvas

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
	"golang.org/x/image/font/basicfont"
)

// Renderer draws the whole scene every frame: background, reference grid,
// objects in ascending z-order, loader presentations, selection rings, and
// UI chrome. It is a pure read path over the scene and view.
type Renderer struct {
	// Debug shows an FPS/object-count overlay.
	Debug bool

	face text.Face
	buf  []*Object
	tick int

	// Loader pulse, ping-ponged between two alpha levels.
	pulse      *gween.Tween
	pulseUp    bool
	pulseAlpha float64
}

// Palette. Kept flat and low-contrast so generated sprites stand out.
var (
	colorBackground = color.RGBA{0xf2, 0xf0, 0xea, 0xff}
	colorGrid       = color.RGBA{0xd8, 0xd4, 0xc8, 0xff}
	colorRing       = color.RGBA{0x2b, 0x6c, 0xb0, 0xff}
	colorText       = color.RGBA{0x40, 0x3c, 0x34, 0xff}
	colorChipText   = color.RGBA{0x6b, 0x66, 0x5a, 0xff}
	colorPromptBar  = color.RGBA{0x28, 0x26, 0x22, 0xe6}
)

const (
	ellipsisPeriod = 20  // ticks per dot step
	loaderPulseLo  = 0.35
	loaderPulseHi  = 0.8
)

// NewRenderer creates a renderer with the built-in monospace face.
func NewRenderer() *Renderer {
	return &Renderer{
		face:       text.NewGoXFace(basicfont.Face7x13),
		pulse:      gween.New(loaderPulseLo, loaderPulseHi, 0.7, ease.InOutQuad),
		pulseUp:    true,
		pulseAlpha: loaderPulseLo,
	}
}

// Tick advances the repaint-driving animation state: the ellipsis counter
// and the loader pulse tween. Call once per update.
func (r *Renderer) Tick() {
	r.tick++
	dt := float32(1.0 / float64(ebiten.TPS()))
	v, done := r.pulse.Update(dt)
	r.pulseAlpha = float64(v)
	if done {
		if r.pulseUp {
			r.pulse = gween.New(loaderPulseHi, loaderPulseLo, 0.7, ease.InOutQuad)
		} else {
			r.pulse = gween.New(loaderPulseLo, loaderPulseHi, 0.7, ease.InOutQuad)
		}
		r.pulseUp = !r.pulseUp
	}
}

// Draw renders the scene through the view onto screen. A nil screen is a
// silent no-op.
func (r *Renderer) Draw(screen *ebiten.Image, scene *Scene, view *View) {
	if screen == nil || scene == nil || view == nil {
		return
	}
	screen.Fill(colorBackground)

	w := float64(screen.Bounds().Dx())
	h := float64(screen.Bounds().Dy())
	r.drawGrid(screen, view, w, h)

	r.buf = scene.Objects(r.buf[:0])
	for _, o := range r.buf {
		r.drawObject(screen, scene, view, o)
	}
	for _, o := range r.buf {
		r.drawRing(screen, scene, view, o)
	}
	if sel := scene.Object(scene.Selected); sel != nil && !sel.Generating() {
		r.drawSuggestions(screen, view, sel)
	}

	if r.Debug {
		ebitenutil.DebugPrint(screen, fmt.Sprintf(
			"FPS: %.1f  TPS: %.1f  objects: %d", ebiten.ActualFPS(), ebiten.ActualTPS(), scene.Len()))
	}
}

// --- Grid ---

// gridSegment is one world-space line of the reference grid.
type gridSegment struct {
	X1, Y1, X2, Y2 float64
}

// gridSegments returns the two ±30° line families covering bounds, spaced
// by the perpendicular distance spacing. Pure; exercised directly by tests.
func gridSegments(bounds Rect, spacing float64) []gridSegment {
	if spacing <= 0 || bounds.Width <= 0 {
		return nil
	}
	slope := math.Tan(math.Pi / 6) // 30°
	x0 := bounds.X
	x1 := bounds.X + bounds.Width

	var segs []gridSegment
	for _, m := range []float64{slope, -slope} {
		// Lines are y = m*x + c. Perpendicular spacing d maps to an
		// intercept step of d/cos(30°).
		step := spacing / math.Cos(math.Pi/6)

		// Intercept range needed so every line crossing the bounds appears.
		cA := bounds.Y - m*x0
		cB := bounds.Y - m*x1
		cC := bounds.Y + bounds.Height - m*x0
		cD := bounds.Y + bounds.Height - m*x1
		cMin := math.Min(math.Min(cA, cB), math.Min(cC, cD))
		cMax := math.Max(math.Max(cA, cB), math.Max(cC, cD))

		for c := math.Floor(cMin/step) * step; c <= cMax; c += step {
			segs = append(segs, gridSegment{
				X1: x0, Y1: m*x0 + c,
				X2: x1, Y2: m*x1 + c,
			})
		}
	}
	return segs
}

func (r *Renderer) drawGrid(screen *ebiten.Image, view *View, w, h float64) {
	for _, seg := range gridSegments(view.VisibleBounds(w, h), GridSpacing) {
		x1, y1 := view.WorldToScreen(seg.X1, seg.Y1)
		x2, y2 := view.WorldToScreen(seg.X2, seg.Y2)
		vector.StrokeLine(screen, float32(x1), float32(y1), float32(x2), float32(y2), 1, colorGrid, true)
	}
}

// --- Objects ---

func (r *Renderer) drawObject(screen *ebiten.Image, scene *Scene, view *View, o *Object) {
	if o.Generating() {
		r.drawLoader(screen, scene, view, o)
		return
	}

	res := scene.Textures(o.ID)
	if res == nil {
		return
	}
	img := res.Processed
	if o.ShowOriginal && res.Original != nil {
		img = res.Original
	}
	if img == nil {
		return
	}
	r.drawTexture(screen, view, o, img, 1)
}

// drawTexture draws img into the object's world rectangle with the current
// flip state and the given alpha.
func (r *Renderer) drawTexture(screen *ebiten.Image, view *View, o *Object, img *ebiten.Image, alpha float64) {
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return
	}
	var op ebiten.DrawImageOptions
	if o.FlippedHorizontally {
		op.GeoM.Scale(-1, 1)
		op.GeoM.Translate(float64(b.Dx()), 0)
	}
	op.GeoM.Scale(o.Width/float64(b.Dx()), o.Height/float64(b.Dy()))
	op.GeoM.Scale(view.Scale, view.Scale)
	sx, sy := view.WorldToScreen(o.X, o.Y)
	op.GeoM.Translate(sx, sy)
	op.ColorScale.ScaleAlpha(float32(alpha))
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(img, &op)
}

// --- Loader presentations ---

func (r *Renderer) drawLoader(screen *ebiten.Image, scene *Scene, view *View, o *Object) {
	res := scene.Textures(o.ID)
	cx, cy := view.WorldToScreen(o.X+o.Width/2, o.Y+o.Height/2)

	switch {
	case res != nil && res.Processed != nil:
		// Remix or regenerate: previous image pulsing under the overlay,
		// caption below.
		r.drawTexture(screen, view, o, res.Processed, r.pulseAlpha)
		if o.RemixPrompt != "" {
			r.drawCentered(screen, o.RemixPrompt, cx, cy+o.Height/2*view.Scale+16, colorText)
		}
	case res != nil && res.Preview != nil:
		// Fresh image drop: shrunk preview thumbnail.
		shrunk := *o
		shrunk.Width = o.Width * 0.5
		shrunk.Height = o.Height * 0.5
		shrunk.X = o.X + o.Width*0.25
		shrunk.Y = o.Y + o.Height*0.25
		r.drawTexture(screen, view, &shrunk, res.Preview, r.pulseAlpha)
	default:
		// Fresh text prompt: dashed circle with the wrapped prompt inside.
		radius := math.Min(o.Width, o.Height) / 2 * view.Scale
		r.drawDashedCircle(screen, cx, cy, radius)
		lines := wrapText(o.SourceText, 24)
		lineH := 14.0
		y := cy - float64(len(lines)-1)*lineH/2
		for _, line := range lines {
			r.drawCentered(screen, line, cx, y, colorText)
			y += lineH
		}
	}

	r.drawCentered(screen, r.ellipsis(), cx, cy+o.Height/2*view.Scale+34, colorText)
}

// ellipsis returns the animated 1–3 dot string for the current tick.
func (r *Renderer) ellipsis() string {
	return strings.Repeat(".", 1+(r.tick/ellipsisPeriod)%3)
}

// drawDashedCircle strokes a circle as short arc chords so it reads as
// dashed at any zoom.
func (r *Renderer) drawDashedCircle(screen *ebiten.Image, cx, cy, radius float64) {
	if radius <= 0 {
		return
	}
	const dashes = 24
	for i := 0; i < dashes; i++ {
		a0 := float64(i) / dashes * 2 * math.Pi
		a1 := (float64(i) + 0.6) / dashes * 2 * math.Pi
		vector.StrokeLine(screen,
			float32(cx+radius*math.Cos(a0)), float32(cy+radius*math.Sin(a0)),
			float32(cx+radius*math.Cos(a1)), float32(cy+radius*math.Sin(a1)),
			2, colorRing, true)
	}
}

// --- Selection / hover rings ---

func (r *Renderer) drawRing(screen *ebiten.Image, scene *Scene, view *View, o *Object) {
	var alpha float32
	switch o.ID {
	case scene.Selected:
		alpha = 0.9
	case scene.Hovered:
		alpha = 0.35
	default:
		return
	}

	content := o.WorldContentRect()
	cx, cy := view.WorldToScreen(content.X+content.Width/2, content.Y+content.Height/2)
	radius := math.Min(o.Width, o.Height) / 2 * view.Scale

	c := colorRing
	c.A = uint8(float32(c.A) * alpha)
	vector.StrokeCircle(screen, float32(cx), float32(cy), float32(radius), 2, c, true)
}

// --- Suggestions ---

// drawSuggestions lists the selected object's remix suggestions below it,
// numbered to match the 1–5 shortcut keys.
func (r *Renderer) drawSuggestions(screen *ebiten.Image, view *View, o *Object) {
	if len(o.Suggestions) == 0 {
		return
	}
	sx, sy := view.WorldToScreen(o.X, o.Y+o.Height)
	y := sy + 20
	for i, s := range o.Suggestions {
		r.drawText(screen, fmt.Sprintf("%d  %s", i+1, s), sx, y, colorChipText)
		y += 16
	}
}

// --- Prompt bar ---

// DrawPrompt renders the prompt bar along the bottom edge while the user is
// typing. label names the pending action ("prompt" or "remix").
func (r *Renderer) DrawPrompt(screen *ebiten.Image, label, input string) {
	if screen == nil {
		return
	}
	w := float64(screen.Bounds().Dx())
	h := float64(screen.Bounds().Dy())
	vector.DrawFilledRect(screen, 0, float32(h-36), float32(w), 36, colorPromptBar, false)

	caret := "_"
	if (r.tick/ellipsisPeriod)%2 == 0 {
		caret = " "
	}
	r.drawText(screen, fmt.Sprintf("%s> %s%s", label, input, caret), 12, h-22, color.RGBA{0xf2, 0xf0, 0xea, 0xff})
}

// --- Text helpers ---

func (r *Renderer) drawText(screen *ebiten.Image, s string, x, y float64, c color.RGBA) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(c)
	text.Draw(screen, s, r.face, op)
}

func (r *Renderer) drawCentered(screen *ebiten.Image, s string, cx, y float64, c color.RGBA) {
	w, _ := text.Measure(s, r.face, 0)
	r.drawText(screen, s, cx-w/2, y, c)
}

// wrapText greedily wraps s into lines of at most maxChars runes, breaking
// on spaces. Words longer than maxChars are split hard.
func wrapText(s string, maxChars int) []string {
	if maxChars <= 0 {
		return []string{s}
	}
	var lines []string
	var cur strings.Builder
	curLen := 0

	flush := func() {
		if curLen > 0 {
			lines = append(lines, cur.String())
			cur.Reset()
			curLen = 0
		}
	}

	for _, word := range strings.Fields(s) {
		runes := []rune(word)
		for len(runes) > maxChars {
			flush()
			lines = append(lines, string(runes[:maxChars]))
			runes = runes[maxChars:]
		}
		wl := len(runes)
		if wl == 0 {
			continue
		}
		if curLen > 0 && curLen+1+wl > maxChars {
			flush()
		}
		if curLen > 0 {
			cur.WriteByte(' ')
			curLen++
		}
		cur.WriteString(string(runes))
		curLen += wl
	}
	flush()
	if lines == nil {
		lines = []string{""}
	}
	return lines
}
