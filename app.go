package driftcanvas

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"go.uber.org/zap"
)

// promptBox is the minimal typed-input surface: while open it captures all
// keystrokes, so the global shortcuts are scoped to "no text field focused".
type promptBox struct {
	active bool
	input  []rune
	// target is the object id a remix instruction applies to; 0 means the
	// prompt creates a new text-born object.
	target int64
}

func (p *promptBox) label() string {
	if p.target != 0 {
		return "remix"
	}
	return "prompt"
}

// App wires the scene, view, controller, pipeline, and renderer into an
// ebiten.Game. All scene mutation happens in Update on the game goroutine.
type App struct {
	cfg      Config
	log      *zap.Logger
	scene    *Scene
	view     *View
	ctrl     *Controller
	pipeline *Pipeline
	renderer *Renderer

	prompt promptBox

	// exportCanvas requests a full-frame capture during the next Draw.
	exportCanvas bool

	inputBuf   []rune
	touchIDs   []ebiten.TouchID
	touchCount int
	mouseDown  bool
}

// NewApp builds an App around the given generator. Pass a nil logger for
// silent operation (tests).
func NewApp(cfg Config, gen Generator, log *zap.Logger) *App {
	if log == nil {
		log = zap.NewNop()
	}
	scene := NewScene()
	view := NewView()
	r := NewRenderer()
	r.Debug = cfg.Debug
	return &App{
		cfg:      cfg,
		log:      log,
		scene:    scene,
		view:     view,
		ctrl:     NewController(scene, view),
		pipeline: NewPipeline(gen, scene, cfg.ColorThreshold, cfg.RequestTimeout(), log),
		renderer: r,
	}
}

// Update implements ebiten.Game. One event turn: apply async completions,
// then ingest dropped files, typed input, touch, mouse, and keyboard.
func (a *App) Update() error {
	a.scene.DrainCompletions()
	a.renderer.Tick()
	a.handleDroppedFiles()

	if a.prompt.active {
		a.updatePrompt()
		return nil
	}

	a.updateTouch()
	a.updateMouse()
	a.updateKeyboard()
	return nil
}

// Draw implements ebiten.Game.
func (a *App) Draw(screen *ebiten.Image) {
	a.renderer.Draw(screen, a.scene, a.view)
	if a.prompt.active {
		a.renderer.DrawPrompt(screen, a.prompt.label(), string(a.prompt.input))
	}
	if a.exportCanvas {
		a.exportCanvas = false
		if path, err := ExportCanvasPNG(a.cfg.ExportDir, screen); err != nil {
			a.log.Warn("canvas export failed", zap.Error(err))
		} else {
			a.log.Info("canvas exported", zap.String("path", path))
		}
	}
}

// Layout implements ebiten.Game.
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}

// --- Dropped files ---

// handleDroppedFiles places a pending object for every image file dropped
// onto the window, centered under the cursor, and starts its generation.
func (a *App) handleDroppedFiles() {
	files := ebiten.DroppedFiles()
	if files == nil {
		return
	}
	mx, my := ebiten.CursorPosition()
	wx, wy := a.view.ScreenToWorld(float64(mx), float64(my))

	err := fs.WalkDir(files, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := fs.ReadFile(files, path)
		if err != nil {
			a.log.Warn("read dropped file failed", zap.String("path", path), zap.Error(err))
			return nil
		}
		a.placeDroppedImage(wx, wy, data)
		// Stack multiple drops with a small offset.
		wx += ArrowStep
		wy += ArrowStep
		return nil
	})
	if err != nil {
		a.log.Warn("dropped files walk failed", zap.Error(err))
	}
}

func (a *App) placeDroppedImage(wx, wy float64, data []byte) {
	preview, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		a.log.Warn("dropped file is not a decodable image", zap.Error(err))
		return
	}
	o := a.scene.NewImageObject(wx, wy, data)
	a.scene.SetTextures(o.ID, &Textures{Preview: ebiten.NewImageFromImage(preview)})
	a.scene.Selected = o.ID
	if err := a.pipeline.Generate(o); err != nil {
		a.log.Warn("generation start failed", zap.Int64("object", o.ID), zap.Error(err))
		a.scene.Remove(o.ID)
	}
}

// --- Prompt bar ---

func (a *App) updatePrompt() {
	a.inputBuf = ebiten.AppendInputChars(a.inputBuf[:0])
	for _, r := range a.inputBuf {
		if r >= ' ' {
			a.prompt.input = append(a.prompt.input, r)
		}
	}
	if keyRepeats(ebiten.KeyBackspace) && len(a.prompt.input) > 0 {
		a.prompt.input = a.prompt.input[:len(a.prompt.input)-1]
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		a.prompt = promptBox{}
		return
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		a.submitPrompt()
	}
}

func (a *App) submitPrompt() {
	textInput := strings.TrimSpace(string(a.prompt.input))
	target := a.prompt.target
	a.prompt = promptBox{}
	if textInput == "" {
		return
	}

	if target != 0 {
		src := a.scene.Object(target)
		if src == nil {
			return
		}
		a.startRemix(src, textInput)
		return
	}

	w, h := ebiten.WindowSize()
	wx, wy := a.view.ScreenToWorld(float64(w)/2, float64(h)/2)
	o := a.scene.NewTextObject(wx, wy, textInput)
	a.scene.Selected = o.ID
	if err := a.pipeline.Generate(o); err != nil {
		a.log.Warn("generation start failed", zap.Int64("object", o.ID), zap.Error(err))
		a.scene.Remove(o.ID)
	}
}

func (a *App) startRemix(src *Object, instruction string) {
	o, err := a.pipeline.Remix(src, instruction)
	if err != nil {
		a.log.Warn("remix rejected", zap.Int64("object", src.ID), zap.Error(err))
		return
	}
	a.scene.Selected = o.ID
}

// --- Touch ---

func (a *App) updateTouch() {
	a.touchIDs = ebiten.AppendTouchIDs(a.touchIDs[:0])
	count := len(a.touchIDs)

	switch {
	case count >= 2:
		x0, y0 := ebiten.TouchPosition(a.touchIDs[0])
		x1, y1 := ebiten.TouchPosition(a.touchIDs[1])
		p0 := Vec2{X: float64(x0), Y: float64(y0)}
		p1 := Vec2{X: float64(x1), Y: float64(y1)}
		if a.touchCount < 2 {
			// Entering a two-finger gesture cancels any one-finger drag.
			a.ctrl.PointerUp()
			a.ctrl.PinchBegin(p0, p1)
		} else {
			a.ctrl.PinchMove(p0, p1)
		}
	case count == 1:
		if a.touchCount >= 2 {
			a.ctrl.PinchEnd()
		}
		x, y := ebiten.TouchPosition(a.touchIDs[0])
		if a.touchCount == 0 {
			a.ctrl.PointerDown(float64(x), float64(y))
		} else {
			a.ctrl.PointerMove(float64(x), float64(y))
		}
	case count == 0 && a.touchCount > 0:
		a.ctrl.PinchEnd()
		a.ctrl.PointerUp()
	}
	a.touchCount = count
}

// --- Mouse ---

func (a *App) updateMouse() {
	mx, my := ebiten.CursorPosition()
	sx, sy := float64(mx), float64(my)

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		a.mouseDown = true
		a.ctrl.PointerDown(sx, sy)
	} else if a.mouseDown && ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		a.ctrl.PointerMove(sx, sy)
	} else if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		a.mouseDown = false
		a.ctrl.PointerUp()
	} else if a.ctrl.Mode() == int(modeIdle) {
		a.ctrl.PointerMove(sx, sy) // hover only; never disturb a touch gesture
	}

	if _, wheelY := ebiten.Wheel(); wheelY != 0 {
		a.ctrl.Wheel(sx, sy, wheelY)
	}
}

// --- Keyboard ---

func (a *App) updateKeyboard() {
	if keyRepeats(ebiten.KeyArrowLeft) {
		a.ctrl.NudgeSelected(-1, 0)
	}
	if keyRepeats(ebiten.KeyArrowRight) {
		a.ctrl.NudgeSelected(1, 0)
	}
	if keyRepeats(ebiten.KeyArrowUp) {
		a.ctrl.NudgeSelected(0, -1)
	}
	if keyRepeats(ebiten.KeyArrowDown) {
		a.ctrl.NudgeSelected(0, 1)
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		a.prompt = promptBox{active: true, target: a.scene.Selected}
		return
	}

	sel := a.ctrl.SelectedObject()

	if inpututil.IsKeyJustPressed(ebiten.KeyR) && sel != nil {
		if err := a.pipeline.Generate(sel); err != nil {
			a.log.Debug("regenerate rejected", zap.Int64("object", sel.ID), zap.Error(err))
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF) {
		a.logRejected("flip", a.ctrl.FlipSelected())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyM) {
		a.logRejected("toggle original", a.ctrl.ToggleOriginalSelected())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyD) && sel != nil {
		if dup, err := a.scene.Duplicate(sel.ID); err != nil {
			a.log.Debug("duplicate rejected", zap.Int64("object", sel.ID), zap.Error(err))
		} else {
			a.scene.Selected = dup.ID
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDelete) || inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
		a.logRejected("delete", a.ctrl.DeleteSelected())
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		if ebiten.IsKeyPressed(ebiten.KeyShift) ||
			ebiten.IsKeyPressed(ebiten.KeyShiftLeft) || ebiten.IsKeyPressed(ebiten.KeyShiftRight) {
			a.exportCanvas = true
		} else if sel != nil && !sel.Generating() {
			if path, err := ExportObjectPNG(a.cfg.ExportDir, sel, a.cfg.ColorThreshold); err != nil {
				a.log.Warn("object export failed", zap.Int64("object", sel.ID), zap.Error(err))
			} else {
				a.log.Info("object exported", zap.String("path", path))
			}
		}
	}

	// 1-5 apply the corresponding remix suggestion.
	if sel != nil && len(sel.Suggestions) > 0 {
		for i, key := range []ebiten.Key{ebiten.KeyDigit1, ebiten.KeyDigit2, ebiten.KeyDigit3, ebiten.KeyDigit4, ebiten.KeyDigit5} {
			if i < len(sel.Suggestions) && inpututil.IsKeyJustPressed(key) {
				a.startRemix(sel, sel.Suggestions[i])
				break
			}
		}
	}
}

// logRejected logs content actions refused by the busy guard. ErrNotFound
// (nothing selected) stays silent.
func (a *App) logRejected(action string, err error) {
	if err == nil || errors.Is(err, ErrNotFound) {
		return
	}
	a.log.Debug("action rejected", zap.String("action", action), zap.Error(err))
}

// keyRepeats reports a just-pressed key, then fires again every few ticks
// once the key has been held for a beat.
func keyRepeats(key ebiten.Key) bool {
	d := inpututil.KeyPressDuration(key)
	return d == 1 || (d >= 20 && d%5 == 0)
}

// --- Entry point ---

// Run loads the generator from cfg, opens the window, and runs the game
// loop until the window closes.
func Run(cfg Config) error {
	log := NewLogger(cfg)
	defer func() { _ = log.Sync() }()

	gen, err := NewGeminiGenerator(context.Background(), cfg, log)
	if err != nil {
		return fmt.Errorf("driftcanvas: %w", err)
	}
	defer gen.Close()

	ebiten.SetWindowSize(cfg.WindowWidth, cfg.WindowHeight)
	ebiten.SetWindowTitle("driftcanvas")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	log.Info("starting",
		zap.String("image_model", cfg.ImageModel),
		zap.String("text_model", cfg.TextModel))
	return ebiten.RunGame(NewApp(cfg, gen, log))
}
