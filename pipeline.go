package driftcanvas

import (
	"bytes"
	"context"
	"image"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"
)

// Pipeline runs generation requests against a Generator on worker goroutines
// and feeds the results back into the scene through its completion queue.
// One request per object at a time, enforced by Object.BeginGeneration; no
// request is ever cancelled or retried.
type Pipeline struct {
	gen       Generator
	scene     *Scene
	log       *zap.Logger
	threshold int
	timeout   time.Duration
}

// NewPipeline wires a generator to a scene. threshold is the chroma-key
// color distance (DefaultColorThreshold when zero); timeout bounds each
// request (60s when zero).
func NewPipeline(gen Generator, scene *Scene, threshold int, timeout time.Duration, log *zap.Logger) *Pipeline {
	if threshold <= 0 {
		threshold = DefaultColorThreshold
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{gen: gen, scene: scene, log: log, threshold: threshold, timeout: timeout}
}

// Generate starts (or restarts) the object's generation from its immutable
// source: the original dropped bytes for image-born objects, the original
// prompt for text-born ones, the seed image plus instruction for remixes.
// Returns ErrGenerationBusy if a request is already in flight.
func (p *Pipeline) Generate(o *Object) error {
	if err := o.BeginGeneration(); err != nil {
		return err
	}

	id := o.ID
	source := o.Source
	data := o.SourceData
	text := o.SourceText
	if source == SourceImage {
		text = o.RemixPrompt
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		defer cancel()

		var res GenResult
		var err error
		if source == SourceText {
			res, err = p.gen.GenerateFromText(ctx, text)
		} else {
			res, err = p.gen.GenerateFromImage(ctx, data, text)
		}
		if err != nil {
			p.log.Warn("generation failed", zap.Int64("object", id), zap.Error(err))
			p.scene.Post(id, failCompletion)
			return
		}
		p.finish(id, res)
	}()
	return nil
}

// Remix places a variant object seeded with src's last result and starts its
// generation. Rejected with ErrGenerationBusy while src itself is
// generating, and with ErrNoImage if src has no generated image yet.
func (p *Pipeline) Remix(src *Object, instruction string) (*Object, error) {
	if src.Generating() {
		return nil, ErrGenerationBusy
	}
	if len(src.GeneratedData) == 0 {
		return nil, ErrNoImage
	}
	o := p.scene.NewRemixObject(src, instruction)
	if err := p.Generate(o); err != nil {
		// Freshly created, cannot be busy; drop it if it somehow is.
		p.scene.Remove(o.ID)
		return nil, err
	}
	return o, nil
}

// finish processes the model output off the game goroutine (decode + chroma
// key + bounds), then posts a single completion that installs everything
// atomically. A best-effort suggestion fetch follows.
func (p *Pipeline) finish(id int64, res GenResult) {
	processed, bounds, err := ProcessImageData(res.ImageData, p.threshold)
	if err != nil {
		// Degraded output is still placed; log for diagnostics only.
		p.log.Warn("processing degraded", zap.Int64("object", id), zap.Error(err))
	}
	original, _, derr := image.Decode(bytes.NewReader(res.ImageData))

	p.scene.Post(id, func(s *Scene, o *Object) {
		t := &Textures{Processed: ebiten.NewImageFromImage(processed)}
		if derr == nil {
			t.Original = ebiten.NewImageFromImage(original)
		}
		s.SetTextures(id, t)
		o.GeneratedData = res.ImageData
		o.FinishGeneration(processed.Bounds().Dx(), processed.Bounds().Dy(), bounds)
	})

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		defer cancel()
		sugg := p.gen.RemixSuggestions(ctx, res.ImageData, "")
		if len(sugg) == 0 {
			return
		}
		p.scene.Post(id, func(_ *Scene, o *Object) {
			o.Suggestions = sugg
		})
	}()
}

// failCompletion applies the failure policy on the game goroutine: a fresh
// placeholder vanishes silently, a remix keeps its previous image.
func failCompletion(s *Scene, o *Object) {
	if o.PixelW > 0 {
		o.FailGeneration()
		return
	}
	s.Remove(o.ID)
}
