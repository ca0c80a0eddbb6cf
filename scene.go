package driftcanvas

import "github.com/hajimehoshi/ebiten/v2"

// Textures is the per-object GPU resource set, owned by the scene's resource
// table and released deterministically when the owning object is removed.
type Textures struct {
	// Processed is the background-removed image shown by default.
	Processed *ebiten.Image
	// Original is the unprocessed image, shown when ShowOriginal is set.
	Original *ebiten.Image
	// Preview is a thumbnail of the dropped file, shown while the first
	// generation is pending.
	Preview *ebiten.Image
}

func (t *Textures) release() {
	if t == nil {
		return
	}
	if t.Processed != nil {
		t.Processed.Deallocate()
		t.Processed = nil
	}
	if t.Original != nil {
		t.Original.Deallocate()
		t.Original = nil
	}
	if t.Preview != nil {
		t.Preview.Deallocate()
		t.Preview = nil
	}
}

// completion is a deferred scene mutation produced by an async pipeline.
// It is keyed by object id: if the object was removed in the meantime the
// lookup finds nothing and the completion is dropped.
type completion struct {
	id int64
	fn func(s *Scene, o *Object)
}

const completionQueueCap = 64

// Scene owns the placed objects, their z-order, selection/hover state, and
// the per-object resource table. All mutation happens on the game goroutine;
// async work reaches the scene only through the completion queue drained at
// the start of each update.
type Scene struct {
	objects map[int64]*Object
	// order holds object ids in ascending z-order (last = front-most),
	// separate from identity storage so move-to-front is a cheap slice
	// operation rather than a map rebuild.
	order  []int64
	nextID int64

	resources map[int64]*Textures

	completions chan completion

	// Selected and Hovered are object ids; 0 means none.
	Selected int64
	Hovered  int64
}

// NewScene creates an empty scene.
func NewScene() *Scene {
	return &Scene{
		objects:     make(map[int64]*Object),
		resources:   make(map[int64]*Textures),
		completions: make(chan completion, completionQueueCap),
	}
}

func (s *Scene) add(o *Object) *Object {
	s.nextID++
	o.ID = s.nextID
	s.objects[o.ID] = o
	s.order = append(s.order, o.ID)
	return o
}

// NewImageObject places a new object born from dropped image bytes, centered
// on the world point (wx, wy) with a provisional square extent.
func (s *Scene) NewImageObject(wx, wy float64, data []byte) *Object {
	return s.add(&Object{
		X:          wx - DefaultObjectWidth/2,
		Y:          wy - DefaultObjectWidth/2,
		Width:      DefaultObjectWidth,
		Height:     DefaultObjectWidth,
		Source:     SourceImage,
		SourceData: data,
	})
}

// NewTextObject places a new object born from a typed prompt, centered on
// the world point (wx, wy).
func (s *Scene) NewTextObject(wx, wy float64, prompt string) *Object {
	return s.add(&Object{
		X:          wx - DefaultObjectWidth/2,
		Y:          wy - DefaultObjectWidth/2,
		Width:      DefaultObjectWidth,
		Height:     DefaultObjectWidth,
		Source:     SourceText,
		SourceText: prompt,
	})
}

// NewRemixObject places a variant of src seeded with its last generated
// image. The new object keeps src's image visible under the loading overlay
// (texture copies installed by the caller's pipeline start) and carries the
// remix instruction as its loader caption.
func (s *Scene) NewRemixObject(src *Object, instruction string) *Object {
	o := s.add(&Object{
		X:             src.X + ArrowStep,
		Y:             src.Y + ArrowStep,
		Width:         src.Width,
		Height:        src.Height,
		PixelW:        src.PixelW,
		PixelH:        src.PixelH,
		ContentBounds: src.ContentBounds,
		Source:        SourceImage,
		SourceData:    append([]byte(nil), src.GeneratedData...),
		GeneratedData: append([]byte(nil), src.GeneratedData...),
		Variation:     true,
		RemixPrompt:   instruction,
	})
	if res := s.resources[src.ID]; res != nil {
		s.resources[o.ID] = &Textures{
			Processed: copyTexture(res.Processed),
			Original:  copyTexture(res.Original),
		}
	}
	return o
}

// Object returns the object with the given id, or nil if it does not exist.
func (s *Scene) Object(id int64) *Object {
	return s.objects[id]
}

// Len returns the number of placed objects.
func (s *Scene) Len() int {
	return len(s.order)
}

// Objects appends the objects in ascending z-order (draw order) to buf and
// returns it. Pass a reused buffer to avoid per-frame allocation.
func (s *Scene) Objects(buf []*Object) []*Object {
	for _, id := range s.order {
		buf = append(buf, s.objects[id])
	}
	return buf
}

// Remove deletes the object and releases its resources. Idempotent:
// removing an unknown id is a no-op and returns false.
func (s *Scene) Remove(id int64) bool {
	if _, ok := s.objects[id]; !ok {
		return false
	}
	delete(s.objects, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.resources[id].release()
	delete(s.resources, id)
	if s.Selected == id {
		s.Selected = 0
	}
	if s.Hovered == id {
		s.Hovered = 0
	}
	return true
}

// BringToFront moves the object to the end of the z-order so it draws last.
// No-op for unknown ids.
func (s *Scene) BringToFront(id int64) {
	for i, oid := range s.order {
		if oid == id {
			copy(s.order[i:], s.order[i+1:])
			s.order[len(s.order)-1] = id
			return
		}
	}
}

// HitTest returns the topmost object whose silhouette contains the world
// point (wx, wy), or nil. Candidates are tested in reverse z-order so the
// last-added object wins ties.
func (s *Scene) HitTest(wx, wy float64) *Object {
	for i := len(s.order) - 1; i >= 0; i-- {
		o := s.objects[s.order[i]]
		if o.HitBy(wx, wy) {
			return o
		}
	}
	return nil
}

// Duplicate places a copy of the object offset by one arrow step, with its
// own copies of the GPU textures so the two objects' lifetimes stay
// independent. Returns ErrNotFound for unknown ids and ErrGenerationBusy
// while the source is generating.
func (s *Scene) Duplicate(id int64) (*Object, error) {
	src := s.objects[id]
	if src == nil {
		return nil, ErrNotFound
	}
	if src.Generating() {
		return nil, ErrGenerationBusy
	}

	dup := *src
	dup.X += ArrowStep
	dup.Y += ArrowStep
	dup.Suggestions = append([]string(nil), src.Suggestions...)
	dup.SourceData = append([]byte(nil), src.SourceData...)
	s.add(&dup)

	if res := s.resources[id]; res != nil {
		s.resources[dup.ID] = &Textures{
			Processed: copyTexture(res.Processed),
			Original:  copyTexture(res.Original),
			Preview:   copyTexture(res.Preview),
		}
	}
	return &dup, nil
}

// copyTexture returns an independent copy of img, or nil for nil.
func copyTexture(img *ebiten.Image) *ebiten.Image {
	if img == nil {
		return nil
	}
	b := img.Bounds()
	out := ebiten.NewImage(b.Dx(), b.Dy())
	out.DrawImage(img, nil)
	return out
}

// SetTextures installs the resource set for an object id, releasing whatever
// it replaces. Installing for a removed id releases the textures immediately.
func (s *Scene) SetTextures(id int64, t *Textures) {
	if _, ok := s.objects[id]; !ok {
		t.release()
		return
	}
	s.resources[id].release()
	s.resources[id] = t
}

// Textures returns the resource set for an object id, or nil.
func (s *Scene) Textures(id int64) *Textures {
	return s.resources[id]
}

// Post queues a completion against an object id. Called from pipeline
// goroutines; never runs scene code itself. If the queue is full the
// posting goroutine waits, which is acceptable for the handful of requests
// a user can have in flight.
func (s *Scene) Post(id int64, fn func(s *Scene, o *Object)) {
	s.completions <- completion{id: id, fn: fn}
}

// DrainCompletions applies every queued completion whose object still
// exists. Called once per update on the game goroutine, so each completion
// runs as a single atomic scene mutation. Returns the number applied.
func (s *Scene) DrainCompletions() int {
	applied := 0
	for {
		select {
		case c := <-s.completions:
			if o, ok := s.objects[c.id]; ok {
				c.fn(s, o)
				applied++
			}
		default:
			return applied
		}
	}
}
