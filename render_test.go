package driftcanvas

import (
	"math"
	"reflect"
	"testing"
)

func TestGridSegmentsCoverBounds(t *testing.T) {
	bounds := Rect{X: -100, Y: -100, Width: 400, Height: 300}
	segs := gridSegments(bounds, GridSpacing)
	if len(segs) == 0 {
		t.Fatal("expected segments for a non-empty viewport")
	}

	slope := math.Tan(math.Pi / 6)
	up, down := 0, 0
	for _, s := range segs {
		if s.X1 != bounds.X || s.X2 != bounds.X+bounds.Width {
			t.Fatalf("segment %+v not clipped to the bounds' x-range", s)
		}
		m := (s.Y2 - s.Y1) / (s.X2 - s.X1)
		switch {
		case approxEqual(m, slope, 1e-9):
			up++
		case approxEqual(m, -slope, 1e-9):
			down++
		default:
			t.Fatalf("segment slope %v, want ±tan(30°)", m)
		}
	}
	if up == 0 || down == 0 {
		t.Errorf("families = (%d up, %d down), want both directions", up, down)
	}
}

func TestGridSegmentsSpacing(t *testing.T) {
	segs := gridSegments(Rect{X: 0, Y: 0, Width: 1000, Height: 1000}, GridSpacing)

	slope := math.Tan(math.Pi / 6)
	step := GridSpacing / math.Cos(math.Pi/6)
	var intercepts []float64
	for _, s := range segs {
		m := (s.Y2 - s.Y1) / (s.X2 - s.X1)
		if approxEqual(m, slope, 1e-9) {
			intercepts = append(intercepts, s.Y1-m*s.X1)
		}
	}
	if len(intercepts) < 2 {
		t.Fatal("expected multiple lines in the rising family")
	}
	for i := 1; i < len(intercepts); i++ {
		if !approxEqual(intercepts[i]-intercepts[i-1], step, 1e-6) {
			t.Errorf("intercept gap = %v, want %v", intercepts[i]-intercepts[i-1], step)
		}
	}
}

func TestGridSegmentsDegenerateInput(t *testing.T) {
	if segs := gridSegments(Rect{}, GridSpacing); segs != nil {
		t.Errorf("empty bounds produced %d segments", len(segs))
	}
	if segs := gridSegments(Rect{Width: 100, Height: 100}, 0); segs != nil {
		t.Errorf("zero spacing produced %d segments", len(segs))
	}
}

func TestWrapText(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		maxChars int
		want     []string
	}{
		{"fits", "small dragon", 24, []string{"small dragon"}},
		{"breaks on spaces", "a knight riding a giant snail", 12, []string{"a knight", "riding a", "giant snail"}},
		{"hard splits long words", "antidisestablishmentarianism", 10, []string{"antidisest", "ablishment", "arianism"}},
		{"collapses whitespace", "  two \t words  ", 24, []string{"two words"}},
		{"empty input", "", 24, []string{""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := wrapText(tt.in, tt.maxChars)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("wrapText(%q, %d) = %q, want %q", tt.in, tt.maxChars, got, tt.want)
			}
		})
	}
}

func TestWrapTextNeverExceedsWidth(t *testing.T) {
	for _, line := range wrapText("the quick brown fox jumps over the lazy dog repeatedly", 10) {
		if len([]rune(line)) > 10 {
			t.Errorf("line %q exceeds 10 runes", line)
		}
	}
}

func TestEllipsisCycles(t *testing.T) {
	r := NewRenderer()
	want := []string{".", "..", "...", "."}
	for i, w := range want {
		r.tick = i * ellipsisPeriod
		if got := r.ellipsis(); got != w {
			t.Errorf("tick %d: ellipsis = %q, want %q", r.tick, got, w)
		}
	}
	// Stable within a period.
	r.tick = ellipsisPeriod + ellipsisPeriod/2
	if got := r.ellipsis(); got != ".." {
		t.Errorf("mid-period ellipsis = %q, want ..", got)
	}
}

func TestDrawHandlesNilScreen(t *testing.T) {
	r := NewRenderer()
	r.Draw(nil, NewScene(), NewView()) // must not panic
	r.DrawPrompt(nil, "prompt", "hi")
}
