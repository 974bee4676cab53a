package glyphs

import (
	"math/rand/v2"
	"testing"
	"time"

	"pgregory.net/rapid"
)

var t0 = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func field(reduced bool, seed uint64) *Field {
	return NewField(Options{ReducedMotion: reduced, Rand: rand.New(rand.NewPCG(seed, 3)), Start: t0})
}

func TestNewField_Counts(t *testing.T) {
	if n := field(false, 1).Len(); n != 16 {
		t.Errorf("expected 16 clusters, got %d", n)
	}
	if n := field(true, 1).Len(); n != 6 {
		t.Errorf("expected 6 reduced clusters, got %d", n)
	}
}

func TestRandomize_Ranges(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		reduced := rapid.Bool().Draw(t, "reduced")
		seed := rapid.Uint64().Draw(t, "seed")
		steps := rapid.IntRange(0, 20).Draw(t, "steps")
		f := field(reduced, seed)
		f.Advance(t0.Add(time.Duration(steps) * 1500 * time.Millisecond))

		scaleLo, scaleHi := 0.6, 2.0
		flickLo, flickHi := 3.5, 6.5
		hueLo, hueHi := 6.0, 11.0
		if reduced {
			scaleLo, scaleHi = 0.8, 1.6
			flickLo, flickHi = 4.5, 7.0
			hueLo, hueHi = 8.0, 12.0
		}
		for i, c := range f.Clusters() {
			if c.Left < 0 || c.Left >= 100 || c.Top < 0 || c.Top >= 100 {
				t.Fatalf("cluster %d at (%v,%v)%%", i, c.Left, c.Top)
			}
			if c.Scale < scaleLo || c.Scale > scaleHi {
				t.Fatalf("cluster %d scale %v outside [%v,%v]", i, c.Scale, scaleLo, scaleHi)
			}
			if s := c.Flicker.Seconds(); s < flickLo || s > flickHi {
				t.Fatalf("cluster %d flicker %vs", i, s)
			}
			if s := c.Hue.Seconds(); s < hueLo || s > hueHi {
				t.Fatalf("cluster %d hue %vs", i, s)
			}
			known := false
			for _, set := range Sets {
				known = known || c.Text == set
			}
			if !known {
				t.Fatalf("cluster %d shows unknown text %q", i, c.Text)
			}
		}
	})
}

func TestOpacity_InitialFadeIn(t *testing.T) {
	f := field(true, 5) // no stagger: every loop starts at t0, before the fade-in
	for i := 0; i < f.Len(); i++ {
		if o := f.Opacity(i, t0.Add(10*time.Millisecond)); o != 0 {
			t.Errorf("cluster %d visible before fade-in delay: %v", i, o)
		}
		if o := f.Opacity(i, t0.Add(FadeInDelay+FadeIn/2)); o < 0.49 || o > 0.51 {
			t.Errorf("cluster %d halfway through fade-in: %v", i, o)
		}
		if o := f.Opacity(i, t0.Add(FadeInDelay+FadeIn)); o != 1 {
			t.Errorf("cluster %d after fade-in: %v", i, o)
		}
	}
}

func TestOpacity_StaggeredFadeOut(t *testing.T) {
	f := field(false, 9)
	// Cluster 8 of 16 starts its loop at 1000ms: fully shown, then fading.
	hideAt := t0.Add(1000 * time.Millisecond)
	if o := f.Opacity(8, hideAt.Add(-time.Millisecond)); o != 1 {
		t.Errorf("expected fully visible just before loop start, got %v", o)
	}
	if o := f.Opacity(8, hideAt.Add(FadeOut/2)); o < 0.49 || o > 0.51 {
		t.Errorf("expected half faded, got %v", o)
	}
	if o := f.Opacity(8, hideAt.Add(FadeOut)); o != 0 {
		t.Errorf("expected hidden after fade-out, got %v", o)
	}
}

func TestAdvance_Reshuffles(t *testing.T) {
	f := field(false, 11)
	before := f.Clusters()

	if f.Advance(t0.Add(1000 * time.Millisecond)) {
		// cluster 0 loops at 0 and reshuffles no earlier than 1500ms
		t.Error("no cluster can reshuffle within the first 1500ms")
	}
	// Every cluster reshuffles by stagger + base + jitter.
	at := t0.Add(Stagger + 1500*time.Millisecond + 2500*time.Millisecond)
	if !f.Advance(at) {
		t.Fatal("expected reshuffles")
	}
	after := f.Clusters()
	for i := range after {
		if after[i].Left == before[i].Left && after[i].Top == before[i].Top {
			t.Errorf("cluster %d did not move", i)
		}
		if !after[i].nextAt.After(at) {
			t.Errorf("cluster %d has an overdue reshuffle after Advance", i)
		}
		if !after[i].shownAt.After(after[i].hiddenAt) {
			t.Errorf("cluster %d should be fading in after its reshuffle", i)
		}
	}
}

func TestAdvance_Deterministic(t *testing.T) {
	a, b := field(false, 42), field(false, 42)
	at := t0.Add(9 * time.Second)
	a.Advance(at)
	b.Advance(at)
	ca, cb := a.Clusters(), b.Clusters()
	for i := range ca {
		if ca[i] != cb[i] {
			t.Fatalf("cluster %d differs between equal seeds", i)
		}
	}
}

func TestOpacity_OutOfRange(t *testing.T) {
	f := field(false, 1)
	if f.Opacity(-1, t0) != 0 || f.Opacity(f.Len(), t0) != 0 {
		t.Error("out of range clusters have zero opacity")
	}
}

func TestHueAndFlicker(t *testing.T) {
	c := Cluster{Hue: 8 * time.Second, Flicker: 4 * time.Second, shownAt: t0}
	if h := c.HueAt(t0.Add(2 * time.Second)); h != 90 {
		t.Errorf("hue at quarter cycle = %v, want 90", h)
	}
	if h := c.HueAt(t0.Add(8 * time.Second)); h != 0 {
		t.Errorf("hue wraps, got %v", h)
	}
	if fl := c.FlickerAt(t0); fl < 0.999 || fl > 1.001 {
		t.Errorf("flicker starts bright, got %v", fl)
	}
	if fl := c.FlickerAt(t0.Add(2 * time.Second)); fl < 0.549 || fl > 0.551 {
		t.Errorf("flicker trough = %v, want 0.55", fl)
	}
}
