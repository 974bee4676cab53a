// Package glyphs animates the decorative background: clusters of symbols
// that appear at random spots, fade in, and jump elsewhere on a loop.
//
// The field is driven by explicit timestamps rather than timers, so a caller
// advances it from its own frame loop and tests can step it exactly.
package glyphs

import (
	"math"
	"math/rand/v2"
	"time"
)

// Sets are the glyph strings a cluster can show.
var Sets = []string{
	"∆ ƒ π λ ξ 0 1 2 3 5 8 A C E G H K",
	"β γ ζ ψ Ω 7 9 B D F J L N Q Z",
	"▮ ▯ ▰ ϟ ψ Ω ≡ ≣ ≠ ✶ ✷ ✸ ✹ ✺",
	"0 1 0 1 0 1 0 1 0 1 0 1 0 1",
}

const (
	// FadeInDelay separates a reshuffle from the start of its fade-in.
	FadeInDelay = 30 * time.Millisecond
	// FadeIn is the opacity ramp after a reshuffle.
	FadeIn = 400 * time.Millisecond
	// FadeOut is the opacity ramp when a loop iteration hides a cluster.
	FadeOut = 350 * time.Millisecond
	// Stagger spreads the first loop iteration of each cluster.
	Stagger = 2000 * time.Millisecond
)

type params struct {
	clusters int
	base     time.Duration
	jitter   time.Duration
	scaleMin float64
	scaleRng float64
	flickMin float64 // seconds
	flickRng float64
	hueMin   float64
	hueRng   float64
	stagger  bool
}

var (
	normal  = params{16, 1500 * time.Millisecond, 2500 * time.Millisecond, 0.6, 1.4, 3.5, 3, 6, 5, true}
	reduced = params{6, 2600 * time.Millisecond, 2200 * time.Millisecond, 0.8, 0.8, 4.5, 2.5, 8, 4, false}
)

// Cluster is one group of glyphs. Left and Top are percentages of the
// background area.
type Cluster struct {
	Text    string
	Left    float64
	Top     float64
	Scale   float64
	Flicker time.Duration // flicker cycle
	Hue     time.Duration // hue rotation cycle

	shownAt  time.Time // fade-in start
	hiddenAt time.Time // fade-out start
	nextAt   time.Time // next reshuffle
}

// Options configures a Field.
type Options struct {
	ReducedMotion bool
	Rand          *rand.Rand
	Start         time.Time
}

// Field is the set of background clusters.
type Field struct {
	p        params
	rng      *rand.Rand
	clusters []Cluster
}

// NewField places every cluster and schedules its first loop iteration.
func NewField(opts Options) *Field {
	p := normal
	if opts.ReducedMotion {
		p = reduced
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	start := opts.Start
	if start.IsZero() {
		start = time.Now()
	}

	f := &Field{p: p, rng: rng, clusters: make([]Cluster, p.clusters)}
	for i := range f.clusters {
		f.randomize(&f.clusters[i], start)
	}
	for i := range f.clusters {
		var delay time.Duration
		if p.stagger {
			delay = time.Duration(float64(i) / float64(p.clusters) * float64(Stagger))
		}
		f.loop(&f.clusters[i], start.Add(delay))
	}
	return f
}

// randomize moves c and starts its fade-in shortly after at.
func (f *Field) randomize(c *Cluster, at time.Time) {
	c.Left = f.rng.Float64() * 100
	c.Top = f.rng.Float64() * 100
	c.Scale = f.p.scaleMin + f.rng.Float64()*f.p.scaleRng
	c.Flicker = seconds(f.p.flickMin + f.rng.Float64()*f.p.flickRng)
	c.Hue = seconds(f.p.hueMin + f.rng.Float64()*f.p.hueRng)
	c.Text = Sets[f.rng.IntN(len(Sets))]
	c.shownAt = at.Add(FadeInDelay)
}

// loop starts hiding c at at and schedules its next reshuffle.
func (f *Field) loop(c *Cluster, at time.Time) {
	c.hiddenAt = at
	c.nextAt = at.Add(f.p.base + time.Duration(f.rng.Float64()*float64(f.p.jitter)))
}

// Advance applies every reshuffle due by now and reports whether any
// cluster moved.
func (f *Field) Advance(now time.Time) bool {
	moved := false
	for i := range f.clusters {
		c := &f.clusters[i]
		for !now.Before(c.nextAt) {
			at := c.nextAt
			f.randomize(c, at)
			f.loop(c, at)
			moved = true
		}
	}
	return moved
}

// Clusters returns a copy of the current clusters.
func (f *Field) Clusters() []Cluster {
	return append([]Cluster(nil), f.clusters...)
}

// Len is the number of clusters.
func (f *Field) Len() int { return len(f.clusters) }

// Opacity of cluster i at now, in [0,1].
func (f *Field) Opacity(i int, now time.Time) float64 {
	if i < 0 || i >= len(f.clusters) {
		return 0
	}
	return f.clusters[i].Opacity(now)
}

// Opacity follows whichever of the fade-in and fade-out started last.
func (c Cluster) Opacity(now time.Time) float64 {
	if now.Before(c.shownAt) && (now.Before(c.hiddenAt) || !c.hiddenAt.After(c.shownAt)) {
		return 0
	}
	if c.hiddenAt.After(c.shownAt) && !now.Before(c.hiddenAt) {
		from := ramp(c.hiddenAt.Sub(c.shownAt), FadeIn)
		return from * (1 - ramp(now.Sub(c.hiddenAt), FadeOut))
	}
	return ramp(now.Sub(c.shownAt), FadeIn)
}

// HueAt is the hue rotation in degrees at now.
func (c Cluster) HueAt(now time.Time) float64 {
	return 360 * cycle(now.Sub(c.shownAt), c.Hue)
}

// FlickerAt is a brightness factor in [0.55,1] cycling with the flicker
// period.
func (c Cluster) FlickerAt(now time.Time) float64 {
	phase := cycle(now.Sub(c.shownAt), c.Flicker)
	return 0.775 + 0.225*math.Cos(2*math.Pi*phase)
}

func ramp(elapsed, d time.Duration) float64 {
	if elapsed <= 0 {
		return 0
	}
	if elapsed >= d {
		return 1
	}
	return float64(elapsed) / float64(d)
}

func cycle(elapsed, period time.Duration) float64 {
	if period <= 0 || elapsed <= 0 {
		return 0
	}
	return float64(elapsed%period) / float64(period)
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
