// Package anim computes the decorative per-node motion layered over the force
// layout: a radius/charge pulse, a positional drift and a small rotation.
//
// Every value is a pure function of a node's descriptors and the time elapsed
// since the view started, so a frame can be recomputed (or skipped) at any
// point without accumulated state.
package anim

import (
	"math"
	"math/rand/v2"
	"time"
)

const (
	// IntroDuration is how long the pulse amplitude takes to ramp up.
	IntroDuration = 1000 * time.Millisecond
	// SpinAmplitude caps the rotation angle in radians.
	SpinAmplitude = 0.35

	chargeBase  = 1.4
	chargeSwing = 1.1
)

// Pulse drives the radius and repulsion of a node.
type Pulse struct {
	BaseRadius float64
	Amplitude  float64
	Speed      float64 // radians per millisecond
	Phase      float64
	BaseCharge float64
}

// Drift offsets the drawn position of a node from its simulated one.
type Drift struct {
	AmplitudeX float64
	AmplitudeY float64
	SpeedX     float64
	SpeedY     float64
	PhaseX     float64
	PhaseY     float64
}

// Spin rotates a node's glyph back and forth.
type Spin struct {
	Speed float64
	Phase float64
}

// Motion groups the optional descriptors of one node. A zero Motion is
// static.
type Motion struct {
	Pulse *Pulse
	Drift *Drift
	Spin  *Spin
}

// IsStatic reports whether no descriptor is set.
func (m Motion) IsStatic() bool {
	return m.Pulse == nil && m.Drift == nil && m.Spin == nil
}

// NewMotion draws a full set of descriptors for a node with the given resting
// radius, charge and pulse scale.
func NewMotion(rng *rand.Rand, radius, charge, pulseScale float64) Motion {
	return Motion{
		Pulse: &Pulse{
			BaseRadius: radius,
			Amplitude:  radius * (pulseScale - 1) * (0.6 + rng.Float64()*1.2),
			Speed:      0.003 + rng.Float64()*0.005,
			Phase:      rng.Float64() * math.Pi * 2,
			BaseCharge: charge,
		},
		Drift: &Drift{
			AmplitudeX: 18 + rng.Float64()*26,
			AmplitudeY: 12 + rng.Float64()*18,
			SpeedX:     0.00008 + rng.Float64()*0.00012,
			SpeedY:     0.00008 + rng.Float64()*0.00012,
			PhaseX:     rng.Float64() * math.Pi * 2,
			PhaseY:     rng.Float64() * math.Pi * 2,
		},
		Spin: &Spin{
			Speed: 0.00012 + rng.Float64()*0.00025,
			Phase: rng.Float64() * math.Pi * 2,
		},
	}
}

func millis(elapsed time.Duration) float64 {
	return float64(elapsed) / float64(time.Millisecond)
}

// Progress maps a pulse onto [0,1] at the given time.
func Progress(p Pulse, elapsed time.Duration) float64 {
	return (math.Sin(millis(elapsed)*p.Speed+p.Phase) + 1) / 2
}

// IntroEase ramps from 0 to 1 over IntroDuration with a cosine ease-in.
func IntroEase(elapsed time.Duration) float64 {
	f := math.Min(millis(elapsed)/millis(IntroDuration), 1)
	if f < 0 {
		f = 0
	}
	if f >= 1 {
		return 1
	}
	return 1 - math.Cos(f*math.Pi*0.5)
}

// PulseAt returns the radius and charge strength of a pulse at a time.
func PulseAt(p Pulse, elapsed time.Duration) (radius, charge float64) {
	progress := Progress(p, elapsed)
	eased := IntroEase(elapsed)
	radius = p.BaseRadius + p.Amplitude*eased*progress
	charge = p.BaseCharge * (chargeBase + progress*chargeSwing*eased)
	return radius, charge
}

// DriftAt returns the display offset of a drift at a time.
func DriftAt(d Drift, elapsed time.Duration) (dx, dy float64) {
	ms := millis(elapsed)
	dx = math.Sin(ms*d.SpeedX+d.PhaseX) * d.AmplitudeX
	dy = math.Cos(ms*d.SpeedY+d.PhaseY) * d.AmplitudeY
	return dx, dy
}

// SpinAt returns the rotation in radians at a time.
func SpinAt(s Spin, elapsed time.Duration) float64 {
	return math.Sin(millis(elapsed)*s.Speed+s.Phase) * SpinAmplitude
}

// Sample is everything the motion of one node contributes to a frame.
type Sample struct {
	Radius  float64
	Charge  float64
	OffsetX float64
	OffsetY float64
	Angle   float64

	HasPulse bool
	HasDrift bool
	HasSpin  bool
}

// At evaluates every descriptor of m at a time.
func (m Motion) At(elapsed time.Duration) Sample {
	var s Sample
	if m.Pulse != nil {
		s.Radius, s.Charge = PulseAt(*m.Pulse, elapsed)
		s.HasPulse = true
	}
	if m.Drift != nil {
		s.OffsetX, s.OffsetY = DriftAt(*m.Drift, elapsed)
		s.HasDrift = true
	}
	if m.Spin != nil {
		s.Angle = SpinAt(*m.Spin, elapsed)
		s.HasSpin = true
	}
	return s
}
