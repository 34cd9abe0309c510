// Package body defines the point masses simulated by the engine.
package body

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/gravsim/internal/vec"
)

const (
	DefaultTrailLength = 500
	DefaultRadius      = 10
)

// Construction errors. A Spec violating these never enters a body set.
var (
	ErrNonPositiveMass = errors.New("body: mass must be positive")
	ErrNonFiniteState  = errors.New("body: position and velocity must be finite")
	ErrBadTrailLength  = errors.New("body: trail_length must be positive")
)

// Spec is the external construction and serialization record for a body.
// Radius and Color are rendering-only passthrough; the engine never
// interprets them physically.
type Spec struct {
	Mass        float64    `json:"mass" yaml:"mass"`
	Position    [2]float64 `json:"position" yaml:"position"`
	Velocity    [2]float64 `json:"velocity" yaml:"velocity"`
	Radius      int        `json:"radius" yaml:"radius"`
	Color       [3]int     `json:"color" yaml:"color"`
	TrailLength int        `json:"trail_length" yaml:"trail_length"`
}

// Validate reports the first constraint the spec violates.
func (s Spec) Validate() error {
	if s.Mass <= 0 || math.IsNaN(s.Mass) || math.IsInf(s.Mass, 0) {
		return fmt.Errorf("%w (got %v)", ErrNonPositiveMass, s.Mass)
	}
	for _, v := range []float64{s.Position[0], s.Position[1], s.Velocity[0], s.Velocity[1]} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return ErrNonFiniteState
		}
	}
	if s.TrailLength < 0 {
		return ErrBadTrailLength
	}
	return nil
}

// Body is a point mass with kinematic state. Acc is transient: it is
// rewritten at the start of every integration step and carried between
// steps only as velocity-Verlet's previous-step acceleration.
type Body struct {
	Mass   float64
	Pos    vec.Vec2
	Vel    vec.Vec2
	Acc    vec.Vec2
	Radius int
	Color  [3]int

	trail *Trail
}

// New validates the spec and constructs a body. The trail starts seeded
// with the initial position.
func New(s Spec) (*Body, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	length := s.TrailLength
	if length == 0 {
		length = DefaultTrailLength
	}
	radius := s.Radius
	if radius == 0 {
		radius = DefaultRadius
	}
	b := &Body{
		Mass:   s.Mass,
		Pos:    vec.New(s.Position[0], s.Position[1]),
		Vel:    vec.New(s.Velocity[0], s.Velocity[1]),
		Radius: radius,
		Color:  s.Color,
		trail:  NewTrail(length),
	}
	b.trail.Push(b.Pos)
	return b, nil
}

// FromSpecs builds a body collection, rejecting the whole set on the
// first invalid spec.
func FromSpecs(specs []Spec) ([]*Body, error) {
	bodies := make([]*Body, 0, len(specs))
	for i, s := range specs {
		b, err := New(s)
		if err != nil {
			return nil, fmt.Errorf("body %d: %w", i, err)
		}
		bodies = append(bodies, b)
	}
	return bodies, nil
}

// Spec returns the serialization record for the body's current state.
// Mass, position and velocity round-trip exactly.
func (b *Body) Spec() Spec {
	return Spec{
		Mass:        b.Mass,
		Position:    [2]float64{b.Pos.X, b.Pos.Y},
		Velocity:    [2]float64{b.Vel.X, b.Vel.Y},
		Radius:      b.Radius,
		Color:       b.Color,
		TrailLength: b.trail.Cap(),
	}
}

func (b *Body) ResetAcceleration() {
	b.Acc = vec.Vec2{}
}

// ApplyForce accumulates a force into the body's acceleration (a = F/m).
func (b *Body) ApplyForce(f vec.Vec2) {
	b.Acc = b.Acc.Add(f.Scale(1.0 / b.Mass))
}

// RecordTrail appends the current position, evicting the oldest entry
// once the trail is at capacity.
func (b *Body) RecordTrail() {
	b.trail.Push(b.Pos)
}

// Trail returns past positions oldest-first. Safe to read between steps,
// not during one.
func (b *Body) Trail() []vec.Vec2 {
	return b.trail.Positions()
}

func (b *Body) TrailLen() int { return b.trail.Len() }

// IsFinite reports whether position and velocity are free of NaN/Inf.
func (b *Body) IsFinite() bool {
	return b.Pos.IsFinite() && b.Vel.IsFinite()
}
