// Package metrics provides conservation oracles observed per frame by
// the simulation runner.
package metrics

import (
	"math"

	"github.com/san-kum/gravsim/internal/body"
	"github.com/san-kum/gravsim/internal/physics"
)

// Metric observes the body collection between steps and reduces the
// observations to a single value. Observe must not mutate any body.
type Metric interface {
	Name() string
	Observe(bodies []*body.Body, t float64)
	Value() float64
	Reset()
}

// EnergyDrift tracks the maximum relative drift of total mechanical
// energy against the first observed value.
type EnergyDrift struct {
	engine   *physics.Engine
	initial  float64
	maxDrift float64
	samples  int
}

func NewEnergyDrift(engine *physics.Engine) *EnergyDrift {
	return &EnergyDrift{engine: engine}
}

func (e *EnergyDrift) Name() string { return "energy_drift" }

func (e *EnergyDrift) Observe(bodies []*body.Body, t float64) {
	_, _, total := e.engine.SystemEnergy(bodies)
	if e.samples == 0 {
		e.initial = total
	}
	e.samples++

	if e.initial != 0 {
		drift := math.Abs(total-e.initial) / math.Abs(e.initial)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 { return e.maxDrift }

func (e *EnergyDrift) Reset() {
	e.initial = 0
	e.maxDrift = 0
	e.samples = 0
}

// MomentumDrift tracks the maximum absolute deviation of total linear
// momentum from its first observed value. Gravity is internal to the
// system, so momentum should be constant up to roundoff.
type MomentumDrift struct {
	px0, py0 float64
	maxDev   float64
	samples  int
}

func NewMomentumDrift() *MomentumDrift {
	return &MomentumDrift{}
}

func (m *MomentumDrift) Name() string { return "momentum_drift" }

func (m *MomentumDrift) Observe(bodies []*body.Body, t float64) {
	px, py := physics.Momentum(bodies)
	if m.samples == 0 {
		m.px0, m.py0 = px, py
	}
	m.samples++

	dev := math.Hypot(px-m.px0, py-m.py0)
	m.maxDev = math.Max(m.maxDev, dev)
}

func (m *MomentumDrift) Value() float64 { return m.maxDev }

func (m *MomentumDrift) Reset() {
	m.px0, m.py0 = 0, 0
	m.maxDev = 0
	m.samples = 0
}
