package metrics

import (
	"testing"

	"github.com/san-kum/gravsim/internal/body"
	"github.com/san-kum/gravsim/internal/physics"
)

func orbitPair(t *testing.T) (*physics.Engine, []*body.Body) {
	t.Helper()
	engine := physics.NewEngine(1.0, 1.0)
	bodies, err := body.FromSpecs([]body.Spec{
		{Mass: 100.0, Position: [2]float64{0, 0}},
		{Mass: 1.0, Position: [2]float64{10, 0}, Velocity: [2]float64{0, 3}},
	})
	if err != nil {
		t.Fatal(err)
	}
	return engine, bodies
}

func TestEnergyDriftBaseline(t *testing.T) {
	engine, bodies := orbitPair(t)
	m := NewEnergyDrift(engine)

	m.Observe(bodies, 0)
	if m.Value() != 0 {
		t.Errorf("expected zero drift at first observation, got %v", m.Value())
	}

	for i := 0; i < 200; i++ {
		if err := engine.Step(bodies, 0.001, physics.Verlet); err != nil {
			t.Fatal(err)
		}
		m.Observe(bodies, engine.Elapsed())
	}

	if m.Value() <= 0 {
		t.Error("expected small non-zero drift over a verlet run")
	}
	if m.Value() > 0.01 {
		t.Errorf("verlet drift unexpectedly large: %v", m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Errorf("expected zero after reset, got %v", m.Value())
	}
}

func TestMomentumDriftNearZero(t *testing.T) {
	engine, bodies := orbitPair(t)
	m := NewMomentumDrift()

	m.Observe(bodies, 0)
	for i := 0; i < 500; i++ {
		if err := engine.Step(bodies, 0.001, physics.Verlet); err != nil {
			t.Fatal(err)
		}
		m.Observe(bodies, engine.Elapsed())
	}

	if m.Value() > 1e-9 {
		t.Errorf("momentum drifted by %v, expected near zero", m.Value())
	}
}
