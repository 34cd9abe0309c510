package physics

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/gravsim/internal/body"
)

func mustBodies(t *testing.T, specs []body.Spec) []*body.Body {
	t.Helper()
	bodies, err := body.FromSpecs(specs)
	if err != nil {
		t.Fatalf("building bodies: %v", err)
	}
	return bodies
}

func twoBodySpecs() []body.Spec {
	return []body.Spec{
		{Mass: 100.0, Position: [2]float64{0, 0}, Velocity: [2]float64{0, 0}},
		{Mass: 1.0, Position: [2]float64{10, 0}, Velocity: [2]float64{0, 3}},
	}
}

func threeBodySpecs() []body.Spec {
	// Central mass with two near-circular satellites.
	return []body.Spec{
		{Mass: 1000.0, Position: [2]float64{0, 0}, Velocity: [2]float64{0, 0}},
		{Mass: 10.0, Position: [2]float64{10, 0}, Velocity: [2]float64{0, 10}},
		{Mass: 0.1, Position: [2]float64{20, 0}, Velocity: [2]float64{0, 7.0710678118654755}},
	}
}

func TestForceSymmetry(t *testing.T) {
	e := NewEngine(1.0, 1.0)
	bodies := mustBodies(t, []body.Spec{
		{Mass: 1.0, Position: [2]float64{0, 0}},
		{Mass: 2.0, Position: [2]float64{1, 0.3}},
		{Mass: 3.0, Position: [2]float64{-0.7, 1.9}},
	})

	for i := range bodies {
		for j := range bodies {
			if i == j {
				continue
			}
			fij := e.GravitationalForce(bodies[i], bodies[j])
			fji := e.GravitationalForce(bodies[j], bodies[i])
			if fij.X != -fji.X || fij.Y != -fji.Y {
				t.Errorf("force(%d,%d)=%v not the exact negation of force(%d,%d)=%v", i, j, fij, j, i, fji)
			}
		}
	}
}

func TestForceMagnitude(t *testing.T) {
	e := NewEngine(1.0, 1.0)
	bodies := mustBodies(t, []body.Spec{
		{Mass: 1.0, Position: [2]float64{0, 0}},
		{Mass: 2.0, Position: [2]float64{1, 0}},
	})

	f := e.GravitationalForce(bodies[0], bodies[1])
	// F = G*m1*m2/r^2 = 1*1*2/1 = 2, directed along +x.
	if math.Abs(f.Len()-2.0) > 1e-10 {
		t.Errorf("expected |F|=2, got %v", f.Len())
	}
	if f.X <= 0 || math.Abs(f.Y) > 1e-10 {
		t.Errorf("force should point along +x, got %v", f)
	}
}

func TestSingularityGuard(t *testing.T) {
	e := NewEngine(1.0, 1.0)
	bodies := mustBodies(t, []body.Spec{
		{Mass: 1.0, Position: [2]float64{0, 0}},
		{Mass: 1.0, Position: [2]float64{1e-12, 0}},
	})

	f := e.GravitationalForce(bodies[0], bodies[1])
	if f.X != 0 || f.Y != 0 {
		t.Errorf("expected exact zero force below epsilon, got %v", f)
	}

	self := e.GravitationalForce(bodies[0], bodies[0])
	if self.X != 0 || self.Y != 0 {
		t.Errorf("expected zero self-interaction, got %v", self)
	}
}

func relativeDrift(t *testing.T, e *Engine, specs []body.Spec, dt float64, steps int, m Method) float64 {
	t.Helper()
	bodies := mustBodies(t, specs)
	_, _, initial := e.SystemEnergy(bodies)
	for i := 0; i < steps; i++ {
		if err := e.Step(bodies, dt, m); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
	_, _, final := e.SystemEnergy(bodies)
	if initial == 0 {
		return math.Abs(final - initial)
	}
	return math.Abs((final - initial) / initial)
}

func TestVerletEnergyConservation(t *testing.T) {
	e := NewEngine(1.0, 1.0)
	drift := relativeDrift(t, e, twoBodySpecs(), 0.001, 1000, Verlet)
	if drift > 0.01 {
		t.Errorf("verlet drift %.6f exceeds 1%%", drift)
	}
}

func TestEulerDriftsMoreThanVerlet(t *testing.T) {
	verlet := relativeDrift(t, NewEngine(1.0, 1.0), twoBodySpecs(), 0.001, 1000, Verlet)
	euler := relativeDrift(t, NewEngine(1.0, 1.0), twoBodySpecs(), 0.001, 1000, Euler)
	if euler <= verlet {
		t.Errorf("expected euler drift (%.3e) to exceed verlet drift (%.3e)", euler, verlet)
	}
}

func TestThreeBodyDriftBound(t *testing.T) {
	e := NewEngine(1.0, 1.0)
	drift := relativeDrift(t, e, threeBodySpecs(), 0.0005, 1000, Verlet)
	if drift > 0.02 {
		t.Errorf("three-body verlet drift %.6f exceeds 2%%", drift)
	}
}

func TestDeterminism(t *testing.T) {
	run := func() []*body.Body {
		e := NewEngine(1.0, 1.0)
		bodies := mustBodies(t, threeBodySpecs())
		dts := []float64{0.001, 0.0005, 0.002}
		for i := 0; i < 300; i++ {
			if err := e.Step(bodies, dts[i%len(dts)], Verlet); err != nil {
				t.Fatalf("step %d: %v", i, err)
			}
		}
		return bodies
	}

	a, b := run(), run()
	for i := range a {
		if a[i].Pos != b[i].Pos || a[i].Vel != b[i].Vel {
			t.Errorf("body %d diverged between identical runs: %v/%v vs %v/%v",
				i, a[i].Pos, a[i].Vel, b[i].Pos, b[i].Vel)
		}
	}
}

func TestClockAccumulation(t *testing.T) {
	e := NewEngine(1.0, 1.0)
	bodies := mustBodies(t, twoBodySpecs())

	const dt = 0.01
	const steps = 250
	for i := 0; i < steps; i++ {
		if err := e.Step(bodies, dt, Verlet); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
	if math.Abs(e.Elapsed()-steps*dt) > 1e-9 {
		t.Errorf("expected elapsed %.4f, got %.4f", steps*dt, e.Elapsed())
	}

	e.ResetClock()
	if e.Elapsed() != 0 {
		t.Errorf("expected zero elapsed after reset, got %v", e.Elapsed())
	}
}

func TestParseMethodFallback(t *testing.T) {
	cases := map[string]Method{
		"euler":  Euler,
		"EULER":  Euler,
		"verlet": Verlet,
		"rk4":    Verlet,
		"":       Verlet,
	}
	for tag, want := range cases {
		if got := ParseMethod(tag); got != want {
			t.Errorf("ParseMethod(%q) = %v, want %v", tag, got, want)
		}
	}
}

func TestUnknownMethodBehavesLikeVerlet(t *testing.T) {
	specs := twoBodySpecs()

	eA := NewEngine(1.0, 1.0)
	a := mustBodies(t, specs)
	eB := NewEngine(1.0, 1.0)
	b := mustBodies(t, specs)

	for i := 0; i < 50; i++ {
		if err := eA.Step(a, 0.001, Verlet); err != nil {
			t.Fatal(err)
		}
		if err := eB.Step(b, 0.001, ParseMethod("simplectic")); err != nil {
			t.Fatal(err)
		}
	}
	for i := range a {
		if a[i].Pos != b[i].Pos || a[i].Vel != b[i].Vel {
			t.Errorf("fallback method diverged from verlet at body %d", i)
		}
	}
}

func TestStepRejectsBadDt(t *testing.T) {
	e := NewEngine(1.0, 1.0)
	bodies := mustBodies(t, twoBodySpecs())

	if err := e.Step(bodies, 0, Verlet); !errors.Is(err, ErrNonPositiveDt) {
		t.Errorf("expected ErrNonPositiveDt for dt=0, got %v", err)
	}
	if err := e.Step(bodies, -0.1, Euler); !errors.Is(err, ErrNonPositiveDt) {
		t.Errorf("expected ErrNonPositiveDt for dt<0, got %v", err)
	}
	if e.Elapsed() != 0 {
		t.Errorf("rejected steps must not advance the clock, elapsed=%v", e.Elapsed())
	}
}

func TestIntegrationFaultSurfaced(t *testing.T) {
	e := NewEngine(1.0, 1.0)
	bodies := mustBodies(t, twoBodySpecs())
	bodies[1].Vel.X = math.Inf(1)

	err := e.Step(bodies, 0.001, Verlet)
	if !errors.Is(err, ErrDiverged) {
		t.Fatalf("expected ErrDiverged, got %v", err)
	}
	var fault *IntegrationFault
	if !errors.As(err, &fault) {
		t.Fatal("expected *IntegrationFault")
	}
	if fault.Body != 1 {
		t.Errorf("expected fault on body 1, got %d", fault.Body)
	}
}

func TestEulerIsSemiImplicit(t *testing.T) {
	// With one body free-falling toward a heavy anchor, the position
	// update must use the velocity advanced this step.
	e := NewEngine(1.0, 1.0)
	bodies := mustBodies(t, []body.Spec{
		{Mass: 1e6, Position: [2]float64{0, 0}},
		{Mass: 1.0, Position: [2]float64{100, 0}},
	})

	accX := e.GravitationalForce(bodies[1], bodies[0]).X / bodies[1].Mass
	dt := 0.5
	wantVel := accX * dt
	wantPos := 100 + wantVel*dt

	if err := e.Step(bodies, dt, Euler); err != nil {
		t.Fatal(err)
	}
	// The anchor also moves, but by a negligible amount; compare the
	// light body against the semi-implicit prediction.
	if math.Abs(bodies[1].Vel.X-wantVel) > 1e-12 {
		t.Errorf("velocity = %v, want %v", bodies[1].Vel.X, wantVel)
	}
	if math.Abs(bodies[1].Pos.X-wantPos) > 1e-12 {
		t.Errorf("position = %v, want %v (semi-implicit update)", bodies[1].Pos.X, wantPos)
	}
}
