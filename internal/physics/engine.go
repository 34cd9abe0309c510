// Package physics implements the gravitational force law, the numerical
// integrators and the system energy accounting.
//
// The engine is single-threaded: Step mutates the body collection in
// place on the caller's goroutine and callers holding more than one
// goroutine must serialize access themselves.
package physics

import (
	"strings"

	"github.com/san-kum/gravsim/internal/body"
	"github.com/san-kum/gravsim/internal/vec"
)

const (
	// DefaultG is the Newtonian gravitational constant in SI units.
	// Scenario presets typically override it with G=1.
	DefaultG = 6.674e-11

	// Epsilon is the minimum separation below which the force law
	// returns zero instead of dividing.
	Epsilon = 1e-10
)

// Method selects the integration scheme for a step.
type Method int

const (
	Verlet Method = iota
	Euler
)

func (m Method) String() string {
	if m == Euler {
		return "euler"
	}
	return "verlet"
}

// ParseMethod maps a configuration tag to a Method. Unrecognized tags
// fall back to velocity-Verlet, the documented default.
func ParseMethod(s string) Method {
	if strings.ToLower(s) == "euler" {
		return Euler
	}
	return Verlet
}

// Engine owns the physics constants and the simulation clock. It holds
// no bodies: each Step receives the collection and mutates it in place.
type Engine struct {
	G           float64
	Eps         float64
	ScaleFactor float64 // display-unit conversion, passthrough only

	elapsed float64
}

func NewEngine(g, scaleFactor float64) *Engine {
	return &Engine{G: g, Eps: Epsilon, ScaleFactor: scaleFactor}
}

// Elapsed returns the cumulative simulation time: the sum of every dt
// passed to Step since construction or the last ResetClock.
func (e *Engine) Elapsed() float64 { return e.elapsed }

func (e *Engine) ResetClock() { e.elapsed = 0 }

// GravitationalForce returns the force exerted on a by b. Pairs closer
// than Eps yield the zero vector, which also guards self-interaction.
// The result is exactly antisymmetric: swapping the arguments negates
// every component bit-for-bit.
func (e *Engine) GravitationalForce(a, b *body.Body) vec.Vec2 {
	r := b.Pos.Sub(a.Pos)
	d := r.Len()
	if d < e.Eps {
		return vec.Vec2{}
	}
	// The mass product is grouped so swapped arguments evaluate the
	// identical sequence of operations (multiplication commutes
	// bit-exactly, association does not).
	mag := e.G * (a.Mass * b.Mass) / (d * d)
	dir := r.Scale(1.0 / d)
	return dir.Scale(mag)
}

// Step advances every body by dt using the selected method and adds dt
// to the clock. It returns an IntegrationFault if any body's position
// or velocity came out non-finite; the engine never clamps or retries,
// so the caller should stop advancing on error.
func (e *Engine) Step(bodies []*body.Body, dt float64, m Method) error {
	if dt <= 0 {
		return ErrNonPositiveDt
	}
	switch m {
	case Euler:
		e.stepEuler(bodies, dt)
	default:
		e.stepVerlet(bodies, dt)
	}
	e.elapsed += dt
	for i, b := range bodies {
		if !b.IsFinite() {
			return &IntegrationFault{Body: i, Elapsed: e.elapsed, Method: m}
		}
	}
	return nil
}

// accumulateForces rewrites every body's acceleration from the current
// positions. The double loop runs i then j in ascending index order so
// floating-point summation order, and therefore the trajectory, is
// reproducible across runs.
func (e *Engine) accumulateForces(bodies []*body.Body) {
	for _, b := range bodies {
		b.ResetAcceleration()
	}
	for i := range bodies {
		for j := range bodies {
			if i == j {
				continue
			}
			bodies[i].ApplyForce(e.GravitationalForce(bodies[i], bodies[j]))
		}
	}
}

// stepEuler is semi-implicit: the position update uses the velocity
// already advanced this step. Pure forward Euler diverges faster, so
// the velocity-first order is intentional.
func (e *Engine) stepEuler(bodies []*body.Body, dt float64) {
	e.accumulateForces(bodies)
	for _, b := range bodies {
		b.Vel = b.Vel.Add(b.Acc.Scale(dt))
		b.Pos = b.Pos.Add(b.Vel.Scale(dt))
		b.RecordTrail()
	}
}

// stepVerlet is the velocity-Verlet scheme:
//
//	x(t+dt) = x(t) + v(t)*dt + 0.5*a(t)*dt^2
//	v(t+dt) = v(t) + 0.5*(a(t) + a(t+dt))*dt
//
// a(t) is the acceleration left on each body by the previous step; on
// the first step it is the zero vector from body construction.
func (e *Engine) stepVerlet(bodies []*body.Body, dt float64) {
	oldAcc := make([]vec.Vec2, len(bodies))
	for i, b := range bodies {
		oldAcc[i] = b.Acc
	}

	for i, b := range bodies {
		velTerm := b.Vel.Scale(dt)
		accTerm := oldAcc[i].Scale(0.5 * dt * dt)
		b.Pos = b.Pos.Add(velTerm).Add(accTerm)
		b.RecordTrail()
	}

	e.accumulateForces(bodies)

	for i, b := range bodies {
		avg := oldAcc[i].Add(b.Acc).Scale(0.5)
		b.Vel = b.Vel.Add(avg.Scale(dt))
	}
}
