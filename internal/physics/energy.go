package physics

import (
	"github.com/san-kum/gravsim/internal/body"
)

// SystemEnergy returns the kinetic, potential and total mechanical
// energy of the body set. Read-only; it is an O(N^2) pass independent
// of the step path and is the primary integrator-correctness oracle.
func (e *Engine) SystemEnergy(bodies []*body.Body) (kinetic, potential, total float64) {
	for _, b := range bodies {
		// Dot product rather than magnitude-then-square for stability.
		kinetic += 0.5 * b.Mass * b.Vel.Dot(b.Vel)
	}
	for i := 0; i < len(bodies); i++ {
		for j := i + 1; j < len(bodies); j++ {
			d := bodies[j].Pos.Sub(bodies[i].Pos).Len()
			if d < e.Eps {
				d = e.Eps
			}
			potential -= e.G * bodies[i].Mass * bodies[j].Mass / d
		}
	}
	return kinetic, potential, kinetic + potential
}

// Momentum returns the total linear momentum of the body set.
func Momentum(bodies []*body.Body) (px, py float64) {
	for _, b := range bodies {
		px += b.Mass * b.Vel.X
		py += b.Mass * b.Vel.Y
	}
	return px, py
}

// AngularMomentum returns the total angular momentum about the origin.
func AngularMomentum(bodies []*body.Body) float64 {
	l := 0.0
	for _, b := range bodies {
		l += b.Mass * b.Pos.Cross(b.Vel)
	}
	return l
}
