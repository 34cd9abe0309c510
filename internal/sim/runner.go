// Package sim drives the physics engine: framed stepping, sampling,
// metrics and reset.
package sim

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/gravsim/internal/body"
	"github.com/san-kum/gravsim/internal/metrics"
	"github.com/san-kum/gravsim/internal/physics"
)

// Observer is notified once per frame, after the frame's sub-steps.
type Observer interface {
	OnFrame(bodies []*body.Body, t float64)
}

// Config describes a run. Each frame performs StepsPerFrame engine
// sub-steps of size Dt; sampling happens at frame granularity.
type Config struct {
	Dt            float64
	Frames        int
	StepsPerFrame int
	Method        physics.Method
}

// Result holds the sampled trajectory. States are flattened per frame
// as [x, y, vx, vy] per body in collection order.
type Result struct {
	Times       []float64
	States      [][]float64
	Kinetic     []float64
	Potential   []float64
	Total       []float64
	Metrics     map[string]float64
	EnergyDrift float64
	StepsTaken  int
	Fault       error
}

// Runner owns a body collection between resets and serializes all
// stepping; it is not safe for concurrent use.
type Runner struct {
	engine  *physics.Engine
	bodies  []*body.Body
	initial []body.Spec
	metrics []metrics.Metric
	obs     []Observer
}

// NewRunner constructs the body collection from specs. The specs are
// retained so Reset can re-seed an identical collection.
func NewRunner(engine *physics.Engine, specs []body.Spec) (*Runner, error) {
	bodies, err := body.FromSpecs(specs)
	if err != nil {
		return nil, err
	}
	retained := make([]body.Spec, len(specs))
	copy(retained, specs)
	return &Runner{engine: engine, bodies: bodies, initial: retained}, nil
}

func (r *Runner) AddMetric(m metrics.Metric) { r.metrics = append(r.metrics, m) }
func (r *Runner) AddObserver(o Observer)     { r.obs = append(r.obs, o) }
func (r *Runner) Bodies() []*body.Body       { return r.bodies }
func (r *Runner) Engine() *physics.Engine    { return r.engine }

// Reset re-seeds the bodies from the initial specs and zeroes the
// clock. The old bodies are discarded wholesale.
func (r *Runner) Reset() error {
	bodies, err := body.FromSpecs(r.initial)
	if err != nil {
		return err
	}
	r.bodies = bodies
	r.engine.ResetClock()
	for _, m := range r.metrics {
		m.Reset()
	}
	return nil
}

func (r *Runner) validate(cfg Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("sim: dt must be positive, got %v", cfg.Dt)
	}
	if cfg.Frames <= 0 {
		return fmt.Errorf("sim: frames must be positive, got %d", cfg.Frames)
	}
	if cfg.StepsPerFrame <= 0 {
		return fmt.Errorf("sim: steps per frame must be positive, got %d", cfg.StepsPerFrame)
	}
	return nil
}

// Run advances the simulation for cfg.Frames frames. An integration
// fault stops the run; the partial result is still returned with Fault
// set. Context cancellation returns the partial result and ctx.Err().
func (r *Runner) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := r.validate(cfg); err != nil {
		return nil, err
	}

	result := &Result{
		Times:     make([]float64, 0, cfg.Frames+1),
		States:    make([][]float64, 0, cfg.Frames+1),
		Kinetic:   make([]float64, 0, cfg.Frames+1),
		Potential: make([]float64, 0, cfg.Frames+1),
		Total:     make([]float64, 0, cfg.Frames+1),
		Metrics:   make(map[string]float64),
	}

	for _, m := range r.metrics {
		m.Reset()
	}

	r.sample(result)
	_, _, initialTotal := r.engine.SystemEnergy(r.bodies)

	for frame := 0; frame < cfg.Frames; frame++ {
		select {
		case <-ctx.Done():
			r.finish(result, initialTotal)
			return result, ctx.Err()
		default:
		}

		for s := 0; s < cfg.StepsPerFrame; s++ {
			if err := r.engine.Step(r.bodies, cfg.Dt, cfg.Method); err != nil {
				logrus.Warnf("integration fault at t=%.6g: %v", r.engine.Elapsed(), err)
				result.Fault = err
				r.finish(result, initialTotal)
				return result, nil
			}
			result.StepsTaken++
		}

		for _, m := range r.metrics {
			m.Observe(r.bodies, r.engine.Elapsed())
		}
		for _, o := range r.obs {
			o.OnFrame(r.bodies, r.engine.Elapsed())
		}
		r.sample(result)
	}

	r.finish(result, initialTotal)
	logrus.Debugf("run complete: %d steps, t=%.6g, drift=%.3e",
		result.StepsTaken, r.engine.Elapsed(), result.EnergyDrift)
	return result, nil
}

func (r *Runner) sample(result *Result) {
	state := make([]float64, 0, len(r.bodies)*4)
	for _, b := range r.bodies {
		state = append(state, b.Pos.X, b.Pos.Y, b.Vel.X, b.Vel.Y)
	}
	ke, pe, total := r.engine.SystemEnergy(r.bodies)

	result.Times = append(result.Times, r.engine.Elapsed())
	result.States = append(result.States, state)
	result.Kinetic = append(result.Kinetic, ke)
	result.Potential = append(result.Potential, pe)
	result.Total = append(result.Total, total)
}

func (r *Runner) finish(result *Result, initialTotal float64) {
	if n := len(result.Total); n > 0 && initialTotal != 0 {
		drift := (result.Total[n-1] - initialTotal) / initialTotal
		if drift < 0 {
			drift = -drift
		}
		result.EnergyDrift = drift
	}
	for _, m := range r.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}
