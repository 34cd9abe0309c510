package physics

import (
	"errors"
	"fmt"
)

var (
	// ErrNonPositiveDt rejects a step with a zero or negative timestep.
	ErrNonPositiveDt = errors.New("physics: dt must be positive")

	// ErrDiverged is the category wrapped by IntegrationFault.
	ErrDiverged = errors.New("physics: integration produced NaN/Inf")
)

// IntegrationFault reports the body whose kinematic state came out
// non-finite. The fault is deterministic: retrying the same step with
// the same inputs reproduces it.
type IntegrationFault struct {
	Body    int
	Elapsed float64
	Method  Method
}

func (f *IntegrationFault) Error() string {
	return fmt.Sprintf("%v: body %d (t=%.6g, method=%s)", ErrDiverged, f.Body, f.Elapsed, f.Method)
}

func (f *IntegrationFault) Unwrap() error { return ErrDiverged }
