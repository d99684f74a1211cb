package simulation

import "fmt"

// Scheme selects the transition sampling used along a path.
type Scheme int

const (
	// SchemeExact samples the model's exact transition density at every
	// step; no discretization bias.
	SchemeExact Scheme = iota
	// SchemeEuler uses the Euler-Maruyama discretization, trading bias
	// for generality.
	SchemeEuler
)

func (s Scheme) String() string {
	switch s {
	case SchemeExact:
		return "exact"
	case SchemeEuler:
		return "euler"
	}
	return fmt.Sprintf("Scheme(%d)", int(s))
}

// Config is the numerical configuration of one simulation run. It is
// validated before any computation starts; a Config that passes Validate
// is never re-checked inside the hot loop.
type Config struct {
	Paths   int     // Total path budget
	Steps   int     // Time steps per path
	Horizon float64 // Time horizon in years
	Seed    uint64  // Master seed for the stream provider

	Antithetic bool // Simulate each draw's mirrored negation and average the pair

	// ControlVariate asks for a control-variate estimate. The pricer layer
	// honors it by routing through SimulateControl with the control it
	// supplies; Simulate itself rejects the flag (it has no control
	// function), and Collect ignores it (raw samples are not aggregated).
	ControlVariate bool

	// ForceMonteCarlo routes instruments with an analytic price through the
	// simulator anyway, for cross-validation and convergence studies.
	ForceMonteCarlo bool

	Scheme Scheme

	// Confidence is the level of the reported interval; 0 means 0.95.
	Confidence float64
	// Tolerance, when positive, is the maximum acceptable standard error.
	// Runs ending above it fail with NonConvergentError.
	Tolerance float64
	// KeepPaths retains every simulated trajectory on the result. Memory
	// grows as Paths x (Steps+1); off by default so runs accumulate
	// statistics online.
	KeepPaths bool
}

// InvalidConfigError reports a Config field that failed validation.
type InvalidConfigError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("simulation: invalid config %s = %g: %s", e.Field, e.Value, e.Reason)
}

func (c Config) Validate() error {
	if c.Paths < 1 {
		return &InvalidConfigError{Field: "paths", Value: float64(c.Paths), Reason: "must be at least 1"}
	}
	if c.Antithetic && c.Paths%2 != 0 {
		return &InvalidConfigError{Field: "paths", Value: float64(c.Paths), Reason: "must be even with antithetic variates"}
	}
	if c.Steps < 1 {
		return &InvalidConfigError{Field: "steps", Value: float64(c.Steps), Reason: "must be at least 1"}
	}
	if c.Horizon <= 0 {
		return &InvalidConfigError{Field: "horizon", Value: c.Horizon, Reason: "must be positive"}
	}
	if c.Scheme != SchemeExact && c.Scheme != SchemeEuler {
		return &InvalidConfigError{Field: "scheme", Value: float64(c.Scheme), Reason: "unrecognized scheme"}
	}
	if c.Confidence < 0 || c.Confidence >= 1 {
		return &InvalidConfigError{Field: "confidence", Value: c.Confidence, Reason: "must be in [0, 1)"}
	}
	if c.Tolerance < 0 {
		return &InvalidConfigError{Field: "tolerance", Value: c.Tolerance, Reason: "must be non-negative"}
	}
	return nil
}

// confidence returns the effective confidence level.
func (c Config) confidence() float64 {
	if c.Confidence == 0 {
		return 0.95
	}
	return c.Confidence
}

// NonConvergentError reports a run whose standard error still exceeded the
// requested tolerance after the configured path budget was exhausted.
type NonConvergentError struct {
	StdErr    float64
	Tolerance float64
	Paths     int
}

func (e *NonConvergentError) Error() string {
	return fmt.Sprintf("simulation: standard error %g above tolerance %g after %d paths",
		e.StdErr, e.Tolerance, e.Paths)
}
