// Package models implements the continuous-time stochastic processes driven
// by the simulation engine: geometric Brownian motion, Ornstein-Uhlenbeck and
// Cox-Ingersoll-Ross. Each model exposes its drift and diffusion coefficients,
// an Euler-Maruyama step, and an exact transition where a closed form exists.
package models

import (
	"fmt"

	"github.com/bcdannyboy/quantcore/random"
)

// Kind identifies a process variant. The set is closed; switches over Kind
// are expected to be exhaustive.
type Kind int

const (
	GeometricBrownianMotion Kind = iota
	OrnsteinUhlenbeck
	CoxIngersollRoss
)

func (k Kind) String() string {
	switch k {
	case GeometricBrownianMotion:
		return "gbm"
	case OrnsteinUhlenbeck:
		return "ou"
	case CoxIngersollRoss:
		return "cir"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Process is a continuous-time stochastic model dX = drift dt + diffusion dW.
//
// Step advances the state by dt with an Euler-Maruyama step driven by the
// standard normal draw z. StepExact samples the exact transition density over
// dt, drawing whatever randomness it needs from the stream; for models whose
// exact transition reduces to a single Gaussian draw, the GaussianExact
// interface is also implemented.
type Process interface {
	Kind() Kind
	Drift(x, t float64) float64
	Diffusion(x, t float64) float64
	Step(x, t, dt, z float64) float64
	StepExact(x, dt float64, s *random.Stream) float64
}

// GaussianExact is implemented by processes whose exact transition is a
// deterministic function of one standard normal draw (GBM, OU). It is what
// allows antithetic variates to be combined with exact sampling.
type GaussianExact interface {
	StepExactZ(x, dt, z float64) float64
}

// InvalidParametersError reports a model parameter that would leave the
// process ill-defined.
type InvalidParametersError struct {
	Field string
	Value float64
}

func (e *InvalidParametersError) Error() string {
	return fmt.Sprintf("models: invalid parameter %s = %g", e.Field, e.Value)
}
