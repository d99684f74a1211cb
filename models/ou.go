package models

import (
	"math"

	"github.com/bcdannyboy/quantcore/random"
)

// OU is the Ornstein-Uhlenbeck process dX = kappa (theta - X) dt + sigma dW.
// The transition is exactly Gaussian, so StepExact is unbiased for any dt.
type OU struct {
	Kappa float64 // Mean-reversion speed
	Theta float64 // Long-run mean
	Sigma float64 // Volatility
}

func NewOU(kappa, theta, sigma float64) (*OU, error) {
	if kappa <= 0 {
		return nil, &InvalidParametersError{Field: "kappa", Value: kappa}
	}
	if sigma < 0 {
		return nil, &InvalidParametersError{Field: "sigma", Value: sigma}
	}
	return &OU{Kappa: kappa, Theta: theta, Sigma: sigma}, nil
}

func (o *OU) Kind() Kind { return OrnsteinUhlenbeck }

func (o *OU) Drift(x, t float64) float64 { return o.Kappa * (o.Theta - x) }

func (o *OU) Diffusion(x, t float64) float64 { return o.Sigma }

func (o *OU) Step(x, t, dt, z float64) float64 {
	return x + o.Kappa*(o.Theta-x)*dt + o.Sigma*math.Sqrt(dt)*z
}

func (o *OU) StepExact(x, dt float64, s *random.Stream) float64 {
	return o.StepExactZ(x, dt, s.Norm())
}

// StepExactZ samples the exact Gaussian transition: mean reverts toward
// theta at rate kappa, variance sigma^2 (1 - e^{-2 kappa dt}) / (2 kappa).
func (o *OU) StepExactZ(x, dt, z float64) float64 {
	decay := math.Exp(-o.Kappa * dt)
	mean := o.Theta + (x-o.Theta)*decay
	sd := o.Sigma * math.Sqrt((1-decay*decay)/(2*o.Kappa))
	return mean + sd*z
}
