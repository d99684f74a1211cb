package models

import (
	"math"

	"github.com/bcdannyboy/quantcore/random"
)

// CIR is the Cox-Ingersoll-Ross process
// dX = kappa (theta - X) dt + sigma sqrt(X) dW.
//
// Construction succeeds whether or not the Feller condition
// 2 kappa theta >= sigma^2 holds; FellerSatisfied reports it so callers can
// decide. The exact noncentral chi-squared transition stays well-defined
// either way and is used by StepExact; the Euler discretization in Step uses
// full truncation (negative states are floored at zero before computing the
// coefficients) so a violating parameter set never produces NaN paths.
type CIR struct {
	Kappa  float64 // Mean-reversion speed
	Theta  float64 // Long-run mean
	Sigma  float64 // Volatility of the state
	feller bool
}

func NewCIR(kappa, theta, sigma float64) (*CIR, error) {
	if kappa <= 0 {
		return nil, &InvalidParametersError{Field: "kappa", Value: kappa}
	}
	if theta < 0 {
		return nil, &InvalidParametersError{Field: "theta", Value: theta}
	}
	if sigma < 0 {
		return nil, &InvalidParametersError{Field: "sigma", Value: sigma}
	}
	return &CIR{
		Kappa:  kappa,
		Theta:  theta,
		Sigma:  sigma,
		feller: 2*kappa*theta >= sigma*sigma,
	}, nil
}

func (c *CIR) Kind() Kind { return CoxIngersollRoss }

// FellerSatisfied reports whether 2 kappa theta >= sigma^2, i.e. whether the
// process stays strictly positive.
func (c *CIR) FellerSatisfied() bool { return c.feller }

func (c *CIR) Drift(x, t float64) float64 { return c.Kappa * (c.Theta - x) }

func (c *CIR) Diffusion(x, t float64) float64 {
	return c.Sigma * math.Sqrt(math.Max(x, 0))
}

// Step is the full-truncation Euler scheme: the state entering the
// coefficients is floored at zero, the increment itself is not clamped.
func (c *CIR) Step(x, t, dt, z float64) float64 {
	xp := math.Max(x, 0)
	return x + c.Kappa*(c.Theta-xp)*dt + c.Sigma*math.Sqrt(xp)*math.Sqrt(dt)*z
}

// StepExact samples the exact transition, which is a scaled noncentral
// chi-squared variate. The noncentral chi-squared is drawn as a Poisson
// mixture of central chi-squareds: N ~ Poisson(lambda/2), then
// chi2(df + 2N) = Gamma(df/2 + N, rate 1/2).
func (c *CIR) StepExact(x, dt float64, s *random.Stream) float64 {
	if c.Sigma == 0 {
		decay := math.Exp(-c.Kappa * dt)
		return c.Theta + (x-c.Theta)*decay
	}
	decay := math.Exp(-c.Kappa * dt)
	scale := c.Sigma * c.Sigma * (1 - decay) / (4 * c.Kappa)
	df := 4 * c.Kappa * c.Theta / (c.Sigma * c.Sigma)
	noncentrality := math.Max(x, 0) * decay / scale

	shape := df / 2
	if noncentrality > 0 {
		shape += s.Poisson(noncentrality / 2)
	}
	if shape == 0 {
		// df = 0 (theta = 0) and no Poisson mass: absorbed at zero.
		return 0
	}
	return scale * s.Gamma(shape, 0.5)
}
