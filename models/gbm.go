package models

import (
	"math"

	"github.com/bcdannyboy/quantcore/random"
)

// GBM is geometric Brownian motion dS = mu S dt + sigma S dW. Its transition
// density is lognormal, so StepExact carries no discretization error and is
// preferred whenever intermediate path values are not needed.
type GBM struct {
	Mu    float64 // Drift
	Sigma float64 // Volatility
}

func NewGBM(mu, sigma float64) (*GBM, error) {
	if sigma < 0 {
		return nil, &InvalidParametersError{Field: "sigma", Value: sigma}
	}
	return &GBM{Mu: mu, Sigma: sigma}, nil
}

func (g *GBM) Kind() Kind { return GeometricBrownianMotion }

func (g *GBM) Drift(x, t float64) float64 { return g.Mu * x }

func (g *GBM) Diffusion(x, t float64) float64 { return g.Sigma * x }

// Step is the Euler-Maruyama discretization, biased for finite dt. With
// sigma = 0 it degenerates to the deterministic growth x(1 + mu dt).
func (g *GBM) Step(x, t, dt, z float64) float64 {
	return x + g.Mu*x*dt + g.Sigma*x*math.Sqrt(dt)*z
}

// StepExact samples the exact lognormal transition over dt.
func (g *GBM) StepExact(x, dt float64, s *random.Stream) float64 {
	return g.StepExactZ(x, dt, s.Norm())
}

// StepExactZ is the exact transition as a function of one normal draw.
// With sigma = 0 the factor collapses to exp(mu dt), the forward price.
func (g *GBM) StepExactZ(x, dt, z float64) float64 {
	return x * math.Exp((g.Mu-0.5*g.Sigma*g.Sigma)*dt+g.Sigma*math.Sqrt(dt)*z)
}
