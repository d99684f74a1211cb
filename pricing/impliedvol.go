package pricing

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/optimize"
)

const (
	ivMaxIterations = 100
	ivEpsilon       = 1e-8
	ivMinVega       = 1e-10
)

// ErrNoSolution is returned when no volatility reprices the target within
// tolerance, e.g. a target below intrinsic value.
var ErrNoSolution = errors.New("pricing: implied volatility did not converge")

// ImpliedVolatility inverts the Black-Scholes-Merton formula for the
// volatility that reprices a European option to the target price.
// Newton-Raphson on vega from a 0.5 starting point handles the regular
// surface; when vega degenerates (deep in or out of the money) it falls back
// to a Nelder-Mead minimization of the squared pricing error.
func ImpliedVolatility(inst Instrument, md MarketData, target float64) (float64, error) {
	if inst.Kind != European {
		return 0, &InvalidParametersError{Field: "kind", Value: float64(inst.Kind)}
	}
	if target <= 0 {
		return 0, &InvalidParametersError{Field: "target", Value: target}
	}
	if inst.Maturity < epsTime {
		return 0, &InvalidParametersError{Field: "maturity", Value: inst.Maturity}
	}

	price := func(sigma float64) (float64, float64, error) {
		m := md
		m.Vol = sigma
		res, err := ClosedForm(inst, m)
		if err != nil {
			return 0, 0, err
		}
		return res.Price, res.Greeks["vega"], nil
	}

	sigma := 0.5
	for i := 0; i < ivMaxIterations; i++ {
		p, vega, err := price(sigma)
		if err != nil {
			return 0, err
		}
		diff := p - target
		if math.Abs(diff) < ivEpsilon {
			return sigma, nil
		}
		if vega < ivMinVega {
			break
		}
		sigma -= diff / vega
		if sigma <= 0 {
			sigma = 1e-4
		}
	}

	// Newton stalled; minimize the squared error instead.
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			p, _, err := price(math.Abs(x[0]))
			if err != nil {
				return math.Inf(1)
			}
			return (p - target) * (p - target)
		},
	}
	result, err := optimize.Minimize(problem, []float64{0.5}, nil, &optimize.NelderMead{})
	if err != nil {
		return 0, ErrNoSolution
	}
	sigma = math.Abs(result.X[0])
	p, _, err := price(sigma)
	if err != nil || math.Abs(p-target) > 1e-6 {
		return 0, ErrNoSolution
	}
	return sigma, nil
}
