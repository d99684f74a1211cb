// Package risk aggregates profit-and-loss samples into Value-at-Risk and
// Expected Shortfall. Samples enter as P&L (profit positive); internally the
// aggregator works on the loss distribution, so VaR and ES come back as
// positive loss amounts.
package risk

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Method selects how the loss distribution is built. The set is closed.
type Method int

const (
	// Parametric fits a normal distribution to the sample moments.
	Parametric Method = iota
	// Historical takes the empirical quantile of the supplied samples.
	Historical
	// Simulated is the empirical quantile over Monte Carlo P&L output;
	// computationally identical to Historical, tagged separately so results
	// record their provenance.
	Simulated
)

func (m Method) String() string {
	switch m {
	case Parametric:
		return "parametric"
	case Historical:
		return "historical"
	case Simulated:
		return "simulated"
	}
	return fmt.Sprintf("Method(%d)", int(m))
}

// Result is an immutable risk report at one confidence level.
type Result struct {
	VaR        float64
	ES         float64
	Confidence float64
	Samples    int
	Method     Method
}

// InsufficientSamplesError reports a sample set too small to resolve the
// requested confidence level: the tail beyond the quantile must hold at
// least one full sample.
type InsufficientSamplesError struct {
	Samples    int
	Confidence float64
}

func (e *InsufficientSamplesError) Error() string {
	return fmt.Sprintf("risk: %d samples cannot support confidence %g", e.Samples, e.Confidence)
}

// InvalidConfidenceError reports a confidence level outside (0, 1).
type InvalidConfidenceError struct {
	Confidence float64
}

func (e *InvalidConfidenceError) Error() string {
	return fmt.Sprintf("risk: confidence %g outside (0, 1)", e.Confidence)
}

// Compute aggregates the P&L samples into VaR and ES at the given
// confidence level. The input slice is not modified.
func Compute(samples []float64, method Method, confidence float64) (*Result, error) {
	if confidence <= 0 || confidence >= 1 {
		return nil, &InvalidConfidenceError{Confidence: confidence}
	}
	n := len(samples)
	if n < 2 || float64(n)*(1-confidence) < 1 {
		return nil, &InsufficientSamplesError{Samples: n, Confidence: confidence}
	}

	var v, es float64
	switch method {
	case Parametric:
		v, es = parametric(samples, confidence)
	case Historical, Simulated:
		v, es = empirical(samples, confidence)
	default:
		return nil, fmt.Errorf("risk: unrecognized method %v", method)
	}

	return &Result{VaR: v, ES: es, Confidence: confidence, Samples: n, Method: method}, nil
}

// parametric assumes the P&L is normal: VaR = -mu + sd z_c, and ES follows
// from the normal tail-expectation identity -mu + sd phi(z_c)/(1-c).
func parametric(samples []float64, confidence float64) (float64, float64) {
	mu := stat.Mean(samples, nil)
	sd := stat.StdDev(samples, nil)
	norm := distuv.Normal{Mu: 0, Sigma: 1}
	z := norm.Quantile(confidence)
	v := -mu + sd*z
	es := -mu + sd*norm.Prob(z)/(1-confidence)
	return v, es
}

// empirical sorts the losses and reads the c-quantile with linear
// interpolation between adjacent order statistics: h = (n-1)c,
// VaR = l[floor(h)] + frac(h) (l[floor(h)+1] - l[floor(h)]). ES is the mean
// of losses at or beyond the VaR threshold.
func empirical(samples []float64, confidence float64) (float64, float64) {
	losses := make([]float64, len(samples))
	for i, pnl := range samples {
		losses[i] = -pnl
	}
	sort.Float64s(losses)

	h := float64(len(losses)-1) * confidence
	lo := int(math.Floor(h))
	v := losses[lo]
	if lo+1 < len(losses) {
		v += (h - float64(lo)) * (losses[lo+1] - losses[lo])
	}

	var tail float64
	var count int
	for i := len(losses) - 1; i >= 0 && losses[i] >= v; i-- {
		tail += losses[i]
		count++
	}
	if count == 0 {
		return v, v
	}
	return v, tail / float64(count)
}
