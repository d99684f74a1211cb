package pricing

import "math"

// Binomial prices a European or American option on a Cox-Ross-Rubinstein
// tree with the given number of steps. Backward induction runs in place over
// a single column of node values, so memory stays O(N) however deep the tree
// is. American nodes take the larger of intrinsic value and the discounted
// expectation; that comparison is the only behavioral difference from the
// European branch. As N grows the European price converges to the
// closed-form value at the usual O(1/N) rate.
func Binomial(inst Instrument, md MarketData, steps int) (*Result, error) {
	if err := validateLattice(inst, md, steps); err != nil {
		return nil, err
	}
	if inst.Maturity < epsTime {
		return latticeResult(intrinsic(md.Spot, inst.Strike, inst.Right == Call), "binomial"), nil
	}

	dt := inst.Maturity / float64(steps)
	u := math.Exp(md.Vol * math.Sqrt(dt))
	d := 1 / u
	growth := math.Exp((md.Rate - md.Dividend) * dt)
	p := (growth - d) / (u - d)
	if !(p >= 0 && p <= 1) {
		return nil, &NumericalInstabilityError{Probability: p}
	}
	disc := math.Exp(-md.Rate * dt)
	isCall := inst.Right == Call
	american := inst.Kind == American

	// Terminal payoffs: node j holds S u^j d^(N-j).
	values := make([]float64, steps+1)
	for j := 0; j <= steps; j++ {
		s := md.Spot * math.Exp(md.Vol*math.Sqrt(dt)*float64(2*j-steps))
		values[j] = intrinsic(s, inst.Strike, isCall)
	}

	for i := steps - 1; i >= 0; i-- {
		for j := 0; j <= i; j++ {
			v := disc * (p*values[j+1] + (1-p)*values[j])
			if american {
				s := md.Spot * math.Exp(md.Vol*math.Sqrt(dt)*float64(2*j-i))
				v = math.Max(v, intrinsic(s, inst.Strike, isCall))
			}
			values[j] = v
		}
	}
	return latticeResult(values[0], "binomial"), nil
}

// Trinomial prices on a Boyle trinomial tree. Same contract as Binomial;
// the extra middle branch buys faster convergence per step at three
// probabilities instead of two.
func Trinomial(inst Instrument, md MarketData, steps int) (*Result, error) {
	if err := validateLattice(inst, md, steps); err != nil {
		return nil, err
	}
	if inst.Maturity < epsTime {
		return latticeResult(intrinsic(md.Spot, inst.Strike, inst.Right == Call), "trinomial"), nil
	}

	dt := inst.Maturity / float64(steps)
	dx := md.Vol * math.Sqrt(2*dt)
	a := math.Exp((md.Rate - md.Dividend) * dt / 2)
	b := math.Exp(md.Vol * math.Sqrt(dt/2))
	pu := (a - 1/b) / (b - 1/b)
	pu *= pu
	pd := (b - a) / (b - 1/b)
	pd *= pd
	pm := 1 - pu - pd
	for _, p := range []float64{pu, pm, pd} {
		if !(p >= 0 && p <= 1) {
			return nil, &NumericalInstabilityError{Probability: p}
		}
	}
	disc := math.Exp(-md.Rate * dt)
	isCall := inst.Right == Call
	american := inst.Kind == American

	// Level i has 2i+1 nodes; node j holds S exp(dx (j - i)).
	values := make([]float64, 2*steps+1)
	for j := 0; j <= 2*steps; j++ {
		s := md.Spot * math.Exp(dx*float64(j-steps))
		values[j] = intrinsic(s, inst.Strike, isCall)
	}

	for i := steps - 1; i >= 0; i-- {
		for j := 0; j <= 2*i; j++ {
			v := disc * (pd*values[j] + pm*values[j+1] + pu*values[j+2])
			if american {
				s := md.Spot * math.Exp(dx*float64(j-i))
				v = math.Max(v, intrinsic(s, inst.Strike, isCall))
			}
			values[j] = v
		}
	}
	return latticeResult(values[0], "trinomial"), nil
}

func validateLattice(inst Instrument, md MarketData, steps int) error {
	if steps < 1 {
		return &InvalidStepsError{Steps: steps}
	}
	if inst.Kind != European && inst.Kind != American {
		return &InvalidParametersError{Field: "kind", Value: float64(inst.Kind)}
	}
	if err := validateOption(inst.Strike, inst.Maturity); err != nil {
		return err
	}
	if md.Spot <= 0 {
		return &InvalidParametersError{Field: "spot", Value: md.Spot}
	}
	// A tree with no volatility has no spread between branches; the
	// transition probabilities are undefined.
	if md.Vol < epsVol {
		return &InvalidParametersError{Field: "vol", Value: md.Vol}
	}
	return nil
}

func latticeResult(price float64, method string) *Result {
	return &Result{Price: price, Low: price, High: price, Method: method}
}
