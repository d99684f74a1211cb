package pricing

import (
	"context"
	"math"

	"github.com/bcdannyboy/quantcore/models"
	"github.com/bcdannyboy/quantcore/simulation"
)

// MonteCarlo prices a European or barrier option by simulating risk-neutral
// GBM paths of the spot and discounting the average payoff. Barrier options
// are knock-outs monitored at the step dates. When cfg.ControlVariate is set
// the discounted terminal spot serves as the control; its expectation is the
// dividend-discounted spot by the martingale property, and the coefficient is
// estimated from the same batch.
func MonteCarlo(ctx context.Context, inst Instrument, md MarketData, cfg simulation.Config) (*Result, error) {
	if inst.Kind == American {
		// Early exercise needs the lattice pricer.
		return nil, &InvalidParametersError{Field: "kind", Value: float64(inst.Kind)}
	}
	if err := validateOption(inst.Strike, inst.Maturity); err != nil {
		return nil, err
	}
	if md.Spot <= 0 {
		return nil, &InvalidParametersError{Field: "spot", Value: md.Spot}
	}
	if md.Vol < 0 {
		return nil, &InvalidParametersError{Field: "vol", Value: md.Vol}
	}
	if inst.Kind == Barrier {
		if inst.BarrierDirection == Up && md.Spot >= inst.BarrierLevel {
			return nil, &InvalidParametersError{Field: "barrier", Value: inst.BarrierLevel}
		}
		if inst.BarrierDirection == Down && md.Spot <= inst.BarrierLevel {
			return nil, &InvalidParametersError{Field: "barrier", Value: inst.BarrierLevel}
		}
	}
	if inst.Maturity < epsTime {
		return latticeResult(intrinsic(md.Spot, inst.Strike, inst.Right == Call), "monte-carlo"), nil
	}

	proc, err := models.NewGBM(md.Rate-md.Dividend, md.Vol)
	if err != nil {
		return nil, &InvalidParametersError{Field: "vol", Value: md.Vol}
	}
	cfg.Horizon = inst.Maturity

	disc := math.Exp(-md.Rate * inst.Maturity)
	isCall := inst.Right == Call
	payoff := func(path []float64) float64 {
		if inst.Kind == Barrier && knockedOut(path, inst) {
			return 0
		}
		return disc * intrinsic(path[len(path)-1], inst.Strike, isCall)
	}

	var stats *simulation.Stats
	if cfg.ControlVariate {
		control := func(path []float64) float64 { return disc * path[len(path)-1] }
		known := md.Spot * math.Exp(-md.Dividend*inst.Maturity)
		stats, err = simulation.SimulateControl(ctx, proc, md.Spot, cfg, payoff, control, known)
	} else {
		stats, err = simulation.Simulate(ctx, proc, md.Spot, cfg, payoff)
	}
	if err != nil {
		return nil, err
	}

	return &Result{
		Price:  stats.Mean,
		StdErr: stats.StdErr,
		Low:    stats.Low,
		High:   stats.High,
		Method: "monte-carlo",
	}, nil
}

func knockedOut(path []float64, inst Instrument) bool {
	for _, s := range path {
		if inst.BarrierDirection == Up && s >= inst.BarrierLevel {
			return true
		}
		if inst.BarrierDirection == Down && s <= inst.BarrierLevel {
			return true
		}
	}
	return false
}
