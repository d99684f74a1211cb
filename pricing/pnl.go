package pricing

import (
	"context"
	"math"

	"github.com/bcdannyboy/quantcore/models"
	"github.com/bcdannyboy/quantcore/simulation"
)

// PnLSamples simulates the instrument's discounted payoff path by path and
// returns the per-path profit and loss against the premium paid. This is the
// bridge between the path simulator and the risk aggregator's Simulated
// method: the returned slice is an ordered scenario P&L sample set, owned by
// the caller and deterministic in the seed.
func PnLSamples(ctx context.Context, inst Instrument, md MarketData, cfg simulation.Config, premium float64) ([]float64, error) {
	if inst.Kind == American {
		return nil, &InvalidParametersError{Field: "kind", Value: float64(inst.Kind)}
	}
	if err := validateOption(inst.Strike, inst.Maturity); err != nil {
		return nil, err
	}
	if md.Spot <= 0 {
		return nil, &InvalidParametersError{Field: "spot", Value: md.Spot}
	}
	if inst.Maturity < epsTime {
		return nil, &InvalidParametersError{Field: "maturity", Value: inst.Maturity}
	}

	proc, err := models.NewGBM(md.Rate-md.Dividend, md.Vol)
	if err != nil {
		return nil, &InvalidParametersError{Field: "vol", Value: md.Vol}
	}
	cfg.Horizon = inst.Maturity

	disc := math.Exp(-md.Rate * inst.Maturity)
	isCall := inst.Right == Call
	pnl := func(path []float64) float64 {
		if inst.Kind == Barrier && knockedOut(path, inst) {
			return -premium
		}
		return disc*intrinsic(path[len(path)-1], inst.Strike, isCall) - premium
	}
	return simulation.Collect(ctx, proc, md.Spot, cfg, pnl)
}
