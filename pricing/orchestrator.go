package pricing

import (
	"context"

	"github.com/bcdannyboy/quantcore/simulation"
)

// Price is the single entry point for a pricing request. It dispatches on
// the instrument:
//
//   - European options have an analytic formula under scalar volatility, so
//     they go to the closed-form pricer unless the config explicitly asks
//     for simulation (ForceMonteCarlo), which is how the Monte Carlo engine
//     is cross-validated against the formula.
//   - American options need early exercise and go to the binomial lattice,
//     using cfg.Steps as the tree depth.
//   - Barrier options are path-dependent and go to Monte Carlo.
//
// Each call is single-threaded apart from the path simulation's internal
// workers; unrelated requests may run concurrently, since instruments,
// market data and configs are read-only.
func Price(ctx context.Context, inst Instrument, md MarketData, cfg simulation.Config) (*Result, error) {
	switch inst.Kind {
	case European:
		if cfg.ForceMonteCarlo {
			return MonteCarlo(ctx, inst, md, cfg)
		}
		return ClosedForm(inst, md)
	case American:
		return Binomial(inst, md, cfg.Steps)
	case Barrier:
		return MonteCarlo(ctx, inst, md, cfg)
	}
	return nil, &InvalidParametersError{Field: "kind", Value: float64(inst.Kind)}
}
