package pricing_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/bcdannyboy/quantcore/pricing"
	"github.com/bcdannyboy/quantcore/simulation"
)

func mcConfig() simulation.Config {
	return simulation.Config{
		Paths:      200000,
		Steps:      1,
		Seed:       42,
		Antithetic: true,
	}
}

func TestMonteCarloMatchesClosedForm(t *testing.T) {
	t.Parallel()

	md := mustMarket(t, 100, 0.05, 0.2, 0)
	inst := mustEuropean(t, pricing.Call, 100, 1)

	exact, err := pricing.ClosedForm(inst, md)
	if err != nil {
		t.Fatalf("ClosedForm error: %v", err)
	}
	mc, err := pricing.MonteCarlo(context.Background(), inst, md, mcConfig())
	if err != nil {
		t.Fatalf("MonteCarlo error: %v", err)
	}

	if mc.StdErr <= 0 || mc.StdErr > 0.05 {
		t.Fatalf("implausible standard error: %v", mc.StdErr)
	}
	if diff := math.Abs(mc.Price - exact.Price); diff > 3*mc.StdErr {
		t.Fatalf("monte carlo %v too far from %v: |diff| %v > 3*stderr %v",
			mc.Price, exact.Price, diff, mc.StdErr)
	}

	// Default confidence is 95%, so the interval halfwidth is 1.96 stderr.
	half := (mc.High - mc.Low) / 2
	if math.Abs(half-1.959963984540054*mc.StdErr) > 1e-9 {
		t.Fatalf("interval halfwidth mismatch: got %v stderr %v", half, mc.StdErr)
	}
	if math.Abs((mc.High+mc.Low)/2-mc.Price) > 1e-9 {
		t.Fatalf("interval not centered on price")
	}
}

func TestMonteCarloReproducible(t *testing.T) {
	t.Parallel()

	md := mustMarket(t, 100, 0.05, 0.2, 0)
	inst := mustEuropean(t, pricing.Put, 95, 0.5)
	cfg := mcConfig()
	cfg.Paths = 20000

	a, err := pricing.MonteCarlo(context.Background(), inst, md, cfg)
	if err != nil {
		t.Fatalf("MonteCarlo error: %v", err)
	}
	b, err := pricing.MonteCarlo(context.Background(), inst, md, cfg)
	if err != nil {
		t.Fatalf("MonteCarlo error: %v", err)
	}
	if a.Price != b.Price || a.StdErr != b.StdErr {
		t.Fatalf("same seed produced different results: %+v vs %+v", a, b)
	}
}

func TestFarBarrierMatchesEuropean(t *testing.T) {
	t.Parallel()

	// A down-and-out barrier the paths cannot plausibly reach leaves every
	// payoff untouched, so the estimate matches the plain European run
	// bit for bit under the same seed.
	md := mustMarket(t, 100, 0.05, 0.2, 0)
	euro := mustEuropean(t, pricing.Call, 100, 1)
	barrier, err := pricing.NewBarrier(pricing.Call, 100, 1, 1e-6, pricing.Down)
	if err != nil {
		t.Fatalf("NewBarrier error: %v", err)
	}

	cfg := mcConfig()
	cfg.Paths = 20000
	cfg.Steps = 16

	plain, err := pricing.MonteCarlo(context.Background(), euro, md, cfg)
	if err != nil {
		t.Fatalf("european MonteCarlo error: %v", err)
	}
	knocked, err := pricing.MonteCarlo(context.Background(), barrier, md, cfg)
	if err != nil {
		t.Fatalf("barrier MonteCarlo error: %v", err)
	}
	if plain.Price != knocked.Price || plain.StdErr != knocked.StdErr {
		t.Fatalf("far barrier changed the estimate: %v vs %v", knocked.Price, plain.Price)
	}
}

func TestNearBarrierCheapensOption(t *testing.T) {
	t.Parallel()

	md := mustMarket(t, 100, 0.05, 0.2, 0)
	euro := mustEuropean(t, pricing.Call, 100, 1)
	barrier, err := pricing.NewBarrier(pricing.Call, 100, 1, 90, pricing.Down)
	if err != nil {
		t.Fatalf("NewBarrier error: %v", err)
	}

	cfg := mcConfig()
	cfg.Paths = 20000
	cfg.Steps = 64

	plain, err := pricing.MonteCarlo(context.Background(), euro, md, cfg)
	if err != nil {
		t.Fatalf("european MonteCarlo error: %v", err)
	}
	knocked, err := pricing.MonteCarlo(context.Background(), barrier, md, cfg)
	if err != nil {
		t.Fatalf("barrier MonteCarlo error: %v", err)
	}
	if knocked.Price >= plain.Price {
		t.Fatalf("knock-out not cheaper than vanilla: %v >= %v", knocked.Price, plain.Price)
	}
}

func TestMonteCarloValidation(t *testing.T) {
	t.Parallel()

	md := mustMarket(t, 100, 0.05, 0.2, 0)
	ctx := context.Background()
	var invalid *pricing.InvalidParametersError

	amer, err := pricing.NewAmerican(pricing.Put, 100, 1)
	if err != nil {
		t.Fatalf("NewAmerican error: %v", err)
	}
	if _, err := pricing.MonteCarlo(ctx, amer, md, mcConfig()); !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidParametersError for american, got %v", err)
	}

	// Spot already through the barrier: the contract is dead on arrival.
	dead, err := pricing.NewBarrier(pricing.Call, 100, 1, 110, pricing.Down)
	if err != nil {
		t.Fatalf("NewBarrier error: %v", err)
	}
	if _, err := pricing.MonteCarlo(ctx, dead, md, mcConfig()); !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidParametersError for pre-knocked barrier, got %v", err)
	}
}

func TestMonteCarloToleranceNotMet(t *testing.T) {
	t.Parallel()

	md := mustMarket(t, 100, 0.05, 0.2, 0)
	inst := mustEuropean(t, pricing.Call, 100, 1)
	cfg := mcConfig()
	cfg.Paths = 100
	cfg.Antithetic = false
	cfg.Tolerance = 1e-9

	_, err := pricing.MonteCarlo(context.Background(), inst, md, cfg)
	var nc *simulation.NonConvergentError
	if !errors.As(err, &nc) {
		t.Fatalf("expected NonConvergentError, got %v", err)
	}
}

func TestPriceDispatch(t *testing.T) {
	t.Parallel()

	md := mustMarket(t, 100, 0.05, 0.2, 0)
	ctx := context.Background()
	cfg := mcConfig()
	cfg.Paths = 10000
	cfg.Steps = 16

	euro := mustEuropean(t, pricing.Call, 100, 1)
	res, err := pricing.Price(ctx, euro, md, cfg)
	if err != nil {
		t.Fatalf("Price(european) error: %v", err)
	}
	if res.Method != "black-scholes" {
		t.Fatalf("european dispatched to %q", res.Method)
	}

	cfg.ForceMonteCarlo = true
	res, err = pricing.Price(ctx, euro, md, cfg)
	if err != nil {
		t.Fatalf("Price(forced mc) error: %v", err)
	}
	if res.Method != "monte-carlo" {
		t.Fatalf("forced simulation dispatched to %q", res.Method)
	}
	cfg.ForceMonteCarlo = false

	amer, err := pricing.NewAmerican(pricing.Put, 100, 1)
	if err != nil {
		t.Fatalf("NewAmerican error: %v", err)
	}
	cfg.Steps = 500
	res, err = pricing.Price(ctx, amer, md, cfg)
	if err != nil {
		t.Fatalf("Price(american) error: %v", err)
	}
	if res.Method != "binomial" {
		t.Fatalf("american dispatched to %q", res.Method)
	}

	barrier, err := pricing.NewBarrier(pricing.Put, 100, 1, 130, pricing.Up)
	if err != nil {
		t.Fatalf("NewBarrier error: %v", err)
	}
	cfg.Steps = 16
	res, err = pricing.Price(ctx, barrier, md, cfg)
	if err != nil {
		t.Fatalf("Price(barrier) error: %v", err)
	}
	if res.Method != "monte-carlo" {
		t.Fatalf("barrier dispatched to %q", res.Method)
	}
}

func TestPnLSamples(t *testing.T) {
	t.Parallel()

	md := mustMarket(t, 100, 0.05, 0.2, 0)
	inst := mustEuropean(t, pricing.Call, 100, 1)
	cfg := mcConfig()
	cfg.Paths = 5000
	const premium = 10.45

	samples, err := pricing.PnLSamples(context.Background(), inst, md, cfg, premium)
	if err != nil {
		t.Fatalf("PnLSamples error: %v", err)
	}
	if len(samples) != cfg.Paths {
		t.Fatalf("sample count mismatch: got %d want %d", len(samples), cfg.Paths)
	}
	// A long call can lose at most the premium.
	for i, s := range samples {
		if s < -premium-1e-12 {
			t.Fatalf("sample %d below floor: %v", i, s)
		}
	}

	again, err := pricing.PnLSamples(context.Background(), inst, md, cfg, premium)
	if err != nil {
		t.Fatalf("PnLSamples error: %v", err)
	}
	for i := range samples {
		if samples[i] != again[i] {
			t.Fatalf("same seed produced different P&L at %d: %v vs %v", i, samples[i], again[i])
		}
	}
}
