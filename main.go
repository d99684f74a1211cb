package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shirou/gopsutil/cpu"
	mpb "github.com/vbauerster/mpb/v7"
	"github.com/vbauerster/mpb/v7/decor"
	"github.com/xhhuango/json"

	"github.com/bcdannyboy/quantcore/pricing"
	"github.com/bcdannyboy/quantcore/risk"
	"github.com/bcdannyboy/quantcore/simulation"
)

const (
	defaultSeed  = 42
	defaultPaths = 200000
	defaultSteps = 64

	spot         = 100.0
	riskFreeRate = 0.05
	volatility   = 0.2
	divYield     = 0.0
	maturity     = 1.0
)

type strikeReport struct {
	Strike       float64 `json:"strike"`
	European     float64 `json:"european"`
	Delta        float64 `json:"delta"`
	MonteCarlo   float64 `json:"monte_carlo"`
	MCStdErr     float64 `json:"mc_std_err"`
	American     float64 `json:"american"`
	DownAndOut   float64 `json:"down_and_out"`
	ElapsedMilli int64   `json:"elapsed_ms"`
}

type riskReport struct {
	Method     string  `json:"method"`
	Confidence float64 `json:"confidence"`
	VaR        float64 `json:"var"`
	ES         float64 `json:"es"`
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file, using defaults")
	}
	seed := envUint("QUANTCORE_SEED", defaultSeed)
	paths := envInt("QUANTCORE_PATHS", defaultPaths)
	steps := envInt("QUANTCORE_STEPS", defaultSteps)

	if counts, err := cpu.Counts(true); err == nil {
		runtime.GOMAXPROCS(counts)
		fmt.Printf("Using %d CPUs\n", counts)
	}

	md, err := pricing.NewMarketData(spot, riskFreeRate, volatility, divYield)
	if err != nil {
		log.Fatalf("market data: %v", err)
	}
	cfg := simulation.Config{
		Paths:      paths,
		Steps:      steps,
		Seed:       seed,
		Antithetic: true,
	}

	strikes := []float64{80, 85, 90, 95, 100, 105, 110, 115, 120}

	p := mpb.New(mpb.WithWidth(64))
	bar := p.AddBar(int64(len(strikes)),
		mpb.PrependDecorators(
			decor.Name("Pricing"),
			decor.Percentage(decor.WCSyncSpace),
		),
		mpb.AppendDecorators(
			decor.CountersNoUnit("(%d / %d)", decor.WCSyncSpace),
		),
	)

	ctx := context.Background()
	reports := make([]strikeReport, 0, len(strikes))
	for _, strike := range strikes {
		start := time.Now()
		rep, err := priceStrike(ctx, strike, md, cfg)
		if err != nil {
			log.Fatalf("strike %.0f: %v", strike, err)
		}
		rep.ElapsedMilli = time.Since(start).Milliseconds()
		reports = append(reports, rep)
		bar.Increment()
	}
	p.Wait()

	riskReports, err := computeRisk(ctx, md, cfg)
	if err != nil {
		log.Fatalf("risk: %v", err)
	}

	out, err := json.MarshalIndent(struct {
		Strikes []strikeReport `json:"strikes"`
		Risk    []riskReport   `json:"risk"`
	}{reports, riskReports}, "", "  ")
	if err != nil {
		log.Fatalf("marshal: %v", err)
	}
	fmt.Println(string(out))
}

func priceStrike(ctx context.Context, strike float64, md pricing.MarketData, cfg simulation.Config) (strikeReport, error) {
	european, err := pricing.NewEuropean(pricing.Call, strike, maturity)
	if err != nil {
		return strikeReport{}, err
	}
	closed, err := pricing.Price(ctx, european, md, cfg)
	if err != nil {
		return strikeReport{}, err
	}

	mcCfg := cfg
	mcCfg.ForceMonteCarlo = true
	mc, err := pricing.Price(ctx, european, md, mcCfg)
	if err != nil {
		return strikeReport{}, err
	}

	american, err := pricing.NewAmerican(pricing.Put, strike, maturity)
	if err != nil {
		return strikeReport{}, err
	}
	latCfg := cfg
	latCfg.Steps = 1000
	amer, err := pricing.Price(ctx, american, md, latCfg)
	if err != nil {
		return strikeReport{}, err
	}

	barrier, err := pricing.NewBarrier(pricing.Call, strike, maturity, spot*0.7, pricing.Down)
	if err != nil {
		return strikeReport{}, err
	}
	dao, err := pricing.Price(ctx, barrier, md, cfg)
	if err != nil {
		return strikeReport{}, err
	}

	return strikeReport{
		Strike:     strike,
		European:   closed.Price,
		Delta:      closed.Greeks["delta"],
		MonteCarlo: mc.Price,
		MCStdErr:   mc.StdErr,
		American:   amer.Price,
		DownAndOut: dao.Price,
	}, nil
}

// computeRisk builds a P&L sample for the ATM call (simulated payoff minus
// premium) and aggregates it with each supported method.
func computeRisk(ctx context.Context, md pricing.MarketData, cfg simulation.Config) ([]riskReport, error) {
	atm, err := pricing.NewEuropean(pricing.Call, spot, maturity)
	if err != nil {
		return nil, err
	}
	closed, err := pricing.ClosedForm(atm, md)
	if err != nil {
		return nil, err
	}

	samples, err := pricing.PnLSamples(ctx, atm, md, cfg, closed.Price)
	if err != nil {
		return nil, err
	}

	var reports []riskReport
	for _, method := range []risk.Method{risk.Parametric, risk.Historical, risk.Simulated} {
		for _, c := range []float64{0.95, 0.99} {
			res, err := risk.Compute(samples, method, c)
			if err != nil {
				return nil, err
			}
			reports = append(reports, riskReport{
				Method:     res.Method.String(),
				Confidence: res.Confidence,
				VaR:        res.VaR,
				ES:         res.ES,
			})
		}
	}
	return reports, nil
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Printf("ignoring %s=%q", key, v)
	}
	return fallback
}

func envUint(key string, fallback uint64) uint64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			return n
		}
		log.Printf("ignoring %s=%q", key, v)
	}
	return fallback
}
