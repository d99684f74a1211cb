// Package simulation drives a stochastic process model and a seeded random
// stream provider to produce Monte Carlo statistics. Paths are embarrassingly
// parallel: each path (or antithetic pair) owns its own stream index, workers
// accumulate Welford statistics locally, and the partial accumulators are
// merged in worker order so a run with a fixed worker count is bit-for-bit
// reproducible. Raw trajectories are never retained unless explicitly
// requested; the default output is the aggregated statistic only.
package simulation

import (
	"context"
	"math"
	"runtime"
	"sync"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/bcdannyboy/quantcore/models"
	"github.com/bcdannyboy/quantcore/random"
)

// abortCheckInterval is how many work units a worker processes between
// context polls. Coarse on purpose: the poll is a best-effort abort, not a
// hard deadline.
const abortCheckInterval = 1024

// PathFunc maps one simulated trajectory to a scalar sample. path[0] is the
// initial state and path[i] the state after i steps. The slice is reused
// between paths; implementations must not retain it.
type PathFunc func(path []float64) float64

// Stats is the aggregated outcome of a simulation run.
type Stats struct {
	Mean    float64
	StdDev  float64
	StdErr  float64
	Low     float64 // Lower confidence bound
	High    float64 // Upper confidence bound
	Samples int64   // Accumulated samples; an antithetic pair counts as one
	Beta    float64 // Control-variate coefficient, 0 when none was applied

	// Paths holds the raw trajectories when Config.KeepPaths is set,
	// indexed by path number; nil otherwise.
	Paths [][]float64
}

// Simulate runs cfg.Paths trajectories of proc starting from x0 and
// aggregates f over them. The context is polled between batches; on
// cancellation the partial results are discarded and ctx.Err() returned.
func Simulate(ctx context.Context, proc models.Process, x0 float64, cfg Config, f PathFunc) (*Stats, error) {
	if cfg.ControlVariate {
		// Simulate has no control function to apply; silently returning an
		// uncontrolled estimate would misreport the error bars.
		return nil, &InvalidConfigError{Field: "control_variate", Reason: "use SimulateControl with a control function"}
	}
	return run(ctx, proc, x0, cfg, f, nil, 0)
}

// SimulateControl is Simulate with a control variate: control must have the
// known expectation under the model, and the returned mean is
// mean(f) - beta (mean(control) - known) with beta estimated from the batch
// covariance. Used when a correlated closed-form quantity exists.
func SimulateControl(ctx context.Context, proc models.Process, x0 float64, cfg Config, f, control PathFunc, known float64) (*Stats, error) {
	if control == nil {
		return nil, &InvalidConfigError{Field: "control", Reason: "control function is nil"}
	}
	return run(ctx, proc, x0, cfg, f, control, known)
}

// Collect runs the same trajectories as Simulate but returns the raw
// per-path samples instead of aggregated statistics, one value per path
// (each half of an antithetic pair contributes its own sample). The slice
// is ordered by path number, so output is deterministic in the seed. Meant
// for feeding sample sets to downstream consumers such as the risk
// aggregator; the memory cost is O(Paths), the explicit tradeoff for
// keeping the values.
func Collect(ctx context.Context, proc models.Process, x0 float64, cfg Config, f PathFunc) ([]float64, error) {
	gen, err := newPathGen(proc, cfg)
	if err != nil {
		return nil, err
	}
	gen.x0 = x0
	provider, err := random.NewProvider(cfg.Seed)
	if err != nil {
		return nil, err
	}
	out := make([]float64, cfg.Paths)
	err = forEachUnit(ctx, gen.units(), func(w int, g *pathGen, u int) {
		g.generate(provider.Stream(uint64(u)))
		if g.mirror != nil {
			out[2*u] = f(g.path)
			out[2*u+1] = f(g.mirror)
		} else {
			out[u] = f(g.path)
		}
	}, gen)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// pathGen holds the per-worker state for generating one trajectory (and its
// antithetic mirror when configured). Not safe for concurrent use; each
// worker clones its own.
type pathGen struct {
	proc   models.Process
	exactZ models.GaussianExact
	cfg    Config
	dt     float64
	x0     float64
	path   []float64
	mirror []float64
}

func newPathGen(proc models.Process, cfg Config) (*pathGen, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	exactZ, hasExactZ := proc.(models.GaussianExact)
	if cfg.Antithetic && cfg.Scheme == SchemeExact && !hasExactZ {
		return nil, &InvalidConfigError{
			Field:  "scheme",
			Value:  float64(cfg.Scheme),
			Reason: "antithetic exact sampling needs a Gaussian transition; use the euler scheme for " + proc.Kind().String(),
		}
	}
	g := &pathGen{
		proc:   proc,
		exactZ: exactZ,
		cfg:    cfg,
		dt:     cfg.Horizon / float64(cfg.Steps),
		path:   make([]float64, cfg.Steps+1),
	}
	if cfg.Antithetic {
		g.mirror = make([]float64, cfg.Steps+1)
	}
	return g, nil
}

func (g *pathGen) clone() *pathGen {
	c := *g
	c.path = make([]float64, len(g.path))
	if g.mirror != nil {
		c.mirror = make([]float64, len(g.mirror))
	}
	return &c
}

// units is the number of independent work items: one per path, or one per
// antithetic pair.
func (g *pathGen) units() int {
	if g.cfg.Antithetic {
		return g.cfg.Paths / 2
	}
	return g.cfg.Paths
}

// generate fills g.path (and g.mirror) from the stream.
func (g *pathGen) generate(stream *random.Stream) {
	g.path[0] = g.x0
	if g.mirror != nil {
		g.mirror[0] = g.x0
		for i := 0; i < g.cfg.Steps; i++ {
			z := stream.Norm()
			if g.cfg.Scheme == SchemeExact {
				g.path[i+1] = g.exactZ.StepExactZ(g.path[i], g.dt, z)
				g.mirror[i+1] = g.exactZ.StepExactZ(g.mirror[i], g.dt, -z)
			} else {
				t := float64(i) * g.dt
				g.path[i+1] = g.proc.Step(g.path[i], t, g.dt, z)
				g.mirror[i+1] = g.proc.Step(g.mirror[i], t, g.dt, -z)
			}
		}
		return
	}
	for i := 0; i < g.cfg.Steps; i++ {
		if g.cfg.Scheme == SchemeExact {
			g.path[i+1] = g.proc.StepExact(g.path[i], g.dt, stream)
		} else {
			g.path[i+1] = g.proc.Step(g.path[i], float64(i)*g.dt, g.dt, stream.Norm())
		}
	}
}

// forEachUnit partitions [0, units) contiguously across GOMAXPROCS workers.
// The partition depends only on units and the worker count, never on
// scheduling, which keeps the reduction order deterministic.
func forEachUnit(ctx context.Context, units int, do func(w int, g *pathGen, u int), gen *pathGen) error {
	workers := runtime.GOMAXPROCS(0)
	if workers > units {
		workers = units
	}
	per := units / workers
	rem := units % workers

	var wg sync.WaitGroup
	start := 0
	for w := 0; w < workers; w++ {
		count := per
		if w < rem {
			count++
		}
		wg.Add(1)
		go func(w, start, end int) {
			defer wg.Done()
			g := gen.clone()
			for u := start; u < end; u++ {
				if (u-start)%abortCheckInterval == 0 && ctx.Err() != nil {
					return
				}
				do(w, g, u)
			}
		}(w, start, start+count)
		start += count
	}
	wg.Wait()
	return ctx.Err()
}

type workerState struct {
	acc Accumulator
	bi  biAccumulator
}

func run(ctx context.Context, proc models.Process, x0Val float64, cfg Config, f, control PathFunc, known float64) (*Stats, error) {
	gen, err := newPathGen(proc, cfg)
	if err != nil {
		return nil, err
	}
	gen.x0 = x0Val
	provider, err := random.NewProvider(cfg.Seed)
	if err != nil {
		return nil, err
	}

	units := gen.units()
	perUnit := 1
	if cfg.Antithetic {
		perUnit = 2
	}
	var raw [][]float64
	if cfg.KeepPaths {
		raw = make([][]float64, cfg.Paths)
	}

	states := make([]workerState, runtime.GOMAXPROCS(0))
	err = forEachUnit(ctx, units, func(w int, g *pathGen, u int) {
		st := &states[w]
		g.generate(provider.Stream(uint64(u)))

		v := f(g.path)
		if g.mirror != nil {
			v = 0.5 * (v + f(g.mirror))
		}
		if control != nil {
			y := control(g.path)
			if g.mirror != nil {
				y = 0.5 * (y + control(g.mirror))
			}
			st.bi.Add(v, y)
		} else {
			st.acc.Add(v)
		}
		if raw != nil {
			raw[u*perUnit] = append([]float64(nil), g.path...)
			if g.mirror != nil {
				raw[u*perUnit+1] = append([]float64(nil), g.mirror...)
			}
		}
	}, gen)
	if err != nil {
		return nil, err
	}

	stats := reduce(states, control != nil, known, cfg.confidence())
	stats.Paths = raw
	if cfg.Tolerance > 0 && stats.StdErr > cfg.Tolerance {
		return nil, &NonConvergentError{StdErr: stats.StdErr, Tolerance: cfg.Tolerance, Paths: cfg.Paths}
	}
	return stats, nil
}

// reduce merges the per-worker accumulators in worker order and converts the
// moments into a Stats. Merging in a fixed order keeps single-run results
// bit-identical for a given worker count; across worker counts results agree
// up to floating-point associativity.
func reduce(states []workerState, hasControl bool, known, confidence float64) *Stats {
	var mean, variance, beta float64
	var n int64

	if hasControl {
		var bi biAccumulator
		for i := range states {
			bi.Merge(&states[i].bi)
		}
		n = bi.n
		varY := bi.varY()
		if varY > 0 {
			beta = bi.cov() / varY
		}
		mean = bi.meanX - beta*(bi.meanY-known)
		variance = bi.varX() - 2*beta*bi.cov() + beta*beta*varY
		if variance < 0 {
			variance = 0
		}
	} else {
		var acc Accumulator
		for i := range states {
			acc.Merge(&states[i].acc)
		}
		n = acc.Count()
		mean = acc.Mean()
		variance = acc.Variance()
	}

	stderr := 0.0
	if n > 0 {
		stderr = math.Sqrt(variance / float64(n))
	}
	z := distuv.Normal{Mu: 0, Sigma: 1}.Quantile(0.5 + confidence/2)
	return &Stats{
		Mean:    mean,
		StdDev:  math.Sqrt(variance),
		StdErr:  stderr,
		Low:     mean - z*stderr,
		High:    mean + z*stderr,
		Samples: n,
		Beta:    beta,
	}
}
