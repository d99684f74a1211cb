package simulation

import "math"

// Accumulator maintains a running mean and variance using Welford's method,
// which stays numerically stable over millions of samples where the naive
// sum-of-squares form cancels catastrophically.
//
// Merge combines two accumulators with the Chan et al. pairwise update. The
// combination is associative and commutative up to floating-point rounding,
// which is what makes the parallel reduction independent of how work is
// partitioned across workers.
type Accumulator struct {
	n    int64
	mean float64
	m2   float64
}

func (a *Accumulator) Add(x float64) {
	a.n++
	d := x - a.mean
	a.mean += d / float64(a.n)
	a.m2 += d * (x - a.mean)
}

func (a *Accumulator) Merge(b *Accumulator) {
	if b.n == 0 {
		return
	}
	if a.n == 0 {
		*a = *b
		return
	}
	n := a.n + b.n
	d := b.mean - a.mean
	a.m2 += b.m2 + d*d*float64(a.n)*float64(b.n)/float64(n)
	a.mean += d * float64(b.n) / float64(n)
	a.n = n
}

func (a *Accumulator) Count() int64 { return a.n }

func (a *Accumulator) Mean() float64 { return a.mean }

// Variance returns the unbiased sample variance.
func (a *Accumulator) Variance() float64 {
	if a.n < 2 {
		return 0
	}
	return a.m2 / float64(a.n-1)
}

func (a *Accumulator) StdDev() float64 { return math.Sqrt(a.Variance()) }

// StdErr returns the standard error of the mean, stddev / sqrt(n).
func (a *Accumulator) StdErr() float64 {
	if a.n == 0 {
		return 0
	}
	return a.StdDev() / math.Sqrt(float64(a.n))
}

// biAccumulator extends Welford's update to a second coordinate and the
// cross moment, for estimating the control-variate coefficient from the
// same batch that produced the estimate.
type biAccumulator struct {
	n            int64
	meanX, meanY float64
	m2x, m2y     float64
	cxy          float64
}

func (b *biAccumulator) Add(x, y float64) {
	b.n++
	n := float64(b.n)
	dx := x - b.meanX
	dy := y - b.meanY
	b.meanX += dx / n
	b.meanY += dy / n
	b.m2x += dx * (x - b.meanX)
	b.m2y += dy * (y - b.meanY)
	b.cxy += dx * (y - b.meanY)
}

func (b *biAccumulator) Merge(o *biAccumulator) {
	if o.n == 0 {
		return
	}
	if b.n == 0 {
		*b = *o
		return
	}
	n := b.n + o.n
	na, nb := float64(b.n), float64(o.n)
	dx := o.meanX - b.meanX
	dy := o.meanY - b.meanY
	w := na * nb / float64(n)
	b.m2x += o.m2x + dx*dx*w
	b.m2y += o.m2y + dy*dy*w
	b.cxy += o.cxy + dx*dy*w
	b.meanX += dx * nb / float64(n)
	b.meanY += dy * nb / float64(n)
	b.n = n
}

func (b *biAccumulator) varX() float64 {
	if b.n < 2 {
		return 0
	}
	return b.m2x / float64(b.n-1)
}

func (b *biAccumulator) varY() float64 {
	if b.n < 2 {
		return 0
	}
	return b.m2y / float64(b.n-1)
}

func (b *biAccumulator) cov() float64 {
	if b.n < 2 {
		return 0
	}
	return b.cxy / float64(b.n-1)
}
