package timevalue

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/optimize"
)

const (
	ytmMaxIterations = 100
	ytmEpsilon       = 1e-10
)

// ErrNoYield is returned when no yield reprices the bond to the target
// price, e.g. a price no positive cash-flow schedule can reach.
var ErrNoYield = errors.New("timevalue: yield to maturity did not converge")

// CashFlow is one dated payment of a bond: the period it arrives in and its
// amount.
type CashFlow struct {
	Period float64
	Amount float64
}

// Bond is a fixed cash-flow schedule valued at a per-period yield to
// maturity. Build one with NewCouponBond or assemble the schedule directly
// for irregular flows.
type Bond struct {
	CashFlows []CashFlow
	YTM       float64
}

// NewCouponBond builds a bond paying face * couponRate at the end of each of
// n periods, plus the face value with the final coupon. A zero coupon rate
// gives a zero-coupon bond.
func NewCouponBond(face, couponRate float64, n int, ytm float64) (*Bond, error) {
	if face <= 0 {
		return nil, &InvalidInputError{Field: "face", Value: face}
	}
	if couponRate < 0 {
		return nil, &InvalidInputError{Field: "coupon", Value: couponRate}
	}
	if n < 1 {
		return nil, &InvalidInputError{Field: "periods", Value: float64(n)}
	}
	if ytm <= -1 {
		return nil, &InvalidInputError{Field: "ytm", Value: ytm}
	}

	coupon := face * couponRate
	flows := make([]CashFlow, n)
	for t := 1; t <= n; t++ {
		flows[t-1] = CashFlow{Period: float64(t), Amount: coupon}
	}
	flows[n-1].Amount += face
	return &Bond{CashFlows: flows, YTM: ytm}, nil
}

// Price is the present value of the cash flows at the bond's yield:
// P = sum CF_t / (1 + y)^t.
func (b *Bond) Price() (float64, error) {
	if b.YTM <= -1 {
		return 0, &InvalidInputError{Field: "ytm", Value: b.YTM}
	}
	var price float64
	for _, cf := range b.CashFlows {
		price += cf.Amount * math.Pow(1+b.YTM, -cf.Period)
	}
	return price, nil
}

// MacaulayDuration is the present-value-weighted mean time to the cash
// flows. For a zero-coupon bond it equals the maturity.
func (b *Bond) MacaulayDuration() (float64, error) {
	price, err := b.Price()
	if err != nil {
		return 0, err
	}
	if price == 0 {
		return 0, &InvalidInputError{Field: "price", Value: price}
	}
	var weighted float64
	for _, cf := range b.CashFlows {
		weighted += cf.Period * cf.Amount * math.Pow(1+b.YTM, -cf.Period)
	}
	return weighted / price, nil
}

// ModifiedDuration is the Macaulay duration discounted one period,
// D / (1 + y); it is the bond's relative price sensitivity to the yield.
func (b *Bond) ModifiedDuration() (float64, error) {
	d, err := b.MacaulayDuration()
	if err != nil {
		return 0, err
	}
	return d / (1 + b.YTM), nil
}

// Convexity is the second-order yield sensitivity:
// [1 / (P (1+y)^2)] sum CF_t (t^2 + t) / (1+y)^t.
func (b *Bond) Convexity() (float64, error) {
	price, err := b.Price()
	if err != nil {
		return 0, err
	}
	if price == 0 {
		return 0, &InvalidInputError{Field: "price", Value: price}
	}
	var sum float64
	for _, cf := range b.CashFlows {
		sum += cf.Amount * math.Pow(1+b.YTM, -cf.Period) * (cf.Period*cf.Period + cf.Period)
	}
	yf := 1 + b.YTM
	return sum / (price * yf * yf), nil
}

// ConvexityAdjustment is the second-order price-change correction
// convexity * (dy)^2 for a yield move dy.
func ConvexityAdjustment(convexity, yieldChange float64) (float64, error) {
	if convexity < 0 {
		return 0, &InvalidInputError{Field: "convexity", Value: convexity}
	}
	return convexity * yieldChange * yieldChange, nil
}

// YieldToMaturity inverts Price for the per-period yield that reprices the
// coupon bond to the observed market price. Newton-Raphson on the analytic
// price derivative handles the regular case; if it stalls, a Nelder-Mead
// minimization of the squared pricing error takes over.
func YieldToMaturity(face, couponRate float64, n int, marketPrice float64) (float64, error) {
	if marketPrice <= 0 {
		return 0, &InvalidInputError{Field: "price", Value: marketPrice}
	}
	bond, err := NewCouponBond(face, couponRate, n, couponRate)
	if err != nil {
		return 0, err
	}

	price := func(y float64) (float64, float64, error) {
		if y <= -1 {
			return 0, 0, &InvalidInputError{Field: "ytm", Value: y}
		}
		bond.YTM = y
		p, err := bond.Price()
		if err != nil {
			return 0, 0, err
		}
		// dP/dy = -sum t CF_t / (1+y)^(t+1)
		var dp float64
		for _, cf := range bond.CashFlows {
			dp -= cf.Period * cf.Amount * math.Pow(1+y, -cf.Period-1)
		}
		return p, dp, nil
	}

	y := couponRate
	for i := 0; i < ytmMaxIterations; i++ {
		p, dp, err := price(y)
		if err != nil {
			return 0, err
		}
		diff := p - marketPrice
		if math.Abs(diff) < ytmEpsilon {
			return y, nil
		}
		if dp == 0 {
			break
		}
		y -= diff / dp
		if y <= -1 {
			y = -1 + 1e-6
		}
	}

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			if x[0] <= -1 {
				return math.Inf(1)
			}
			p, _, err := price(x[0])
			if err != nil {
				return math.Inf(1)
			}
			return (p - marketPrice) * (p - marketPrice)
		},
	}
	result, err := optimize.Minimize(problem, []float64{couponRate}, nil, &optimize.NelderMead{})
	if err != nil {
		return 0, ErrNoYield
	}
	y = result.X[0]
	p, _, err := price(y)
	if err != nil || math.Abs(p-marketPrice) > 1e-6 {
		return 0, ErrNoYield
	}
	return y, nil
}
