// Package pricing values derivative instruments against a market snapshot,
// dispatching between closed-form Black-Scholes-Merton, binomial/trinomial
// lattices and Monte Carlo simulation depending on the instrument.
package pricing

import "fmt"

// Right is the payoff direction of an option.
type Right int

const (
	Call Right = iota
	Put
)

func (r Right) String() string {
	if r == Put {
		return "put"
	}
	return "call"
}

// Kind is the exercise style / payoff family of an instrument. The set is
// closed so pricing dispatch can be exhaustive.
type Kind int

const (
	European Kind = iota
	American
	Barrier
)

func (k Kind) String() string {
	switch k {
	case European:
		return "european"
	case American:
		return "american"
	case Barrier:
		return "barrier"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// BarrierDirection says which side of spot a knock-out barrier sits on.
type BarrierDirection int

const (
	Up BarrierDirection = iota
	Down
)

// Instrument is an immutable option description. Build one with the
// constructors, which validate eagerly.
type Instrument struct {
	Kind     Kind
	Right    Right
	Strike   float64
	Maturity float64 // Years to expiry

	// Knock-out barrier, meaningful only for Kind == Barrier. Barriers are
	// monitored discretely at the simulation step dates; no continuity
	// correction is applied.
	BarrierLevel     float64
	BarrierDirection BarrierDirection
}

func NewEuropean(right Right, strike, maturity float64) (Instrument, error) {
	if err := validateOption(strike, maturity); err != nil {
		return Instrument{}, err
	}
	return Instrument{Kind: European, Right: right, Strike: strike, Maturity: maturity}, nil
}

func NewAmerican(right Right, strike, maturity float64) (Instrument, error) {
	if err := validateOption(strike, maturity); err != nil {
		return Instrument{}, err
	}
	return Instrument{Kind: American, Right: right, Strike: strike, Maturity: maturity}, nil
}

// NewBarrier builds a knock-out barrier option. Only knock-outs are
// supported; knock-ins follow by in-out parity against the European price.
func NewBarrier(right Right, strike, maturity, level float64, dir BarrierDirection) (Instrument, error) {
	if err := validateOption(strike, maturity); err != nil {
		return Instrument{}, err
	}
	if level <= 0 {
		return Instrument{}, &InvalidParametersError{Field: "barrier", Value: level}
	}
	return Instrument{
		Kind:             Barrier,
		Right:            right,
		Strike:           strike,
		Maturity:         maturity,
		BarrierLevel:     level,
		BarrierDirection: dir,
	}, nil
}

func validateOption(strike, maturity float64) error {
	if strike <= 0 {
		return &InvalidParametersError{Field: "strike", Value: strike}
	}
	if maturity < 0 {
		return &InvalidParametersError{Field: "maturity", Value: maturity}
	}
	return nil
}

// MarketData is an immutable market snapshot: spot, continuously compounded
// risk-free rate, annualized volatility and continuous dividend yield.
type MarketData struct {
	Spot     float64
	Rate     float64
	Vol      float64
	Dividend float64
}

func NewMarketData(spot, rate, vol, dividend float64) (MarketData, error) {
	if spot <= 0 {
		return MarketData{}, &InvalidParametersError{Field: "spot", Value: spot}
	}
	if vol < 0 {
		return MarketData{}, &InvalidParametersError{Field: "vol", Value: vol}
	}
	return MarketData{Spot: spot, Rate: rate, Vol: vol, Dividend: dividend}, nil
}

// Result is the outcome of one pricing request. StdErr and the confidence
// bounds are populated by Monte Carlo only; lattice and closed-form prices
// are deterministic, so Low = High = Price and StdErr = 0 there. Greeks is
// keyed by sensitivity name and only filled by the closed-form pricer.
type Result struct {
	Price  float64
	StdErr float64
	Low    float64
	High   float64
	Greeks map[string]float64
	Method string
}

// InvalidParametersError reports a malformed instrument or market input.
type InvalidParametersError struct {
	Field string
	Value float64
}

func (e *InvalidParametersError) Error() string {
	return fmt.Sprintf("pricing: invalid parameter %s = %g", e.Field, e.Value)
}

// InvalidStepsError reports a lattice step count below 1.
type InvalidStepsError struct {
	Steps int
}

func (e *InvalidStepsError) Error() string {
	return fmt.Sprintf("pricing: lattice needs at least 1 step, got %d", e.Steps)
}

// NumericalInstabilityError reports lattice transition probabilities that
// left [0, 1], a sign the step size is too large for the volatility and
// rate. Surfaced instead of clamped.
type NumericalInstabilityError struct {
	Probability float64
}

func (e *NumericalInstabilityError) Error() string {
	return fmt.Sprintf("pricing: transition probability %g outside [0, 1]; reduce the step size", e.Probability)
}
