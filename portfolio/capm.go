// Package portfolio implements the Capital Asset Pricing Model: the linear
// relation E(Ri) = Rf + beta (E(Rm) - Rf) between an asset's expected return
// and its systematic risk. Rates are decimals per period.
package portfolio

import (
	"fmt"
	"math"
)

// InvalidInputError reports an argument outside its valid domain.
type InvalidInputError struct {
	Field string
	Value float64
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("portfolio: invalid %s = %g", e.Field, e.Value)
}

// ExpectedReturn is the CAPM expected return Rf + beta * premium. Beta may
// be negative (hedging assets); the risk-free rate may not.
func ExpectedReturn(riskFree, beta, premium float64) (float64, error) {
	if !isFinite(riskFree) || riskFree < 0 {
		return 0, &InvalidInputError{Field: "risk_free", Value: riskFree}
	}
	if !isFinite(beta) {
		return 0, &InvalidInputError{Field: "beta", Value: beta}
	}
	if !isFinite(premium) {
		return 0, &InvalidInputError{Field: "premium", Value: premium}
	}
	return riskFree + beta*premium, nil
}

// MarketRiskPremium is the excess return of the market over the risk-free
// rate, E(Rm) - Rf.
func MarketRiskPremium(marketReturn, riskFree float64) (float64, error) {
	if !isFinite(marketReturn) {
		return 0, &InvalidInputError{Field: "market_return", Value: marketReturn}
	}
	if !isFinite(riskFree) {
		return 0, &InvalidInputError{Field: "risk_free", Value: riskFree}
	}
	return marketReturn - riskFree, nil
}

// Alpha is Jensen's alpha, the realized return in excess of the CAPM
// expectation. Positive alpha means the asset outperformed its risk.
func Alpha(actualReturn, expectedReturn float64) (float64, error) {
	if !isFinite(actualReturn) {
		return 0, &InvalidInputError{Field: "actual_return", Value: actualReturn}
	}
	if !isFinite(expectedReturn) {
		return 0, &InvalidInputError{Field: "expected_return", Value: expectedReturn}
	}
	return actualReturn - expectedReturn, nil
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
