// Package timevalue implements basic time-value-of-money arithmetic: simple
// and compound interest, present and future value, and ordinary annuities.
// Rates are decimals (0.05 for 5%) per period unless noted.
package timevalue

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
	return fmt.Sprintf("timevalue: invalid %s = %g", e.Field, e.Value)
}

// SimpleInterest returns the interest earned on principal at a simple
// per-period rate over t periods.
func SimpleInterest(principal, rate, t float64) (float64, error) {
	if principal < 0 {
		return 0, &InvalidInputError{Field: "principal", Value: principal}
	}
	if rate < 0 {
		return 0, &InvalidInputError{Field: "rate", Value: rate}
	}
	if t < 0 {
		return 0, &InvalidInputError{Field: "periods", Value: t}
	}
	return principal * rate * t, nil
}

// FutureValue compounds pv at rate for n whole periods.
func FutureValue(pv, rate float64, n int) (float64, error) {
	if rate < 0 {
		return 0, &InvalidInputError{Field: "rate", Value: rate}
	}
	if n < 0 {
		return 0, &InvalidInputError{Field: "periods", Value: float64(n)}
	}
	return pv * math.Pow(1+rate, float64(n)), nil
}

// PresentValue discounts fv back over n whole periods at rate.
func PresentValue(fv, rate float64, n int) (float64, error) {
	if rate < 0 {
		return 0, &InvalidInputError{Field: "rate", Value: rate}
	}
	if n < 0 {
		return 0, &InvalidInputError{Field: "periods", Value: float64(n)}
	}
	return fv / math.Pow(1+rate, float64(n)), nil
}

// CompoundFutureValue compounds pv at an annual rate, m times per year,
// for years (possibly fractional): pv (1 + r/m)^(m years).
func CompoundFutureValue(pv, rate float64, m int, years float64) (float64, error) {
	if rate < 0 {
		return 0, &InvalidInputError{Field: "rate", Value: rate}
	}
	if m < 1 {
		return 0, &InvalidInputError{Field: "frequency", Value: float64(m)}
	}
	if years < 0 {
		return 0, &InvalidInputError{Field: "years", Value: years}
	}
	return pv * math.Pow(1+rate/float64(m), float64(m)*years), nil
}

// AnnuityPresentValue is the present value of an ordinary annuity paying
// payment at the end of each of n periods.
func AnnuityPresentValue(payment, rate float64, n int) (float64, error) {
	if rate < 0 {
		return 0, &InvalidInputError{Field: "rate", Value: rate}
	}
	if n < 0 {
		return 0, &InvalidInputError{Field: "periods", Value: float64(n)}
	}
	if rate == 0 {
		return payment * float64(n), nil
	}
	return payment * (1 - math.Pow(1+rate, -float64(n))) / rate, nil
}

// AnnuityFutureValue is the value of the same annuity at the final payment.
func AnnuityFutureValue(payment, rate float64, n int) (float64, error) {
	if rate < 0 {
		return 0, &InvalidInputError{Field: "rate", Value: rate}
	}
	if n < 0 {
		return 0, &InvalidInputError{Field: "periods", Value: float64(n)}
	}
	if rate == 0 {
		return payment * float64(n), nil
	}
	return payment * (math.Pow(1+rate, float64(n)) - 1) / rate, nil
}
