package timevalue_test

import (
	"errors"
	"math"
	"testing"

	"github.com/bcdannyboy/quantcore/timevalue"
)

func TestSimpleInterest(t *testing.T) {
	t.Parallel()

	got, err := timevalue.SimpleInterest(1000, 0.05, 3)
	if err != nil {
		t.Fatalf("SimpleInterest error: %v", err)
	}
	if got != 150 {
		t.Fatalf("interest mismatch: got %v want 150", got)
	}
}

func TestFutureAndPresentValueRoundTrip(t *testing.T) {
	t.Parallel()

	fv, err := timevalue.FutureValue(1000, 0.05, 10)
	if err != nil {
		t.Fatalf("FutureValue error: %v", err)
	}
	if math.Abs(fv-1000*math.Pow(1.05, 10)) > 1e-10 {
		t.Fatalf("future value mismatch: got %v", fv)
	}

	pv, err := timevalue.PresentValue(fv, 0.05, 10)
	if err != nil {
		t.Fatalf("PresentValue error: %v", err)
	}
	if math.Abs(pv-1000) > 1e-10 {
		t.Fatalf("round trip drifted: got %v want 1000", pv)
	}
}

func TestCompoundFrequency(t *testing.T) {
	t.Parallel()

	// Monthly compounding beats annual, and both stay under the continuous
	// limit e^(r t).
	annual, err := timevalue.CompoundFutureValue(1000, 0.06, 1, 5)
	if err != nil {
		t.Fatalf("CompoundFutureValue error: %v", err)
	}
	monthly, err := timevalue.CompoundFutureValue(1000, 0.06, 12, 5)
	if err != nil {
		t.Fatalf("CompoundFutureValue error: %v", err)
	}
	if monthly <= annual {
		t.Fatalf("monthly compounding not ahead: %v <= %v", monthly, annual)
	}
	if limit := 1000 * math.Exp(0.06*5); monthly >= limit {
		t.Fatalf("discrete compounding passed the continuous limit: %v >= %v", monthly, limit)
	}
}

func TestAnnuityIdentity(t *testing.T) {
	t.Parallel()

	// FV of an ordinary annuity is its PV carried forward n periods.
	const rate, n = 0.04, 20
	pv, err := timevalue.AnnuityPresentValue(100, rate, n)
	if err != nil {
		t.Fatalf("AnnuityPresentValue error: %v", err)
	}
	fv, err := timevalue.AnnuityFutureValue(100, rate, n)
	if err != nil {
		t.Fatalf("AnnuityFutureValue error: %v", err)
	}
	if math.Abs(fv-pv*math.Pow(1+rate, n)) > 1e-9 {
		t.Fatalf("annuity identity violated: fv %v, pv carried %v", fv, pv*math.Pow(1+rate, n))
	}
}

func TestZeroRateAnnuity(t *testing.T) {
	t.Parallel()

	pv, err := timevalue.AnnuityPresentValue(100, 0, 12)
	if err != nil {
		t.Fatalf("AnnuityPresentValue error: %v", err)
	}
	fv, err := timevalue.AnnuityFutureValue(100, 0, 12)
	if err != nil {
		t.Fatalf("AnnuityFutureValue error: %v", err)
	}
	if pv != 1200 || fv != 1200 {
		t.Fatalf("zero-rate annuity mismatch: pv %v, fv %v", pv, fv)
	}
}

func TestInvalidInputs(t *testing.T) {
	t.Parallel()

	var invalid *timevalue.InvalidInputError
	if _, err := timevalue.SimpleInterest(-1, 0.05, 1); !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidInputError for negative principal, got %v", err)
	}
	if _, err := timevalue.FutureValue(1000, -0.05, 1); !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidInputError for negative rate, got %v", err)
	}
	if _, err := timevalue.PresentValue(1000, 0.05, -1); !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidInputError for negative periods, got %v", err)
	}
	if _, err := timevalue.CompoundFutureValue(1000, 0.05, 0, 1); !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidInputError for zero frequency, got %v", err)
	}
}
