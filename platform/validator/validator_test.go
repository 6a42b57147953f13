package validator

import (
	"math"
	"testing"
)

type amounts struct {
	Price float64 `validate:"finite,gte=0"`
	Note  string  `validate:"finite"`
}

func TestFiniteRejectsNaNAndInf(t *testing.T) {
	val := New()

	for _, price := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		err := val.Struct(amounts{Price: price})
		if err == nil {
			t.Fatalf("expected %v to fail validation", price)
		}
		if !HasFieldError(err, "price") {
			t.Fatalf("expected price field error, got %v", FieldErrors(err))
		}
	}
}

func TestFiniteAcceptsNumbersAndIgnoresStrings(t *testing.T) {
	if err := New().Struct(amounts{Price: 2_400_000, Note: "NaN"}); err != nil {
		t.Fatalf("expected no error, got %v", FieldErrors(err))
	}
}
