package pool

import (
	"errors"
	"math"
	"math/big"
	"testing"

	"swapForge/internal/model"
)

func TestSqrtPriceRoundTrip(t *testing.T) {
	cases := []struct {
		price     float64
		decimals0 uint8
		decimals1 uint8
		swapped   bool
	}{
		{1800.0, 18, 6, false},
		{1800.0, 18, 6, true},
		{0.00035, 18, 18, false},
		{1.0, 6, 6, false},
		{42000.5, 8, 18, false},
	}
	for _, tc := range cases {
		sqrtPrice, err := PriceToSqrtPrice(tc.price, tc.decimals0, tc.decimals1, tc.swapped)
		if err != nil {
			t.Fatalf("price %v: unexpected error: %v", tc.price, err)
		}
		back, err := SqrtPriceToPrice(sqrtPrice, tc.decimals0, tc.decimals1, tc.swapped)
		if err != nil {
			t.Fatalf("price %v: unexpected error: %v", tc.price, err)
		}
		if rel := math.Abs(back-tc.price) / tc.price; rel > 1e-6 {
			t.Fatalf("price %v: round trip drifted to %v (rel %v)", tc.price, back, rel)
		}
	}
}

func TestSqrtPriceToPriceUnit(t *testing.T) {
	// 2^96 encodes sqrt(1), so equal decimals give exactly 1.
	unit := new(big.Int).Lsh(big.NewInt(1), 96)
	price, err := SqrtPriceToPrice(unit, 18, 18, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if price != 1.0 {
		t.Fatalf("price = %v, want 1.0", price)
	}

	inverted, err := SqrtPriceToPrice(unit, 18, 18, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inverted != 1.0 {
		t.Fatalf("inverted price = %v, want 1.0", inverted)
	}
}

func TestSqrtPriceToPriceSwappedInverts(t *testing.T) {
	sqrtPrice, err := PriceToSqrtPrice(2000.0, 18, 6, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	forward, err := SqrtPriceToPrice(sqrtPrice, 18, 6, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	backward, err := SqrtPriceToPrice(sqrtPrice, 18, 6, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if drift := math.Abs(forward*backward - 1); drift > 1e-9 {
		t.Fatalf("forward*backward = %v, want 1", forward*backward)
	}
}

func TestSqrtPriceToPriceRejectsBadInput(t *testing.T) {
	if _, err := SqrtPriceToPrice(nil, 18, 18, false); err == nil {
		t.Fatalf("expected error for nil sqrt price")
	}

	tooWide := new(big.Int).Lsh(big.NewInt(1), 161)
	var validation *model.ValidationError
	_, err := SqrtPriceToPrice(tooWide, 18, 18, false)
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	if _, err := PriceToSqrtPrice(0, 18, 18, false); err == nil {
		t.Fatalf("expected error for zero price")
	}
	if _, err := PriceToSqrtPrice(math.Inf(1), 18, 18, false); err == nil {
		t.Fatalf("expected error for infinite price")
	}
}

func TestFormatPrice(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{1234.56789, "1234.5679"},
		{1.0, "1.0000"},
		{0.123456, "0.123456"},
		{0.000123456, "0.000123"},
		{0.00001234, "0.00001234"},
		{0.0000001234, "0.0000001234"},
		{0, "0.0000"},
		{math.NaN(), "0.0000"},
		{math.Inf(1), "0.0000"},
	}
	for _, tc := range cases {
		if got := FormatPrice(tc.in); got != tc.want {
			t.Fatalf("FormatPrice(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
