package pool

import (
	"errors"
	"math"
	"math/big"
	"testing"

	"swapForge/internal/model"
)

func e18(units int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(units), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
}

func humanOut(t *testing.T, raw string, decimals uint8) float64 {
	t.Helper()
	amount, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		t.Fatalf("amount out %q is not an integer", raw)
	}
	value, _ := new(big.Float).Quo(new(big.Float).SetInt(amount), pow10(decimals)).Float64()
	return value
}

func TestConstantProductOut(t *testing.T) {
	out, err := ConstantProductOut(e18(100), e18(1000), e18(1000), 3000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	human, _ := new(big.Float).Quo(new(big.Float).SetInt(out), pow10(18)).Float64()
	if math.Abs(human-90.6611) > 0.001 {
		t.Fatalf("amount out = %v, want ~90.6611", human)
	}

	if _, err := ConstantProductOut(big.NewInt(0), e18(1), e18(1), 3000); err == nil {
		t.Fatalf("expected error for zero input")
	}
	if _, err := ConstantProductOut(e18(1), big.NewInt(0), e18(1), 3000); err == nil {
		t.Fatalf("expected error for empty reserves")
	}
	if _, err := ConstantProductOut(e18(1), e18(1), e18(1), FeeDenominator); err == nil {
		t.Fatalf("expected error for fee at the denominator")
	}
}

func TestQuoteExactInV1(t *testing.T) {
	key := model.PoolKey{
		Token0: model.Token{Decimals: 18},
		Token1: model.Token{Decimals: 18},
		Fee:    3000,
	}
	state := model.PoolState{
		Version:  model.VersionV1,
		Reserve0: e18(1000),
		Reserve1: e18(1000),
	}

	quote, err := QuoteExactIn(key, state, e18(100), true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out := humanOut(t, quote.AmountOut, 18); math.Abs(out-90.6611) > 0.001 {
		t.Fatalf("amount out = %v, want ~90.6611", out)
	}
	if math.Abs(quote.PriceImpactPct-9.3389) > 0.001 {
		t.Fatalf("price impact = %v, want ~9.3389", quote.PriceImpactPct)
	}
	if math.Abs(quote.ExecutionPrice-0.906611) > 1e-5 {
		t.Fatalf("execution price = %v, want ~0.906611", quote.ExecutionPrice)
	}

	// The pool is symmetric, so the reverse direction quotes the same.
	reverse, err := QuoteExactIn(key, state, e18(100), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reverse.AmountOut != quote.AmountOut {
		t.Fatalf("reverse quote %s != %s", reverse.AmountOut, quote.AmountOut)
	}
}

func TestQuoteExactInV2(t *testing.T) {
	key := model.PoolKey{
		Token0: model.Token{Decimals: 18},
		Token1: model.Token{Decimals: 18},
		Fee:    3000,
	}
	state := model.PoolState{
		Version:      model.VersionV2,
		SqrtPriceX96: new(big.Int).Lsh(big.NewInt(1), 96),
	}

	quote, err := QuoteExactIn(key, state, e18(1), true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out := humanOut(t, quote.AmountOut, 18); math.Abs(out-0.997) > 1e-9 {
		t.Fatalf("amount out = %v, want 0.997", out)
	}
	if math.Abs(quote.ExecutionPrice-0.997) > 1e-12 {
		t.Fatalf("execution price = %v, want 0.997", quote.ExecutionPrice)
	}
	if math.Abs(quote.PriceImpactPct-0.3) > 1e-9 {
		t.Fatalf("price impact = %v, want 0.3", quote.PriceImpactPct)
	}
}

func TestQuoteExactInRejectsBadInput(t *testing.T) {
	key := model.PoolKey{Fee: 3000}
	state := model.PoolState{Version: model.VersionV1, Reserve0: e18(1), Reserve1: e18(1)}

	var validation *model.ValidationError
	_, err := QuoteExactIn(key, state, nil, true)
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	var unsupported *model.UnsupportedVersionError
	_, err = QuoteExactIn(key, model.PoolState{Version: "v9"}, e18(1), true)
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected UnsupportedVersionError, got %v", err)
	}
}

func TestCurrentPrice(t *testing.T) {
	key := model.PoolKey{
		Token0: model.Token{Symbol: "WETH", Decimals: 18},
		Token1: model.Token{Symbol: "USDT", Decimals: 6},
	}

	empty, err := CurrentPrice(key, model.PoolState{Version: model.VersionV2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if empty.Exists {
		t.Fatalf("pool without state must not exist")
	}
	if empty.Token0Symbol != "WETH" || empty.Token1Symbol != "USDT" {
		t.Fatalf("symbols must survive the empty result")
	}

	state := model.PoolState{
		Version:  model.VersionV1,
		Reserve0: e18(10),
		Reserve1: new(big.Int).Mul(big.NewInt(18000), big.NewInt(1_000_000)),
	}
	result, err := CurrentPrice(key, state)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Exists {
		t.Fatalf("pool with reserves must exist")
	}
	if math.Abs(result.Price-1800.0) > 1e-6 {
		t.Fatalf("price = %v, want 1800", result.Price)
	}
	if result.PriceDisplay != "1800.0000" {
		t.Fatalf("display = %q, want 1800.0000", result.PriceDisplay)
	}

	if _, err := CurrentPrice(key, model.PoolState{Version: "v9"}); err == nil {
		t.Fatalf("expected error for unknown version")
	}
}
