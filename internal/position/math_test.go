package position

import (
	"math/big"
	"testing"
)

func TestV1Underlying(t *testing.T) {
	amount0, amount1, err := V1Underlying(
		big.NewInt(10), big.NewInt(100), big.NewInt(1000), big.NewInt(5000))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if amount0.Int64() != 100 {
		t.Fatalf("amount0 = %s, want 100", amount0)
	}
	if amount1.Int64() != 500 {
		t.Fatalf("amount1 = %s, want 500", amount1)
	}

	if _, _, err := V1Underlying(nil, big.NewInt(1), big.NewInt(1), big.NewInt(1)); err == nil {
		t.Fatalf("expected error for nil balance")
	}
	if _, _, err := V1Underlying(big.NewInt(1), big.NewInt(0), big.NewInt(1), big.NewInt(1)); err == nil {
		t.Fatalf("expected error for zero supply")
	}
	if _, _, err := V1Underlying(big.NewInt(1), big.NewInt(1), nil, big.NewInt(1)); err == nil {
		t.Fatalf("expected error for missing reserves")
	}
}

func TestAmountsFromLiquidityInRange(t *testing.T) {
	liquidity := new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
	sqrtPrice := new(big.Int).Lsh(big.NewInt(1), 96) // tick 0

	amount0, amount1, err := AmountsFromLiquidity(liquidity, sqrtPrice, -600, 600, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if amount0.Sign() <= 0 || amount1.Sign() <= 0 {
		t.Fatalf("in-range position must hold both tokens: %s, %s", amount0, amount1)
	}
	// At the midpoint of a symmetric range the two sides are nearly equal.
	diff := new(big.Int).Sub(amount0, amount1)
	diff.Abs(diff)
	bound := new(big.Int).Quo(amount0, big.NewInt(10))
	if diff.Cmp(bound) > 0 {
		t.Fatalf("symmetric range should be roughly balanced: %s vs %s", amount0, amount1)
	}
}

func TestAmountsFromLiquidityBelowRange(t *testing.T) {
	liquidity := big.NewInt(1_000_000_000)

	amount0, amount1, err := AmountsFromLiquidity(liquidity, nil, 100, 200, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if amount0.Sign() <= 0 {
		t.Fatalf("below-range position must be all token0, got %s", amount0)
	}
	if amount1.Sign() != 0 {
		t.Fatalf("below-range position must hold no token1, got %s", amount1)
	}
}

func TestAmountsFromLiquidityAboveRange(t *testing.T) {
	liquidity := big.NewInt(1_000_000_000)

	amount0, amount1, err := AmountsFromLiquidity(liquidity, nil, -200, -100, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if amount0.Sign() != 0 {
		t.Fatalf("above-range position must hold no token0, got %s", amount0)
	}
	if amount1.Sign() <= 0 {
		t.Fatalf("above-range position must be all token1, got %s", amount1)
	}
}

func TestAmountsFromLiquidityEdges(t *testing.T) {
	amount0, amount1, err := AmountsFromLiquidity(big.NewInt(0), nil, -600, 600, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if amount0.Sign() != 0 || amount1.Sign() != 0 {
		t.Fatalf("zero liquidity must decompose to zero amounts")
	}

	if _, _, err := AmountsFromLiquidity(big.NewInt(1), nil, 600, 600, 0); err == nil {
		t.Fatalf("expected error for empty tick range")
	}
	if _, _, err := AmountsFromLiquidity(nil, nil, -600, 600, 0); err == nil {
		t.Fatalf("expected error for nil liquidity")
	}
	if _, _, err := AmountsFromLiquidity(big.NewInt(1), nil, -600, 600, 0); err == nil {
		t.Fatalf("expected error for in-range position without a sqrt price")
	}
}
