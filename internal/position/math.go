package position

import (
	"math"
	"math/big"

	"swapForge/internal/model"
)

// Underlying-amount math mirrors the quote engine's approximation level: the
// range decomposition is exact for the given sqrt prices, but the sqrt prices
// themselves pass through float64, so results are estimation-grade, not
// settlement-grade.

var q96Float = new(big.Float).SetInt(new(big.Int).Lsh(big.NewInt(1), 96))

// tickToSqrtRatio returns the normalized (non-X96) sqrt price at a tick.
func tickToSqrtRatio(tick int32) float64 {
	return math.Pow(1.0001, float64(tick)/2)
}

// AmountsFromLiquidity decomposes raw liquidity into the raw token amounts a
// position holds, given the pool's current sqrt price and the position's tick
// range. Out-of-range positions are entirely one-sided.
func AmountsFromLiquidity(liquidity, sqrtPriceX96 *big.Int, tickLower, tickUpper, currentTick int32) (*big.Int, *big.Int, error) {
	if liquidity == nil || liquidity.Sign() < 0 {
		return nil, nil, &model.ValidationError{Field: "liquidity", Reason: "must be non-negative"}
	}
	if tickLower >= tickUpper {
		return nil, nil, &model.ValidationError{Field: "tickRange", Reason: "tickLower must be below tickUpper"}
	}
	if liquidity.Sign() == 0 {
		return big.NewInt(0), big.NewInt(0), nil
	}

	sqrtLower := tickToSqrtRatio(tickLower)
	sqrtUpper := tickToSqrtRatio(tickUpper)

	var sqrtCurrent float64
	switch {
	case currentTick < tickLower:
		sqrtCurrent = sqrtLower
	case currentTick >= tickUpper:
		sqrtCurrent = sqrtUpper
	default:
		if sqrtPriceX96 == nil || sqrtPriceX96.Sign() <= 0 {
			return nil, nil, &model.ValidationError{Field: "sqrtPriceX96", Reason: "must be positive"}
		}
		normalized := new(big.Float).Quo(new(big.Float).SetInt(sqrtPriceX96), q96Float)
		sqrtCurrent, _ = normalized.Float64()
	}

	liquidityF := new(big.Float).SetInt(liquidity)

	// amount0 = L * (sqrtUpper - sqrtCurrent) / (sqrtCurrent * sqrtUpper)
	amount0 := new(big.Float).Mul(liquidityF, big.NewFloat((sqrtUpper-sqrtCurrent)/(sqrtCurrent*sqrtUpper)))
	// amount1 = L * (sqrtCurrent - sqrtLower)
	amount1 := new(big.Float).Mul(liquidityF, big.NewFloat(sqrtCurrent-sqrtLower))

	amount0Int, _ := amount0.Int(nil)
	amount1Int, _ := amount1.Int(nil)
	if amount0Int.Sign() < 0 {
		amount0Int = big.NewInt(0)
	}
	if amount1Int.Sign() < 0 {
		amount1Int = big.NewInt(0)
	}
	return amount0Int, amount1Int, nil
}

// V1Underlying computes the wallet's share of a constant-product pool's
// reserves from its LP-token balance: share = balance / totalSupply.
func V1Underlying(lpBalance, totalSupply, reserve0, reserve1 *big.Int) (*big.Int, *big.Int, error) {
	if lpBalance == nil || lpBalance.Sign() < 0 {
		return nil, nil, &model.ValidationError{Field: "lpBalance", Reason: "must be non-negative"}
	}
	if totalSupply == nil || totalSupply.Sign() <= 0 {
		return nil, nil, &model.ValidationError{Field: "totalSupply", Reason: "must be positive"}
	}
	if reserve0 == nil || reserve1 == nil {
		return nil, nil, &model.ValidationError{Field: "reserves", Reason: "must be set"}
	}
	amount0 := new(big.Int).Mul(lpBalance, reserve0)
	amount0.Quo(amount0, totalSupply)
	amount1 := new(big.Int).Mul(lpBalance, reserve1)
	amount1.Quo(amount1, totalSupply)
	return amount0, amount1, nil
}
