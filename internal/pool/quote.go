package pool

import (
	"math/big"

	"swapForge/internal/model"
)

// FeeDenominator scales pool fees: a fee of 3000 is 0.30%.
const FeeDenominator = 1_000_000

// Quoting for the concentrated-liquidity and singleton generations is a
// first-order approximation: it assumes liquidity is locally constant across
// the trade's price range and does not walk ticks. Exact execution amounts
// need on-chain simulation or a tick-iterating liquidity walk, which this
// engine deliberately does not do.

// ConstantProductOut computes the constant-product output amount with the
// fee taken from the input side. Pure integer math.
func ConstantProductOut(amountIn, reserveIn, reserveOut *big.Int, fee uint32) (*big.Int, error) {
	if amountIn == nil || amountIn.Sign() <= 0 {
		return nil, &model.ValidationError{Field: "amountIn", Reason: "must be positive"}
	}
	if reserveIn == nil || reserveIn.Sign() <= 0 || reserveOut == nil || reserveOut.Sign() <= 0 {
		return nil, &model.ValidationError{Field: "reserves", Reason: "must be positive"}
	}
	if fee >= FeeDenominator {
		return nil, &model.ValidationError{Field: "fee", Reason: "must be below the fee denominator"}
	}

	feeMul := new(big.Int).SetUint64(uint64(FeeDenominator - fee))
	inWithFee := new(big.Int).Mul(amountIn, feeMul)
	numerator := new(big.Int).Mul(reserveOut, inWithFee)
	denominator := new(big.Int).Mul(reserveIn, big.NewInt(FeeDenominator))
	denominator.Add(denominator, inWithFee)
	return numerator.Quo(numerator, denominator), nil
}

// QuoteExactIn simulates a swap of amountIn against the pool's current state
// and reports the expected output, execution price, and price impact.
// zeroForOne means token0 is sold for token1.
func QuoteExactIn(key model.PoolKey, state model.PoolState, amountIn *big.Int, zeroForOne bool) (model.Quote, error) {
	if amountIn == nil || amountIn.Sign() <= 0 {
		return model.Quote{}, &model.ValidationError{Field: "amountIn", Reason: "must be positive"}
	}

	decimalsIn, decimalsOut := key.Token0.Decimals, key.Token1.Decimals
	if !zeroForOne {
		decimalsIn, decimalsOut = decimalsOut, decimalsIn
	}

	switch state.Version {
	case model.VersionV1:
		reserveIn, reserveOut := state.Reserve0, state.Reserve1
		if !zeroForOne {
			reserveIn, reserveOut = reserveOut, reserveIn
		}
		out, err := ConstantProductOut(amountIn, reserveIn, reserveOut, key.Fee)
		if err != nil {
			return model.Quote{}, err
		}

		executionPrice := humanRatio(out, decimalsOut, amountIn, decimalsIn)
		spotPrice := humanRatio(reserveOut, decimalsOut, reserveIn, decimalsIn)
		return model.Quote{
			AmountOut:      out.String(),
			PriceImpactPct: impactPct(executionPrice, spotPrice),
			ExecutionPrice: executionPrice,
		}, nil

	case model.VersionV2, model.VersionV3:
		spotPrice, err := SqrtPriceToPrice(state.SqrtPriceX96, key.Token0.Decimals, key.Token1.Decimals, !zeroForOne)
		if err != nil {
			return model.Quote{}, err
		}
		if key.Fee >= FeeDenominator {
			return model.Quote{}, &model.ValidationError{Field: "fee", Reason: "must be below the fee denominator"}
		}
		executionPrice := spotPrice * float64(FeeDenominator-key.Fee) / FeeDenominator

		// Scale through big.Float so wide input amounts keep integer width.
		inHuman := new(big.Float).Quo(new(big.Float).SetInt(amountIn), pow10(decimalsIn))
		outHuman := new(big.Float).Mul(inHuman, big.NewFloat(executionPrice))
		outRaw, _ := new(big.Float).Mul(outHuman, pow10(decimalsOut)).Int(nil)

		return model.Quote{
			AmountOut:      outRaw.String(),
			PriceImpactPct: impactPct(executionPrice, spotPrice),
			ExecutionPrice: executionPrice,
		}, nil

	default:
		return model.Quote{}, &model.UnsupportedVersionError{Version: string(state.Version)}
	}
}

// CurrentPrice reports the pool's spot price (token1 per token0). A pool
// with no usable state is {Exists: false}.
func CurrentPrice(key model.PoolKey, state model.PoolState) (model.PoolPriceResult, error) {
	result := model.PoolPriceResult{
		Token0Symbol: key.Token0.Symbol,
		Token1Symbol: key.Token1.Symbol,
	}

	switch state.Version {
	case model.VersionV1:
		if state.Reserve0 == nil || state.Reserve0.Sign() <= 0 || state.Reserve1 == nil || state.Reserve1.Sign() <= 0 {
			return result, nil
		}
		result.Price = humanRatio(state.Reserve1, key.Token1.Decimals, state.Reserve0, key.Token0.Decimals)

	case model.VersionV2, model.VersionV3:
		if state.SqrtPriceX96 == nil || state.SqrtPriceX96.Sign() <= 0 {
			return result, nil
		}
		price, err := SqrtPriceToPrice(state.SqrtPriceX96, key.Token0.Decimals, key.Token1.Decimals, false)
		if err != nil {
			return model.PoolPriceResult{}, err
		}
		result.Price = price

	default:
		return model.PoolPriceResult{}, &model.UnsupportedVersionError{Version: string(state.Version)}
	}

	result.Exists = true
	result.PriceDisplay = FormatPrice(result.Price)
	return result, nil
}

func pow10(decimals uint8) *big.Float {
	return new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil))
}

// humanRatio computes (a/10^decimalsA) / (b/10^decimalsB) as a display value.
func humanRatio(a *big.Int, decimalsA uint8, b *big.Int, decimalsB uint8) float64 {
	num := new(big.Float).Quo(new(big.Float).SetInt(a), pow10(decimalsA))
	den := new(big.Float).Quo(new(big.Float).SetInt(b), pow10(decimalsB))
	if den.Sign() == 0 {
		return 0
	}
	out, _ := new(big.Float).Quo(num, den).Float64()
	return out
}

func impactPct(executionPrice, spotPrice float64) float64 {
	if spotPrice == 0 {
		return 0
	}
	impact := (1 - executionPrice/spotPrice) * 100
	if impact < 0 {
		impact = -impact
	}
	return impact
}
