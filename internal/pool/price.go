package pool

import (
	"fmt"
	"math"
	"math/big"
	"strconv"

	"swapForge/internal/model"
)

// Price conversion passes through float64, which caps useful precision at
// roughly 15-16 significant decimal digits. That is acceptable for display
// and estimation; settlement amounts stay integer end-to-end and never go
// through these helpers.

var q96 = new(big.Float).SetInt(new(big.Int).Lsh(big.NewInt(1), 96))

// SqrtPriceToPrice converts an X96 fixed-point sqrt price into a human
// token1/token0 price, realigned by the token decimals. When swapped is true
// the caller's ordering differs from the canonical one and the result is
// inverted.
func SqrtPriceToPrice(sqrtPriceX96 *big.Int, decimals0, decimals1 uint8, swapped bool) (float64, error) {
	if sqrtPriceX96 == nil || sqrtPriceX96.Sign() <= 0 {
		return 0, &model.ValidationError{Field: "sqrtPriceX96", Reason: "must be positive"}
	}
	if sqrtPriceX96.BitLen() > 160 {
		return 0, &model.ValidationError{
			Field:  "sqrtPriceX96",
			Reason: fmt.Sprintf("exceeds 160 bits: %s", sqrtPriceX96.String()),
		}
	}

	normalized := new(big.Float).Quo(new(big.Float).SetInt(sqrtPriceX96), q96)
	ratio := new(big.Float).Mul(normalized, normalized)

	price, _ := ratio.Float64()
	price *= math.Pow(10, float64(int(decimals0))-float64(int(decimals1)))
	if swapped {
		if price == 0 {
			return 0, &model.ValidationError{Field: "price", Reason: "underflow on inversion"}
		}
		price = 1 / price
	}
	return price, nil
}

// PriceToSqrtPrice is the inverse of SqrtPriceToPrice. Round-trips hold
// within a small relative tolerance across the representable sqrt-price
// range (roughly 2^32 to 2^160).
func PriceToSqrtPrice(price float64, decimals0, decimals1 uint8, swapped bool) (*big.Int, error) {
	if price <= 0 || math.IsInf(price, 0) || math.IsNaN(price) {
		return nil, &model.ValidationError{Field: "price", Reason: "must be positive and finite"}
	}
	if swapped {
		price = 1 / price
	}
	ratio := price / math.Pow(10, float64(int(decimals0))-float64(int(decimals1)))

	sqrt := new(big.Float).Sqrt(big.NewFloat(ratio))
	sqrt.Mul(sqrt, q96)
	out, _ := sqrt.Int(nil)
	return out, nil
}

// FormatPrice renders a price for display without scientific notation.
// Precision scales with magnitude: 4 decimals at or above 1, 6 decimals down
// to 1e-4, and below that enough digits to show the first few significant
// figures.
func FormatPrice(value float64) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return "0.0000"
	}
	abs := math.Abs(value)
	switch {
	case abs == 0:
		return "0.0000"
	case abs >= 1:
		return strconv.FormatFloat(value, 'f', 4, 64)
	case abs >= 1e-4:
		return strconv.FormatFloat(value, 'f', 6, 64)
	default:
		// Leading zeros after the point, plus four significant digits.
		leadingZeros := int(math.Ceil(-math.Log10(abs))) - 1
		return strconv.FormatFloat(value, 'f', leadingZeros+4, 64)
	}
}
