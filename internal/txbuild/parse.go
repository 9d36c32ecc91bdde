package txbuild

import (
	"math"
	"math/big"
	"regexp"

	"swapForge/internal/model"
)

var nonDigits = regexp.MustCompile(`\D`)

// ParseLiquidityDisplay recovers a raw liquidity integer from a
// display-formatted string by stripping every non-digit character.
// Upstream formats liquidity for display before this layer needs it back as
// data; the stripping stays for compatibility but is deliberately not
// extended any further.
func ParseLiquidityDisplay(display string) (*big.Int, error) {
	digits := nonDigits.ReplaceAllString(display, "")
	if digits == "" {
		return nil, &model.ValidationError{Field: "liquidity", Reason: "no digits in display string"}
	}
	value, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return nil, &model.ValidationError{Field: "liquidity", Reason: "not a decimal integer"}
	}
	return value, nil
}

// ScaleByPercentage applies a percentage to a raw integer total using
// basis-point arithmetic: total * round(pct*100) / 10000, truncated. Never
// float multiplication.
func ScaleByPercentage(total *big.Int, percentage float64) (*big.Int, error) {
	if err := validatePercentage("percentage", percentage); err != nil {
		return nil, err
	}
	if total == nil || total.Sign() < 0 {
		return nil, &model.ValidationError{Field: "total", Reason: "must be non-negative"}
	}
	bps := big.NewInt(int64(math.Round(percentage * 100)))
	scaled := new(big.Int).Mul(total, bps)
	return scaled.Quo(scaled, big.NewInt(10000)), nil
}

// minWithSlippage computes the slippage-adjusted minimum:
// desired * (10000 - round(tolerancePct*100)) / 10000, truncated toward zero.
func minWithSlippage(desired *big.Int, tolerancePct float64) (*big.Int, error) {
	if err := validatePercentage("slippage", tolerancePct); err != nil {
		return nil, err
	}
	if desired == nil {
		return big.NewInt(0), nil
	}
	bps := big.NewInt(10000 - int64(math.Round(tolerancePct*100)))
	out := new(big.Int).Mul(desired, bps)
	return out.Quo(out, big.NewInt(10000)), nil
}

// maxWithSlippage mirrors minWithSlippage on the upper side, for operations
// that cap rather than floor the settled amounts.
func maxWithSlippage(desired *big.Int, tolerancePct float64) (*big.Int, error) {
	if err := validatePercentage("slippage", tolerancePct); err != nil {
		return nil, err
	}
	if desired == nil {
		return big.NewInt(0), nil
	}
	bps := big.NewInt(10000 + int64(math.Round(tolerancePct*100)))
	out := new(big.Int).Mul(desired, bps)
	return out.Quo(out, big.NewInt(10000)), nil
}

func validatePercentage(field string, pct float64) error {
	if math.IsNaN(pct) || pct < 0 || pct > 100 {
		return &model.ValidationError{Field: field, Reason: "must be within [0, 100]"}
	}
	return nil
}
