// Package profit computes USD-denominated cost and profit accounting for
// single- and two-leg trades. Profit is always chained pessimistically: the
// worst-case minimum output is what counts, never the expected output.
package profit

import (
	"fmt"
	"math"
	"math/big"

	"github.com/shopspring/decimal"

	"swapForge/internal/model"
)

const nativeDecimals = 18

// TradeParams describes one trade leg with the prices needed to express it
// in USD. Raw integer amounts stay integer; USD conversion happens here, at
// the display boundary.
type TradeParams struct {
	TokenIn          model.Token
	TokenOut         model.Token
	TokenInPriceUSD  float64
	TokenOutPriceUSD float64
	AmountIn         *big.Int
	ExpectedOut      *big.Int
	MinOut           *big.Int
	GasCostWei       *big.Int
	NativePriceUSD   float64
	FeePct           float64
}

// TradeProfit evaluates a single trade. Gross profit uses the worst-case
// minimum output; expected output appears only informationally.
func TradeProfit(p TradeParams) (model.ProfitAnalysis, error) {
	if err := validateTrade(p); err != nil {
		return model.ProfitAnalysis{}, err
	}

	amountInUSD := usdValue(p.AmountIn, p.TokenIn.Decimals, p.TokenInPriceUSD)
	expectedOutUSD := usdValue(p.ExpectedOut, p.TokenOut.Decimals, p.TokenOutPriceUSD)
	minOutUSD := usdValue(p.MinOut, p.TokenOut.Decimals, p.TokenOutPriceUSD)
	gasUSD := usdValue(p.GasCostWei, nativeDecimals, p.NativePriceUSD)
	feeUSD := amountInUSD.Mul(decimal.NewFromFloat(p.FeePct)).Div(decimal.NewFromInt(100))

	return assemble(amountInUSD, expectedOutUSD, minOutUSD, gasUSD, feeUSD, p.FeePct), nil
}

// ArbitrageProfit evaluates a two-leg round trip. Leg 2's input amount is
// forced to leg 1's worst-case minimum output; gas and fee costs accumulate
// across both legs, and the combined result is measured against leg 1's
// input value.
func ArbitrageProfit(leg1, leg2 TradeParams) (model.ProfitAnalysis, error) {
	if err := validateTrade(leg1); err != nil {
		return model.ProfitAnalysis{}, fmt.Errorf("leg1: %w", err)
	}

	// Pessimistic chaining: whatever the caller put in leg2.AmountIn, the
	// second leg can only rely on leg 1's guaranteed output.
	leg2.AmountIn = leg1.MinOut
	leg2.TokenIn = leg1.TokenOut
	leg2.TokenInPriceUSD = leg1.TokenOutPriceUSD
	if err := validateTrade(leg2); err != nil {
		return model.ProfitAnalysis{}, fmt.Errorf("leg2: %w", err)
	}

	amountInUSD := usdValue(leg1.AmountIn, leg1.TokenIn.Decimals, leg1.TokenInPriceUSD)
	leg2InUSD := usdValue(leg2.AmountIn, leg2.TokenIn.Decimals, leg2.TokenInPriceUSD)
	expectedOutUSD := usdValue(leg2.ExpectedOut, leg2.TokenOut.Decimals, leg2.TokenOutPriceUSD)
	minOutUSD := usdValue(leg2.MinOut, leg2.TokenOut.Decimals, leg2.TokenOutPriceUSD)

	gasUSD := usdValue(leg1.GasCostWei, nativeDecimals, leg1.NativePriceUSD).
		Add(usdValue(leg2.GasCostWei, nativeDecimals, leg2.NativePriceUSD))
	feeUSD := amountInUSD.Mul(decimal.NewFromFloat(leg1.FeePct)).Div(decimal.NewFromInt(100)).
		Add(leg2InUSD.Mul(decimal.NewFromFloat(leg2.FeePct)).Div(decimal.NewFromInt(100)))

	return assemble(amountInUSD, expectedOutUSD, minOutUSD, gasUSD, feeUSD, leg1.FeePct+leg2.FeePct), nil
}

// MinProfitableAmount solves the breakeven inequality
// amountIn >= (minProfitUSD + gasCostUSD) / ((spreadPct - feePct) / 100).
// When the spread does not clear the fee there is no finite breakeven; the
// second return value is false and the trade is never profitable.
func MinProfitableAmount(gasCostUSD, feePct, minProfitUSD, spreadPct float64) (decimal.Decimal, bool) {
	if spreadPct <= feePct {
		return decimal.Zero, false
	}
	margin := decimal.NewFromFloat(spreadPct).Sub(decimal.NewFromFloat(feePct)).Div(decimal.NewFromInt(100))
	required := decimal.NewFromFloat(minProfitUSD).Add(decimal.NewFromFloat(gasCostUSD))
	return required.Div(margin), true
}

func assemble(amountInUSD, expectedOutUSD, minOutUSD, gasUSD, feeUSD decimal.Decimal, feePct float64) model.ProfitAnalysis {
	slippageUSD := expectedOutUSD.Sub(minOutUSD)
	if slippageUSD.IsNegative() {
		slippageUSD = decimal.Zero
	}
	totalUSD := gasUSD.Add(feeUSD)
	grossUSD := minOutUSD.Sub(amountInUSD)
	netUSD := grossUSD.Sub(totalUSD)

	netPct := decimal.Zero
	if !amountInUSD.IsZero() {
		netPct = netUSD.Div(amountInUSD).Mul(decimal.NewFromInt(100))
	}

	analysis := model.ProfitAnalysis{
		AmountInUSD:    amountInUSD,
		ExpectedOutUSD: expectedOutUSD,
		MinOutUSD:      minOutUSD,
		Costs: model.CostBreakdown{
			Gas:      gasUSD,
			Fee:      feeUSD,
			Slippage: slippageUSD,
			Total:    totalUSD,
		},
		GrossProfitUSD: grossUSD,
		NetProfitUSD:   netUSD,
		NetProfitPct:   netPct,
		IsProfitable:   netUSD.IsPositive(),
	}
	analysis.Breakdown = []string{
		fmt.Sprintf("amount in: $%s", amountInUSD.StringFixed(2)),
		fmt.Sprintf("expected out: $%s", expectedOutUSD.StringFixed(2)),
		fmt.Sprintf("worst-case out: $%s", minOutUSD.StringFixed(2)),
		fmt.Sprintf("gas cost: $%s", gasUSD.StringFixed(2)),
		fmt.Sprintf("protocol fee (%.2f%%): $%s", feePct, feeUSD.StringFixed(2)),
		fmt.Sprintf("slippage allowance: $%s", slippageUSD.StringFixed(2)),
		fmt.Sprintf("total costs: $%s", totalUSD.StringFixed(2)),
		fmt.Sprintf("gross profit: $%s", grossUSD.StringFixed(2)),
		fmt.Sprintf("net profit: $%s (%s%%)", netUSD.StringFixed(2), netPct.StringFixed(2)),
	}
	return analysis
}

func validateTrade(p TradeParams) error {
	if p.AmountIn == nil || p.AmountIn.Sign() <= 0 {
		return &model.ValidationError{Field: "amountIn", Reason: "must be positive"}
	}
	if p.MinOut == nil || p.MinOut.Sign() < 0 {
		return &model.ValidationError{Field: "minOut", Reason: "must be non-negative"}
	}
	if math.IsNaN(p.FeePct) || p.FeePct < 0 || p.FeePct > 100 {
		return &model.ValidationError{Field: "feePct", Reason: "must be within [0, 100]"}
	}
	return nil
}

// usdValue converts a raw integer amount to USD at the display boundary.
func usdValue(amount *big.Int, decimals uint8, priceUSD float64) decimal.Decimal {
	if amount == nil || amount.Sign() == 0 || priceUSD == 0 {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(amount, -int32(decimals)).Mul(decimal.NewFromFloat(priceUSD))
}
