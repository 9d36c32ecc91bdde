package profit

import (
	"errors"
	"math/big"
	"testing"

	"swapForge/internal/model"
)

func e18Units(units int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(units), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
}

func TestTradeProfit(t *testing.T) {
	// One whole token in at $3200, guaranteed 3000 stable out, $5 of gas.
	analysis, err := TradeProfit(TradeParams{
		TokenIn:          model.Token{Decimals: 0},
		TokenOut:         model.Token{Decimals: 0},
		TokenInPriceUSD:  3200,
		TokenOutPriceUSD: 1,
		AmountIn:         big.NewInt(1),
		ExpectedOut:      big.NewInt(3100),
		MinOut:           big.NewInt(3000),
		GasCostWei:       e18Units(5),
		NativePriceUSD:   1,
		FeePct:           0.3,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := analysis.AmountInUSD.StringFixed(2); got != "3200.00" {
		t.Fatalf("amount in = %s, want 3200.00", got)
	}
	if got := analysis.Costs.Gas.StringFixed(2); got != "5.00" {
		t.Fatalf("gas = %s, want 5.00", got)
	}
	if got := analysis.Costs.Fee.StringFixed(2); got != "9.60" {
		t.Fatalf("fee = %s, want 9.60", got)
	}
	if got := analysis.Costs.Slippage.StringFixed(2); got != "100.00" {
		t.Fatalf("slippage = %s, want 100.00", got)
	}
	if got := analysis.GrossProfitUSD.StringFixed(2); got != "-200.00" {
		t.Fatalf("gross = %s, want -200.00", got)
	}
	if got := analysis.NetProfitUSD.StringFixed(2); got != "-214.60" {
		t.Fatalf("net = %s, want -214.60", got)
	}
	if analysis.IsProfitable {
		t.Fatalf("losing trade must not be profitable")
	}
	if len(analysis.Breakdown) != 9 {
		t.Fatalf("breakdown lines = %d, want 9", len(analysis.Breakdown))
	}
}

func TestTradeProfitPositive(t *testing.T) {
	analysis, err := TradeProfit(TradeParams{
		TokenIn:          model.Token{Decimals: 0},
		TokenOut:         model.Token{Decimals: 0},
		TokenInPriceUSD:  100,
		TokenOutPriceUSD: 1,
		AmountIn:         big.NewInt(1),
		ExpectedOut:      big.NewInt(120),
		MinOut:           big.NewInt(115),
		FeePct:           0.3,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// gross 15, fee 0.30, no gas.
	if got := analysis.NetProfitUSD.StringFixed(2); got != "14.70" {
		t.Fatalf("net = %s, want 14.70", got)
	}
	if !analysis.IsProfitable {
		t.Fatalf("winning trade must be profitable")
	}
}

func TestArbitrageProfitChainsWorstCase(t *testing.T) {
	leg1 := TradeParams{
		TokenIn:          model.Token{Decimals: 0},
		TokenOut:         model.Token{Decimals: 0},
		TokenInPriceUSD:  3200,
		TokenOutPriceUSD: 1,
		AmountIn:         big.NewInt(1),
		ExpectedOut:      big.NewInt(3100),
		MinOut:           big.NewInt(3000),
		FeePct:           0.3,
	}
	// Leg 2's stated input is deliberately wrong; the calculator must replace
	// it with leg 1's guaranteed output.
	leg2 := TradeParams{
		TokenOut:         model.Token{Decimals: 0},
		TokenOutPriceUSD: 3200,
		AmountIn:         big.NewInt(999_999),
		ExpectedOut:      big.NewInt(1),
		MinOut:           big.NewInt(1),
		FeePct:           0.3,
	}

	analysis, err := ArbitrageProfit(leg1, leg2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Fees: 0.3% of $3200 plus 0.3% of the chained $3000, never of $999999.
	if got := analysis.Costs.Fee.StringFixed(2); got != "18.60" {
		t.Fatalf("fee = %s, want 18.60", got)
	}
	if got := analysis.AmountInUSD.StringFixed(2); got != "3200.00" {
		t.Fatalf("amount in = %s, want 3200.00", got)
	}
	if got := analysis.MinOutUSD.StringFixed(2); got != "3200.00" {
		t.Fatalf("min out = %s, want 3200.00", got)
	}
	if got := analysis.NetProfitUSD.StringFixed(2); got != "-18.60" {
		t.Fatalf("net = %s, want -18.60", got)
	}
}

func TestArbitrageProfitValidatesLegs(t *testing.T) {
	bad := TradeParams{AmountIn: nil, MinOut: big.NewInt(1)}
	good := TradeParams{AmountIn: big.NewInt(1), MinOut: big.NewInt(1)}

	var validation *model.ValidationError
	if _, err := ArbitrageProfit(bad, good); !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError for leg1, got %v", err)
	}

	// Leg 1 with a zero min output leaves leg 2 with no usable input.
	zeroOut := TradeParams{AmountIn: big.NewInt(1), MinOut: big.NewInt(0)}
	if _, err := ArbitrageProfit(zeroOut, good); !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError for chained leg2, got %v", err)
	}
}

func TestTradeProfitValidation(t *testing.T) {
	var validation *model.ValidationError

	_, err := TradeProfit(TradeParams{MinOut: big.NewInt(1), FeePct: 0.3})
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError for missing amount, got %v", err)
	}

	_, err = TradeProfit(TradeParams{AmountIn: big.NewInt(1), MinOut: big.NewInt(1), FeePct: 101})
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError for fee out of range, got %v", err)
	}
}

func TestMinProfitableAmount(t *testing.T) {
	amount, ok := MinProfitableAmount(5, 0.3, 1, 1)
	if !ok {
		t.Fatalf("expected a finite breakeven")
	}
	if got := amount.StringFixed(2); got != "857.14" {
		t.Fatalf("breakeven = %s, want 857.14", got)
	}

	if _, ok := MinProfitableAmount(5, 0.3, 1, 0.3); ok {
		t.Fatalf("spread equal to the fee must have no breakeven")
	}
	if _, ok := MinProfitableAmount(5, 0.3, 1, 0.1); ok {
		t.Fatalf("spread below the fee must have no breakeven")
	}
}
