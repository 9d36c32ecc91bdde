package model

import "github.com/shopspring/decimal"

// CostBreakdown itemizes the USD costs charged against a trade.
type CostBreakdown struct {
	Gas      decimal.Decimal `json:"gas"`
	Fee      decimal.Decimal `json:"fee"`
	Slippage decimal.Decimal `json:"slippage"`
	Total    decimal.Decimal `json:"total"`
}

// ProfitAnalysis is the USD-denominated accounting for a trade or a two-leg
// arbitrage. Gross profit is always computed from the worst-case minimum
// output, never the expected output. Breakdown holds ordered human-readable
// lines for audit and logging.
type ProfitAnalysis struct {
	AmountInUSD    decimal.Decimal `json:"amount_in_usd"`
	ExpectedOutUSD decimal.Decimal `json:"expected_out_usd"`
	MinOutUSD      decimal.Decimal `json:"min_out_usd"`
	Costs          CostBreakdown   `json:"costs"`
	GrossProfitUSD decimal.Decimal `json:"gross_profit_usd"`
	NetProfitUSD   decimal.Decimal `json:"net_profit_usd"`
	NetProfitPct   decimal.Decimal `json:"net_profit_pct"`
	IsProfitable   bool            `json:"is_profitable"`
	Breakdown      []string        `json:"breakdown"`
}
