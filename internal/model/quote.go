package model

// Quote is the result of a swap simulation. AmountOut is a decimal string of
// the raw integer output amount; it never passes through a float.
type Quote struct {
	AmountOut      string  `json:"amount_out"`
	PriceImpactPct float64 `json:"price_impact_pct"`
	ExecutionPrice float64 `json:"execution_price"`
}
