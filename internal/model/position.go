package model

// Position is a valued, fee-aware liquidity position record. Built fresh on
// every aggregation from live chain reads; never persisted by the engine.
// The identifier is an NFT token id for v2/v3 and the pool address for v1.
type Position struct {
	ID           string  `json:"id"` // "<version>-<identifier>"
	Version      Version `json:"version"`
	PoolKey      PoolKey `json:"pool_key"`
	LiquidityRaw string  `json:"liquidity_raw"`
	Amount0      string  `json:"amount0"`
	Amount1      string  `json:"amount1"`
	FeesOwed0    string  `json:"fees_owed0"`
	FeesOwed1    string  `json:"fees_owed1"`
	TickLower    *int32  `json:"tick_lower,omitempty"`
	TickUpper    *int32  `json:"tick_upper,omitempty"`
	InRange      *bool   `json:"in_range,omitempty"`
	ValueUSD     float64 `json:"value_usd"`
	FeesValueUSD float64 `json:"fees_value_usd"`
}
