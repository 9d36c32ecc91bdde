package model

// Token captures resolved ERC20 metadata. Immutable once resolved; cached by
// address with a TTL by the metadata layer.
type Token struct {
	Address  string `json:"address"`
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
}
