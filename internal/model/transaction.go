package model

// Transaction is an unsigned on-chain call, ready to hand to a signer.
// Data is 0x-prefixed hex calldata; Value is a decimal-string wei amount.
type Transaction struct {
	To    string `json:"to"`
	Data  string `json:"data"`
	Value string `json:"value"`
}
