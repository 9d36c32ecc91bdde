package model

// VolumeSummary is the output record of a historical swap-volume scan.
// Volumes are raw integer amounts encoded as decimal strings.
type VolumeSummary struct {
	FromBlock uint64   `json:"from_block"`
	ToBlock   uint64   `json:"to_block"`
	SwapCount int      `json:"swap_count"`
	Volume0   string   `json:"volume0"`
	Volume1   string   `json:"volume1"`
	Partial   bool     `json:"partial"`
	Failed    []string `json:"failed_ranges,omitempty"`
}
