package pricefeed

import (
	"context"
	"strings"
)

// StaticSource serves prices from a fixed table, keyed by lowercased token
// address or symbol. Used when prices are supplied up front instead of
// fetched from a live feed.
type StaticSource struct {
	prices map[string]float64
}

func NewStaticSource(prices map[string]float64) *StaticSource {
	normalized := make(map[string]float64, len(prices))
	for key, value := range prices {
		normalized[strings.ToLower(key)] = value
	}
	return &StaticSource{prices: normalized}
}

func (s *StaticSource) USDPrice(_ context.Context, token string) (float64, error) {
	return s.prices[strings.ToLower(token)], nil
}

func (s *StaticSource) USDPrices(_ context.Context, tokens []string) (map[string]float64, error) {
	out := make(map[string]float64, len(tokens))
	for _, token := range tokens {
		out[token] = s.prices[strings.ToLower(token)]
	}
	return out, nil
}
