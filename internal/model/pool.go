package model

import "math/big"

// Version tags the protocol generation a pool belongs to.
type Version string

const (
	// VersionV1 is the constant-product generation. Pools are addressed by
	// their deployed pair contract; token ordering is read from the contract.
	VersionV1 Version = "v1"
	// VersionV2 is the concentrated-liquidity generation. Pools are deployed
	// contracts with canonically sorted tokens; positions are NFTs managed
	// through typed position-manager calls.
	VersionV2 Version = "v2"
	// VersionV3 is the singleton generation. Pools live inside one manager
	// contract, identified by a derived id; liquidity mutations go through a
	// generic entrypoint taking packed action bytes.
	VersionV3 Version = "v3"
)

// ParseVersion validates a version string against the known generations.
func ParseVersion(s string) (Version, error) {
	switch Version(s) {
	case VersionV1, VersionV2, VersionV3:
		return Version(s), nil
	default:
		return "", &UnsupportedVersionError{Version: s}
	}
}

// PoolKey identifies a pool. For v2/v3 the tokens must be canonically sorted
// (token0 < token1, case-insensitive); v1 pools carry the ordering their pair
// contract reports and are addressed by PoolAddress instead of a derived id.
type PoolKey struct {
	Token0      Token  `json:"token0"`
	Token1      Token  `json:"token1"`
	Fee         uint32 `json:"fee"` // hundredths of a basis point, 3000 = 0.30%
	TickSpacing int32  `json:"tick_spacing"`
	Hooks       string `json:"hooks,omitempty"`        // v3 hook contract, zero address = none
	PoolAddress string `json:"pool_address,omitempty"` // v1/v2 deployed pool contract
}

// PoolState is the version-tagged live state of a pool. Reserve fields are
// set for v1; sqrt-price fields for v2/v3. Match on Version exhaustively.
type PoolState struct {
	Version      Version
	Reserve0     *big.Int
	Reserve1     *big.Int
	SqrtPriceX96 *big.Int
	Tick         int32
	Liquidity    *big.Int
}

// PoolPriceResult reports the current pool price. An absent pool is
// {Exists: false}, never an error.
type PoolPriceResult struct {
	Exists       bool    `json:"exists"`
	Price        float64 `json:"price"`
	PriceDisplay string  `json:"price_display"`
	Token0Symbol string  `json:"token0_symbol"`
	Token1Symbol string  `json:"token1_symbol"`
}
