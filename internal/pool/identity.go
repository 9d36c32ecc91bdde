// Package pool implements canonical pool identity, sqrt-price conversion,
// and swap quoting across the three protocol generations.
package pool

import (
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"swapForge/internal/model"
)

// MaxTick is the protocol's global tick bound; usable ticks live in
// [-MaxTick, MaxTick] aligned to the pool's tick spacing.
const MaxTick int32 = 887272

// feeToTickSpacing is the fixed fee-tier table. The high tiers (2% and 10%)
// are used by dynamic-fee hook pools on the singleton generation.
var feeToTickSpacing = map[uint32]int32{
	100:    1,
	500:    10,
	3000:   60,
	10000:  200,
	20000:  400,
	100000: 2000,
}

// SortTokens orders two tokens canonically by case-insensitive address.
// Symmetric under swapped input; identical addresses are rejected.
func SortTokens(a, b model.Token) (model.Token, model.Token, error) {
	la := strings.ToLower(a.Address)
	lb := strings.ToLower(b.Address)
	if la == lb {
		return model.Token{}, model.Token{}, &model.ValidationError{
			Field:  "tokens",
			Reason: fmt.Sprintf("identical addresses: %s", a.Address),
		}
	}
	if la < lb {
		return a, b, nil
	}
	return b, a, nil
}

// TickSpacingForFee resolves the tick spacing for a fee tier. Unknown fees
// are rejected explicitly; there is no silent default.
func TickSpacingForFee(fee uint32) (int32, error) {
	spacing, ok := feeToTickSpacing[fee]
	if !ok {
		return 0, &model.UnsupportedFeeError{Fee: fee}
	}
	return spacing, nil
}

// TickRange returns the min and max usable ticks for a spacing: the nearest
// multiples of the spacing inside the global bounds, truncated toward zero.
func TickRange(tickSpacing int32) (int32, int32, error) {
	if tickSpacing <= 0 {
		return 0, 0, &model.ValidationError{
			Field:  "tickSpacing",
			Reason: fmt.Sprintf("must be positive, got %d", tickSpacing),
		}
	}
	max := (MaxTick / tickSpacing) * tickSpacing
	return -max, max, nil
}

var (
	poolIDArgs     abi.Arguments
	poolIDArgsOnce sync.Once
	poolIDArgsErr  error
)

func poolIDArguments() (abi.Arguments, error) {
	poolIDArgsOnce.Do(func() {
		addressType, err := abi.NewType("address", "", nil)
		if err != nil {
			poolIDArgsErr = err
			return
		}
		uint24Type, err := abi.NewType("uint24", "", nil)
		if err != nil {
			poolIDArgsErr = err
			return
		}
		int24Type, err := abi.NewType("int24", "", nil)
		if err != nil {
			poolIDArgsErr = err
			return
		}
		poolIDArgs = abi.Arguments{
			{Name: "currency0", Type: addressType},
			{Name: "currency1", Type: addressType},
			{Name: "fee", Type: uint24Type},
			{Name: "tickSpacing", Type: int24Type},
			{Name: "hooks", Type: addressType},
		}
	})
	return poolIDArgs, poolIDArgsErr
}

// ComputePoolID derives the singleton-generation pool id: keccak256 over the
// ABI-encoded tuple (currency0, currency1, fee, tickSpacing, hooks) in that
// exact order. The currencies must already be canonically sorted; this
// function validates the invariant instead of sorting.
func ComputePoolID(key model.PoolKey) (common.Hash, error) {
	if !common.IsHexAddress(key.Token0.Address) {
		return common.Hash{}, &model.ValidationError{Field: "token0", Reason: "malformed address"}
	}
	if !common.IsHexAddress(key.Token1.Address) {
		return common.Hash{}, &model.ValidationError{Field: "token1", Reason: "malformed address"}
	}
	if strings.ToLower(key.Token0.Address) >= strings.ToLower(key.Token1.Address) {
		return common.Hash{}, &model.ValidationError{
			Field:  "tokens",
			Reason: "currencies must be canonically sorted",
		}
	}
	hooks := key.Hooks
	if hooks == "" {
		hooks = (common.Address{}).Hex()
	}
	if !common.IsHexAddress(hooks) {
		return common.Hash{}, &model.ValidationError{Field: "hooks", Reason: "malformed address"}
	}

	args, err := poolIDArguments()
	if err != nil {
		return common.Hash{}, fmt.Errorf("pool id abi: %w", err)
	}
	encoded, err := args.Pack(
		common.HexToAddress(key.Token0.Address),
		common.HexToAddress(key.Token1.Address),
		new(big.Int).SetUint64(uint64(key.Fee)),
		big.NewInt(int64(key.TickSpacing)),
		common.HexToAddress(hooks),
	)
	if err != nil {
		return common.Hash{}, fmt.Errorf("pack pool key: %w", err)
	}
	return crypto.Keccak256Hash(encoded), nil
}
