package txbuild

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Action opcodes for the singleton generation's packed-encoding protocol.
// The manager interprets the action byte string as a program: opcode order
// and parameter tuple shape must match its state machine exactly, or the
// call reverts or settles the wrong token.
const (
	ActionIncreaseLiquidity byte = 0x00
	ActionDecreaseLiquidity byte = 0x01
	ActionMintPosition      byte = 0x02
	ActionBurnPosition      byte = 0x03
	ActionSwapExactInSingle byte = 0x06
	ActionSettleAll         byte = 0x0c
	ActionSettlePair        byte = 0x0d
	ActionTakeAll           byte = 0x0f
	ActionTakePair          byte = 0x11
	ActionCloseCurrency     byte = 0x12
)

var poolKeyComponents = []abi.ArgumentMarshaling{
	{Name: "currency0", Type: "address"},
	{Name: "currency1", Type: "address"},
	{Name: "fee", Type: "uint24"},
	{Name: "tickSpacing", Type: "int24"},
	{Name: "hooks", Type: "address"},
}

type poolKeyTuple struct {
	Currency0   common.Address
	Currency1   common.Address
	Fee         *big.Int
	TickSpacing *big.Int
	Hooks       common.Address
}

type swapExactInSingleTuple struct {
	PoolKey          poolKeyTuple
	ZeroForOne       bool
	AmountIn         *big.Int
	AmountOutMinimum *big.Int
	HookData         []byte
}

type actionArgs struct {
	unlockData abi.Arguments // (bytes actions, bytes[] params)
	increase   abi.Arguments // (uint256 tokenId, uint256 liquidity, uint128 amount0Max, uint128 amount1Max, bytes hookData)
	decrease   abi.Arguments // (uint256 tokenId, uint256 liquidity, uint128 amount0Min, uint128 amount1Min, bytes hookData)
	burn       abi.Arguments // (uint256 tokenId, uint128 amount0Min, uint128 amount1Min, bytes hookData)
	mint       abi.Arguments // (poolKey, int24 tickLower, int24 tickUpper, uint256 liquidity, uint128 amount0Max, uint128 amount1Max, address owner, bytes hookData)
	close      abi.Arguments // (address currency)
	settlePair abi.Arguments // (address currency0, address currency1)
	takePair   abi.Arguments // (address currency0, address currency1, address recipient)
	settleAll  abi.Arguments // (address currency, uint256 maxAmount)
	takeAll    abi.Arguments // (address currency, uint256 minAmount)
	swapSingle abi.Arguments // ((poolKey, bool zeroForOne, uint128 amountIn, uint128 amountOutMinimum, bytes hookData))
}

var (
	actionArgsValue actionArgs
	actionArgsOnce  sync.Once
	actionArgsErr   error
)

func buildActionArgs() (actionArgs, error) {
	newType := func(t string, components []abi.ArgumentMarshaling) (abi.Type, error) {
		return abi.NewType(t, "", components)
	}

	types := map[string]abi.Type{}
	for _, t := range []string{"address", "uint256", "uint128", "int24", "bool", "bytes", "bytes[]"} {
		parsed, err := newType(t, nil)
		if err != nil {
			return actionArgs{}, fmt.Errorf("abi type %s: %w", t, err)
		}
		types[t] = parsed
	}
	poolKeyType, err := newType("tuple", poolKeyComponents)
	if err != nil {
		return actionArgs{}, fmt.Errorf("pool key tuple: %w", err)
	}
	swapSingleType, err := newType("tuple", []abi.ArgumentMarshaling{
		{Name: "poolKey", Type: "tuple", Components: poolKeyComponents},
		{Name: "zeroForOne", Type: "bool"},
		{Name: "amountIn", Type: "uint128"},
		{Name: "amountOutMinimum", Type: "uint128"},
		{Name: "hookData", Type: "bytes"},
	})
	if err != nil {
		return actionArgs{}, fmt.Errorf("swap tuple: %w", err)
	}

	arg := func(name, t string) abi.Argument {
		return abi.Argument{Name: name, Type: types[t]}
	}

	return actionArgs{
		unlockData: abi.Arguments{arg("actions", "bytes"), arg("params", "bytes[]")},
		increase: abi.Arguments{
			arg("tokenId", "uint256"), arg("liquidity", "uint256"),
			arg("amount0Max", "uint128"), arg("amount1Max", "uint128"), arg("hookData", "bytes"),
		},
		decrease: abi.Arguments{
			arg("tokenId", "uint256"), arg("liquidity", "uint256"),
			arg("amount0Min", "uint128"), arg("amount1Min", "uint128"), arg("hookData", "bytes"),
		},
		burn: abi.Arguments{
			arg("tokenId", "uint256"),
			arg("amount0Min", "uint128"), arg("amount1Min", "uint128"), arg("hookData", "bytes"),
		},
		mint: abi.Arguments{
			{Name: "poolKey", Type: poolKeyType},
			arg("tickLower", "int24"), arg("tickUpper", "int24"),
			arg("liquidity", "uint256"),
			arg("amount0Max", "uint128"), arg("amount1Max", "uint128"),
			arg("owner", "address"), arg("hookData", "bytes"),
		},
		close:      abi.Arguments{arg("currency", "address")},
		settlePair: abi.Arguments{arg("currency0", "address"), arg("currency1", "address")},
		takePair:   abi.Arguments{arg("currency0", "address"), arg("currency1", "address"), arg("recipient", "address")},
		settleAll:  abi.Arguments{arg("currency", "address"), arg("maxAmount", "uint256")},
		takeAll:    abi.Arguments{arg("currency", "address"), arg("minAmount", "uint256")},
		swapSingle: abi.Arguments{{Name: "params", Type: swapSingleType}},
	}, nil
}

func actionArguments() (actionArgs, error) {
	actionArgsOnce.Do(func() {
		actionArgsValue, actionArgsErr = buildActionArgs()
	})
	return actionArgsValue, actionArgsErr
}

// encodeUnlockData packs the action byte string together with one ABI-encoded
// parameter blob per action.
func encodeUnlockData(actions []byte, params [][]byte) ([]byte, error) {
	if len(actions) != len(params) {
		return nil, fmt.Errorf("action/param count mismatch: %d vs %d", len(actions), len(params))
	}
	args, err := actionArguments()
	if err != nil {
		return nil, err
	}
	return args.unlockData.Pack(actions, params)
}

// DecodeUnlockData unpacks packed action calldata back into the opcode string
// and the per-action parameter blobs.
func DecodeUnlockData(data []byte) ([]byte, [][]byte, error) {
	args, err := actionArguments()
	if err != nil {
		return nil, nil, err
	}
	values, err := args.unlockData.Unpack(data)
	if err != nil {
		return nil, nil, fmt.Errorf("unpack unlock data: %w", err)
	}
	if len(values) != 2 {
		return nil, nil, fmt.Errorf("unexpected unlock data arity: %d", len(values))
	}
	actions, ok := values[0].([]byte)
	if !ok {
		return nil, nil, fmt.Errorf("unexpected actions type %T", values[0])
	}
	params, ok := values[1].([][]byte)
	if !ok {
		return nil, nil, fmt.Errorf("unexpected params type %T", values[1])
	}
	return actions, params, nil
}
