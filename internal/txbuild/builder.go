// Package txbuild constructs protocol-correct calldata for swaps and
// liquidity lifecycle operations across the three pool generations. The two
// older generations use direct typed function calls; the singleton generation
// goes through one generic entrypoint with packed opcode+parameter pairs.
package txbuild

import (
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"swapForge/internal/model"
)

// deadlineSeconds is the fixed validity window stamped into every
// deadline-bearing call.
const deadlineSeconds = 1200

var maxUint128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))

// Builder turns operation requests into unsigned transactions. It holds no
// chain state; the clock is injectable for deterministic tests.
type Builder struct {
	now func() time.Time
}

func NewBuilder() *Builder {
	return &Builder{now: time.Now}
}

func (b *Builder) deadline() *big.Int {
	return big.NewInt(b.now().Unix() + deadlineSeconds)
}

// SwapRequest describes an exact-input swap. Target is the router (v1/v2) or
// the actions-router entrypoint (v3).
type SwapRequest struct {
	Version      model.Version
	Target       string
	Key          model.PoolKey
	AmountIn     *big.Int
	AmountOutMin *big.Int
	Recipient    string
	ZeroForOne   bool
	HookData     []byte
	Value        *big.Int
}

// LiquidityRequest describes a position lifecycle operation. Desired amounts
// are the expected underlying at the current price; minimums are derived from
// them with the slippage tolerance. LiquidityDisplay carries the
// display-formatted liquidity string for decrease/burn operations.
type LiquidityRequest struct {
	Version             model.Version
	Manager             string
	Key                 model.PoolKey
	TokenID             *big.Int
	Recipient           string
	Liquidity           *big.Int
	Amount0Desired      *big.Int
	Amount1Desired      *big.Int
	LiquidityDisplay    string
	LiquidityPercentage float64
	SlippagePct         float64
	TickLower           int32
	TickUpper           int32
	HookData            []byte
	Value               *big.Int
}

// BuildApprove encodes an ERC-20 approval of spender for amount.
func (b *Builder) BuildApprove(token, spender string, amount *big.Int) (model.Transaction, error) {
	tokenAddr, err := requireAddress("token", token)
	if err != nil {
		return model.Transaction{}, err
	}
	spenderAddr, err := requireAddress("spender", spender)
	if err != nil {
		return model.Transaction{}, err
	}
	if amount == nil || amount.Sign() < 0 {
		return model.Transaction{}, &model.ValidationError{Field: "amount", Reason: "must be non-negative"}
	}

	approveABI, err := erc20ApproveABIInstance()
	if err != nil {
		return model.Transaction{}, fmt.Errorf("approve abi: %w", err)
	}
	data, err := approveABI.Pack("approve", spenderAddr, amount)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("pack approve: %w", err)
	}
	return newTransaction(tokenAddr, data, nil), nil
}

// BuildSwap encodes an exact-input swap for the request's generation.
func (b *Builder) BuildSwap(req SwapRequest) (model.Transaction, error) {
	target, err := requireAddress("target", req.Target)
	if err != nil {
		return model.Transaction{}, err
	}
	recipient, err := requireAddress("recipient", req.Recipient)
	if err != nil {
		return model.Transaction{}, err
	}
	if req.AmountIn == nil || req.AmountIn.Sign() <= 0 {
		return model.Transaction{}, &model.ValidationError{Field: "amountIn", Reason: "must be positive"}
	}
	minOut := req.AmountOutMin
	if minOut == nil {
		minOut = big.NewInt(0)
	}

	tokenIn, tokenOut := req.Key.Token0.Address, req.Key.Token1.Address
	if !req.ZeroForOne {
		tokenIn, tokenOut = tokenOut, tokenIn
	}

	switch req.Version {
	case model.VersionV1:
		inAddr, err := requireAddress("tokenIn", tokenIn)
		if err != nil {
			return model.Transaction{}, err
		}
		outAddr, err := requireAddress("tokenOut", tokenOut)
		if err != nil {
			return model.Transaction{}, err
		}
		routerABI, err := v1RouterABIInstance()
		if err != nil {
			return model.Transaction{}, fmt.Errorf("router abi: %w", err)
		}
		data, err := routerABI.Pack("swapExactTokensForTokens",
			req.AmountIn, minOut, []common.Address{inAddr, outAddr}, recipient, b.deadline())
		if err != nil {
			return model.Transaction{}, fmt.Errorf("pack swap: %w", err)
		}
		return newTransaction(target, data, req.Value), nil

	case model.VersionV2:
		inAddr, err := requireAddress("tokenIn", tokenIn)
		if err != nil {
			return model.Transaction{}, err
		}
		outAddr, err := requireAddress("tokenOut", tokenOut)
		if err != nil {
			return model.Transaction{}, err
		}
		routerABI, err := v2RouterABIInstance()
		if err != nil {
			return model.Transaction{}, fmt.Errorf("router abi: %w", err)
		}
		data, err := routerABI.Pack("exactInputSingle", struct {
			TokenIn           common.Address
			TokenOut          common.Address
			Fee               *big.Int
			Recipient         common.Address
			Deadline          *big.Int
			AmountIn          *big.Int
			AmountOutMinimum  *big.Int
			SqrtPriceLimitX96 *big.Int
		}{
			TokenIn:           inAddr,
			TokenOut:          outAddr,
			Fee:               new(big.Int).SetUint64(uint64(req.Key.Fee)),
			Recipient:         recipient,
			Deadline:          b.deadline(),
			AmountIn:          req.AmountIn,
			AmountOutMinimum:  minOut,
			SqrtPriceLimitX96: big.NewInt(0),
		})
		if err != nil {
			return model.Transaction{}, fmt.Errorf("pack swap: %w", err)
		}
		return newTransaction(target, data, req.Value), nil

	case model.VersionV3:
		if err := requireActionParams(req.Key, req.Recipient); err != nil {
			return model.Transaction{}, err
		}
		key, err := poolKeyTupleFrom(req.Key)
		if err != nil {
			return model.Transaction{}, err
		}
		args, err := actionArguments()
		if err != nil {
			return model.Transaction{}, err
		}

		currencyIn, currencyOut := key.Currency0, key.Currency1
		if !req.ZeroForOne {
			currencyIn, currencyOut = currencyOut, currencyIn
		}

		swapBlob, err := args.swapSingle.Pack(swapExactInSingleTuple{
			PoolKey:          key,
			ZeroForOne:       req.ZeroForOne,
			AmountIn:         req.AmountIn,
			AmountOutMinimum: minOut,
			HookData:         hookDataOrEmpty(req.HookData),
		})
		if err != nil {
			return model.Transaction{}, fmt.Errorf("pack swap params: %w", err)
		}
		settleBlob, err := args.settleAll.Pack(currencyIn, req.AmountIn)
		if err != nil {
			return model.Transaction{}, fmt.Errorf("pack settle params: %w", err)
		}
		takeBlob, err := args.takeAll.Pack(currencyOut, minOut)
		if err != nil {
			return model.Transaction{}, fmt.Errorf("pack take params: %w", err)
		}

		return b.packActions(target, "execute",
			[]byte{ActionSwapExactInSingle, ActionSettleAll, ActionTakeAll},
			[][]byte{swapBlob, settleBlob, takeBlob}, req.Value)

	default:
		return model.Transaction{}, &model.UnsupportedVersionError{Version: string(req.Version)}
	}
}

// BuildCreatePosition encodes opening a new liquidity position.
func (b *Builder) BuildCreatePosition(req LiquidityRequest) (model.Transaction, error) {
	manager, err := requireAddress("manager", req.Manager)
	if err != nil {
		return model.Transaction{}, err
	}
	amount0Min, amount1Min, err := b.slippageMins(req)
	if err != nil {
		return model.Transaction{}, err
	}

	switch req.Version {
	case model.VersionV1:
		return b.buildV1AddLiquidity(manager, req, amount0Min, amount1Min)

	case model.VersionV2:
		recipient, err := requireAddress("recipient", req.Recipient)
		if err != nil {
			return model.Transaction{}, err
		}
		token0, token1, err := keyAddresses(req.Key)
		if err != nil {
			return model.Transaction{}, err
		}
		positionABI, err := v2PositionABIInstance()
		if err != nil {
			return model.Transaction{}, fmt.Errorf("position abi: %w", err)
		}
		data, err := positionABI.Pack("mint", struct {
			Token0         common.Address
			Token1         common.Address
			Fee            *big.Int
			TickLower      *big.Int
			TickUpper      *big.Int
			Amount0Desired *big.Int
			Amount1Desired *big.Int
			Amount0Min     *big.Int
			Amount1Min     *big.Int
			Recipient      common.Address
			Deadline       *big.Int
		}{
			Token0:         token0,
			Token1:         token1,
			Fee:            new(big.Int).SetUint64(uint64(req.Key.Fee)),
			TickLower:      big.NewInt(int64(req.TickLower)),
			TickUpper:      big.NewInt(int64(req.TickUpper)),
			Amount0Desired: amountOrZero(req.Amount0Desired),
			Amount1Desired: amountOrZero(req.Amount1Desired),
			Amount0Min:     amount0Min,
			Amount1Min:     amount1Min,
			Recipient:      recipient,
			Deadline:       b.deadline(),
		})
		if err != nil {
			return model.Transaction{}, fmt.Errorf("pack mint: %w", err)
		}
		return newTransaction(manager, data, req.Value), nil

	case model.VersionV3:
		if err := requireActionParams(req.Key, req.Recipient); err != nil {
			return model.Transaction{}, err
		}
		key, err := poolKeyTupleFrom(req.Key)
		if err != nil {
			return model.Transaction{}, err
		}
		args, err := actionArguments()
		if err != nil {
			return model.Transaction{}, err
		}
		amount0Max, err := maxWithSlippage(req.Amount0Desired, req.SlippagePct)
		if err != nil {
			return model.Transaction{}, err
		}
		amount1Max, err := maxWithSlippage(req.Amount1Desired, req.SlippagePct)
		if err != nil {
			return model.Transaction{}, err
		}

		mintBlob, err := args.mint.Pack(
			key,
			big.NewInt(int64(req.TickLower)), big.NewInt(int64(req.TickUpper)),
			amountOrZero(req.Liquidity),
			amount0Max, amount1Max,
			common.HexToAddress(req.Recipient),
			hookDataOrEmpty(req.HookData),
		)
		if err != nil {
			return model.Transaction{}, fmt.Errorf("pack mint params: %w", err)
		}
		settleBlob, err := args.settlePair.Pack(key.Currency0, key.Currency1)
		if err != nil {
			return model.Transaction{}, fmt.Errorf("pack settle params: %w", err)
		}

		return b.packActions(manager, "modifyLiquidities",
			[]byte{ActionMintPosition, ActionSettlePair},
			[][]byte{mintBlob, settleBlob}, req.Value)

	default:
		return model.Transaction{}, &model.UnsupportedVersionError{Version: string(req.Version)}
	}
}

// BuildIncreaseLiquidity encodes adding liquidity to an existing position.
func (b *Builder) BuildIncreaseLiquidity(req LiquidityRequest) (model.Transaction, error) {
	manager, err := requireAddress("manager", req.Manager)
	if err != nil {
		return model.Transaction{}, err
	}
	amount0Min, amount1Min, err := b.slippageMins(req)
	if err != nil {
		return model.Transaction{}, err
	}

	switch req.Version {
	case model.VersionV1:
		return b.buildV1AddLiquidity(manager, req, amount0Min, amount1Min)

	case model.VersionV2:
		if err := requireTokenID(req.TokenID); err != nil {
			return model.Transaction{}, err
		}
		positionABI, err := v2PositionABIInstance()
		if err != nil {
			return model.Transaction{}, fmt.Errorf("position abi: %w", err)
		}
		data, err := positionABI.Pack("increaseLiquidity", struct {
			TokenId        *big.Int
			Amount0Desired *big.Int
			Amount1Desired *big.Int
			Amount0Min     *big.Int
			Amount1Min     *big.Int
			Deadline       *big.Int
		}{
			TokenId:        req.TokenID,
			Amount0Desired: amountOrZero(req.Amount0Desired),
			Amount1Desired: amountOrZero(req.Amount1Desired),
			Amount0Min:     amount0Min,
			Amount1Min:     amount1Min,
			Deadline:       b.deadline(),
		})
		if err != nil {
			return model.Transaction{}, fmt.Errorf("pack increase: %w", err)
		}
		return newTransaction(manager, data, req.Value), nil

	case model.VersionV3:
		if err := requireActionParams(req.Key, req.Recipient); err != nil {
			return model.Transaction{}, err
		}
		if err := requireTokenID(req.TokenID); err != nil {
			return model.Transaction{}, err
		}
		key, err := poolKeyTupleFrom(req.Key)
		if err != nil {
			return model.Transaction{}, err
		}
		args, err := actionArguments()
		if err != nil {
			return model.Transaction{}, err
		}
		amount0Max, err := maxWithSlippage(req.Amount0Desired, req.SlippagePct)
		if err != nil {
			return model.Transaction{}, err
		}
		amount1Max, err := maxWithSlippage(req.Amount1Desired, req.SlippagePct)
		if err != nil {
			return model.Transaction{}, err
		}

		increaseBlob, err := args.increase.Pack(
			req.TokenID, amountOrZero(req.Liquidity),
			amount0Max, amount1Max, hookDataOrEmpty(req.HookData))
		if err != nil {
			return model.Transaction{}, fmt.Errorf("pack increase params: %w", err)
		}
		close0Blob, err := args.close.Pack(key.Currency0)
		if err != nil {
			return model.Transaction{}, fmt.Errorf("pack close params: %w", err)
		}
		close1Blob, err := args.close.Pack(key.Currency1)
		if err != nil {
			return model.Transaction{}, fmt.Errorf("pack close params: %w", err)
		}

		return b.packActions(manager, "modifyLiquidities",
			[]byte{ActionIncreaseLiquidity, ActionCloseCurrency, ActionCloseCurrency},
			[][]byte{increaseBlob, close0Blob, close1Blob}, req.Value)

	default:
		return model.Transaction{}, &model.UnsupportedVersionError{Version: string(req.Version)}
	}
}

// BuildDecreaseLiquidity encodes removing a percentage of a position's
// liquidity. The liquidity total arrives as a display-formatted string and is
// defensively re-parsed before basis-point scaling.
func (b *Builder) BuildDecreaseLiquidity(req LiquidityRequest) (model.Transaction, error) {
	manager, err := requireAddress("manager", req.Manager)
	if err != nil {
		return model.Transaction{}, err
	}
	liquidity, err := liquidityToRemove(req)
	if err != nil {
		return model.Transaction{}, err
	}
	amount0Min, amount1Min, err := b.slippageMins(req)
	if err != nil {
		return model.Transaction{}, err
	}

	switch req.Version {
	case model.VersionV1:
		return b.buildV1RemoveLiquidity(manager, req, liquidity, amount0Min, amount1Min)

	case model.VersionV2:
		if err := requireTokenID(req.TokenID); err != nil {
			return model.Transaction{}, err
		}
		positionABI, err := v2PositionABIInstance()
		if err != nil {
			return model.Transaction{}, fmt.Errorf("position abi: %w", err)
		}
		data, err := positionABI.Pack("decreaseLiquidity", struct {
			TokenId    *big.Int
			Liquidity  *big.Int
			Amount0Min *big.Int
			Amount1Min *big.Int
			Deadline   *big.Int
		}{
			TokenId:    req.TokenID,
			Liquidity:  liquidity,
			Amount0Min: amount0Min,
			Amount1Min: amount1Min,
			Deadline:   b.deadline(),
		})
		if err != nil {
			return model.Transaction{}, fmt.Errorf("pack decrease: %w", err)
		}
		return newTransaction(manager, data, req.Value), nil

	case model.VersionV3:
		if err := requireActionParams(req.Key, req.Recipient); err != nil {
			return model.Transaction{}, err
		}
		if err := requireTokenID(req.TokenID); err != nil {
			return model.Transaction{}, err
		}
		return b.buildV3DecreaseActions(manager, req, liquidity, amount0Min, amount1Min)

	default:
		return model.Transaction{}, &model.UnsupportedVersionError{Version: string(req.Version)}
	}
}

// BuildCollectFees encodes collecting a position's owed fees. Constant-product
// pools never support this: their fees accrue into LP-token value.
func (b *Builder) BuildCollectFees(req LiquidityRequest) (model.Transaction, error) {
	manager, err := requireAddress("manager", req.Manager)
	if err != nil {
		return model.Transaction{}, err
	}

	switch req.Version {
	case model.VersionV1:
		return model.Transaction{}, &model.ValidationError{
			Field:  "version",
			Reason: "constant-product fees accrue into LP-token value and are not separately collectible",
		}

	case model.VersionV2:
		if err := requireTokenID(req.TokenID); err != nil {
			return model.Transaction{}, err
		}
		recipient, err := requireAddress("recipient", req.Recipient)
		if err != nil {
			return model.Transaction{}, err
		}
		positionABI, err := v2PositionABIInstance()
		if err != nil {
			return model.Transaction{}, fmt.Errorf("position abi: %w", err)
		}
		data, err := positionABI.Pack("collect", struct {
			TokenId    *big.Int
			Recipient  common.Address
			Amount0Max *big.Int
			Amount1Max *big.Int
		}{
			TokenId:    req.TokenID,
			Recipient:  recipient,
			Amount0Max: maxUint128,
			Amount1Max: maxUint128,
		})
		if err != nil {
			return model.Transaction{}, fmt.Errorf("pack collect: %w", err)
		}
		return newTransaction(manager, data, req.Value), nil

	case model.VersionV3:
		if err := requireActionParams(req.Key, req.Recipient); err != nil {
			return model.Transaction{}, err
		}
		if err := requireTokenID(req.TokenID); err != nil {
			return model.Transaction{}, err
		}
		// Collecting on the singleton generation is a decrease of zero
		// liquidity followed by taking the pair.
		return b.buildV3DecreaseActions(manager, req, big.NewInt(0), big.NewInt(0), big.NewInt(0))

	default:
		return model.Transaction{}, &model.UnsupportedVersionError{Version: string(req.Version)}
	}
}

// BuildBurnPosition encodes closing a position entirely.
func (b *Builder) BuildBurnPosition(req LiquidityRequest) (model.Transaction, error) {
	manager, err := requireAddress("manager", req.Manager)
	if err != nil {
		return model.Transaction{}, err
	}

	switch req.Version {
	case model.VersionV1:
		liquidity, err := liquidityToRemove(req)
		if err != nil {
			return model.Transaction{}, err
		}
		amount0Min, amount1Min, err := b.slippageMins(req)
		if err != nil {
			return model.Transaction{}, err
		}
		return b.buildV1RemoveLiquidity(manager, req, liquidity, amount0Min, amount1Min)

	case model.VersionV2:
		if err := requireTokenID(req.TokenID); err != nil {
			return model.Transaction{}, err
		}
		positionABI, err := v2PositionABIInstance()
		if err != nil {
			return model.Transaction{}, fmt.Errorf("position abi: %w", err)
		}
		data, err := positionABI.Pack("burn", req.TokenID)
		if err != nil {
			return model.Transaction{}, fmt.Errorf("pack burn: %w", err)
		}
		return newTransaction(manager, data, req.Value), nil

	case model.VersionV3:
		if err := requireActionParams(req.Key, req.Recipient); err != nil {
			return model.Transaction{}, err
		}
		if err := requireTokenID(req.TokenID); err != nil {
			return model.Transaction{}, err
		}
		amount0Min, amount1Min, err := b.slippageMins(req)
		if err != nil {
			return model.Transaction{}, err
		}
		key, err := poolKeyTupleFrom(req.Key)
		if err != nil {
			return model.Transaction{}, err
		}
		args, err := actionArguments()
		if err != nil {
			return model.Transaction{}, err
		}

		burnBlob, err := args.burn.Pack(
			req.TokenID, amount0Min, amount1Min, hookDataOrEmpty(req.HookData))
		if err != nil {
			return model.Transaction{}, fmt.Errorf("pack burn params: %w", err)
		}
		takeBlob, err := args.takePair.Pack(key.Currency0, key.Currency1, common.HexToAddress(req.Recipient))
		if err != nil {
			return model.Transaction{}, fmt.Errorf("pack take params: %w", err)
		}

		return b.packActions(manager, "modifyLiquidities",
			[]byte{ActionBurnPosition, ActionTakePair},
			[][]byte{burnBlob, takeBlob}, req.Value)

	default:
		return model.Transaction{}, &model.UnsupportedVersionError{Version: string(req.Version)}
	}
}

func (b *Builder) buildV3DecreaseActions(manager common.Address, req LiquidityRequest, liquidity, amount0Min, amount1Min *big.Int) (model.Transaction, error) {
	key, err := poolKeyTupleFrom(req.Key)
	if err != nil {
		return model.Transaction{}, err
	}
	args, err := actionArguments()
	if err != nil {
		return model.Transaction{}, err
	}

	decreaseBlob, err := args.decrease.Pack(
		req.TokenID, liquidity, amount0Min, amount1Min, hookDataOrEmpty(req.HookData))
	if err != nil {
		return model.Transaction{}, fmt.Errorf("pack decrease params: %w", err)
	}
	takeBlob, err := args.takePair.Pack(key.Currency0, key.Currency1, common.HexToAddress(req.Recipient))
	if err != nil {
		return model.Transaction{}, fmt.Errorf("pack take params: %w", err)
	}

	return b.packActions(manager, "modifyLiquidities",
		[]byte{ActionDecreaseLiquidity, ActionTakePair},
		[][]byte{decreaseBlob, takeBlob}, req.Value)
}

func (b *Builder) buildV1AddLiquidity(manager common.Address, req LiquidityRequest, amount0Min, amount1Min *big.Int) (model.Transaction, error) {
	recipient, err := requireAddress("recipient", req.Recipient)
	if err != nil {
		return model.Transaction{}, err
	}
	token0, token1, err := keyAddresses(req.Key)
	if err != nil {
		return model.Transaction{}, err
	}
	routerABI, err := v1RouterABIInstance()
	if err != nil {
		return model.Transaction{}, fmt.Errorf("router abi: %w", err)
	}
	data, err := routerABI.Pack("addLiquidity",
		token0, token1,
		amountOrZero(req.Amount0Desired), amountOrZero(req.Amount1Desired),
		amount0Min, amount1Min,
		recipient, b.deadline())
	if err != nil {
		return model.Transaction{}, fmt.Errorf("pack add liquidity: %w", err)
	}
	return newTransaction(manager, data, req.Value), nil
}

func (b *Builder) buildV1RemoveLiquidity(manager common.Address, req LiquidityRequest, liquidity, amount0Min, amount1Min *big.Int) (model.Transaction, error) {
	recipient, err := requireAddress("recipient", req.Recipient)
	if err != nil {
		return model.Transaction{}, err
	}
	token0, token1, err := keyAddresses(req.Key)
	if err != nil {
		return model.Transaction{}, err
	}
	routerABI, err := v1RouterABIInstance()
	if err != nil {
		return model.Transaction{}, fmt.Errorf("router abi: %w", err)
	}
	data, err := routerABI.Pack("removeLiquidity",
		token0, token1, liquidity,
		amount0Min, amount1Min,
		recipient, b.deadline())
	if err != nil {
		return model.Transaction{}, fmt.Errorf("pack remove liquidity: %w", err)
	}
	return newTransaction(manager, data, req.Value), nil
}

func (b *Builder) packActions(target common.Address, entrypoint string, actions []byte, params [][]byte, value *big.Int) (model.Transaction, error) {
	unlockData, err := encodeUnlockData(actions, params)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("encode actions: %w", err)
	}
	entryABI, err := v3EntrypointABIInstance()
	if err != nil {
		return model.Transaction{}, fmt.Errorf("entrypoint abi: %w", err)
	}
	data, err := entryABI.Pack(entrypoint, unlockData, b.deadline())
	if err != nil {
		return model.Transaction{}, fmt.Errorf("pack %s: %w", entrypoint, err)
	}
	return newTransaction(target, data, value), nil
}

func (b *Builder) slippageMins(req LiquidityRequest) (*big.Int, *big.Int, error) {
	amount0Min, err := minWithSlippage(req.Amount0Desired, req.SlippagePct)
	if err != nil {
		return nil, nil, err
	}
	amount1Min, err := minWithSlippage(req.Amount1Desired, req.SlippagePct)
	if err != nil {
		return nil, nil, err
	}
	return amount0Min, amount1Min, nil
}

func liquidityToRemove(req LiquidityRequest) (*big.Int, error) {
	total, err := ParseLiquidityDisplay(req.LiquidityDisplay)
	if err != nil {
		return nil, err
	}
	return ScaleByPercentage(total, req.LiquidityPercentage)
}

// requireActionParams enforces the singleton generation's required fields
// before any encoding is attempted.
func requireActionParams(key model.PoolKey, recipient string) error {
	if key.Token0.Address == "" {
		return &model.MissingParameterError{Parameter: "currency0"}
	}
	if key.Token1.Address == "" {
		return &model.MissingParameterError{Parameter: "currency1"}
	}
	if recipient == "" {
		return &model.MissingParameterError{Parameter: "recipient"}
	}
	return nil
}

func poolKeyTupleFrom(key model.PoolKey) (poolKeyTuple, error) {
	token0, token1, err := keyAddresses(key)
	if err != nil {
		return poolKeyTuple{}, err
	}
	hooks := key.Hooks
	if hooks == "" {
		hooks = (common.Address{}).Hex()
	}
	if !common.IsHexAddress(hooks) {
		return poolKeyTuple{}, &model.ValidationError{Field: "hooks", Reason: "malformed address"}
	}
	return poolKeyTuple{
		Currency0:   token0,
		Currency1:   token1,
		Fee:         new(big.Int).SetUint64(uint64(key.Fee)),
		TickSpacing: big.NewInt(int64(key.TickSpacing)),
		Hooks:       common.HexToAddress(hooks),
	}, nil
}

func keyAddresses(key model.PoolKey) (common.Address, common.Address, error) {
	token0, err := requireAddress("token0", key.Token0.Address)
	if err != nil {
		return common.Address{}, common.Address{}, err
	}
	token1, err := requireAddress("token1", key.Token1.Address)
	if err != nil {
		return common.Address{}, common.Address{}, err
	}
	return token0, token1, nil
}

func requireAddress(field, value string) (common.Address, error) {
	if !common.IsHexAddress(value) {
		return common.Address{}, &model.ValidationError{
			Field:  field,
			Reason: fmt.Sprintf("malformed address: %q", value),
		}
	}
	return common.HexToAddress(value), nil
}

func requireTokenID(tokenID *big.Int) error {
	if tokenID == nil || tokenID.Sign() < 0 {
		return &model.ValidationError{Field: "tokenId", Reason: "must be a non-negative integer"}
	}
	return nil
}

func amountOrZero(amount *big.Int) *big.Int {
	if amount == nil {
		return big.NewInt(0)
	}
	return amount
}

func hookDataOrEmpty(hookData []byte) []byte {
	if hookData == nil {
		return []byte{}
	}
	return hookData
}

func newTransaction(to common.Address, data []byte, value *big.Int) model.Transaction {
	valueStr := "0"
	if value != nil && value.Sign() > 0 {
		valueStr = value.String()
	}
	return model.Transaction{
		To:    to.Hex(),
		Data:  hexutil.Encode(data),
		Value: valueStr,
	}
}
