package dex

import (
	"bytes"
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"swapForge/internal/chain"
	"swapForge/internal/model"
)

const (
	fallbackSymbol   = "UNKNOWN"
	fallbackDecimals = 18
)

// TokenMetaCache caches token metadata by address.
type TokenMetaCache struct {
	mu   sync.RWMutex
	data map[common.Address]model.Token
}

func NewTokenMetaCache() *TokenMetaCache {
	return &TokenMetaCache{data: make(map[common.Address]model.Token)}
}

func (c *TokenMetaCache) Get(address common.Address) (model.Token, bool) {
	c.mu.RLock()
	meta, ok := c.data[address]
	c.mu.RUnlock()
	return meta, ok
}

func (c *TokenMetaCache) Set(address common.Address, meta model.Token) {
	c.mu.Lock()
	c.data[address] = meta
	c.mu.Unlock()
}

// FetchTokenMeta loads token metadata via ERC20 calls. Metadata is advisory:
// a token that will not report a symbol or decimals still gets a usable
// record with the conventional fallbacks.
func FetchTokenMeta(ctx context.Context, chainClient *chain.Client, token common.Address, logger *zap.Logger) (model.Token, error) {
	meta := model.Token{Address: token.Hex(), Symbol: fallbackSymbol, Decimals: fallbackDecimals}
	if chainClient == nil {
		return meta, fmt.Errorf("chain client is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	stringABI, err := erc20ABIStringInstance()
	if err != nil {
		return meta, fmt.Errorf("parse erc20 string abi: %w", err)
	}
	bytes32ABI, err := erc20ABIBytes32Instance()
	if err != nil {
		return meta, fmt.Errorf("parse erc20 bytes32 abi: %w", err)
	}

	if values, err := callMethod(ctx, chainClient, token, stringABI, "decimals", nil); err == nil {
		if decimals, err := asUint8(values[0]); err == nil {
			meta.Decimals = decimals
		}
	} else {
		logger.Warn("decimals call failed, assuming 18", zap.String("token", token.Hex()), zap.Error(err))
	}

	if values, err := callMethod(ctx, chainClient, token, stringABI, "symbol", nil); err == nil {
		if symbol, ok := values[0].(string); ok && symbol != "" {
			meta.Symbol = symbol
		}
	} else if values, err := callMethod(ctx, chainClient, token, bytes32ABI, "symbol", nil); err == nil {
		if symbol, ok := bytes32ToString(values[0]); ok && symbol != "" {
			meta.Symbol = symbol
		}
	} else {
		logger.Warn("symbol call failed, using fallback", zap.String("token", token.Hex()), zap.Error(err))
	}

	return meta, nil
}

// FetchPairTokens resolves both tokens of a pool through the cache, fetching
// the misses concurrently. The lookups are independent RPC round trips.
func FetchPairTokens(ctx context.Context, chainClient *chain.Client, token0, token1 common.Address, cache *TokenMetaCache, logger *zap.Logger) (model.Token, model.Token, error) {
	var (
		wg    sync.WaitGroup
		metas [2]model.Token
		errs  [2]error
	)
	for i, addr := range [2]common.Address{token0, token1} {
		if cache != nil {
			if meta, ok := cache.Get(addr); ok {
				metas[i] = meta
				continue
			}
		}
		wg.Add(1)
		go func(i int, addr common.Address) {
			defer wg.Done()
			metas[i], errs[i] = FetchTokenMeta(ctx, chainClient, addr, logger)
			if errs[i] == nil && cache != nil {
				cache.Set(addr, metas[i])
			}
		}(i, addr)
	}
	wg.Wait()
	if errs[0] != nil {
		return model.Token{}, model.Token{}, fmt.Errorf("token0: %w", errs[0])
	}
	if errs[1] != nil {
		return model.Token{}, model.Token{}, fmt.Errorf("token1: %w", errs[1])
	}
	return metas[0], metas[1], nil
}

// FetchAllowance reads an ERC20 allowance. A failed call reads as zero, so
// callers treat the token as unapproved rather than failing the flow.
func FetchAllowance(ctx context.Context, chainClient *chain.Client, token, owner, spender common.Address, logger *zap.Logger) *big.Int {
	stringABI, err := erc20ABIStringInstance()
	if err != nil {
		return big.NewInt(0)
	}
	values, err := callMethod(ctx, chainClient, token, stringABI, "allowance", nil, owner, spender)
	if err != nil {
		if logger != nil {
			logger.Debug("allowance call failed", zap.String("token", token.Hex()), zap.Error(err))
		}
		return big.NewInt(0)
	}
	allowance, err := asBigInt(values[0])
	if err != nil {
		return big.NewInt(0)
	}
	return allowance
}

// FetchV1PairKey resolves a constant-product pair's identity: both tokens
// with metadata, keyed by the pair address.
func FetchV1PairKey(ctx context.Context, chainClient *chain.Client, pair common.Address, cache *TokenMetaCache, logger *zap.Logger) (model.PoolKey, error) {
	pairABI, err := V1PairABI()
	if err != nil {
		return model.PoolKey{}, fmt.Errorf("parse pair abi: %w", err)
	}
	values, err := callMethod(ctx, chainClient, pair, pairABI, "token0", nil)
	if err != nil {
		return model.PoolKey{}, err
	}
	token0Addr, err := asAddress(values[0])
	if err != nil {
		return model.PoolKey{}, fmt.Errorf("token0: %w", err)
	}
	values, err = callMethod(ctx, chainClient, pair, pairABI, "token1", nil)
	if err != nil {
		return model.PoolKey{}, err
	}
	token1Addr, err := asAddress(values[0])
	if err != nil {
		return model.PoolKey{}, fmt.Errorf("token1: %w", err)
	}

	token0, token1, err := FetchPairTokens(ctx, chainClient, token0Addr, token1Addr, cache, logger)
	if err != nil {
		return model.PoolKey{}, err
	}
	return model.PoolKey{Token0: token0, Token1: token1, PoolAddress: pair.Hex()}, nil
}

// FetchV2PoolKey resolves a concentrated-liquidity pool's identity: tokens
// with metadata plus the pool's fee and tick spacing.
func FetchV2PoolKey(ctx context.Context, chainClient *chain.Client, poolAddr common.Address, cache *TokenMetaCache, logger *zap.Logger) (model.PoolKey, error) {
	poolABI, err := V2PoolABI()
	if err != nil {
		return model.PoolKey{}, fmt.Errorf("parse pool abi: %w", err)
	}
	values, err := callMethod(ctx, chainClient, poolAddr, poolABI, "token0", nil)
	if err != nil {
		return model.PoolKey{}, err
	}
	token0Addr, err := asAddress(values[0])
	if err != nil {
		return model.PoolKey{}, fmt.Errorf("token0: %w", err)
	}
	values, err = callMethod(ctx, chainClient, poolAddr, poolABI, "token1", nil)
	if err != nil {
		return model.PoolKey{}, err
	}
	token1Addr, err := asAddress(values[0])
	if err != nil {
		return model.PoolKey{}, fmt.Errorf("token1: %w", err)
	}
	values, err = callMethod(ctx, chainClient, poolAddr, poolABI, "fee", nil)
	if err != nil {
		return model.PoolKey{}, err
	}
	feeInt, err := asBigInt(values[0])
	if err != nil {
		return model.PoolKey{}, fmt.Errorf("fee: %w", err)
	}
	values, err = callMethod(ctx, chainClient, poolAddr, poolABI, "tickSpacing", nil)
	if err != nil {
		return model.PoolKey{}, err
	}
	tickSpacingInt, err := asBigInt(values[0])
	if err != nil {
		return model.PoolKey{}, fmt.Errorf("tick spacing: %w", err)
	}
	tickSpacing, err := int24FromBig(tickSpacingInt)
	if err != nil {
		return model.PoolKey{}, fmt.Errorf("tick spacing: %w", err)
	}

	token0, token1, err := FetchPairTokens(ctx, chainClient, token0Addr, token1Addr, cache, logger)
	if err != nil {
		return model.PoolKey{}, err
	}
	return model.PoolKey{
		Token0:      token0,
		Token1:      token1,
		Fee:         uint32(feeInt.Uint64()),
		TickSpacing: tickSpacing,
		PoolAddress: poolAddr.Hex(),
	}, nil
}

// ReadV1PoolState loads a constant-product pair's reserves.
func ReadV1PoolState(ctx context.Context, chainClient *chain.Client, pair common.Address) (model.PoolState, error) {
	pairABI, err := V1PairABI()
	if err != nil {
		return model.PoolState{}, fmt.Errorf("parse pair abi: %w", err)
	}
	values, err := callMethod(ctx, chainClient, pair, pairABI, "getReserves", nil)
	if err != nil {
		return model.PoolState{}, err
	}
	if len(values) < 2 {
		return model.PoolState{}, fmt.Errorf("unexpected getReserves values: %d", len(values))
	}
	reserve0, err := asBigInt(values[0])
	if err != nil {
		return model.PoolState{}, fmt.Errorf("reserve0: %w", err)
	}
	reserve1, err := asBigInt(values[1])
	if err != nil {
		return model.PoolState{}, fmt.Errorf("reserve1: %w", err)
	}
	return model.PoolState{
		Version:  model.VersionV1,
		Reserve0: reserve0,
		Reserve1: reserve1,
	}, nil
}

// ReadV2PoolState loads a concentrated-liquidity pool's slot0 and in-range
// liquidity.
func ReadV2PoolState(ctx context.Context, chainClient *chain.Client, pool common.Address) (model.PoolState, error) {
	poolABI, err := V2PoolABI()
	if err != nil {
		return model.PoolState{}, fmt.Errorf("parse pool abi: %w", err)
	}

	values, err := callMethod(ctx, chainClient, pool, poolABI, "slot0", nil)
	if err != nil {
		return model.PoolState{}, err
	}
	if len(values) < 2 {
		return model.PoolState{}, fmt.Errorf("unexpected slot0 values: %d", len(values))
	}
	sqrtPrice, err := asBigInt(values[0])
	if err != nil {
		return model.PoolState{}, fmt.Errorf("sqrtPriceX96: %w", err)
	}
	tickInt, err := asBigInt(values[1])
	if err != nil {
		return model.PoolState{}, fmt.Errorf("tick: %w", err)
	}
	tick, err := int24FromBig(tickInt)
	if err != nil {
		return model.PoolState{}, fmt.Errorf("tick: %w", err)
	}

	state := model.PoolState{
		Version:      model.VersionV2,
		SqrtPriceX96: sqrtPrice,
		Tick:         tick,
	}
	if values, err := callMethod(ctx, chainClient, pool, poolABI, "liquidity", nil); err == nil {
		if liquidity, err := asBigInt(values[0]); err == nil {
			state.Liquidity = liquidity
		}
	}
	return state, nil
}

// ReadV3PoolState loads a singleton-managed pool's slot0 and liquidity from
// the state view contract, keyed by pool ID.
func ReadV3PoolState(ctx context.Context, chainClient *chain.Client, stateView common.Address, poolID common.Hash) (model.PoolState, error) {
	viewABI, err := V3StateViewABI()
	if err != nil {
		return model.PoolState{}, fmt.Errorf("parse state view abi: %w", err)
	}

	values, err := callMethod(ctx, chainClient, stateView, viewABI, "getSlot0", nil, poolID)
	if err != nil {
		return model.PoolState{}, err
	}
	if len(values) < 2 {
		return model.PoolState{}, fmt.Errorf("unexpected getSlot0 values: %d", len(values))
	}
	sqrtPrice, err := asBigInt(values[0])
	if err != nil {
		return model.PoolState{}, fmt.Errorf("sqrtPriceX96: %w", err)
	}
	tickInt, err := asBigInt(values[1])
	if err != nil {
		return model.PoolState{}, fmt.Errorf("tick: %w", err)
	}
	tick, err := int24FromBig(tickInt)
	if err != nil {
		return model.PoolState{}, fmt.Errorf("tick: %w", err)
	}

	state := model.PoolState{
		Version:      model.VersionV3,
		SqrtPriceX96: sqrtPrice,
		Tick:         tick,
	}
	if values, err := callMethod(ctx, chainClient, stateView, viewABI, "getLiquidity", nil, poolID); err == nil {
		if liquidity, err := asBigInt(values[0]); err == nil {
			state.Liquidity = liquidity
		}
	}
	return state, nil
}

func callMethod(ctx context.Context, chainClient *chain.Client, target common.Address, parsed abi.ABI, method string, block *big.Int, args ...interface{}) ([]interface{}, error) {
	data, err := parsed.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	msg := ethereum.CallMsg{To: &target, Data: data}
	resp, err := chainClient.CallContract(ctx, msg, block)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}
	values, err := parsed.Unpack(method, resp)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	return values, nil
}

func bytes32ToString(value interface{}) (string, bool) {
	switch v := value.(type) {
	case [32]byte:
		return string(bytes.TrimRight(v[:], "\x00")), true
	case []byte:
		return string(bytes.TrimRight(v, "\x00")), true
	default:
		return "", false
	}
}

func asAddress(value interface{}) (common.Address, error) {
	switch v := value.(type) {
	case common.Address:
		return v, nil
	case *common.Address:
		return *v, nil
	default:
		return common.Address{}, fmt.Errorf("unsupported address type %T", value)
	}
}

func asBigInt(value interface{}) (*big.Int, error) {
	switch v := value.(type) {
	case *big.Int:
		return new(big.Int).Set(v), nil
	case big.Int:
		return new(big.Int).Set(&v), nil
	case uint8:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint16:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	case int8:
		return big.NewInt(int64(v)), nil
	case int16:
		return big.NewInt(int64(v)), nil
	case int32:
		return big.NewInt(int64(v)), nil
	case int64:
		return big.NewInt(v), nil
	default:
		return nil, fmt.Errorf("unsupported int type %T", value)
	}
}

func asUint8(value interface{}) (uint8, error) {
	switch v := value.(type) {
	case uint8:
		return v, nil
	case uint16:
		return uint8(v), nil
	case uint32:
		return uint8(v), nil
	case uint64:
		return uint8(v), nil
	case *big.Int:
		return uint8(v.Uint64()), nil
	default:
		return 0, fmt.Errorf("unsupported uint8 type %T", value)
	}
}

func int24FromBig(value *big.Int) (int32, error) {
	min := big.NewInt(-1 << 23)
	max := big.NewInt((1 << 23) - 1)
	if value.Cmp(min) < 0 || value.Cmp(max) > 0 {
		return 0, fmt.Errorf("int24 overflow: %s", value.String())
	}
	return int32(value.Int64()), nil
}
