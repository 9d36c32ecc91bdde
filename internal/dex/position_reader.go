package dex

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"swapForge/internal/chain"
	"swapForge/internal/model"
	"swapForge/internal/pool"
	"swapForge/internal/position"
)

// PositionReaderConfig names the on-chain entry points position enumeration
// reads from. A zero address disables that generation.
type PositionReaderConfig struct {
	V1Pairs           []common.Address
	V2Factory         common.Address
	V2PositionManager common.Address
	V3PositionManager common.Address
	V3StateView       common.Address
}

// PositionReader enumerates a wallet's positions from live chain reads. It
// implements the aggregator's source contract.
type PositionReader struct {
	cfg    PositionReaderConfig
	chain  *chain.Client
	tokens *TokenMetaCache
	logger *zap.Logger
}

func NewPositionReader(cfg PositionReaderConfig, chainClient *chain.Client, tokens *TokenMetaCache, logger *zap.Logger) *PositionReader {
	if logger == nil {
		logger = zap.NewNop()
	}
	if tokens == nil {
		tokens = NewTokenMetaCache()
	}
	return &PositionReader{cfg: cfg, chain: chainClient, tokens: tokens, logger: logger}
}

// V1Holdings reads the wallet's LP-token stake in each configured pair.
func (r *PositionReader) V1Holdings(ctx context.Context, wallet string) ([]position.V1Holding, error) {
	if !common.IsHexAddress(wallet) {
		return nil, &model.ValidationError{Field: "wallet", Reason: "malformed address"}
	}
	owner := common.HexToAddress(wallet)

	pairABI, err := V1PairABI()
	if err != nil {
		return nil, fmt.Errorf("parse pair abi: %w", err)
	}

	holdings := make([]position.V1Holding, 0, len(r.cfg.V1Pairs))
	for _, pair := range r.cfg.V1Pairs {
		values, err := callMethod(ctx, r.chain, pair, pairABI, "balanceOf", nil, owner)
		if err != nil {
			r.logger.Warn("pair balance read failed", zap.String("pair", pair.Hex()), zap.Error(err))
			continue
		}
		balance, err := asBigInt(values[0])
		if err != nil || balance.Sign() == 0 {
			continue
		}

		holding, err := r.readV1Holding(ctx, pair, pairABI, balance)
		if err != nil {
			r.logger.Warn("pair read failed", zap.String("pair", pair.Hex()), zap.Error(err))
			continue
		}
		holdings = append(holdings, holding)
	}
	return holdings, nil
}

func (r *PositionReader) readV1Holding(ctx context.Context, pair common.Address, pairABI abi.ABI, balance *big.Int) (position.V1Holding, error) {
	values, err := callMethod(ctx, r.chain, pair, pairABI, "token0", nil)
	if err != nil {
		return position.V1Holding{}, err
	}
	token0Addr, err := asAddress(values[0])
	if err != nil {
		return position.V1Holding{}, fmt.Errorf("token0: %w", err)
	}
	values, err = callMethod(ctx, r.chain, pair, pairABI, "token1", nil)
	if err != nil {
		return position.V1Holding{}, err
	}
	token1Addr, err := asAddress(values[0])
	if err != nil {
		return position.V1Holding{}, fmt.Errorf("token1: %w", err)
	}

	token0, token1, err := FetchPairTokens(ctx, r.chain, token0Addr, token1Addr, r.tokens, r.logger)
	if err != nil {
		return position.V1Holding{}, err
	}

	values, err = callMethod(ctx, r.chain, pair, pairABI, "totalSupply", nil)
	if err != nil {
		return position.V1Holding{}, err
	}
	totalSupply, err := asBigInt(values[0])
	if err != nil {
		return position.V1Holding{}, fmt.Errorf("totalSupply: %w", err)
	}

	values, err = callMethod(ctx, r.chain, pair, pairABI, "getReserves", nil)
	if err != nil {
		return position.V1Holding{}, err
	}
	reserve0, err := asBigInt(values[0])
	if err != nil {
		return position.V1Holding{}, fmt.Errorf("reserve0: %w", err)
	}
	reserve1, err := asBigInt(values[1])
	if err != nil {
		return position.V1Holding{}, fmt.Errorf("reserve1: %w", err)
	}

	return position.V1Holding{
		Key: model.PoolKey{
			Token0:      token0,
			Token1:      token1,
			PoolAddress: pair.Hex(),
		},
		LPBalance:   balance,
		TotalSupply: totalSupply,
		Reserve0:    reserve0,
		Reserve1:    reserve1,
	}, nil
}

// NFTPositions enumerates the wallet's NFT-keyed positions for a generation.
func (r *PositionReader) NFTPositions(ctx context.Context, wallet string, version model.Version) ([]position.NFTPositionRecord, error) {
	if !common.IsHexAddress(wallet) {
		return nil, &model.ValidationError{Field: "wallet", Reason: "malformed address"}
	}
	owner := common.HexToAddress(wallet)

	switch version {
	case model.VersionV2:
		return r.v2Positions(ctx, owner)
	case model.VersionV3:
		return r.v3Positions(ctx, owner)
	default:
		return nil, &model.UnsupportedVersionError{Version: string(version)}
	}
}

func (r *PositionReader) v2Positions(ctx context.Context, owner common.Address) ([]position.NFTPositionRecord, error) {
	manager := r.cfg.V2PositionManager
	if manager == (common.Address{}) {
		return nil, nil
	}
	managerABI, err := V2PositionManagerABI()
	if err != nil {
		return nil, fmt.Errorf("parse position manager abi: %w", err)
	}

	tokenIDs, err := r.ownedTokenIDs(ctx, manager, managerABI, owner)
	if err != nil {
		return nil, err
	}

	records := make([]position.NFTPositionRecord, 0, len(tokenIDs))
	for _, tokenID := range tokenIDs {
		record, err := r.readV2Position(ctx, manager, managerABI, tokenID)
		if err != nil {
			r.logger.Warn("position read failed", zap.String("token_id", tokenID.String()), zap.Error(err))
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

func (r *PositionReader) readV2Position(ctx context.Context, manager common.Address, managerABI abi.ABI, tokenID *big.Int) (position.NFTPositionRecord, error) {
	values, err := callMethod(ctx, r.chain, manager, managerABI, "positions", nil, tokenID)
	if err != nil {
		return position.NFTPositionRecord{}, err
	}
	if len(values) != 12 {
		return position.NFTPositionRecord{}, fmt.Errorf("unexpected positions values: %d", len(values))
	}

	token0Addr, err := asAddress(values[2])
	if err != nil {
		return position.NFTPositionRecord{}, fmt.Errorf("token0: %w", err)
	}
	token1Addr, err := asAddress(values[3])
	if err != nil {
		return position.NFTPositionRecord{}, fmt.Errorf("token1: %w", err)
	}
	feeInt, err := asBigInt(values[4])
	if err != nil {
		return position.NFTPositionRecord{}, fmt.Errorf("fee: %w", err)
	}
	tickLowerInt, err := asBigInt(values[5])
	if err != nil {
		return position.NFTPositionRecord{}, fmt.Errorf("tickLower: %w", err)
	}
	tickLower, err := int24FromBig(tickLowerInt)
	if err != nil {
		return position.NFTPositionRecord{}, fmt.Errorf("tickLower: %w", err)
	}
	tickUpperInt, err := asBigInt(values[6])
	if err != nil {
		return position.NFTPositionRecord{}, fmt.Errorf("tickUpper: %w", err)
	}
	tickUpper, err := int24FromBig(tickUpperInt)
	if err != nil {
		return position.NFTPositionRecord{}, fmt.Errorf("tickUpper: %w", err)
	}
	liquidity, err := asBigInt(values[7])
	if err != nil {
		return position.NFTPositionRecord{}, fmt.Errorf("liquidity: %w", err)
	}
	feesOwed0, err := asBigInt(values[10])
	if err != nil {
		return position.NFTPositionRecord{}, fmt.Errorf("tokensOwed0: %w", err)
	}
	feesOwed1, err := asBigInt(values[11])
	if err != nil {
		return position.NFTPositionRecord{}, fmt.Errorf("tokensOwed1: %w", err)
	}

	token0, token1, err := FetchPairTokens(ctx, r.chain, token0Addr, token1Addr, r.tokens, r.logger)
	if err != nil {
		return position.NFTPositionRecord{}, err
	}

	record := position.NFTPositionRecord{
		Version:   model.VersionV2,
		TokenID:   tokenID,
		Liquidity: liquidity,
		TickLower: tickLower,
		TickUpper: tickUpper,
		FeesOwed0: feesOwed0,
		FeesOwed1: feesOwed1,
		Key: model.PoolKey{
			Token0: token0,
			Token1: token1,
			Fee:    uint32(feeInt.Uint64()),
		},
	}

	poolAddr, err := r.v2PoolAddress(ctx, token0Addr, token1Addr, feeInt)
	if err != nil {
		return position.NFTPositionRecord{}, err
	}
	record.Key.PoolAddress = poolAddr.Hex()

	state, err := ReadV2PoolState(ctx, r.chain, poolAddr)
	if err != nil {
		return position.NFTPositionRecord{}, err
	}
	record.CurrentTick = state.Tick
	record.SqrtPriceX96 = state.SqrtPriceX96
	return record, nil
}

func (r *PositionReader) v2PoolAddress(ctx context.Context, token0, token1 common.Address, fee *big.Int) (common.Address, error) {
	if r.cfg.V2Factory == (common.Address{}) {
		return common.Address{}, fmt.Errorf("v2 factory address not configured")
	}
	factoryABI, err := V2FactoryABI()
	if err != nil {
		return common.Address{}, fmt.Errorf("parse factory abi: %w", err)
	}
	values, err := callMethod(ctx, r.chain, r.cfg.V2Factory, factoryABI, "getPool", nil, token0, token1, fee)
	if err != nil {
		return common.Address{}, err
	}
	addr, err := asAddress(values[0])
	if err != nil {
		return common.Address{}, fmt.Errorf("pool: %w", err)
	}
	if addr == (common.Address{}) {
		return common.Address{}, fmt.Errorf("pool does not exist")
	}
	return addr, nil
}

func (r *PositionReader) v3Positions(ctx context.Context, owner common.Address) ([]position.NFTPositionRecord, error) {
	manager := r.cfg.V3PositionManager
	if manager == (common.Address{}) {
		return nil, nil
	}
	managerABI, err := V3PositionViewABI()
	if err != nil {
		return nil, fmt.Errorf("parse position view abi: %w", err)
	}

	tokenIDs, err := r.ownedTokenIDs(ctx, manager, managerABI, owner)
	if err != nil {
		return nil, err
	}

	records := make([]position.NFTPositionRecord, 0, len(tokenIDs))
	for _, tokenID := range tokenIDs {
		record, err := r.readV3Position(ctx, manager, managerABI, tokenID)
		if err != nil {
			r.logger.Warn("position read failed", zap.String("token_id", tokenID.String()), zap.Error(err))
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

func (r *PositionReader) readV3Position(ctx context.Context, manager common.Address, managerABI abi.ABI, tokenID *big.Int) (position.NFTPositionRecord, error) {
	values, err := callMethod(ctx, r.chain, manager, managerABI, "getPoolAndPositionInfo", nil, tokenID)
	if err != nil {
		return position.NFTPositionRecord{}, err
	}
	if len(values) != 2 {
		return position.NFTPositionRecord{}, fmt.Errorf("unexpected getPoolAndPositionInfo values: %d", len(values))
	}

	keyTuple, ok := values[0].(struct {
		Currency0   common.Address `json:"currency0"`
		Currency1   common.Address `json:"currency1"`
		Fee         *big.Int       `json:"fee"`
		TickSpacing *big.Int       `json:"tickSpacing"`
		Hooks       common.Address `json:"hooks"`
	})
	if !ok {
		return position.NFTPositionRecord{}, fmt.Errorf("unsupported pool key type %T", values[0])
	}
	info, err := asBigInt(values[1])
	if err != nil {
		return position.NFTPositionRecord{}, fmt.Errorf("info: %w", err)
	}
	tickLower, tickUpper := unpackPositionInfoTicks(info)

	tickSpacing, err := int24FromBig(keyTuple.TickSpacing)
	if err != nil {
		return position.NFTPositionRecord{}, fmt.Errorf("tickSpacing: %w", err)
	}

	token0, token1, err := FetchPairTokens(ctx, r.chain, keyTuple.Currency0, keyTuple.Currency1, r.tokens, r.logger)
	if err != nil {
		return position.NFTPositionRecord{}, err
	}

	key := model.PoolKey{
		Token0:      token0,
		Token1:      token1,
		Fee:         uint32(keyTuple.Fee.Uint64()),
		TickSpacing: tickSpacing,
		Hooks:       keyTuple.Hooks.Hex(),
	}

	values, err = callMethod(ctx, r.chain, manager, managerABI, "getPositionLiquidity", nil, tokenID)
	if err != nil {
		return position.NFTPositionRecord{}, err
	}
	liquidity, err := asBigInt(values[0])
	if err != nil {
		return position.NFTPositionRecord{}, fmt.Errorf("liquidity: %w", err)
	}

	record := position.NFTPositionRecord{
		Version:   model.VersionV3,
		TokenID:   tokenID,
		Key:       key,
		Liquidity: liquidity,
		TickLower: tickLower,
		TickUpper: tickUpper,
		FeesOwed0: big.NewInt(0),
		FeesOwed1: big.NewInt(0),
	}

	if r.cfg.V3StateView != (common.Address{}) {
		poolID, err := pool.ComputePoolID(key)
		if err != nil {
			return position.NFTPositionRecord{}, err
		}
		state, err := ReadV3PoolState(ctx, r.chain, r.cfg.V3StateView, poolID)
		if err != nil {
			return position.NFTPositionRecord{}, err
		}
		record.CurrentTick = state.Tick
		record.SqrtPriceX96 = state.SqrtPriceX96
	}

	return record, nil
}

func (r *PositionReader) ownedTokenIDs(ctx context.Context, manager common.Address, managerABI abi.ABI, owner common.Address) ([]*big.Int, error) {
	values, err := callMethod(ctx, r.chain, manager, managerABI, "balanceOf", nil, owner)
	if err != nil {
		return nil, err
	}
	balance, err := asBigInt(values[0])
	if err != nil {
		return nil, fmt.Errorf("balanceOf: %w", err)
	}

	count := balance.Int64()
	tokenIDs := make([]*big.Int, 0, count)
	for i := int64(0); i < count; i++ {
		values, err := callMethod(ctx, r.chain, manager, managerABI, "tokenOfOwnerByIndex", nil, owner, big.NewInt(i))
		if err != nil {
			r.logger.Warn("token enumeration failed", zap.Int64("index", i), zap.Error(err))
			continue
		}
		tokenID, err := asBigInt(values[0])
		if err != nil {
			continue
		}
		tokenIDs = append(tokenIDs, tokenID)
	}
	return tokenIDs, nil
}

// unpackPositionInfoTicks extracts the tick range packed into the position
// info word: tickLower occupies bits 8-31 and tickUpper bits 32-55, both as
// signed 24-bit values.
func unpackPositionInfoTicks(info *big.Int) (int32, int32) {
	extract := func(shift uint) int32 {
		word := new(big.Int).And(new(big.Int).Rsh(info, shift), big.NewInt(0xFFFFFF))
		value := int32(word.Int64())
		if value >= 1<<23 {
			value -= 1 << 24
		}
		return value
	}
	return extract(8), extract(32)
}
