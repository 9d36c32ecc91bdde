// Package position aggregates a wallet's liquidity positions across all
// three protocol generations into valued, fee-aware records.
package position

import (
	"context"
	"fmt"
	"math"
	"math/big"

	"go.uber.org/zap"

	"swapForge/internal/model"
)

// V1Holding is a wallet's stake in one constant-product pool, as read from
// the pair contract.
type V1Holding struct {
	Key         model.PoolKey
	LPBalance   *big.Int
	TotalSupply *big.Int
	Reserve0    *big.Int
	Reserve1    *big.Int
}

// NFTPositionRecord is one NFT-keyed position as read from a position
// manager, together with the pool state needed to value it.
type NFTPositionRecord struct {
	Version      model.Version
	TokenID      *big.Int
	Key          model.PoolKey
	Liquidity    *big.Int
	TickLower    int32
	TickUpper    int32
	CurrentTick  int32
	SqrtPriceX96 *big.Int
	FeesOwed0    *big.Int
	FeesOwed1    *big.Int
}

// Source supplies already-fetched position data; the chain-read collaborator
// implements it. The aggregator itself never performs network I/O.
type Source interface {
	V1Holdings(ctx context.Context, wallet string) ([]V1Holding, error)
	NFTPositions(ctx context.Context, wallet string, version model.Version) ([]NFTPositionRecord, error)
}

// Pricer resolves a token's USD price. A miss is 0.0, never an error.
type Pricer interface {
	USDPrice(ctx context.Context, token string) float64
}

// CanCollectFees reports whether a generation supports collecting fees
// separately from liquidity. Constant-product fees accrue into LP-token
// value, so v1 is always false, by protocol design.
func CanCollectFees(version model.Version) bool {
	return version == model.VersionV2 || version == model.VersionV3
}

// Aggregator builds position records fresh on every call.
type Aggregator struct {
	source Source
	pricer Pricer
	logger *zap.Logger
}

func NewAggregator(source Source, pricer Pricer, logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{source: source, pricer: pricer, logger: logger}
}

// Aggregate enumerates the wallet's positions across all generations. A
// failure in one generation's enumeration is logged and skipped; the other
// generations' results are still returned.
func (a *Aggregator) Aggregate(ctx context.Context, wallet string) ([]model.Position, error) {
	if a.source == nil {
		return nil, fmt.Errorf("position source is nil")
	}

	positions := make([]model.Position, 0)

	holdings, err := a.source.V1Holdings(ctx, wallet)
	if err != nil {
		a.logger.Warn("v1 holdings enumeration failed", zap.String("wallet", wallet), zap.Error(err))
	}
	for _, holding := range holdings {
		record, err := a.buildV1Position(ctx, holding)
		if err != nil {
			a.logger.Warn("skip v1 holding", zap.String("pool", holding.Key.PoolAddress), zap.Error(err))
			continue
		}
		if record != nil {
			positions = append(positions, *record)
		}
	}

	for _, version := range []model.Version{model.VersionV2, model.VersionV3} {
		records, err := a.source.NFTPositions(ctx, wallet, version)
		if err != nil {
			a.logger.Warn("position enumeration failed",
				zap.String("version", string(version)), zap.String("wallet", wallet), zap.Error(err))
			continue
		}
		for _, record := range records {
			built, err := a.buildNFTPosition(ctx, record)
			if err != nil {
				a.logger.Warn("skip position",
					zap.String("version", string(version)), zap.Error(err))
				continue
			}
			if built != nil {
				positions = append(positions, *built)
			}
		}
	}

	return positions, nil
}

func (a *Aggregator) buildV1Position(ctx context.Context, holding V1Holding) (*model.Position, error) {
	if holding.LPBalance == nil || holding.LPBalance.Sign() == 0 {
		return nil, nil
	}
	amount0, amount1, err := V1Underlying(holding.LPBalance, holding.TotalSupply, holding.Reserve0, holding.Reserve1)
	if err != nil {
		return nil, err
	}

	record := model.Position{
		ID:           fmt.Sprintf("%s-%s", model.VersionV1, holding.Key.PoolAddress),
		Version:      model.VersionV1,
		PoolKey:      holding.Key,
		LiquidityRaw: holding.LPBalance.String(),
		Amount0:      amount0.String(),
		Amount1:      amount1.String(),
		FeesOwed0:    "0",
		FeesOwed1:    "0",
	}
	record.ValueUSD = a.valueUSD(ctx, holding.Key, amount0, amount1)
	return &record, nil
}

func (a *Aggregator) buildNFTPosition(ctx context.Context, record NFTPositionRecord) (*model.Position, error) {
	if record.TokenID == nil {
		return nil, fmt.Errorf("missing token id")
	}
	if record.Liquidity == nil || record.Liquidity.Sign() == 0 {
		// Burned or empty position; nothing to report.
		return nil, nil
	}
	amount0, amount1, err := AmountsFromLiquidity(
		record.Liquidity, record.SqrtPriceX96, record.TickLower, record.TickUpper, record.CurrentTick)
	if err != nil {
		return nil, err
	}

	tickLower, tickUpper := record.TickLower, record.TickUpper
	inRange := tickLower <= record.CurrentTick && record.CurrentTick < tickUpper

	built := model.Position{
		ID:           fmt.Sprintf("%s-%s", record.Version, record.TokenID.String()),
		Version:      record.Version,
		PoolKey:      record.Key,
		LiquidityRaw: record.Liquidity.String(),
		Amount0:      amount0.String(),
		Amount1:      amount1.String(),
		FeesOwed0:    amountStringOrZero(record.FeesOwed0),
		FeesOwed1:    amountStringOrZero(record.FeesOwed1),
		TickLower:    &tickLower,
		TickUpper:    &tickUpper,
		InRange:      &inRange,
	}
	built.ValueUSD = a.valueUSD(ctx, record.Key, amount0, amount1)
	built.FeesValueUSD = a.valueUSD(ctx, record.Key, record.FeesOwed0, record.FeesOwed1)
	return &built, nil
}

// valueUSD prices raw amounts at the display boundary. Unknown prices value
// at zero by convention.
func (a *Aggregator) valueUSD(ctx context.Context, key model.PoolKey, amount0, amount1 *big.Int) float64 {
	if a.pricer == nil {
		return 0
	}
	total := 0.0
	if amount0 != nil && amount0.Sign() > 0 {
		human, _ := new(big.Float).Quo(
			new(big.Float).SetInt(amount0), pow10Float(key.Token0.Decimals)).Float64()
		total += human * a.pricer.USDPrice(ctx, key.Token0.Address)
	}
	if amount1 != nil && amount1.Sign() > 0 {
		human, _ := new(big.Float).Quo(
			new(big.Float).SetInt(amount1), pow10Float(key.Token1.Decimals)).Float64()
		total += human * a.pricer.USDPrice(ctx, key.Token1.Address)
	}
	if math.IsNaN(total) || math.IsInf(total, 0) {
		return 0
	}
	return total
}

func pow10Float(decimals uint8) *big.Float {
	return new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil))
}

func amountStringOrZero(amount *big.Int) string {
	if amount == nil {
		return "0"
	}
	return amount.String()
}
