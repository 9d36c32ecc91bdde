// Package postgres provides an optional audit sink. The engine itself never
// persists anything; the CLI writes its outputs here when a DSN is supplied.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"swapForge/internal/model"
)

// Store provides Postgres persistence for engine outputs.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// UpsertPositions inserts or updates a wallet's position snapshot.
func (s *Store) UpsertPositions(ctx context.Context, wallet string, positions []model.Position) error {
	if len(positions) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, p := range positions {
		inRange := false
		if p.InRange != nil {
			inRange = *p.InRange
		}
		batch.Queue(`
			INSERT INTO positions (
				wallet, position_id, version, pool_address, liquidity_raw,
				amount0, amount1, fees_owed0, fees_owed1,
				tick_lower, tick_upper, in_range, value_usd, fees_value_usd,
				created_at, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,now(),now())
			ON CONFLICT (wallet, position_id)
			DO UPDATE SET
				liquidity_raw = EXCLUDED.liquidity_raw,
				amount0 = EXCLUDED.amount0,
				amount1 = EXCLUDED.amount1,
				fees_owed0 = EXCLUDED.fees_owed0,
				fees_owed1 = EXCLUDED.fees_owed1,
				tick_lower = EXCLUDED.tick_lower,
				tick_upper = EXCLUDED.tick_upper,
				in_range = EXCLUDED.in_range,
				value_usd = EXCLUDED.value_usd,
				fees_value_usd = EXCLUDED.fees_value_usd,
				updated_at = now()
		`,
			wallet,
			p.ID,
			string(p.Version),
			p.PoolKey.PoolAddress,
			p.LiquidityRaw,
			p.Amount0,
			p.Amount1,
			p.FeesOwed0,
			p.FeesOwed1,
			p.TickLower,
			p.TickUpper,
			inRange,
			p.ValueUSD,
			p.FeesValueUSD,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range positions {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// InsertProfitAnalysis appends one profit analysis row.
func (s *Store) InsertProfitAnalysis(ctx context.Context, label string, analysis model.ProfitAnalysis) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO profit_analyses (
			label, amount_in_usd, expected_out_usd, min_out_usd,
			gas_usd, fee_usd, slippage_usd, total_cost_usd,
			gross_profit_usd, net_profit_usd, net_profit_pct, is_profitable,
			evaluated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	`,
		label,
		analysis.AmountInUSD.String(),
		analysis.ExpectedOutUSD.String(),
		analysis.MinOutUSD.String(),
		analysis.Costs.Gas.String(),
		analysis.Costs.Fee.String(),
		analysis.Costs.Slippage.String(),
		analysis.Costs.Total.String(),
		analysis.GrossProfitUSD.String(),
		analysis.NetProfitUSD.String(),
		analysis.NetProfitPct.String(),
		analysis.IsProfitable,
		time.Now().UTC(),
	)
	return err
}

// InsertVolumeSummary appends one volume scan result row.
func (s *Store) InsertVolumeSummary(ctx context.Context, summary model.VolumeSummary) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO volume_summaries (
			from_block, to_block, swap_count, volume0, volume1, partial, scanned_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7)
	`,
		int64(summary.FromBlock),
		int64(summary.ToBlock),
		int64(summary.SwapCount),
		summary.Volume0,
		summary.Volume1,
		summary.Partial,
		time.Now().UTC(),
	)
	return err
}
