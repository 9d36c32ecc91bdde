// Package scan walks historical swap logs for a set of pools and accumulates
// traded volume. Failed sub-ranges degrade the result instead of failing it:
// the scan reports what it could read and which ranges it could not.
package scan

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"swapForge/internal/chain"
	"swapForge/internal/dex"
)

// Config holds runtime settings for a volume scan.
type Config struct {
	FromBlock    uint64
	ToBlock      uint64
	Pools        []common.Address
	BatchSize    uint64
	MaxRetries   int
	RetryBackoff time.Duration
}

// VolumeReport is the accumulated result of a scan. Partial is true when one
// or more sub-ranges could not be read after retries.
type VolumeReport struct {
	FromBlock    uint64
	ToBlock      uint64
	SwapCount    int
	Volume0      *big.Int
	Volume1      *big.Int
	Partial      bool
	FailedRanges []BlockRange
}

// Scanner streams swap logs from the chain and accumulates per-side volume.
type Scanner struct {
	cfg     Config
	chain   *chain.Client
	decoder *dex.SwapDecoder
	logger  *zap.Logger
	seen    map[string]struct{}
}

func NewScanner(cfg Config, chainClient *chain.Client, logger *zap.Logger) (*Scanner, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	decoder, err := dex.NewSwapDecoder()
	if err != nil {
		return nil, fmt.Errorf("build swap decoder: %w", err)
	}
	return &Scanner{
		cfg:     cfg,
		chain:   chainClient,
		decoder: decoder,
		logger:  logger,
		seen:    make(map[string]struct{}),
	}, nil
}

// Run executes the scan loop. A sub-range that keeps failing after retries is
// recorded in the report and skipped; the remaining ranges still contribute.
func (s *Scanner) Run(ctx context.Context) (VolumeReport, error) {
	report := VolumeReport{
		Volume0: big.NewInt(0),
		Volume1: big.NewInt(0),
	}

	if s.chain == nil {
		return report, fmt.Errorf("chain client is nil")
	}
	if s.cfg.BatchSize == 0 {
		return report, fmt.Errorf("batch size must be greater than zero")
	}
	if len(s.cfg.Pools) == 0 {
		return report, fmt.Errorf("at least one pool is required")
	}

	from := s.cfg.FromBlock
	to := s.cfg.ToBlock
	if to == 0 {
		latest, err := s.chain.LatestBlockNumber(ctx)
		if err != nil {
			return report, fmt.Errorf("get latest block: %w", err)
		}
		to = latest
	}
	report.FromBlock = from
	report.ToBlock = to

	ranges, err := SplitRange(from, to, s.cfg.BatchSize)
	if err != nil {
		return report, err
	}

	for _, blockRange := range ranges {
		select {
		case <-ctx.Done():
			return report, ctx.Err()
		default:
		}

		if err := s.scanRange(ctx, blockRange, &report); err != nil {
			s.logger.Warn("range unreadable, skipping",
				zap.Uint64("from", blockRange.From), zap.Uint64("to", blockRange.To), zap.Error(err))
			report.Partial = true
			report.FailedRanges = append(report.FailedRanges, blockRange)
		}
	}

	s.logger.Info("scan complete",
		zap.Int("swaps", report.SwapCount),
		zap.Uint64("from", report.FromBlock),
		zap.Uint64("to", report.ToBlock),
		zap.Bool("partial", report.Partial))
	return report, nil
}

// scanRange reads one batch. A failed fetch retries at half the granularity
// first; only a range that fails at minimum granularity is given up on.
func (s *Scanner) scanRange(ctx context.Context, blockRange BlockRange, report *VolumeReport) error {
	logs, err := s.filterLogsWithRetry(ctx, blockRange.From, blockRange.To)
	if err != nil {
		if blockRange.To == blockRange.From {
			return err
		}
		mid := blockRange.From + (blockRange.To-blockRange.From)/2
		s.logger.Debug("splitting failed range",
			zap.Uint64("from", blockRange.From), zap.Uint64("to", blockRange.To), zap.Uint64("mid", mid))
		if err := s.scanRange(ctx, BlockRange{From: blockRange.From, To: mid}, report); err != nil {
			return err
		}
		return s.scanRange(ctx, BlockRange{From: mid + 1, To: blockRange.To}, report)
	}

	for _, log := range logs {
		if !s.decoder.CanDecode(log) || s.isDuplicate(log.BlockNumber, log.TxHash.Hex(), log.Index) {
			continue
		}
		record, err := s.decoder.Decode(log)
		if err != nil {
			s.logger.Debug("undecodable swap log",
				zap.String("tx", log.TxHash.Hex()), zap.Uint("index", log.Index), zap.Error(err))
			continue
		}
		report.SwapCount++
		report.Volume0.Add(report.Volume0, record.Amount0)
		report.Volume1.Add(report.Volume1, record.Amount1)
	}
	return nil
}

func (s *Scanner) filterLogsWithRetry(ctx context.Context, fromBlock, toBlock uint64) ([]types.Log, error) {
	var logs []types.Log
	err := withRetry(ctx, s.cfg.MaxRetries, s.cfg.RetryBackoff, func(ctx context.Context) error {
		var err error
		logs, err = s.chain.FilterLogs(ctx, fromBlock, toBlock, s.cfg.Pools, s.decoder.Topics())
		if err != nil {
			s.logger.Warn("filter logs failed", zap.Error(err), zap.Uint64("from", fromBlock), zap.Uint64("to", toBlock))
		}
		return err
	})
	return logs, err
}

func (s *Scanner) isDuplicate(blockNumber uint64, txHash string, index uint) bool {
	id := fmt.Sprintf("%d:%s:%d", blockNumber, txHash, index)
	if _, ok := s.seen[id]; ok {
		return true
	}
	s.seen[id] = struct{}{}
	return false
}
