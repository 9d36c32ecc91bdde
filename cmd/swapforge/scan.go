package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"swapForge/internal/chain"
	"swapForge/internal/config"
	"swapForge/internal/model"
	"swapForge/internal/scan"
	"swapForge/internal/storage"
	"swapForge/internal/storage/postgres"
)

func runScanVolume(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadScan(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.RPCURL == "" {
		return fmt.Errorf("rpc url is required")
	}
	pools := make([]common.Address, 0, len(cfg.Pools))
	for _, raw := range cfg.Pools {
		if !common.IsHexAddress(raw) {
			return fmt.Errorf("malformed pool address: %q", raw)
		}
		pools = append(pools, common.HexToAddress(raw))
	}
	if len(pools) == 0 {
		return fmt.Errorf("pool list is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	scanner, err := scan.NewScanner(scan.Config{
		FromBlock:    cfg.FromBlock,
		ToBlock:      cfg.ToBlock,
		Pools:        pools,
		BatchSize:    cfg.BatchSize,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
	}, chainClient, logger)
	if err != nil {
		return err
	}

	logger.Info("scan start",
		zap.String("rpc", cfg.RPCURL),
		zap.Uint64("from", cfg.FromBlock),
		zap.Uint64("to", cfg.ToBlock),
		zap.Int("pools", len(pools)),
		zap.Uint64("batch_size", cfg.BatchSize))

	report, err := scanner.Run(ctx)
	if err != nil {
		return err
	}

	summary := model.VolumeSummary{
		FromBlock: report.FromBlock,
		ToBlock:   report.ToBlock,
		SwapCount: report.SwapCount,
		Volume0:   report.Volume0.String(),
		Volume1:   report.Volume1.String(),
		Partial:   report.Partial,
	}
	for _, failed := range report.FailedRanges {
		summary.Failed = append(summary.Failed, fmt.Sprintf("%d-%d", failed.From, failed.To))
	}

	if cfg.Out != "" {
		sink := storage.NewJsonlStorage(cfg.Out)
		if err := sink.PutVolumeSummary(summary); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
	}
	if cfg.PGDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()
		if err := store.InsertVolumeSummary(ctx, summary); err != nil {
			return fmt.Errorf("store summary: %w", err)
		}
	}

	return printJSON(summary)
}
