package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"swapForge/internal/chain"
	"swapForge/internal/dex"
	"swapForge/internal/position"
	"swapForge/internal/pricefeed"
	"swapForge/internal/storage"
	"swapForge/internal/storage/postgres"
)

func runPositions(cmd *cobra.Command, _ []string) error {
	logger, err := loggerFromFlags(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	rpcURL, _ := cmd.Flags().GetString("rpc")
	if rpcURL == "" {
		return fmt.Errorf("rpc url is required")
	}
	wallet, _ := cmd.Flags().GetString("wallet")
	if wallet == "" {
		return fmt.Errorf("wallet address is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient, err := chain.NewClient(ctx, rpcURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	readerCfg, err := positionReaderConfig(cmd)
	if err != nil {
		return err
	}
	reader := dex.NewPositionReader(readerCfg, chainClient, dex.NewTokenMetaCache(), logger)

	prices, err := parsePriceFlags(cmd)
	if err != nil {
		return err
	}
	ttl, _ := cmd.Flags().GetDuration("price-feed-ttl")
	pricer := pricefeed.NewCache(pricefeed.NewStaticSource(prices), ttl, logger)

	aggregator := position.NewAggregator(reader, pricer, logger)
	positions, err := aggregator.Aggregate(ctx, wallet)
	if err != nil {
		return err
	}

	logger.Info("positions aggregated", zap.String("wallet", wallet), zap.Int("count", len(positions)))

	if out, _ := cmd.Flags().GetString("out"); out != "" {
		sink := storage.NewJsonlStorage(out)
		if err := sink.PutPositions(positions); err != nil {
			return fmt.Errorf("write positions: %w", err)
		}
	}
	if dsn, _ := cmd.Flags().GetString("pg-dsn"); dsn != "" {
		store, err := postgres.NewStore(ctx, dsn)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()
		if err := store.UpsertPositions(ctx, wallet, positions); err != nil {
			return fmt.Errorf("store positions: %w", err)
		}
	}

	return printJSON(positions)
}

func positionReaderConfig(cmd *cobra.Command) (dex.PositionReaderConfig, error) {
	cfg := dex.PositionReaderConfig{}

	pairs, _ := cmd.Flags().GetStringSlice("v1-pair")
	for _, pair := range pairs {
		if !common.IsHexAddress(pair) {
			return dex.PositionReaderConfig{}, fmt.Errorf("--v1-pair: malformed address %q", pair)
		}
		cfg.V1Pairs = append(cfg.V1Pairs, common.HexToAddress(pair))
	}

	var err error
	if cfg.V2Factory, err = flagAddress(cmd, "v2-factory", false); err != nil {
		return dex.PositionReaderConfig{}, err
	}
	if cfg.V2PositionManager, err = flagAddress(cmd, "v2-position-manager", false); err != nil {
		return dex.PositionReaderConfig{}, err
	}
	if cfg.V3PositionManager, err = flagAddress(cmd, "v3-position-manager", false); err != nil {
		return dex.PositionReaderConfig{}, err
	}
	if cfg.V3StateView, err = flagAddress(cmd, "v3-state-view", false); err != nil {
		return dex.PositionReaderConfig{}, err
	}
	return cfg, nil
}

func parsePriceFlags(cmd *cobra.Command) (map[string]float64, error) {
	entries, _ := cmd.Flags().GetStringSlice("price")
	prices := make(map[string]float64, len(entries))
	for _, entry := range entries {
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("--price: expected token=usd, got %q", entry)
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("--price %q: %w", entry, err)
		}
		prices[strings.TrimSpace(parts[0])] = value
	}
	return prices, nil
}
