package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	root := &cobra.Command{
		Use:          "swapforge",
		Short:        "Multi-generation AMM toolkit: quotes, calldata, positions, profit",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	quoteCmd := &cobra.Command{
		Use:   "quote",
		Short: "Simulate an exact-input swap against live pool state",
		RunE:  runQuote,
	}
	addPoolFlags(quoteCmd)
	quoteCmd.Flags().String("amount-in", "", "input amount (raw integer)")
	quoteCmd.Flags().Bool("zero-for-one", true, "swap token0 for token1")
	quoteCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.AddCommand(quoteCmd)

	priceCmd := &cobra.Command{
		Use:   "price",
		Short: "Read a pool's current price",
		RunE:  runPrice,
	}
	addPoolFlags(priceCmd)
	priceCmd.Flags().Bool("swapped", false, "quote token0 in units of token1")
	priceCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.AddCommand(priceCmd)

	buildCmd := &cobra.Command{
		Use:   "build-tx",
		Short: "Build unsigned calldata for a swap or liquidity operation",
		RunE:  runBuildTx,
	}
	buildCmd.Flags().String("op", "", "operation: approve, swap, create, increase, decrease, collect, burn")
	buildCmd.Flags().String("version", "", "pool generation (v1, v2, v3)")
	buildCmd.Flags().String("target", "", "router, position manager, or entrypoint address")
	buildCmd.Flags().String("token0", "", "token0 / currency0 address")
	buildCmd.Flags().String("token1", "", "token1 / currency1 address")
	buildCmd.Flags().Uint32("fee", 0, "fee in hundredths of a basis point")
	buildCmd.Flags().Int32("tick-spacing", 0, "tick spacing (0 derives from fee)")
	buildCmd.Flags().String("hooks", "", "hooks contract address (v3)")
	buildCmd.Flags().String("amount-in", "", "swap input amount (raw integer)")
	buildCmd.Flags().String("amount-out-min", "", "swap minimum output (raw integer)")
	buildCmd.Flags().Bool("zero-for-one", true, "swap token0 for token1")
	buildCmd.Flags().String("recipient", "", "recipient address")
	buildCmd.Flags().String("token-id", "", "position NFT token id")
	buildCmd.Flags().String("liquidity", "", "liquidity amount (raw integer)")
	buildCmd.Flags().String("amount0-desired", "", "desired token0 amount (raw integer)")
	buildCmd.Flags().String("amount1-desired", "", "desired token1 amount (raw integer)")
	buildCmd.Flags().String("liquidity-display", "", "display-formatted position liquidity")
	buildCmd.Flags().Float64("liquidity-pct", 100, "percentage of liquidity to remove")
	buildCmd.Flags().Float64("slippage-pct", 0.5, "slippage tolerance percentage")
	buildCmd.Flags().Int32("tick-lower", 0, "position lower tick")
	buildCmd.Flags().Int32("tick-upper", 0, "position upper tick")
	buildCmd.Flags().String("value", "", "native value to attach (wei)")
	buildCmd.Flags().String("token", "", "token to approve")
	buildCmd.Flags().String("spender", "", "spender to approve")
	buildCmd.Flags().String("amount", "", "approval amount (raw integer)")
	buildCmd.Flags().String("owner", "", "owner address for the allowance check")
	buildCmd.Flags().String("rpc", "", "optional RPC URL for the allowance check")
	buildCmd.Flags().String("hook-data", "", "hook data (0x-prefixed hex)")
	buildCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.AddCommand(buildCmd)

	positionsCmd := &cobra.Command{
		Use:   "positions",
		Short: "Aggregate a wallet's positions across all generations",
		RunE:  runPositions,
	}
	positionsCmd.Flags().String("rpc", "", "RPC URL")
	positionsCmd.Flags().String("wallet", "", "wallet address")
	positionsCmd.Flags().StringSlice("v1-pair", nil, "constant-product pair addresses (comma-separated)")
	positionsCmd.Flags().String("v2-factory", "", "concentrated-liquidity factory address")
	positionsCmd.Flags().String("v2-position-manager", "", "NFT position manager address")
	positionsCmd.Flags().String("v3-position-manager", "", "singleton position manager address")
	positionsCmd.Flags().String("v3-state-view", "", "singleton state view address")
	positionsCmd.Flags().StringSlice("price", nil, "token prices as address=usd pairs")
	positionsCmd.Flags().Duration("price-feed-ttl", 30*time.Second, "price cache TTL")
	positionsCmd.Flags().String("out", "", "optional positions JSONL path")
	positionsCmd.Flags().String("pg-dsn", "", "optional Postgres DSN for the audit sink")
	positionsCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.AddCommand(positionsCmd)

	profitCmd := &cobra.Command{
		Use:   "profit",
		Short: "Evaluate a trade's USD profitability from worst-case output",
		RunE:  runProfit,
	}
	profitCmd.Flags().String("amount-in", "", "input amount (raw integer)")
	profitCmd.Flags().String("expected-out", "", "expected output (raw integer)")
	profitCmd.Flags().String("min-out", "", "worst-case output (raw integer)")
	profitCmd.Flags().Uint8("token-in-decimals", 18, "input token decimals")
	profitCmd.Flags().Uint8("token-out-decimals", 18, "output token decimals")
	profitCmd.Flags().Float64("token-in-price", 0, "input token USD price")
	profitCmd.Flags().Float64("token-out-price", 0, "output token USD price")
	profitCmd.Flags().String("gas-cost-wei", "0", "gas cost in wei")
	profitCmd.Flags().Float64("native-price", 0, "native token USD price")
	profitCmd.Flags().Float64("fee-pct", 0, "protocol fee percentage")
	profitCmd.Flags().String("label", "", "label for the audit sink row")
	profitCmd.Flags().String("out", "", "optional analysis JSONL path")
	profitCmd.Flags().String("pg-dsn", "", "optional Postgres DSN for the audit sink")
	profitCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.AddCommand(profitCmd)

	breakevenCmd := &cobra.Command{
		Use:   "breakeven",
		Short: "Solve the minimum trade size that clears costs and target profit",
		RunE:  runBreakeven,
	}
	breakevenCmd.Flags().Float64("gas-cost-usd", 0, "gas cost in USD")
	breakevenCmd.Flags().Float64("fee-pct", 0, "protocol fee percentage")
	breakevenCmd.Flags().Float64("min-profit-usd", 0, "required profit in USD")
	breakevenCmd.Flags().Float64("spread-pct", 0, "price spread percentage")
	root.AddCommand(breakevenCmd)

	scanCmd := &cobra.Command{
		Use:   "scan-volume",
		Short: "Accumulate historical swap volume for a set of pools",
		RunE:  runScanVolume,
	}
	scanCmd.Flags().String("rpc", "", "RPC URL")
	scanCmd.Flags().Uint64("from", 0, "start block (inclusive)")
	scanCmd.Flags().Uint64("to", 0, "end block (inclusive), 0 means latest")
	scanCmd.Flags().StringSlice("pool", nil, "pool addresses (comma-separated)")
	scanCmd.Flags().Uint64("batch-size", 2000, "blocks per batch")
	scanCmd.Flags().Int("max-retries", 5, "maximum retry attempts")
	scanCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	scanCmd.Flags().String("out", "", "optional summary JSONL path")
	scanCmd.Flags().String("pg-dsn", "", "optional Postgres DSN for the audit sink")
	scanCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.AddCommand(scanCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

func addPoolFlags(cmd *cobra.Command) {
	cmd.Flags().String("rpc", "", "RPC URL")
	cmd.Flags().String("version", "", "pool generation (v1, v2, v3)")
	cmd.Flags().String("pool", "", "pair or pool address (v1/v2)")
	cmd.Flags().String("token0", "", "currency0 address (v3)")
	cmd.Flags().String("token1", "", "currency1 address (v3)")
	cmd.Flags().Uint32("fee", 0, "fee in hundredths of a basis point (v3)")
	cmd.Flags().Int32("tick-spacing", 0, "tick spacing, 0 derives from fee (v3)")
	cmd.Flags().String("hooks", "", "hooks contract address (v3)")
	cmd.Flags().String("v3-state-view", "", "singleton state view address (v3)")
}
