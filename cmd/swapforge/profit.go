package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"swapForge/internal/model"
	"swapForge/internal/profit"
	"swapForge/internal/storage"
	"swapForge/internal/storage/postgres"
)

func runProfit(cmd *cobra.Command, _ []string) error {
	logger, err := loggerFromFlags(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	amountIn, err := flagBigInt(cmd, "amount-in", true)
	if err != nil {
		return err
	}
	expectedOut, err := flagBigInt(cmd, "expected-out", true)
	if err != nil {
		return err
	}
	minOut, err := flagBigInt(cmd, "min-out", true)
	if err != nil {
		return err
	}
	gasCostWei, err := flagBigInt(cmd, "gas-cost-wei", false)
	if err != nil {
		return err
	}

	tokenInDecimals, _ := cmd.Flags().GetUint8("token-in-decimals")
	tokenOutDecimals, _ := cmd.Flags().GetUint8("token-out-decimals")
	tokenInPrice, _ := cmd.Flags().GetFloat64("token-in-price")
	tokenOutPrice, _ := cmd.Flags().GetFloat64("token-out-price")
	nativePrice, _ := cmd.Flags().GetFloat64("native-price")
	feePct, _ := cmd.Flags().GetFloat64("fee-pct")

	analysis, err := profit.TradeProfit(profit.TradeParams{
		TokenIn:          model.Token{Decimals: tokenInDecimals},
		TokenOut:         model.Token{Decimals: tokenOutDecimals},
		TokenInPriceUSD:  tokenInPrice,
		TokenOutPriceUSD: tokenOutPrice,
		AmountIn:         amountIn,
		ExpectedOut:      expectedOut,
		MinOut:           minOut,
		GasCostWei:       gasCostWei,
		NativePriceUSD:   nativePrice,
		FeePct:           feePct,
	})
	if err != nil {
		return err
	}

	logger.Info("profit evaluated",
		zap.String("net_profit_usd", analysis.NetProfitUSD.StringFixed(2)),
		zap.Bool("is_profitable", analysis.IsProfitable))

	if out, _ := cmd.Flags().GetString("out"); out != "" {
		sink := storage.NewJsonlStorage(out)
		if err := sink.PutProfitAnalysis(analysis); err != nil {
			return fmt.Errorf("write analysis: %w", err)
		}
	}
	if dsn, _ := cmd.Flags().GetString("pg-dsn"); dsn != "" {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		store, err := postgres.NewStore(ctx, dsn)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()
		label, _ := cmd.Flags().GetString("label")
		if err := store.InsertProfitAnalysis(ctx, label, analysis); err != nil {
			return fmt.Errorf("store analysis: %w", err)
		}
	}

	return printJSON(analysis)
}

func runBreakeven(cmd *cobra.Command, _ []string) error {
	gasCostUSD, _ := cmd.Flags().GetFloat64("gas-cost-usd")
	feePct, _ := cmd.Flags().GetFloat64("fee-pct")
	minProfitUSD, _ := cmd.Flags().GetFloat64("min-profit-usd")
	spreadPct, _ := cmd.Flags().GetFloat64("spread-pct")

	amount, ok := profit.MinProfitableAmount(gasCostUSD, feePct, minProfitUSD, spreadPct)
	if !ok {
		return fmt.Errorf("spread %.4f%% does not clear the %.4f%% fee; no trade size is profitable", spreadPct, feePct)
	}

	return printJSON(struct {
		MinAmountUSD string `json:"min_amount_usd"`
	}{MinAmountUSD: amount.StringFixed(2)})
}
