package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"swapForge/internal/chain"
	"swapForge/internal/dex"
	"swapForge/internal/model"
	"swapForge/internal/pool"
)

func runQuote(cmd *cobra.Command, _ []string) error {
	logger, err := loggerFromFlags(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	key, state, chainClient, err := resolvePool(ctx, cmd, logger)
	if err != nil {
		return err
	}
	defer chainClient.Close()

	amountIn, err := flagBigInt(cmd, "amount-in", true)
	if err != nil {
		return err
	}
	zeroForOne, _ := cmd.Flags().GetBool("zero-for-one")

	quote, err := pool.QuoteExactIn(key, state, amountIn, zeroForOne)
	if err != nil {
		return err
	}

	logger.Info("quote",
		zap.String("pool", key.PoolAddress),
		zap.String("amount_in", amountIn.String()),
		zap.String("amount_out", quote.AmountOut),
		zap.Float64("price_impact_pct", quote.PriceImpactPct))
	return printJSON(quote)
}

func runPrice(cmd *cobra.Command, _ []string) error {
	logger, err := loggerFromFlags(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	key, state, chainClient, err := resolvePool(ctx, cmd, logger)
	if err != nil {
		return err
	}
	defer chainClient.Close()

	result, err := pool.CurrentPrice(key, state)
	if err != nil {
		return err
	}

	swapped, _ := cmd.Flags().GetBool("swapped")
	if swapped && result.Exists && result.Price != 0 {
		inverted := 1 / result.Price
		result.Price = inverted
		result.PriceDisplay = pool.FormatPrice(inverted)
		result.Token0Symbol, result.Token1Symbol = result.Token1Symbol, result.Token0Symbol
	}

	return printJSON(result)
}

// resolvePool reads a pool's identity and live state for the requested
// generation. v1 and v2 pools are addressed directly; v3 pools are identified
// by their key and read through the state view.
func resolvePool(ctx context.Context, cmd *cobra.Command, logger *zap.Logger) (model.PoolKey, model.PoolState, *chain.Client, error) {
	rpcURL, _ := cmd.Flags().GetString("rpc")
	if rpcURL == "" {
		return model.PoolKey{}, model.PoolState{}, nil, fmt.Errorf("rpc url is required")
	}
	versionFlag, _ := cmd.Flags().GetString("version")
	version, err := model.ParseVersion(versionFlag)
	if err != nil {
		return model.PoolKey{}, model.PoolState{}, nil, err
	}

	chainClient, err := chain.NewClient(ctx, rpcURL)
	if err != nil {
		return model.PoolKey{}, model.PoolState{}, nil, fmt.Errorf("connect rpc: %w", err)
	}

	tokenCache := dex.NewTokenMetaCache()

	switch version {
	case model.VersionV1:
		poolAddr, err := flagAddress(cmd, "pool", true)
		if err != nil {
			chainClient.Close()
			return model.PoolKey{}, model.PoolState{}, nil, err
		}
		key, err := dex.FetchV1PairKey(ctx, chainClient, poolAddr, tokenCache, logger)
		if err != nil {
			chainClient.Close()
			return model.PoolKey{}, model.PoolState{}, nil, err
		}
		state, err := dex.ReadV1PoolState(ctx, chainClient, poolAddr)
		if err != nil {
			chainClient.Close()
			return model.PoolKey{}, model.PoolState{}, nil, err
		}
		return key, state, chainClient, nil

	case model.VersionV2:
		poolAddr, err := flagAddress(cmd, "pool", true)
		if err != nil {
			chainClient.Close()
			return model.PoolKey{}, model.PoolState{}, nil, err
		}
		key, err := dex.FetchV2PoolKey(ctx, chainClient, poolAddr, tokenCache, logger)
		if err != nil {
			chainClient.Close()
			return model.PoolKey{}, model.PoolState{}, nil, err
		}
		state, err := dex.ReadV2PoolState(ctx, chainClient, poolAddr)
		if err != nil {
			chainClient.Close()
			return model.PoolKey{}, model.PoolState{}, nil, err
		}
		return key, state, chainClient, nil

	default:
		key, err := v3KeyFromFlags(ctx, cmd, chainClient, tokenCache, logger)
		if err != nil {
			chainClient.Close()
			return model.PoolKey{}, model.PoolState{}, nil, err
		}
		stateView, err := flagAddress(cmd, "v3-state-view", true)
		if err != nil {
			chainClient.Close()
			return model.PoolKey{}, model.PoolState{}, nil, err
		}
		poolID, err := pool.ComputePoolID(key)
		if err != nil {
			chainClient.Close()
			return model.PoolKey{}, model.PoolState{}, nil, err
		}
		state, err := dex.ReadV3PoolState(ctx, chainClient, stateView, poolID)
		if err != nil {
			chainClient.Close()
			return model.PoolKey{}, model.PoolState{}, nil, err
		}
		key.PoolAddress = poolID.Hex()
		return key, state, chainClient, nil
	}
}

// v3KeyFromFlags builds a singleton pool key from flags, fetching token
// metadata and deriving the tick spacing when not given.
func v3KeyFromFlags(ctx context.Context, cmd *cobra.Command, chainClient *chain.Client, tokenCache *dex.TokenMetaCache, logger *zap.Logger) (model.PoolKey, error) {
	token0Addr, err := flagAddress(cmd, "token0", true)
	if err != nil {
		return model.PoolKey{}, err
	}
	token1Addr, err := flagAddress(cmd, "token1", true)
	if err != nil {
		return model.PoolKey{}, err
	}
	fee, _ := cmd.Flags().GetUint32("fee")
	tickSpacing, _ := cmd.Flags().GetInt32("tick-spacing")
	if tickSpacing == 0 {
		tickSpacing, err = pool.TickSpacingForFee(fee)
		if err != nil {
			return model.PoolKey{}, err
		}
	}
	hooks, _ := cmd.Flags().GetString("hooks")
	if hooks == "" {
		hooks = (common.Address{}).Hex()
	}

	token0, token1, err := dex.FetchPairTokens(ctx, chainClient, token0Addr, token1Addr, tokenCache, logger)
	if err != nil {
		return model.PoolKey{}, err
	}
	sorted0, sorted1, err := pool.SortTokens(token0, token1)
	if err != nil {
		return model.PoolKey{}, err
	}

	return model.PoolKey{
		Token0:      sorted0,
		Token1:      sorted1,
		Fee:         fee,
		TickSpacing: tickSpacing,
		Hooks:       hooks,
	}, nil
}

func loggerFromFlags(cmd *cobra.Command) (*zap.Logger, error) {
	level, _ := cmd.Flags().GetString("log-level")
	if level == "" {
		level = "info"
	}
	return newLogger(level)
}

func flagAddress(cmd *cobra.Command, name string, required bool) (common.Address, error) {
	value, _ := cmd.Flags().GetString(name)
	if value == "" {
		if required {
			return common.Address{}, fmt.Errorf("--%s is required", name)
		}
		return common.Address{}, nil
	}
	if !common.IsHexAddress(value) {
		return common.Address{}, fmt.Errorf("--%s: malformed address %q", name, value)
	}
	return common.HexToAddress(value), nil
}

func flagBigInt(cmd *cobra.Command, name string, required bool) (*big.Int, error) {
	value, _ := cmd.Flags().GetString(name)
	if value == "" {
		if required {
			return nil, fmt.Errorf("--%s is required", name)
		}
		return nil, nil
	}
	parsed, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return nil, fmt.Errorf("--%s: not a decimal integer: %q", name, value)
	}
	return parsed, nil
}

func printJSON(value interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}
