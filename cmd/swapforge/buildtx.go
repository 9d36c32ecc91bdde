package main

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"swapForge/internal/chain"
	"swapForge/internal/config"
	"swapForge/internal/dex"
	"swapForge/internal/model"
	"swapForge/internal/pool"
	"swapForge/internal/txbuild"
)

func runBuildTx(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	op, _ := cmd.Flags().GetString("op")
	if target, _ := cmd.Flags().GetString("target"); target == "" {
		if fallback := defaultTarget(cfg, cmd, op); fallback != "" {
			_ = cmd.Flags().Set("target", fallback)
		}
	}
	builder := txbuild.NewBuilder()

	var tx model.Transaction
	switch op {
	case "approve":
		token, _ := cmd.Flags().GetString("token")
		spender, _ := cmd.Flags().GetString("spender")
		amount, err := flagBigInt(cmd, "amount", true)
		if err != nil {
			return err
		}
		tx, err = builder.BuildApprove(token, spender, amount)
		if err != nil {
			return err
		}
		if owner, _ := cmd.Flags().GetString("owner"); owner != "" && cfg.RPCURL != "" {
			if !common.IsHexAddress(owner) {
				return fmt.Errorf("--owner: malformed address %q", owner)
			}
			chainClient, err := chain.NewClient(context.Background(), cfg.RPCURL)
			if err != nil {
				return fmt.Errorf("connect rpc: %w", err)
			}
			allowance := dex.FetchAllowance(context.Background(), chainClient,
				common.HexToAddress(token), common.HexToAddress(owner), common.HexToAddress(spender), logger)
			chainClient.Close()
			if allowance.Cmp(amount) >= 0 {
				logger.Info("existing allowance already covers amount",
					zap.String("allowance", allowance.String()))
			} else {
				logger.Info("current allowance",
					zap.String("allowance", allowance.String()),
					zap.String("requested", amount.String()))
			}
		}

	case "swap":
		req, err := swapRequestFromFlags(cmd)
		if err != nil {
			return err
		}
		tx, err = builder.BuildSwap(req)
		if err != nil {
			return err
		}

	case "create", "increase", "decrease", "collect", "burn":
		req, err := liquidityRequestFromFlags(cmd)
		if err != nil {
			return err
		}
		switch op {
		case "create":
			tx, err = builder.BuildCreatePosition(req)
		case "increase":
			tx, err = builder.BuildIncreaseLiquidity(req)
		case "decrease":
			tx, err = builder.BuildDecreaseLiquidity(req)
		case "collect":
			tx, err = builder.BuildCollectFees(req)
		default:
			tx, err = builder.BuildBurnPosition(req)
		}
		if err != nil {
			return err
		}

	default:
		return fmt.Errorf("unsupported op %q", op)
	}

	logger.Info("transaction built", zap.String("op", op), zap.String("to", tx.To))
	return printJSON(tx)
}

func swapRequestFromFlags(cmd *cobra.Command) (txbuild.SwapRequest, error) {
	version, key, err := versionAndKeyFromFlags(cmd)
	if err != nil {
		return txbuild.SwapRequest{}, err
	}
	amountIn, err := flagBigInt(cmd, "amount-in", true)
	if err != nil {
		return txbuild.SwapRequest{}, err
	}
	amountOutMin, err := flagBigInt(cmd, "amount-out-min", false)
	if err != nil {
		return txbuild.SwapRequest{}, err
	}
	value, err := flagBigInt(cmd, "value", false)
	if err != nil {
		return txbuild.SwapRequest{}, err
	}
	hookData, err := flagHexData(cmd, "hook-data")
	if err != nil {
		return txbuild.SwapRequest{}, err
	}

	target, _ := cmd.Flags().GetString("target")
	recipient, _ := cmd.Flags().GetString("recipient")
	zeroForOne, _ := cmd.Flags().GetBool("zero-for-one")

	return txbuild.SwapRequest{
		Version:      version,
		Target:       target,
		Key:          key,
		AmountIn:     amountIn,
		AmountOutMin: amountOutMin,
		Recipient:    recipient,
		ZeroForOne:   zeroForOne,
		HookData:     hookData,
		Value:        value,
	}, nil
}

func liquidityRequestFromFlags(cmd *cobra.Command) (txbuild.LiquidityRequest, error) {
	version, key, err := versionAndKeyFromFlags(cmd)
	if err != nil {
		return txbuild.LiquidityRequest{}, err
	}
	tokenID, err := flagBigInt(cmd, "token-id", false)
	if err != nil {
		return txbuild.LiquidityRequest{}, err
	}
	liquidity, err := flagBigInt(cmd, "liquidity", false)
	if err != nil {
		return txbuild.LiquidityRequest{}, err
	}
	amount0Desired, err := flagBigInt(cmd, "amount0-desired", false)
	if err != nil {
		return txbuild.LiquidityRequest{}, err
	}
	amount1Desired, err := flagBigInt(cmd, "amount1-desired", false)
	if err != nil {
		return txbuild.LiquidityRequest{}, err
	}
	value, err := flagBigInt(cmd, "value", false)
	if err != nil {
		return txbuild.LiquidityRequest{}, err
	}
	hookData, err := flagHexData(cmd, "hook-data")
	if err != nil {
		return txbuild.LiquidityRequest{}, err
	}

	target, _ := cmd.Flags().GetString("target")
	recipient, _ := cmd.Flags().GetString("recipient")
	liquidityDisplay, _ := cmd.Flags().GetString("liquidity-display")
	liquidityPct, _ := cmd.Flags().GetFloat64("liquidity-pct")
	slippagePct, _ := cmd.Flags().GetFloat64("slippage-pct")
	tickLower, _ := cmd.Flags().GetInt32("tick-lower")
	tickUpper, _ := cmd.Flags().GetInt32("tick-upper")

	return txbuild.LiquidityRequest{
		Version:             version,
		Manager:             target,
		Key:                 key,
		TokenID:             tokenID,
		Recipient:           recipient,
		Liquidity:           liquidity,
		Amount0Desired:      amount0Desired,
		Amount1Desired:      amount1Desired,
		LiquidityDisplay:    liquidityDisplay,
		LiquidityPercentage: liquidityPct,
		SlippagePct:         slippagePct,
		TickLower:           tickLower,
		TickUpper:           tickUpper,
		HookData:            hookData,
		Value:               value,
	}, nil
}

// versionAndKeyFromFlags assembles the pool key from flags alone; building
// calldata never touches the chain.
func versionAndKeyFromFlags(cmd *cobra.Command) (model.Version, model.PoolKey, error) {
	versionFlag, _ := cmd.Flags().GetString("version")
	version, err := model.ParseVersion(versionFlag)
	if err != nil {
		return "", model.PoolKey{}, err
	}

	token0, _ := cmd.Flags().GetString("token0")
	token1, _ := cmd.Flags().GetString("token1")
	fee, _ := cmd.Flags().GetUint32("fee")
	tickSpacing, _ := cmd.Flags().GetInt32("tick-spacing")
	hooks, _ := cmd.Flags().GetString("hooks")

	if version == model.VersionV3 && tickSpacing == 0 && fee != 0 {
		tickSpacing, err = pool.TickSpacingForFee(fee)
		if err != nil {
			return "", model.PoolKey{}, err
		}
	}

	key := model.PoolKey{
		Token0:      model.Token{Address: token0},
		Token1:      model.Token{Address: token1},
		Fee:         fee,
		TickSpacing: tickSpacing,
		Hooks:       hooks,
	}
	return version, key, nil
}

// defaultTarget picks the configured contract for the op when no explicit
// target was given. Swaps go through routers; position lifecycle ops go
// through the generation's position manager.
func defaultTarget(cfg config.Config, cmd *cobra.Command, op string) string {
	versionFlag, _ := cmd.Flags().GetString("version")
	version, err := model.ParseVersion(versionFlag)
	if err != nil {
		return ""
	}
	switch version {
	case model.VersionV1:
		return cfg.V1Router
	case model.VersionV2:
		if op == "swap" {
			return cfg.V2Router
		}
		return cfg.V2PositionManager
	default:
		if op == "swap" {
			return cfg.V3Entrypoint
		}
		return cfg.V3PositionManager
	}
}

func flagHexData(cmd *cobra.Command, name string) ([]byte, error) {
	value, _ := cmd.Flags().GetString(name)
	if value == "" {
		return nil, nil
	}
	data, err := hexutil.Decode(value)
	if err != nil {
		return nil, fmt.Errorf("--%s: %w", name, err)
	}
	return data, nil
}
