package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds configuration values loaded from flags, env, or config file.
// Contract addresses name each generation's entry points on the target chain.
type Config struct {
	RPCURL            string
	V1Router          string
	V2Router          string
	V2PositionManager string
	V3Entrypoint      string
	V3PositionManager string
	V3StateView       string
	SlippagePct       float64
	PriceFeedTTL      time.Duration
	PGDSN             string
	Out               string
	LogLevel          string
}

// ScanConfig holds configuration for the volume scan command.
type ScanConfig struct {
	RPCURL       string
	FromBlock    uint64
	ToBlock      uint64
	Pools        []string
	BatchSize    uint64
	MaxRetries   int
	RetryBackoff time.Duration
	Out          string
	PGDSN        string
	LogLevel     string
}

func newViper(cfgFile string, flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("SWAPFORGE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	return v, nil
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v, err := newViper(cfgFile, flags)
	if err != nil {
		return Config{}, err
	}

	v.SetDefault("slippage-pct", 0.5)
	v.SetDefault("price-feed-ttl", 30*time.Second)
	v.SetDefault("log-level", "info")

	cfg := Config{
		RPCURL:            v.GetString("rpc"),
		V1Router:          v.GetString("v1-router"),
		V2Router:          v.GetString("v2-router"),
		V2PositionManager: v.GetString("v2-position-manager"),
		V3Entrypoint:      v.GetString("v3-entrypoint"),
		V3PositionManager: v.GetString("v3-position-manager"),
		V3StateView:       v.GetString("v3-state-view"),
		SlippagePct:       v.GetFloat64("slippage-pct"),
		PriceFeedTTL:      v.GetDuration("price-feed-ttl"),
		PGDSN:             v.GetString("pg-dsn"),
		Out:               v.GetString("out"),
		LogLevel:          v.GetString("log-level"),
	}

	return cfg, nil
}

// LoadScan merges config file, environment variables, and flags into ScanConfig.
func LoadScan(cfgFile string, flags *pflag.FlagSet) (ScanConfig, error) {
	v, err := newViper(cfgFile, flags)
	if err != nil {
		return ScanConfig{}, err
	}

	v.SetDefault("batch-size", uint64(2000))
	v.SetDefault("max-retries", 5)
	v.SetDefault("retry-backoff", 500*time.Millisecond)
	v.SetDefault("log-level", "info")

	cfg := ScanConfig{
		RPCURL:       v.GetString("rpc"),
		FromBlock:    v.GetUint64("from"),
		ToBlock:      v.GetUint64("to"),
		Pools:        getStringSlice(v, "pool"),
		BatchSize:    v.GetUint64("batch-size"),
		MaxRetries:   v.GetInt("max-retries"),
		RetryBackoff: v.GetDuration("retry-backoff"),
		Out:          v.GetString("out"),
		PGDSN:        v.GetString("pg-dsn"),
		LogLevel:     v.GetString("log-level"),
	}

	return cfg, nil
}

func getStringSlice(v *viper.Viper, key string) []string {
	if !v.IsSet(key) {
		return nil
	}

	val := v.Get(key)
	switch typed := val.(type) {
	case []string:
		return cleanStrings(typed)
	case string:
		return splitAndClean(typed)
	case []interface{}:
		items := make([]string, 0, len(typed))
		for _, item := range typed {
			items = append(items, fmt.Sprintf("%v", item))
		}
		return cleanStrings(items)
	default:
		return nil
	}
}

func splitAndClean(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	return cleanStrings(parts)
}

func cleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
