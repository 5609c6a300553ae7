// Package config loads process configuration from the environment (§4.10),
// in the style of the pack's gateway config loader
// (kshinn-umbra-gateway/gateway/config/config.go): a .env file is loaded if
// present, then typed getEnv/getEnvInt/getEnvDuration helpers populate a
// flat Config struct with documented defaults, failing fast on anything the
// service cannot run without.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/copytrade/router-mirror/internal/domain"
	"github.com/copytrade/router-mirror/internal/xerrors"
)

// Config holds all service configuration (§6).
type Config struct {
	// RPCURL is the node endpoint the RPC Pool dials.
	RPCURL string

	// MaxConcurrentRPC bounds the RPC Pool's semaphore capacity.
	MaxConcurrentRPC int

	// PollInterval is the Transaction Watcher's poll period.
	PollInterval time.Duration

	// MaxRetries bounds the Transaction Watcher's poll attempts.
	MaxRetries int

	// ListenAddress is the HTTP ingestion endpoint's bind address.
	ListenAddress string

	// SigningKeySource is "hex:<key>" or "file:<path>:<passphrase>" (§6).
	SigningKeySource string

	// RouterAddresses maps chain -> router contract address, one entry per
	// ROUTER_ADDRESS_<CHAIN> env var found.
	RouterAddresses map[domain.Chain]string

	// CopyAmountIn is the default amount_in the Planner forwards, denominated
	// in the trade's input token's smallest unit.
	CopyAmountIn string

	// CopyAmountOutMinimum is the default slippage floor the Planner enforces
	// on the final hop.
	CopyAmountOutMinimum string

	// LogLevel selects the slog level ("debug", "info", "warn", "error").
	LogLevel string

	// ABICacheSize bounds the ABI Registry's parsed-document LRU cache.
	ABICacheSize int

	// BacktestDBPath is the SQLite fixture store path for Historical Replay.
	BacktestDBPath string

	// BacktestParquetPath is an optional Parquet export path for replay runs.
	BacktestParquetPath string
}

// Load reads Config from the environment, loading a .env file first if one
// exists in the working directory (dev convenience; no-op in production).
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		RPCURL:                getEnv("RPC_URL", ""),
		MaxConcurrentRPC:      getEnvInt("MAX_CONCURRENT_RPC", 10),
		PollInterval:          getEnvDuration("POLL_INTERVAL", 3*time.Second),
		MaxRetries:            getEnvInt("MAX_RETRIES", 5),
		ListenAddress:         getEnv("LISTEN_ADDRESS", ":8080"),
		SigningKeySource:      getEnv("SIGNING_KEY_SOURCE", ""),
		RouterAddresses:       routerAddressesFromEnv(),
		CopyAmountIn:          getEnv("COPY_AMOUNT_IN", ""),
		CopyAmountOutMinimum:  getEnv("COPY_AMOUNT_OUT_MIN", "0"),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		ABICacheSize:          getEnvInt("ABI_CACHE_SIZE", 64),
		BacktestDBPath:        getEnv("BACKTEST_DB_PATH", ""),
		BacktestParquetPath:   getEnv("BACKTEST_PARQUET_PATH", ""),
	}

	if cfg.RPCURL == "" {
		return nil, xerrors.ConfigError("RPC_URL is required", nil)
	}
	if cfg.SigningKeySource == "" {
		return nil, xerrors.ConfigError("SIGNING_KEY_SOURCE is required", nil)
	}
	if len(cfg.RouterAddresses) == 0 {
		return nil, xerrors.ConfigError("no ROUTER_ADDRESS_<CHAIN> variables set", nil)
	}

	return cfg, nil
}

// routerAddressesFromEnv scans the process environment for
// ROUTER_ADDRESS_<CHAIN> variables, e.g. ROUTER_ADDRESS_ETH_MAINNET.
func routerAddressesFromEnv() map[domain.Chain]string {
	out := make(map[domain.Chain]string)
	const prefix = "ROUTER_ADDRESS_"
	for _, kv := range os.Environ() {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) != 2 || !strings.HasPrefix(parts[0], prefix) {
			continue
		}
		chain := strings.ToLower(strings.ReplaceAll(strings.TrimPrefix(parts[0], prefix), "_", "-"))
		out[domain.Chain(chain)] = parts[1]
	}
	return out
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := getEnv(key, "")
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := getEnv(key, "")
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
