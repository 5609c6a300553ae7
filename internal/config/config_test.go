package config

import (
	"os"
	"testing"
	"time"

	"github.com/copytrade/router-mirror/internal/domain"
	"github.com/copytrade/router-mirror/internal/xerrors"
)

// clearEnv unsets (not merely blanks) every variable Load reads, so
// getEnv's os.LookupEnv sees them as absent and falls back to defaults
// rather than an explicit empty string.
func clearEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"RPC_URL", "MAX_CONCURRENT_RPC", "POLL_INTERVAL", "MAX_RETRIES",
		"LISTEN_ADDRESS", "SIGNING_KEY_SOURCE", "COPY_AMOUNT_IN",
		"COPY_AMOUNT_OUT_MIN", "LOG_LEVEL", "ABI_CACHE_SIZE",
		"BACKTEST_DB_PATH", "BACKTEST_PARQUET_PATH",
		"ROUTER_ADDRESS_ETH_MAINNET",
	}
	for _, key := range keys {
		old, had := os.LookupEnv(key)
		os.Unsetenv(key)
		if had {
			t.Cleanup(func() { os.Setenv(key, old) })
		}
	}
}

func TestLoadRequiresRPCURL(t *testing.T) {
	clearEnv(t)
	t.Setenv("SIGNING_KEY_SOURCE", "hex:abc")
	t.Setenv("ROUTER_ADDRESS_ETH_MAINNET", "0x1111111111111111111111111111111111111111")

	_, err := Load()
	if err == nil {
		t.Fatal("expected ConfigError for missing RPC_URL")
	}
	if kind, _ := xerrors.KindOf(err); kind != xerrors.KindConfigError {
		t.Errorf("Kind = %s, want ConfigError", kind)
	}
}

func TestLoadRequiresSigningKeySource(t *testing.T) {
	clearEnv(t)
	t.Setenv("RPC_URL", "https://example.invalid")
	t.Setenv("ROUTER_ADDRESS_ETH_MAINNET", "0x1111111111111111111111111111111111111111")

	if _, err := Load(); err == nil {
		t.Fatal("expected ConfigError for missing SIGNING_KEY_SOURCE")
	}
}

func TestLoadRequiresAtLeastOneRouterAddress(t *testing.T) {
	clearEnv(t)
	t.Setenv("RPC_URL", "https://example.invalid")
	t.Setenv("SIGNING_KEY_SOURCE", "hex:abc")

	if _, err := Load(); err == nil {
		t.Fatal("expected ConfigError for no ROUTER_ADDRESS_<CHAIN> vars")
	}
}

func TestLoadAppliesDefaultsAndParsesRouterAddresses(t *testing.T) {
	clearEnv(t)
	t.Setenv("RPC_URL", "https://example.invalid")
	t.Setenv("SIGNING_KEY_SOURCE", "hex:abc")
	t.Setenv("ROUTER_ADDRESS_ETH_MAINNET", "0x1111111111111111111111111111111111111111")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.MaxConcurrentRPC != 10 {
		t.Errorf("MaxConcurrentRPC = %d, want default 10", cfg.MaxConcurrentRPC)
	}
	if cfg.PollInterval != 3*time.Second {
		t.Errorf("PollInterval = %v, want default 3s", cfg.PollInterval)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want default info", cfg.LogLevel)
	}
	addr, ok := cfg.RouterAddresses[domain.ChainEthMainnet]
	if !ok {
		t.Fatal("RouterAddresses missing eth-mainnet entry")
	}
	if addr != "0x1111111111111111111111111111111111111111" {
		t.Errorf("RouterAddresses[eth-mainnet] = %q", addr)
	}
}

func TestLoadOverridesDefaultsFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("RPC_URL", "https://example.invalid")
	t.Setenv("SIGNING_KEY_SOURCE", "hex:abc")
	t.Setenv("ROUTER_ADDRESS_ETH_MAINNET", "0x1111111111111111111111111111111111111111")
	t.Setenv("MAX_CONCURRENT_RPC", "16")
	t.Setenv("POLL_INTERVAL", "500ms")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MaxConcurrentRPC != 16 {
		t.Errorf("MaxConcurrentRPC = %d, want 16", cfg.MaxConcurrentRPC)
	}
	if cfg.PollInterval != 500*time.Millisecond {
		t.Errorf("PollInterval = %v, want 500ms", cfg.PollInterval)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
}

func TestGetEnvIntFallsBackOnGarbage(t *testing.T) {
	t.Setenv("SOME_INT_KEY", "not-a-number")
	if got := getEnvInt("SOME_INT_KEY", 42); got != 42 {
		t.Errorf("getEnvInt = %d, want fallback 42", got)
	}
}

func TestGetEnvDurationFallsBackOnGarbage(t *testing.T) {
	t.Setenv("SOME_DURATION_KEY", "not-a-duration")
	if got := getEnvDuration("SOME_DURATION_KEY", time.Second); got != time.Second {
		t.Errorf("getEnvDuration = %v, want fallback 1s", got)
	}
}
