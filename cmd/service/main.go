package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"net/http"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/copytrade/router-mirror/internal/abiregistry"
	"github.com/copytrade/router-mirror/internal/config"
	"github.com/copytrade/router-mirror/internal/dextable"
	"github.com/copytrade/router-mirror/internal/dispatcher"
	"github.com/copytrade/router-mirror/internal/domain"
	"github.com/copytrade/router-mirror/internal/keystore"
	"github.com/copytrade/router-mirror/internal/logging"
	"github.com/copytrade/router-mirror/internal/planner"
	"github.com/copytrade/router-mirror/internal/rpcpool"
	"github.com/copytrade/router-mirror/internal/statecache"
	"github.com/copytrade/router-mirror/internal/submitter"
	"github.com/copytrade/router-mirror/internal/trade"
	"github.com/copytrade/router-mirror/internal/watcher"
	"github.com/copytrade/router-mirror/internal/xerrors"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	logger := logging.Init(cfg.LogLevel)

	ctx := context.Background()
	pool, err := rpcpool.Dial(ctx, cfg.RPCURL, cfg.MaxConcurrentRPC)
	if err != nil {
		logging.LogError(logger, "startup", err)
		os.Exit(1)
	}
	defer pool.Close()

	chainID, err := pool.ChainID(ctx)
	if err != nil {
		logging.LogError(logger, "startup", err)
		os.Exit(1)
	}

	keys, err := loadKeyStore(cfg.SigningKeySource, chainID)
	if err != nil {
		logging.LogError(logger, "startup", err)
		os.Exit(1)
	}

	routerReg, err := abiregistry.NewRouterRegistry(cfg.ABICacheSize)
	if err != nil {
		logging.LogError(logger, "startup", err)
		os.Exit(1)
	}
	erc20Reg, err := abiregistry.NewERC20Registry(cfg.ABICacheSize)
	if err != nil {
		logging.LogError(logger, "startup", err)
		os.Exit(1)
	}

	var rows []dextable.Row
	for chain, addr := range cfg.RouterAddresses {
		rows = append(rows, dextable.Row{Chain: chain, Address: common.HexToAddress(addr), Kind: domain.PancakeSwap})
	}
	table := dextable.New(rows...)
	classifier, err := statecache.NewClassifier(table, 256)
	if err != nil {
		logging.LogError(logger, "startup", err)
		os.Exit(1)
	}

	w := watcher.New(pool, watcher.WithPollInterval(cfg.PollInterval), watcher.WithMaxRetries(cfg.MaxRetries))
	extractor := trade.New(routerReg, erc20Reg)
	pl := planner.New(routerReg)
	sub := submitter.New(pool, w, keys, chainID)

	disp := dispatcher.New(w, classifier, extractor, pl, sub, logger)

	amountIn, err := parseU256(cfg.CopyAmountIn)
	if err != nil {
		logging.LogError(logger, "startup", xerrors.ConfigError("COPY_AMOUNT_IN", err))
		os.Exit(1)
	}
	amountOutMin, err := parseU256(cfg.CopyAmountOutMinimum)
	if err != nil {
		logging.LogError(logger, "startup", xerrors.ConfigError("COPY_AMOUNT_OUT_MIN", err))
		os.Exit(1)
	}
	policy := dispatcher.CopyPolicy{
		AmountIn:         amountIn,
		AmountOutMinimum: amountOutMin,
		Recipient:        keys.Address(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/eth-mainnet-swaps", swapsHandler(disp, domain.ChainEthMainnet, policy, logger))
	mux.HandleFunc("/eth-goerli-swaps", swapsHandler(disp, domain.ChainEthGoerli, policy, logger))

	logger.Info("listening", "address", cfg.ListenAddress)
	if err := http.ListenAndServe(cfg.ListenAddress, mux); err != nil {
		logging.LogError(logger, "http", err)
		os.Exit(1)
	}
}

func swapsHandler(disp *dispatcher.Dispatcher, chain domain.Chain, policy dispatcher.CopyPolicy, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		var hexHashes []string
		if err := json.Unmarshal(body, &hexHashes); err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		hashes := make([]common.Hash, 0, len(hexHashes))
		for _, h := range hexHashes {
			hashes = append(hashes, common.HexToHash(h))
		}

		// context.Background(), not r.Context(): Dispatch's goroutines outlive
		// this handler returning, and net/http cancels the request context the
		// instant ServeHTTP returns.
		disp.Dispatch(context.Background(), chain, hashes, policy)
		w.WriteHeader(http.StatusOK)
	}
}

func loadKeyStore(source string, chainID *big.Int) (*keystore.KeyStore, error) {
	switch {
	case strings.HasPrefix(source, "hex:"):
		return keystore.FromHex(strings.TrimPrefix(source, "hex:"), chainID)
	case strings.HasPrefix(source, "file:"):
		rest := strings.TrimPrefix(source, "file:")
		parts := strings.SplitN(rest, ":", 2)
		if len(parts) != 2 {
			return nil, xerrors.ConfigError("SIGNING_KEY_SOURCE file: form requires file:<path>:<passphrase>", nil)
		}
		return keystore.FromFile(parts[0], parts[1], chainID)
	default:
		return nil, xerrors.ConfigError("SIGNING_KEY_SOURCE must start with hex: or file:", nil)
	}
}

func parseU256(decimal string) (*domain.U256, error) {
	n, ok := new(big.Int).SetString(decimal, 10)
	if !ok {
		return nil, fmt.Errorf("not a base-10 integer: %q", decimal)
	}
	return domain.NewU256FromBig(n)
}
