// Package watcher implements the Transaction Watcher (§4.5): given a hash,
// it polls the chain until the transaction is mined or declared absent,
// producing a ReadyTransaction once status is Successful. Grounded on
// original_source/src/eth_sdk/tx.rs (TxStatus) and utils.rs
// (wait_for_confirmations_simple), reimplemented against the teacher's
// ethclient/rpc wrapper shape (internal/eth/client.go).
package watcher

import (
	"context"
	"errors"
	"time"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/copytrade/router-mirror/internal/domain"
	"github.com/copytrade/router-mirror/internal/rpcpool"
	"github.com/copytrade/router-mirror/internal/xerrors"
)

// Watcher polls a single node connection for transaction status.
type Watcher struct {
	pool         *rpcpool.Pool
	pollInterval time.Duration
	maxRetries   int
}

// Option configures a Watcher away from its §6 defaults.
type Option func(*Watcher)

// WithPollInterval overrides the default 3s poll interval.
func WithPollInterval(d time.Duration) Option {
	return func(w *Watcher) { w.pollInterval = d }
}

// WithMaxRetries overrides the default retry bound.
func WithMaxRetries(n int) Option {
	return func(w *Watcher) { w.maxRetries = n }
}

// New builds a Watcher over pool with the §6 defaults (POLL_INTERVAL=3s,
// MAX_RETRIES=5).
func New(pool *rpcpool.Pool, opts ...Option) *Watcher {
	w := &Watcher{pool: pool, pollInterval: 3 * time.Second, maxRetries: 5}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Status queries the node once and reports the transaction's current
// TxStatus, per the §4.5 state machine.
func (w *Watcher) Status(ctx context.Context, hash common.Hash) (domain.TxStatus, error) {
	tx, isPending, err := w.pool.TransactionByHash(ctx, hash)
	if err != nil {
		if isNotFoundErr(err) {
			return domain.TxNotFound, nil
		}
		return domain.TxUnknown, err
	}
	if tx == nil {
		return domain.TxNotFound, nil
	}
	if isPending {
		return domain.TxPending, nil
	}

	receipt, err := w.pool.TransactionReceipt(ctx, hash)
	if err != nil {
		if isNotFoundErr(err) {
			return domain.TxPending, nil
		}
		return domain.TxUnknown, err
	}
	if receipt == nil {
		return domain.TxPending, nil
	}
	if receipt.Status == types.ReceiptStatusSuccessful {
		return domain.TxSuccessful, nil
	}
	return domain.TxReverted, nil
}

// Resolve polls Status at the configured interval up to MaxRetries times,
// returning a ReadyTransaction only once status is Successful. Any other
// terminal status (NotFound, Reverted) is returned as a typed error; running
// out of retries while still Pending surfaces NotFound, per §5's "bounds
// wait by retry count x poll interval and surfaces NotFound rather than
// hanging".
func (w *Watcher) Resolve(ctx context.Context, hash common.Hash) (*domain.ReadyTransaction, error) {
	for attempt := 0; attempt <= w.maxRetries; attempt++ {
		status, err := w.Status(ctx, hash)
		if err != nil {
			return nil, err
		}

		switch status {
		case domain.TxSuccessful:
			return w.buildReady(ctx, hash)
		case domain.TxReverted:
			return nil, xerrors.Reverted(hash.Hex())
		case domain.TxNotFound:
			return nil, xerrors.NotFound(hash.Hex())
		case domain.TxPending:
			if attempt == w.maxRetries {
				return nil, xerrors.NotFound(hash.Hex())
			}
			select {
			case <-time.After(w.pollInterval):
			case <-ctx.Done():
				return nil, xerrors.RpcFailure("resolve cancelled", ctx.Err())
			}
		}
	}
	return nil, xerrors.NotFound(hash.Hex())
}

func (w *Watcher) buildReady(ctx context.Context, hash common.Hash) (*domain.ReadyTransaction, error) {
	tx, _, err := w.pool.TransactionByHash(ctx, hash)
	if err != nil {
		return nil, err
	}
	receipt, err := w.pool.TransactionReceipt(ctx, hash)
	if err != nil {
		return nil, err
	}

	from, err := w.pool.TransactionSender(ctx, tx, receipt.BlockHash, receipt.TransactionIndex)
	if err != nil {
		return nil, err
	}

	logs := make([]domain.Log, 0, len(receipt.Logs))
	for _, lg := range receipt.Logs {
		logs = append(logs, domain.Log{Address: lg.Address, Topics: lg.Topics, Data: lg.Data})
	}

	return &domain.ReadyTransaction{
		Hash: hash,
		Body: domain.Body{
			Hash:     hash,
			To:       tx.To(),
			From:     from,
			Value:    tx.Value(),
			Input:    tx.Data(),
			Nonce:    tx.Nonce(),
			GasPrice: tx.GasPrice(),
		},
		Receipt: domain.Receipt{
			Status: receipt.Status,
			Logs:   logs,
		},
	}, nil
}

// isNotFoundErr reports whether err represents go-ethereum's "not found"
// sentinel for a missing transaction/receipt (ethereum.NotFound), walking
// through the xerrors.Error Unwrap chain rpcpool wraps it in.
func isNotFoundErr(err error) bool {
	return errors.Is(err, ethereum.NotFound)
}
