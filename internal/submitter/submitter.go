// Package submitter implements the Submitter (§4.8): turns a Plan into a
// confirmed transaction, estimating gas, signing, broadcasting and waiting
// for confirmation via the Watcher. Grounded on
// original_source/src/eth_sdk/utils.rs (wait_for_confirmations_simple) and
// the teacher's internal/eth/client.go dial/call conventions, reassembled
// around the rpcpool/watcher packages already built for this pipeline.
package submitter

import (
	"context"
	"math/big"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/copytrade/router-mirror/internal/domain"
	"github.com/copytrade/router-mirror/internal/keystore"
	"github.com/copytrade/router-mirror/internal/planner"
	"github.com/copytrade/router-mirror/internal/rpcpool"
	"github.com/copytrade/router-mirror/internal/watcher"
	"github.com/copytrade/router-mirror/internal/xerrors"
)

// Submitter dispatches Plans against a single RPC pool, signing with a
// single operator KeyStore.
type Submitter struct {
	pool    *rpcpool.Pool
	watcher *watcher.Watcher
	keys    *keystore.KeyStore
	chainID *big.Int
}

// New builds a Submitter. chainID is cached at construction (§4.8: "chain_id
// from the connection") rather than re-fetched per submission.
func New(pool *rpcpool.Pool, w *watcher.Watcher, keys *keystore.KeyStore, chainID *big.Int) *Submitter {
	return &Submitter{pool: pool, watcher: w, keys: keys, chainID: chainID}
}

// Submit estimates gas, signs, broadcasts plan, and blocks until the
// Watcher reports a terminal status, returning the confirmed
// ReadyTransaction on success.
func (s *Submitter) Submit(ctx context.Context, plan *planner.Plan) (*domain.ReadyTransaction, error) {
	from := s.keys.Address()

	gas, err := s.pool.EstimateGas(ctx, ethereum.CallMsg{
		From: from,
		To:   &plan.Target,
		Data: plan.Calldata,
	})
	if err != nil {
		return nil, err // already xerrors.PlanRejectedByNode
	}

	nonce, err := s.pool.PendingNonceAt(ctx, from)
	if err != nil {
		return nil, err
	}
	gasPrice, err := s.pool.SuggestGasPrice(ctx)
	if err != nil {
		return nil, err
	}

	tx := types.NewTransaction(nonce, plan.Target, big.NewInt(0), gas, gasPrice, plan.Calldata)

	signed, err := s.keys.Sign(ctx, tx)
	if err != nil {
		return nil, err
	}

	if err := s.pool.SendTransaction(ctx, signed); err != nil {
		return nil, err
	}

	ready, err := s.watcher.Resolve(ctx, signed.Hash())
	if err != nil {
		return nil, err
	}
	if ready.Receipt.Status != types.ReceiptStatusSuccessful {
		return nil, xerrors.Reverted(signed.Hash().Hex())
	}
	return ready, nil
}
