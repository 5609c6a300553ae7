// Package rpcpool implements the RPC connection pool (§4.12, §5): a single
// node connection (HTTP or WebSocket, chosen by URL scheme, matching the
// teacher's internal/eth/client.go dial logic) gated by a fixed-capacity
// semaphore so no more than MAX_CONCURRENT_RPC requests are in flight at
// once. Acquiring blocks when the cap is reached; release happens on scope
// exit via defer, matching §5's "release happens on scope exit of the
// borrowed connection" and grounded on original_source/src/eth_sdk/conn.rs's
// tokio::sync::Semaphore-gated connection.
package rpcpool

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/copytrade/router-mirror/internal/xerrors"
)

// Pool wraps one node connection behind a bounded-concurrency semaphore.
type Pool struct {
	eth *ethclient.Client
	raw *rpc.Client
	sem chan struct{}
}

// Dial opens a connection to url (HTTP(S) or WS(S), chosen by rpc.Dial based
// on scheme) and bounds concurrent use to maxConcurrent in-flight requests.
func Dial(ctx context.Context, url string, maxConcurrent int) (*Pool, error) {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	raw, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, xerrors.RpcFailure("dial "+url, err)
	}
	return &Pool{
		eth: ethclient.NewClient(raw),
		raw: raw,
		sem: make(chan struct{}, maxConcurrent),
	}, nil
}

// Close releases the underlying connection.
func (p *Pool) Close() { p.raw.Close() }

// acquire blocks until a concurrency slot is free or ctx is done.
func (p *Pool) acquire(ctx context.Context) (func(), error) {
	select {
	case p.sem <- struct{}{}:
		return func() { <-p.sem }, nil
	case <-ctx.Done():
		return nil, xerrors.RpcFailure("acquire rpc slot", ctx.Err())
	}
}

// TransactionByHash fetches a transaction body; isPending mirrors
// go-ethereum's convention (true when the tx has no block yet).
func (p *Pool) TransactionByHash(ctx context.Context, hash common.Hash) (*types.Transaction, bool, error) {
	release, err := p.acquire(ctx)
	if err != nil {
		return nil, false, err
	}
	defer release()

	tx, isPending, err := p.eth.TransactionByHash(ctx, hash)
	if err != nil {
		return nil, false, xerrors.RpcFailure("eth_getTransactionByHash", err)
	}
	return tx, isPending, nil
}

// TransactionSender recovers the sender of tx using go-ethereum's signer
// machinery (needed because TransactionByHash does not return `from`).
func (p *Pool) TransactionSender(ctx context.Context, tx *types.Transaction, blockHash common.Hash, index uint) (common.Address, error) {
	release, err := p.acquire(ctx)
	if err != nil {
		return common.Address{}, err
	}
	defer release()

	addr, err := p.eth.TransactionSender(ctx, tx, blockHash, index)
	if err != nil {
		return common.Address{}, xerrors.RpcFailure("recover tx sender", err)
	}
	return addr, nil
}

// TransactionReceipt fetches a transaction's receipt.
func (p *Pool) TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	release, err := p.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	receipt, err := p.eth.TransactionReceipt(ctx, hash)
	if err != nil {
		return nil, xerrors.RpcFailure("eth_getTransactionReceipt", err)
	}
	return receipt, nil
}

// BlockNumber returns the latest known block number.
func (p *Pool) BlockNumber(ctx context.Context) (uint64, error) {
	release, err := p.acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer release()

	n, err := p.eth.BlockNumber(ctx)
	if err != nil {
		return 0, xerrors.RpcFailure("eth_blockNumber", err)
	}
	return n, nil
}

// ChainID returns the connected chain's ID.
func (p *Pool) ChainID(ctx context.Context) (*big.Int, error) {
	release, err := p.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	id, err := p.eth.ChainID(ctx)
	if err != nil {
		return nil, xerrors.RpcFailure("eth_chainId", err)
	}
	return id, nil
}

// SuggestGasPrice returns the node's current suggested gas price.
func (p *Pool) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	release, err := p.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	price, err := p.eth.SuggestGasPrice(ctx)
	if err != nil {
		return nil, xerrors.RpcFailure("eth_gasPrice", err)
	}
	return price, nil
}

// EstimateGas estimates gas for msg; a failure here is the Submitter's
// PlanRejectedByNode signal (§4.8).
func (p *Pool) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	release, err := p.acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer release()

	gas, err := p.eth.EstimateGas(ctx, msg)
	if err != nil {
		return 0, xerrors.PlanRejectedByNode("eth_estimateGas", err)
	}
	return gas, nil
}

// PendingNonceAt returns the next nonce to use for account.
func (p *Pool) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	release, err := p.acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer release()

	nonce, err := p.eth.PendingNonceAt(ctx, account)
	if err != nil {
		return 0, xerrors.RpcFailure("eth_getTransactionCount", err)
	}
	return nonce, nil
}

// SendTransaction broadcasts a signed transaction.
func (p *Pool) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	release, err := p.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	if err := p.eth.SendTransaction(ctx, tx); err != nil {
		return xerrors.RpcFailure("eth_sendRawTransaction", err)
	}
	return nil
}

// CallContract performs a read-only contract call (used by ERC-20 helpers).
func (p *Pool) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	release, err := p.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	out, err := p.eth.CallContract(ctx, msg, blockNumber)
	if err != nil {
		return nil, xerrors.RpcFailure("eth_call", err)
	}
	return out, nil
}
