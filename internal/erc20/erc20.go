// Package erc20 implements the ERC-20 Helpers (§4.13): read-only token
// metadata and balance queries. No other package in this module imports
// it; the Planner and Dispatcher do not query token metadata or balances.
// Grounded on
// original_source/src/eth_sdk/erc20.rs (Erc20Token::balance_of et al.,
// reimplemented against go-ethereum's Pack/CallContract/Unpack shape the
// teacher already uses in internal/arbitrage/pools.go's FetchReserves).
package erc20

import (
	"context"
	"math/big"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"

	"github.com/copytrade/router-mirror/internal/abiregistry"
	"github.com/copytrade/router-mirror/internal/domain"
	"github.com/copytrade/router-mirror/internal/rpcpool"
	"github.com/copytrade/router-mirror/internal/xerrors"
)

// Token is a read-only handle on one ERC-20 contract.
type Token struct {
	pool    *rpcpool.Pool
	reg     *abiregistry.Registry
	address common.Address
}

// New binds a Token to address, querying it through pool using reg (normally
// abiregistry.NewERC20Registry).
func New(pool *rpcpool.Pool, reg *abiregistry.Registry, address common.Address) *Token {
	return &Token{pool: pool, reg: reg, address: address}
}

// Decimals returns the token's decimals() value.
func (t *Token) Decimals(ctx context.Context) (uint8, error) {
	out, err := t.call(ctx, "decimals")
	if err != nil {
		return 0, err
	}
	unpacked, err := t.reg.ABI().Unpack("decimals", out)
	if err != nil {
		return 0, xerrors.DecodeFailure("unpack decimals", err)
	}
	if len(unpacked) != 1 {
		return 0, xerrors.DecodeFailure("decimals: unexpected unpack length", nil)
	}
	d, ok := unpacked[0].(uint8)
	if !ok {
		return 0, xerrors.TypeMismatch("uint8", "other")
	}
	return d, nil
}

// Symbol returns the token's symbol() value.
func (t *Token) Symbol(ctx context.Context) (string, error) {
	out, err := t.call(ctx, "symbol")
	if err != nil {
		return "", err
	}
	unpacked, err := t.reg.ABI().Unpack("symbol", out)
	if err != nil {
		return "", xerrors.DecodeFailure("unpack symbol", err)
	}
	if len(unpacked) != 1 {
		return "", xerrors.DecodeFailure("symbol: unexpected unpack length", nil)
	}
	s, ok := unpacked[0].(string)
	if !ok {
		return "", xerrors.TypeMismatch("string", "other")
	}
	return s, nil
}

// BalanceOf returns the token balance of account.
func (t *Token) BalanceOf(ctx context.Context, account common.Address) (*domain.U256, error) {
	contractABI := t.reg.ABI()
	data, err := contractABI.Pack("balanceOf", account)
	if err != nil {
		return nil, xerrors.ConfigError("pack balanceOf", err)
	}

	out, err := t.pool.CallContract(ctx, ethereum.CallMsg{To: &t.address, Data: data}, nil)
	if err != nil {
		return nil, err
	}

	unpacked, err := contractABI.Unpack("balanceOf", out)
	if err != nil {
		return nil, xerrors.DecodeFailure("unpack balanceOf", err)
	}
	if len(unpacked) != 1 {
		return nil, xerrors.DecodeFailure("balanceOf: unexpected unpack length", nil)
	}
	raw, ok := unpacked[0].(*big.Int)
	if !ok {
		return nil, xerrors.TypeMismatch("*big.Int", "other")
	}
	return domain.NewU256FromBig(raw)
}

func (t *Token) call(ctx context.Context, method string) ([]byte, error) {
	contractABI := t.reg.ABI()
	data, err := contractABI.Pack(method)
	if err != nil {
		return nil, xerrors.ConfigError("pack "+method, err)
	}
	return t.pool.CallContract(ctx, ethereum.CallMsg{To: &t.address, Data: data}, nil)
}
