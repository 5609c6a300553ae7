// Package domain holds the base value types shared across the calldata
// decoding / trade reconstruction / copy-trade synthesis pipeline: the
// confirmed-transaction shapes (ReadyTransaction, Body, Receipt, Log), the
// Watcher's TxStatus state machine, and the U256 amount representation.
// Higher-level types that depend on decoded calldata (Swap, Trade, DexPath)
// live in the trade package, which imports this one.
package domain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Chain identifies an EVM-compatible network this process tracks.
type Chain string

const (
	ChainEthMainnet Chain = "eth-mainnet"
	ChainEthGoerli  Chain = "eth-goerli"
)

// DexKind identifies which DEX family a router address belongs to, per the
// Router DEX Table (§4.6). PancakeSwap is the only kind the source supports;
// new DEXes are added here and to the Extractor's selector dispatch.
type DexKind string

const PancakeSwap DexKind = "PancakeSwap"

// PoolVersion distinguishes the V2 (ordered address array path) and V3
// (packed-bytes path with explicit fees) pool families.
type PoolVersion string

const (
	V2 PoolVersion = "V2"
	V3 PoolVersion = "V3"
)

// U256 is the unsigned 256-bit integer representation used throughout the
// pipeline for amounts and packed-path fees.
type U256 = uint256.Int

// NewU256FromBig converts a *big.Int (the type go-ethereum's abi package
// naturally unpacks uint256 values into) to *U256.
func NewU256FromBig(b *big.Int) (*U256, error) {
	u, overflow := uint256.FromBig(b)
	if overflow {
		return nil, errU256Overflow{}
	}
	return u, nil
}

type errU256Overflow struct{}

func (errU256Overflow) Error() string { return "domain: value overflows uint256" }

// ZeroU256 returns a fresh zero-valued U256, used by the Copy-Trade Planner
// to fill in the "0" amount fields its hop policy leaves undisclosed.
func ZeroU256() *U256 { return uint256.NewInt(0) }

// SelfRecipientSentinel is the router's documented "keep funds in me"
// recipient flag (§6).
var SelfRecipientSentinel = common.HexToAddress("0x0000000000000000000000000000000000000002")

// TxStatus is the Transaction Watcher's state machine (§4.5).
type TxStatus int

const (
	TxUnknown TxStatus = iota
	TxPending
	TxNotFound
	TxSuccessful
	TxReverted
)

func (s TxStatus) String() string {
	switch s {
	case TxPending:
		return "Pending"
	case TxNotFound:
		return "NotFound"
	case TxSuccessful:
		return "Successful"
	case TxReverted:
		return "Reverted"
	default:
		return "Unknown"
	}
}

// ReadyTransaction is produced only once a transaction's status is
// Successful: the confirmed body and receipt are both available (§3).
type ReadyTransaction struct {
	Hash    common.Hash
	Body    Body
	Receipt Receipt
}

// Body is the subset of a mined transaction's fields the pipeline needs.
type Body struct {
	Hash     common.Hash
	To       *common.Address
	From     common.Address
	Value    *big.Int
	Input    []byte
	Nonce    uint64
	GasPrice *big.Int
}

// Receipt is the subset of a transaction receipt the pipeline needs.
type Receipt struct {
	Status uint64 // 1 = success, 0 = reverted, per go-ethereum/EVM convention
	Logs   []Log
}

// Log is a single EVM log entry, in receipt order.
type Log struct {
	Address common.Address
	Topics  []common.Hash
	Data    []byte
}
