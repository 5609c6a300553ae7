// Package keystore implements the Key Store (§4.14): loads the operator's
// signing key from either a go-ethereum keystore file (encrypted JSON) or a
// raw hex private key supplied via environment, and signs the transactions
// the Submitter builds from the Planner's plans before it broadcasts them.
//
// No teacher file signs transactions (pulkyeet-mev-searcher only reads
// chain state), so this package is grounded directly on go-ethereum's own
// accounts/keystore and crypto packages, which is the pack's own domain
// library for this concern rather than a hand-rolled substitute.
package keystore

import (
	"context"
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/copytrade/router-mirror/internal/xerrors"
)

// KeyStore signs transactions on behalf of a single operator account.
type KeyStore struct {
	address common.Address
	key     *keystore.Key
	chainID *big.Int
}

// FromHex builds a KeyStore from a raw hex-encoded private key (the
// SIGNING_KEY_SOURCE=hex:<key> form, §6), useful for local/backtest runs.
func FromHex(hexKey string, chainID *big.Int) (*KeyStore, error) {
	priv, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, xerrors.ConfigError("parse signing key hex", err)
	}
	return &KeyStore{
		address: crypto.PubkeyToAddress(priv.PublicKey),
		key:     &keystore.Key{PrivateKey: priv},
		chainID: chainID,
	}, nil
}

// FromFile loads an encrypted go-ethereum keystore file (the
// SIGNING_KEY_SOURCE=file:<path>:<passphrase> form, §6), decrypting it with
// passphrase.
func FromFile(path, passphrase string, chainID *big.Int) (*KeyStore, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, xerrors.ConfigError("read keystore file", err)
	}
	key, err := keystore.DecryptKey(raw, passphrase)
	if err != nil {
		return nil, xerrors.ConfigError("decrypt keystore file", err)
	}
	return &KeyStore{
		address: key.Address,
		key:     key,
		chainID: chainID,
	}, nil
}

// Address returns the operator account this KeyStore signs for.
func (k *KeyStore) Address() common.Address { return k.address }

// Sign signs tx with the EIP-155 signer for this KeyStore's chain ID. The
// ctx parameter mirrors the cooperative-cancellation shape the rest of the
// pipeline uses at blocking boundaries, though signing itself is local and
// cannot block on the network.
func (k *KeyStore) Sign(ctx context.Context, tx *types.Transaction) (*types.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, xerrors.RpcFailure("sign cancelled", err)
	}
	signer := types.NewEIP155Signer(k.chainID)
	signed, err := types.SignTx(tx, signer, k.key.PrivateKey)
	if err != nil {
		return nil, xerrors.ConfigError("sign transaction", err)
	}
	return signed, nil
}
