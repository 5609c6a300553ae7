// Package dextable implements the Router DEX Table (§4.6): a static mapping
// from (chain, router address) to the DEX kind whose Trade Extractor variant
// should decode it. Grounded on the predecessor's DexAddresses table
// (original_source/src/dex_tracker/mod.rs), reimplemented in the teacher's
// table-literal style (internal/eth/constants.go's KnownDEXes).
package dextable

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/copytrade/router-mirror/internal/domain"
	"github.com/copytrade/router-mirror/internal/xerrors"
)

// entry is one (chain, router) -> dex kind row.
type entry struct {
	chain   domain.Chain
	address common.Address
	kind    domain.DexKind
}

// Table is an immutable, freely-shared classification table (§5).
type Table struct {
	rows map[string]domain.DexKind
}

func key(chain domain.Chain, addr common.Address) string {
	return string(chain) + "/" + strings.ToLower(addr.Hex())
}

// New builds a Table from explicit rows, so the router addresses actually in
// use (loaded from ROUTER_ADDRESS_<CHAIN> config) are wired in at startup
// rather than hardcoded once and for all.
func New(rows ...Row) *Table {
	t := &Table{rows: make(map[string]domain.DexKind, len(rows))}
	for _, r := range rows {
		t.rows[key(r.Chain, r.Address)] = r.Kind
	}
	return t
}

// Row is one configured (chain, router address, dex kind) mapping.
type Row struct {
	Chain   domain.Chain
	Address common.Address
	Kind    domain.DexKind
}

// Classify resolves the dex kind for a (chain, router) pair, or
// UnknownRouter if the target contract is not in the table.
func (t *Table) Classify(chain domain.Chain, router common.Address) (domain.DexKind, error) {
	kind, ok := t.rows[key(chain, router)]
	if !ok {
		return "", xerrors.UnknownRouter(string(chain), router.Hex())
	}
	return kind, nil
}
