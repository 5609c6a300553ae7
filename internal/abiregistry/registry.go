// Package abiregistry implements the ABI Registry (§4.1): it lazily parses a
// router's ABI document and the ERC-20 ABI, exposes function lookup by
// 4-byte selector and by name, and precomputes the Transfer event's topic-0.
// Parsed abi.ABI values are cached behind a small LRU (grounded on the
// teacher's go.mod dependency on hashicorp/golang-lru/v2) so a process
// serving several chains/routers does not re-parse identical ABI JSON.
package abiregistry

import (
	"crypto/sha256"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/copytrade/router-mirror/internal/xerrors"
)

// FunctionDesc describes one ABI function entry: its name, declared input
// parameters (in order) and state mutability.
type FunctionDesc struct {
	Name       string
	Selector   [4]byte
	Inputs     abi.Arguments
	Mutability string
}

// Registry resolves router functions by selector/name and exposes the ERC-20
// Transfer event topic. It is immutable after construction and safe for
// concurrent use by many goroutines (§5: "ABI registry ... immutable after
// initialization; freely shared").
type Registry struct {
	contractABI    abi.ABI
	bySelector     map[[4]byte]FunctionDesc
	byName         map[string]FunctionDesc
	transferTopic0 common.Hash
}

var (
	cacheOnce sync.Once
	cache     *lru.Cache[string, abi.ABI]
)

func parsedABICache(size int) *lru.Cache[string, abi.ABI] {
	cacheOnce.Do(func() {
		c, err := lru.New[string, abi.ABI](size)
		if err != nil {
			// only fails for size <= 0; fall back to a minimal cache rather
			// than panicking a long-lived process over a config typo.
			c, _ = lru.New[string, abi.ABI](1)
		}
		cache = c
	})
	return cache
}

func parseCached(cacheSize int, document string) (abi.ABI, error) {
	c := parsedABICache(cacheSize)
	key := cacheKey(document)
	if parsed, ok := c.Get(key); ok {
		return parsed, nil
	}
	parsed, err := abi.JSON(strings.NewReader(document))
	if err != nil {
		return abi.ABI{}, xerrors.ConfigError("parse ABI document", err)
	}
	c.Add(key, parsed)
	return parsed, nil
}

func cacheKey(document string) string {
	sum := sha256.Sum256([]byte(document))
	return string(sum[:])
}

// NewRouterRegistry loads the PancakeSwap Smart Router V3 ABI embedded in
// this package. cacheSize bounds the shared parsed-ABI LRU (ABI_CACHE_SIZE).
func NewRouterRegistry(cacheSize int) (*Registry, error) {
	return newRegistry(smartRouterV3ABI, cacheSize)
}

// NewERC20Registry loads the minimal ERC-20 ABI embedded in this package.
func NewERC20Registry(cacheSize int) (*Registry, error) {
	return newRegistry(erc20ABI, cacheSize)
}

// NewFromDocument loads a registry from an arbitrary ABI JSON document,
// for callers wiring in additional DEX kinds beyond PancakeSwap (§4.6).
func NewFromDocument(document string, cacheSize int) (*Registry, error) {
	return newRegistry(document, cacheSize)
}

func newRegistry(document string, cacheSize int) (*Registry, error) {
	parsed, err := parseCached(cacheSize, document)
	if err != nil {
		return nil, err
	}

	r := &Registry{
		contractABI: parsed,
		bySelector:  make(map[[4]byte]FunctionDesc, len(parsed.Methods)),
		byName:      make(map[string]FunctionDesc, len(parsed.Methods)),
	}

	for name, m := range parsed.Methods {
		var sel [4]byte
		copy(sel[:], m.ID)
		desc := FunctionDesc{
			Name:       name,
			Selector:   sel,
			Inputs:     m.Inputs,
			Mutability: m.StateMutability,
		}
		if existing, ok := r.bySelector[sel]; ok && existing.Name != name {
			return nil, xerrors.ConfigError("ambiguous selector 0x"+toHex(sel[:])+" maps to both "+existing.Name+" and "+name, nil)
		}
		r.bySelector[sel] = desc
		r.byName[name] = desc
	}

	if ev, ok := parsed.Events["Transfer"]; ok {
		r.transferTopic0 = ev.ID
	}

	return r, nil
}

// FindFunctionBySelector looks up a function by its 4-byte selector.
func (r *Registry) FindFunctionBySelector(selector [4]byte) (FunctionDesc, error) {
	desc, ok := r.bySelector[selector]
	if !ok {
		return FunctionDesc{}, xerrors.UnknownSelector(selector)
	}
	return desc, nil
}

// FindFunctionByName looks up a function by its declared name.
func (r *Registry) FindFunctionByName(name string) (FunctionDesc, error) {
	desc, ok := r.byName[name]
	if !ok {
		return FunctionDesc{}, xerrors.ConfigError("function "+name+" not present in ABI", nil)
	}
	return desc, nil
}

// ABI returns the underlying parsed go-ethereum ABI, for callers that need to
// Pack a call directly (e.g. the Copy-Trade Planner).
func (r *Registry) ABI() abi.ABI { return r.contractABI }

// TransferTopic0 returns the precomputed ERC-20 Transfer event signature hash.
func (r *Registry) TransferTopic0() common.Hash { return r.transferTopic0 }

func toHex(b []byte) string {
	const hexdigits = "0123456789abcdef"
	out := make([]byte, len(b)*2)
	for i, c := range b {
		out[i*2] = hexdigits[c>>4]
		out[i*2+1] = hexdigits[c&0xf]
	}
	return string(out)
}
