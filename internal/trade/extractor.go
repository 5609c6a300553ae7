// Package trade implements the Trade Extractor (§4.4): given a confirmed
// transaction known to target a classified router, it decodes every inner
// swap call into a uniform Swap record and, where the call's signature
// leaves one side (amount_in or amount_out) undisclosed, recovers it from
// the receipt's ERC-20 Transfer logs.
//
// Grounded on original_source/src/dex_tracker/pancake_swap/pancake.rs for
// the selector dispatch and original_source/src/eth_sdk/tx.rs
// (amount_of_token_received/sent) for the Transfer-log search. As noted in
// SPEC_FULL.md §9, the Transfer-log search always takes the first matching
// log in receipt order; reflecting/rebasing tokens that emit more than one
// matching Transfer are a known, accepted limitation, not a bug.
package trade

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/copytrade/router-mirror/internal/abiregistry"
	"github.com/copytrade/router-mirror/internal/abitypes"
	"github.com/copytrade/router-mirror/internal/calldata"
	"github.com/copytrade/router-mirror/internal/domain"
	"github.com/copytrade/router-mirror/internal/pathcodec"
	"github.com/copytrade/router-mirror/internal/xerrors"
)

// Extractor reconstructs Trades from ready transactions targeting a single
// router ABI. It holds no mutable state and is safe to share across
// goroutines (§5).
type Extractor struct {
	router *abiregistry.Registry
	erc20  *abiregistry.Registry
}

// New builds an Extractor bound to a router ABI Registry and the ERC-20
// registry used to resolve the Transfer event topic.
func New(router, erc20 *abiregistry.Registry) *Extractor {
	return &Extractor{router: router, erc20: erc20}
}

// Extract runs the full §4.4 procedure against a ready transaction already
// classified as targeting dex of kind dexKind.
func (e *Extractor) Extract(chain domain.Chain, dexKind domain.DexKind, rt *domain.ReadyTransaction) (*Trade, error) {
	if rt.Body.To == nil {
		return nil, xerrors.DecodeFailure("transaction has no target contract", nil)
	}
	router := *rt.Body.To

	calls, err := calldata.DecodeMulticall(e.router, rt.Body.Input)
	if err != nil {
		return nil, err
	}

	swaps := make([]Swap, 0, len(calls))
	for _, call := range calls {
		sel, ok := selectorNames[call.Name]
		if !ok {
			// non-swap inner call (refundETH, unwrapWETH9, permit, ...):
			// preserved in decoding but ignored here, per §4.2 edge case.
			continue
		}
		sw, err := buildSwap(sel, call)
		if err != nil {
			return nil, err
		}
		swaps = append(swaps, sw)
	}

	if len(swaps) == 0 {
		return nil, xerrors.DecodeFailure("no recognized swap calls in transaction", nil)
	}

	for i := range swaps {
		if err := e.reconstruct(&swaps[i], router, rt); err != nil {
			return nil, err
		}
	}

	first, last := swaps[0], swaps[len(swaps)-1]
	return &Trade{
		Chain:         chain,
		RouterAddress: router,
		DexKind:       dexKind,
		TokenIn:       first.TokenIn,
		TokenOut:      last.TokenOut,
		Caller:        rt.Body.From,
		AmountIn:      first.AmountIn,
		AmountOut:     last.AmountOut,
		Swaps:         swaps,
	}, nil
}

// buildSwap maps one decoded inner call to a Swap record per the §4.4
// selector table. Exactly one of AmountIn/AmountOut is left nil here; it is
// filled in by reconstruct.
func buildSwap(sel SelectorKind, call *calldata.ContractCall) (Swap, error) {
	sw := Swap{Selector: sel, Call: call}

	switch sel {
	case SwapExactTokensForTokens, SwapTokensForExactTokens:
		path, err := v2Path(call, "path")
		if err != nil {
			return Swap{}, err
		}
		recipient, err := addressParam(call, "to")
		if err != nil {
			return Swap{}, err
		}
		sw.Recipient = recipient
		sw.TokenIn = path[0]
		sw.TokenOut = path[len(path)-1]
		sw.Path = DexPath{Kind: PathV2, V2Path: path}

		if sel == SwapExactTokensForTokens {
			amountIn, err := uintParam(call, "amountIn")
			if err != nil {
				return Swap{}, err
			}
			amountOutMin, err := uintParam(call, "amountOutMin")
			if err != nil {
				return Swap{}, err
			}
			sw.AmountIn = amountIn
			sw.AmountOutMinimum = amountOutMin
		} else {
			amountOut, err := uintParam(call, "amountOut")
			if err != nil {
				return Swap{}, err
			}
			amountInMax, err := uintParam(call, "amountInMax")
			if err != nil {
				return Swap{}, err
			}
			sw.AmountOut = amountOut
			sw.AmountInMaximum = amountInMax
		}

	case ExactInputSingle, ExactOutputSingle:
		params, err := tupleParam(call, "params")
		if err != nil {
			return Swap{}, err
		}
		tokenIn, err := addressField(params, "tokenIn")
		if err != nil {
			return Swap{}, err
		}
		tokenOut, err := addressField(params, "tokenOut")
		if err != nil {
			return Swap{}, err
		}
		fee, err := uintField(params, "fee")
		if err != nil {
			return Swap{}, err
		}
		recipient, err := addressField(params, "recipient")
		if err != nil {
			return Swap{}, err
		}
		sw.Recipient = recipient
		sw.TokenIn = tokenIn
		sw.TokenOut = tokenOut
		sw.Path = DexPath{Kind: PathV3SingleHop, TokenIn: tokenIn, TokenOut: tokenOut, Fee: fee}

		if sel == ExactInputSingle {
			amountIn, err := uintField(params, "amountIn")
			if err != nil {
				return Swap{}, err
			}
			amountOutMin, err := uintField(params, "amountOutMinimum")
			if err != nil {
				return Swap{}, err
			}
			sw.AmountIn = amountIn
			sw.AmountOutMinimum = amountOutMin
		} else {
			amountOut, err := uintField(params, "amountOut")
			if err != nil {
				return Swap{}, err
			}
			amountInMax, err := uintField(params, "amountInMaximum")
			if err != nil {
				return Swap{}, err
			}
			sw.AmountOut = amountOut
			sw.AmountInMaximum = amountInMax
		}

	case ExactInput, ExactOutput:
		params, err := tupleParam(call, "params")
		if err != nil {
			return Swap{}, err
		}
		packed, err := bytesField(params, "path")
		if err != nil {
			return Swap{}, err
		}
		hops, err := pathcodec.Decode(packed)
		if err != nil {
			return Swap{}, err
		}
		recipient, err := addressField(params, "recipient")
		if err != nil {
			return Swap{}, err
		}
		sw.Recipient = recipient
		sw.Path = DexPath{Kind: PathV3MultiHop, V3Packed: packed}

		if sel == ExactInput {
			sw.TokenIn = hops[0].FirstToken
			sw.TokenOut = hops[len(hops)-1].SecondToken
			amountIn, err := uintField(params, "amountIn")
			if err != nil {
				return Swap{}, err
			}
			amountOutMin, err := uintField(params, "amountOutMinimum")
			if err != nil {
				return Swap{}, err
			}
			sw.AmountIn = amountIn
			sw.AmountOutMinimum = amountOutMin
		} else {
			// exactOutput: path is stored reversed (§4.4 table note).
			sw.TokenIn = hops[len(hops)-1].SecondToken
			sw.TokenOut = hops[0].FirstToken
			amountOut, err := uintField(params, "amountOut")
			if err != nil {
				return Swap{}, err
			}
			amountInMax, err := uintField(params, "amountInMaximum")
			if err != nil {
				return Swap{}, err
			}
			sw.AmountOut = amountOut
			sw.AmountInMaximum = amountInMax
		}
	}

	return sw, nil
}

// reconstruct fills in whichever side of sw is nil from the receipt's
// Transfer logs, per §4.4 step 3.
func (e *Extractor) reconstruct(sw *Swap, router common.Address, rt *domain.ReadyTransaction) error {
	topic0 := e.erc20.TransferTopic0()

	if sw.AmountOut == nil {
		var to common.Address
		if sw.Recipient == domain.SelfRecipientSentinel {
			to = router
		} else {
			to = sw.Recipient
		}
		amount, err := firstMatchingTransfer(rt.Receipt.Logs, topic0, sw.TokenOut, nil, &to)
		if err != nil {
			return err
		}
		sw.AmountOut = amount
	}

	if sw.AmountIn == nil {
		nativePaid := rt.Body.Value != nil && rt.Body.Value.Sign() != 0
		var from common.Address
		if nativePaid {
			from = router
		} else {
			from = rt.Body.From
		}
		amount, err := firstMatchingTransfer(rt.Receipt.Logs, topic0, sw.TokenIn, &from, nil)
		if err != nil {
			return err
		}
		sw.AmountIn = amount
	}

	return nil
}

// firstMatchingTransfer scans logs in receipt order for the first
// Transfer(from, to, value) emitted by token that matches the requested
// from/to filters (nil means "don't care"), returning value as a U256.
func firstMatchingTransfer(logs []domain.Log, topic0 common.Hash, token common.Address, from, to *common.Address) (*domain.U256, error) {
	for _, lg := range logs {
		if lg.Address != token {
			continue
		}
		if len(lg.Topics) != 3 || lg.Topics[0] != topic0 {
			continue
		}
		logFrom := common.BytesToAddress(lg.Topics[1].Bytes())
		logTo := common.BytesToAddress(lg.Topics[2].Bytes())
		if from != nil && logFrom != *from {
			continue
		}
		if to != nil && logTo != *to {
			continue
		}
		if len(lg.Data) < 32 {
			continue
		}
		value := new(big.Int).SetBytes(lg.Data[:32])
		return domain.NewU256FromBig(value)
	}
	return nil, xerrors.ReconstructionFailure("no matching Transfer log for token " + token.Hex())
}

// --- parameter accessors ----------------------------------------------------

func addressParam(call *calldata.ContractCall, name string) (common.Address, error) {
	v, ok := call.Param(name)
	if !ok {
		return common.Address{}, xerrors.DecodeFailure("missing param "+name, nil)
	}
	return abitypes.AsAddress(v)
}

func uintParam(call *calldata.ContractCall, name string) (*domain.U256, error) {
	v, ok := call.Param(name)
	if !ok {
		return nil, xerrors.DecodeFailure("missing param "+name, nil)
	}
	bi, err := abitypes.AsUint(v)
	if err != nil {
		return nil, err
	}
	return domain.NewU256FromBig(bi)
}

func tupleParam(call *calldata.ContractCall, name string) (abitypes.Tuple, error) {
	v, ok := call.Param(name)
	if !ok {
		return abitypes.Tuple{}, xerrors.DecodeFailure("missing param "+name, nil)
	}
	t, ok := v.(abitypes.Tuple)
	if !ok {
		return abitypes.Tuple{}, xerrors.TypeMismatch("Tuple", "other")
	}
	return t, nil
}

func fieldOf(t abitypes.Tuple, name string) (abitypes.TypedValue, error) {
	for i, n := range t.Names {
		if n == name {
			return t.Elems[i], nil
		}
	}
	return nil, xerrors.DecodeFailure("tuple missing field "+name, nil)
}

func addressField(t abitypes.Tuple, name string) (common.Address, error) {
	v, err := fieldOf(t, name)
	if err != nil {
		return common.Address{}, err
	}
	return abitypes.AsAddress(v)
}

func uintField(t abitypes.Tuple, name string) (*domain.U256, error) {
	v, err := fieldOf(t, name)
	if err != nil {
		return nil, err
	}
	bi, err := abitypes.AsUint(v)
	if err != nil {
		return nil, err
	}
	return domain.NewU256FromBig(bi)
}

func bytesField(t abitypes.Tuple, name string) ([]byte, error) {
	v, err := fieldOf(t, name)
	if err != nil {
		return nil, err
	}
	return abitypes.AsBytes(v)
}

func v2Path(call *calldata.ContractCall, name string) ([]common.Address, error) {
	v, ok := call.Param(name)
	if !ok {
		return nil, xerrors.DecodeFailure("missing param "+name, nil)
	}
	arr, ok := v.(abitypes.Array)
	if !ok {
		return nil, xerrors.TypeMismatch("Array", "other")
	}
	if len(arr.Elems) < 2 {
		return nil, xerrors.DecodeFailure("V2 path shorter than 2 addresses", nil)
	}
	out := make([]common.Address, 0, len(arr.Elems))
	for _, e := range arr.Elems {
		addr, err := abitypes.AsAddress(e)
		if err != nil {
			return nil, err
		}
		out = append(out, addr)
	}
	return out, nil
}
