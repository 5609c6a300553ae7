// Package planner implements the Copy-Trade Planner (§4.7): given a
// reconstructed Trade plus the operator's chosen amount_in and
// amount_out_minimum, it produces either a direct single-hop call or a
// multicall payload, replaying exact-out variants as their exact-in twin
// (inverting V3 packed paths where needed) and keeping intermediate hop
// output inside the router via the self-recipient sentinel.
//
// Grounded on original_source/src/pancake.rs
// (PancakeSmartRouterV3Contract::copy_trade and its hop-building helpers).
package planner

import (
	"reflect"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/copytrade/router-mirror/internal/abiregistry"
	"github.com/copytrade/router-mirror/internal/domain"
	"github.com/copytrade/router-mirror/internal/pathcodec"
	"github.com/copytrade/router-mirror/internal/trade"
	"github.com/copytrade/router-mirror/internal/xerrors"
)

// Plan is a ready-to-submit transaction request: target contract and
// ABI-encoded calldata. Gas estimation happens downstream in the Submitter.
type Plan struct {
	Target   common.Address
	Calldata []byte
}

// Planner builds copy-trade Plans against a single router ABI.
type Planner struct {
	router *abiregistry.Registry
}

// New builds a Planner bound to the router ABI Registry whose functions it
// will re-encode.
func New(router *abiregistry.Registry) *Planner {
	return &Planner{router: router}
}

// Plan implements §4.7's policy end to end.
func (p *Planner) Plan(t *trade.Trade, amountIn, amountOutMinimum *domain.U256, recipient common.Address) (*Plan, error) {
	if len(t.Swaps) == 0 {
		return nil, xerrors.PlanInconsistent("trade has no swaps")
	}

	if len(t.Swaps) == 1 {
		return p.planDirect(t, t.Swaps[0], amountIn, amountOutMinimum, recipient)
	}
	return p.planMulticall(t, amountIn, amountOutMinimum, recipient)
}

// planDirect emits a single direct call, replaying exact-out as exact-in
// per §4.7's single-hop policy.
func (p *Planner) planDirect(t *trade.Trade, sw trade.Swap, amountIn, amountOutMinimum *domain.U256, recipient common.Address) (*Plan, error) {
	sel, path, tokenIn, tokenOut, err := replaySelectorAndPath(sw)
	if err != nil {
		return nil, err
	}
	if tokenIn != t.TokenIn {
		return nil, xerrors.PlanInconsistent("direct plan token_in mismatch")
	}
	if tokenOut != t.TokenOut {
		return nil, xerrors.PlanInconsistent("direct plan token_out mismatch")
	}

	data, err := p.encodeHop(sel, path, tokenIn, tokenOut, recipient, amountIn, amountOutMinimum)
	if err != nil {
		return nil, err
	}
	return &Plan{Target: t.RouterAddress, Calldata: data}, nil
}

// planMulticall emits a multicall wrapping one re-encoded inner call per
// hop, per §4.7's per-hop recipient/amount policy.
func (p *Planner) planMulticall(t *trade.Trade, amountIn, amountOutMinimum *domain.U256, recipient common.Address) (*Plan, error) {
	n := len(t.Swaps)
	hopsData := make([][]byte, 0, n)

	zero := domain.ZeroU256()

	for i, sw := range t.Swaps {
		sel, path, tokenIn, tokenOut, err := replaySelectorAndPath(sw)
		if err != nil {
			return nil, err
		}

		var hopRecipient common.Address
		var hopAmountIn, hopAmountOutMin *domain.U256

		switch {
		case i == 0:
			hopRecipient = domain.SelfRecipientSentinel
			hopAmountIn = amountIn
			hopAmountOutMin = zero
		case i == n-1:
			hopRecipient = recipient
			hopAmountIn = zero
			hopAmountOutMin = amountOutMinimum
		default:
			hopRecipient = domain.SelfRecipientSentinel
			hopAmountIn = zero
			hopAmountOutMin = zero
		}

		if i == 0 && tokenIn != t.TokenIn {
			return nil, xerrors.PlanInconsistent("multicall first hop token_in mismatch")
		}
		if i == n-1 && tokenOut != t.TokenOut {
			return nil, xerrors.PlanInconsistent("multicall last hop token_out mismatch")
		}

		data, err := p.encodeHop(sel, path, tokenIn, tokenOut, hopRecipient, hopAmountIn, hopAmountOutMin)
		if err != nil {
			return nil, err
		}
		hopsData = append(hopsData, data)
	}

	packed, err := p.router.ABI().Pack("multicall", hopsData)
	if err != nil {
		return nil, xerrors.PlanInconsistent("pack multicall: " + err.Error())
	}
	return &Plan{Target: t.RouterAddress, Calldata: packed}, nil
}

// replaySelectorAndPath determines which selector/path/token pair to encode
// for a given observed swap: exact-out variants are replayed as their
// exact-in twin (§4.7), with V3 packed multi-hop paths inverted via the Path
// Codec. V2 paths need no inversion (ordered in->out for both variants per
// §4.4's table note); V3 single-hop paths carry tokenIn/tokenOut explicitly
// and also need no inversion.
func replaySelectorAndPath(sw trade.Swap) (trade.SelectorKind, trade.DexPath, common.Address, common.Address, error) {
	sel := sw.Selector
	path := sw.Path
	tokenIn, tokenOut := sw.TokenIn, sw.TokenOut

	if sel.IsExactOut() {
		sel = sel.PairedExactIn()
		if path.Kind == trade.PathV3MultiHop {
			inverted, err := pathcodec.InvertBytes(path.V3Packed)
			if err != nil {
				return 0, trade.DexPath{}, common.Address{}, common.Address{}, err
			}
			path = trade.DexPath{Kind: trade.PathV3MultiHop, V3Packed: inverted}
			// tokenIn/tokenOut stay as sw.TokenIn/TokenOut: these were already
			// derived correctly from the reversed path during extraction
			// (§4.4 exactOutput row), and remain the true spend/receive tokens.
		}
	}

	return sel, path, tokenIn, tokenOut, nil
}

// encodeHop ABI-encodes a single swap call of the given (already exact-in)
// selector kind against path/tokenIn/tokenOut, using the caller-provided
// recipient/amountIn/amountOutMinimum.
func (p *Planner) encodeHop(
	sel trade.SelectorKind,
	path trade.DexPath,
	tokenIn, tokenOut common.Address,
	recipient common.Address,
	amountIn, amountOutMinimum *domain.U256,
) ([]byte, error) {
	contractABI := p.router.ABI()

	switch sel {
	case trade.SwapExactTokensForTokens:
		return contractABI.Pack(
			"swapExactTokensForTokens",
			amountIn.ToBig(),
			amountOutMinimum.ToBig(),
			path.V2Path,
			recipient,
		)

	case trade.ExactInputSingle:
		method, ok := contractABI.Methods["exactInputSingle"]
		if !ok {
			return nil, xerrors.ConfigError("exactInputSingle not in ABI", nil)
		}
		params, err := buildTuple(method.Inputs[0].Type, map[string]any{
			"tokenIn":           tokenIn,
			"tokenOut":          tokenOut,
			"fee":               path.Fee.ToBig(),
			"recipient":         recipient,
			"amountIn":          amountIn.ToBig(),
			"amountOutMinimum":  amountOutMinimum.ToBig(),
			"sqrtPriceLimitX96": zeroBig(),
		})
		if err != nil {
			return nil, err
		}
		return contractABI.Pack("exactInputSingle", params)

	case trade.ExactInput:
		method, ok := contractABI.Methods["exactInput"]
		if !ok {
			return nil, xerrors.ConfigError("exactInput not in ABI", nil)
		}
		params, err := buildTuple(method.Inputs[0].Type, map[string]any{
			"path":             path.V3Packed,
			"recipient":        recipient,
			"amountIn":         amountIn.ToBig(),
			"amountOutMinimum": amountOutMinimum.ToBig(),
		})
		if err != nil {
			return nil, err
		}
		return contractABI.Pack("exactInput", params)

	default:
		return nil, xerrors.PlanInconsistent("unexpected selector after replay: " + sel.String())
	}
}

// buildTuple constructs a Go value of argType's generated struct type
// (go-ethereum dynamically builds one struct type per ABI tuple via
// reflect.StructOf) and populates it field by field, bridging the
// TypedValue-free planner-side representation into the shape abi.Pack
// expects for tuple arguments.
func buildTuple(argType abi.Type, fields map[string]any) (any, error) {
	goType := argType.GetType()
	v := reflect.New(goType).Elem()
	for _, name := range argType.TupleRawNames {
		fieldName := abi.ToCamelCase(name)
		val, ok := fields[name]
		if !ok {
			return nil, xerrors.DecodeFailure("missing tuple field "+name, nil)
		}
		fv := v.FieldByName(fieldName)
		if !fv.IsValid() {
			return nil, xerrors.DecodeFailure("tuple struct missing field "+fieldName, nil)
		}
		rv := reflect.ValueOf(val)
		if rv.Type() != fv.Type() && rv.Type().ConvertibleTo(fv.Type()) {
			rv = rv.Convert(fv.Type())
		}
		fv.Set(rv)
	}
	return v.Interface(), nil
}

func zeroBig() any { return domain.ZeroU256().ToBig() }
