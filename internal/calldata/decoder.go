// Package calldata implements the Calldata Decoder (§4.2): it turns raw
// transaction input bytes plus an ABI function descriptor into a structured
// ContractCall, and recursively unwraps the router's multicall(bytes[])
// envelope.
package calldata

import (
	"github.com/ethereum/go-ethereum/accounts/abi"

	"github.com/copytrade/router-mirror/internal/abiregistry"
	"github.com/copytrade/router-mirror/internal/abitypes"
	"github.com/copytrade/router-mirror/internal/xerrors"
)

// CallParameter is one named, typed argument of a decoded call.
type CallParameter struct {
	Name         string
	Value        abitypes.TypedValue
	DeclaredType abi.Type
}

// ContractCall is an immutable decoded call frame: the function name, its
// parameters in declaration order, and the function's state mutability.
// Constructed only via Decode.
type ContractCall struct {
	Name       string
	Params     []CallParameter
	Mutability string
	Selector   [4]byte
}

// Param returns the named parameter's value, or ok=false if absent.
func (c *ContractCall) Param(name string) (abitypes.TypedValue, bool) {
	for _, p := range c.Params {
		if p.Name == name {
			return p.Value, true
		}
	}
	return nil, false
}

// Decode parses raw calldata against reg: a 4-byte selector lookup followed
// by a strict decode of the declared input types (§4.2 steps 1-4).
func Decode(reg *abiregistry.Registry, input []byte) (*ContractCall, error) {
	if len(input) < 4 {
		return nil, xerrors.ShortInput(len(input))
	}

	var selector [4]byte
	copy(selector[:], input[:4])

	desc, err := reg.FindFunctionBySelector(selector)
	if err != nil {
		return nil, err
	}

	values, err := desc.Inputs.Unpack(input[4:])
	if err != nil {
		return nil, xerrors.DecodeFailure("unpack inputs for "+desc.Name, err)
	}
	if len(values) != len(desc.Inputs) {
		return nil, xerrors.DecodeFailure("unpacked value count mismatch for "+desc.Name, nil)
	}

	params := make([]CallParameter, 0, len(values))
	for i, arg := range desc.Inputs {
		tv, err := abitypes.FromABI(arg.Type, values[i])
		if err != nil {
			return nil, xerrors.DecodeFailure("translate param "+arg.Name+" of "+desc.Name, err)
		}
		params = append(params, CallParameter{
			Name:         arg.Name,
			Value:        tv,
			DeclaredType: arg.Type,
		})
	}

	return &ContractCall{
		Name:       desc.Name,
		Params:     params,
		Mutability: desc.Mutability,
		Selector:   selector,
	}, nil
}

// DecodeMulticall decodes the outer call and, if it is `multicall(bytes[])`,
// recursively decodes each inner blob as its own ContractCall (§4.2). An
// empty `data` array yields an empty, non-error result — the caller decides
// whether that is itself a failure.
func DecodeMulticall(reg *abiregistry.Registry, input []byte) ([]*ContractCall, error) {
	outer, err := Decode(reg, input)
	if err != nil {
		return nil, err
	}
	if outer.Name != "multicall" {
		return []*ContractCall{outer}, nil
	}

	dataVal, ok := outer.Param("data")
	if !ok {
		return nil, xerrors.DecodeFailure("multicall missing data parameter", nil)
	}
	arr, ok := dataVal.(abitypes.Array)
	if !ok {
		return nil, xerrors.DecodeFailure("multicall data parameter is not bytes[]", nil)
	}

	inner := make([]*ContractCall, 0, len(arr.Elems))
	for _, elem := range arr.Elems {
		raw, err := abitypes.AsBytes(elem)
		if err != nil {
			return nil, xerrors.DecodeFailure("multicall element is not bytes", err)
		}
		call, err := Decode(reg, raw)
		if err != nil {
			return nil, err
		}
		inner = append(inner, call)
	}
	return inner, nil
}
