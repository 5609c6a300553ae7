// Package abitypes provides a sealed TypedValue sum type for values decoded
// out of EVM ABI calldata. It replaces the unsafe reinterpretation the
// original implementation used to read foreign ABI descriptor values through
// a cast: every go-ethereum abi.Type is translated here through an explicit
// switch, and every accessor fails with a typed TypeMismatch error instead of
// panicking on the wrong variant.
package abitypes

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/copytrade/router-mirror/internal/xerrors"
)

// TypedValue is implemented only by the variants in this package; the
// unexported marker method seals it against outside implementations.
type TypedValue interface {
	isTypedValue()

	// ABIType returns the go-ethereum ABI type this value was decoded from.
	ABIType() abi.Type
}

// Address is a 20-byte account/contract identifier.
type Address struct {
	Val common.Address
}

func (Address) isTypedValue()        {}
func (Address) ABIType() abi.Type    { t, _ := abi.NewType("address", "", nil); return t }
func (v Address) AsAddress() (common.Address, error) { return v.Val, nil }

// FixedBytes is a fixed-width byte array (bytes1..bytes32).
type FixedBytes struct {
	N   int
	Val []byte
}

func (FixedBytes) isTypedValue() {}
func (v FixedBytes) ABIType() abi.Type {
	t, _ := abi.NewType(fixedBytesTypeName(v.N), "", nil)
	return t
}

func fixedBytesTypeName(n int) string {
	switch n {
	case 32:
		return "bytes32"
	default:
		return "bytes" + itoa(n)
	}
}

// Bytes is a variable-length byte string.
type Bytes struct {
	Val []byte
}

func (Bytes) isTypedValue()     {}
func (Bytes) ABIType() abi.Type { t, _ := abi.NewType("bytes", "", nil); return t }

// Int is a signed integer (int8..int256), always carried as a *big.Int.
type Int struct {
	Bits int
	Val  *big.Int
}

func (Int) isTypedValue() {}
func (v Int) ABIType() abi.Type {
	t, _ := abi.NewType("int"+itoa(v.Bits), "", nil)
	return t
}

// Uint is an unsigned integer (uint8..uint256), always carried as a *big.Int.
type Uint struct {
	Bits int
	Val  *big.Int
}

func (Uint) isTypedValue() {}
func (v Uint) ABIType() abi.Type {
	t, _ := abi.NewType("uint"+itoa(v.Bits), "", nil)
	return t
}

// Bool is a boolean value.
type Bool struct {
	Val bool
}

func (Bool) isTypedValue()     {}
func (Bool) ABIType() abi.Type { t, _ := abi.NewType("bool", "", nil); return t }

// String is a UTF-8 string value.
type String struct {
	Val string
}

func (String) isTypedValue()     {}
func (String) ABIType() abi.Type { t, _ := abi.NewType("string", "", nil); return t }

// FixedArray is a fixed-length homogeneous array, e.g. address[3].
type FixedArray struct {
	Elem  abi.Type
	Elems []TypedValue
}

func (FixedArray) isTypedValue() {}
func (v FixedArray) ABIType() abi.Type {
	t, _ := abi.NewType(v.Elem.String()+"["+itoa(len(v.Elems))+"]", "", nil)
	return t
}

// Array is a variable-length homogeneous array, e.g. uint256[].
type Array struct {
	Elem  abi.Type
	Elems []TypedValue
}

func (Array) isTypedValue() {}
func (v Array) ABIType() abi.Type {
	t, _ := abi.NewType(v.Elem.String()+"[]", "", nil)
	return t
}

// Tuple is a heterogeneous struct, keyed by the ABI-declared field names in order.
type Tuple struct {
	Names []string
	Elems []TypedValue
	Raw   abi.Type
}

func (Tuple) isTypedValue()     {}
func (v Tuple) ABIType() abi.Type { return v.Raw }

// --- typed accessors -------------------------------------------------------

// AsUint returns v's underlying integer if v is a Uint, else TypeMismatch.
func AsUint(v TypedValue) (*big.Int, error) {
	u, ok := v.(Uint)
	if !ok {
		return nil, xerrors.TypeMismatch("Uint", typeName(v))
	}
	return u.Val, nil
}

// AsInt returns v's underlying integer if v is an Int, else TypeMismatch.
func AsInt(v TypedValue) (*big.Int, error) {
	i, ok := v.(Int)
	if !ok {
		return nil, xerrors.TypeMismatch("Int", typeName(v))
	}
	return i.Val, nil
}

// AsAddress returns v's underlying address if v is an Address, else TypeMismatch.
func AsAddress(v TypedValue) (common.Address, error) {
	a, ok := v.(Address)
	if !ok {
		return common.Address{}, xerrors.TypeMismatch("Address", typeName(v))
	}
	return a.Val, nil
}

// AsBytes returns v's underlying bytes if v is Bytes or FixedBytes, else TypeMismatch.
func AsBytes(v TypedValue) ([]byte, error) {
	switch b := v.(type) {
	case Bytes:
		return b.Val, nil
	case FixedBytes:
		return b.Val, nil
	default:
		return nil, xerrors.TypeMismatch("Bytes", typeName(v))
	}
}

// AsBool returns v's underlying boolean if v is a Bool, else TypeMismatch.
func AsBool(v TypedValue) (bool, error) {
	b, ok := v.(Bool)
	if !ok {
		return false, xerrors.TypeMismatch("Bool", typeName(v))
	}
	return b.Val, nil
}

// AsString returns v's underlying string if v is a String, else TypeMismatch.
func AsString(v TypedValue) (string, error) {
	s, ok := v.(String)
	if !ok {
		return "", xerrors.TypeMismatch("String", typeName(v))
	}
	return s.Val, nil
}

func typeName(v TypedValue) string {
	switch v.(type) {
	case Address:
		return "Address"
	case FixedBytes:
		return "FixedBytes"
	case Bytes:
		return "Bytes"
	case Int:
		return "Int"
	case Uint:
		return "Uint"
	case Bool:
		return "Bool"
	case String:
		return "String"
	case FixedArray:
		return "FixedArray"
	case Array:
		return "Array"
	case Tuple:
		return "Tuple"
	default:
		return "unknown"
	}
}

// FromABI translates a value decoded by go-ethereum's abi.Arguments.Unpack
// (tagged with its declared abi.Type) into a TypedValue. This is the explicit
// translation step that replaces the source's unsafe cast-based reinterpretation.
func FromABI(t abi.Type, value any) (TypedValue, error) {
	switch t.T {
	case abi.AddressTy:
		addr, ok := value.(common.Address)
		if !ok {
			return nil, xerrors.DecodeFailure("address value has unexpected go type", nil)
		}
		return Address{Val: addr}, nil

	case abi.FixedBytesTy:
		rv, err := toByteSlice(value)
		if err != nil {
			return nil, err
		}
		return FixedBytes{N: t.Size, Val: rv}, nil

	case abi.BytesTy:
		rv, ok := value.([]byte)
		if !ok {
			return nil, xerrors.DecodeFailure("bytes value has unexpected go type", nil)
		}
		return Bytes{Val: rv}, nil

	case abi.IntTy:
		bi, err := toBigInt(value)
		if err != nil {
			return nil, err
		}
		return Int{Bits: t.Size, Val: bi}, nil

	case abi.UintTy:
		bi, err := toBigInt(value)
		if err != nil {
			return nil, err
		}
		return Uint{Bits: t.Size, Val: bi}, nil

	case abi.BoolTy:
		b, ok := value.(bool)
		if !ok {
			return nil, xerrors.DecodeFailure("bool value has unexpected go type", nil)
		}
		return Bool{Val: b}, nil

	case abi.StringTy:
		s, ok := value.(string)
		if !ok {
			return nil, xerrors.DecodeFailure("string value has unexpected go type", nil)
		}
		return String{Val: s}, nil

	case abi.SliceTy:
		elems, err := decodeSequence(*t.Elem, value)
		if err != nil {
			return nil, err
		}
		return Array{Elem: *t.Elem, Elems: elems}, nil

	case abi.ArrayTy:
		elems, err := decodeSequence(*t.Elem, value)
		if err != nil {
			return nil, err
		}
		return FixedArray{Elem: *t.Elem, Elems: elems}, nil

	case abi.TupleTy:
		return decodeTuple(t, value)

	default:
		return nil, xerrors.DecodeFailure("unsupported abi type "+t.String(), nil)
	}
}

func toByteSlice(value any) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	default:
		// go-ethereum unpacks fixed-size byte arrays as [N]byte; copy those
		// into a slice through reflection (asFixedArray).
		if b, ok := asFixedArray(value); ok {
			return b, nil
		}
		return nil, xerrors.DecodeFailure("fixed bytes value has unexpected go type", nil)
	}
}

func toBigInt(value any) (*big.Int, error) {
	bi, ok := value.(*big.Int)
	if !ok {
		return nil, xerrors.DecodeFailure("integer value has unexpected go type", nil)
	}
	return bi, nil
}

func decodeSequence(elemType abi.Type, value any) ([]TypedValue, error) {
	items, err := asAnySlice(value)
	if err != nil {
		return nil, err
	}
	out := make([]TypedValue, 0, len(items))
	for _, item := range items {
		tv, err := FromABI(elemType, item)
		if err != nil {
			return nil, err
		}
		out = append(out, tv)
	}
	return out, nil
}

func decodeTuple(t abi.Type, value any) (TypedValue, error) {
	fields, ok := asStructFields(value)
	if !ok {
		return nil, xerrors.DecodeFailure("tuple value has unexpected go type", nil)
	}
	names := make([]string, 0, len(t.TupleElems))
	elems := make([]TypedValue, 0, len(t.TupleElems))
	for i, elemType := range t.TupleElems {
		name := t.TupleRawNames[i]
		fv, ok := fields[abi.ToCamelCase(name)]
		if !ok {
			return nil, xerrors.DecodeFailure("tuple missing field "+name, nil)
		}
		tv, err := FromABI(*elemType, fv)
		if err != nil {
			return nil, err
		}
		names = append(names, name)
		elems = append(elems, tv)
	}
	return Tuple{Names: names, Elems: elems, Raw: t}, nil
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
