package abitypes

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/copytrade/router-mirror/internal/xerrors"
)

func TestAsAccessorsHappyPath(t *testing.T) {
	addr := common.HexToAddress("0x1111111111111111111111111111111111111111")
	if got, err := AsAddress(Address{Val: addr}); err != nil || got != addr {
		t.Errorf("AsAddress = %v, %v; want %v, nil", got, err, addr)
	}

	if got, err := AsUint(Uint{Bits: 256, Val: big.NewInt(42)}); err != nil || got.Cmp(big.NewInt(42)) != 0 {
		t.Errorf("AsUint = %v, %v; want 42, nil", got, err)
	}

	if got, err := AsInt(Int{Bits: 256, Val: big.NewInt(-7)}); err != nil || got.Cmp(big.NewInt(-7)) != 0 {
		t.Errorf("AsInt = %v, %v; want -7, nil", got, err)
	}

	if got, err := AsBytes(Bytes{Val: []byte{1, 2, 3}}); err != nil || len(got) != 3 {
		t.Errorf("AsBytes = %v, %v", got, err)
	}

	if got, err := AsBytes(FixedBytes{N: 4, Val: []byte{1, 2, 3, 4}}); err != nil || len(got) != 4 {
		t.Errorf("AsBytes(FixedBytes) = %v, %v", got, err)
	}

	if got, err := AsBool(Bool{Val: true}); err != nil || !got {
		t.Errorf("AsBool = %v, %v; want true, nil", got, err)
	}

	if got, err := AsString(String{Val: "hi"}); err != nil || got != "hi" {
		t.Errorf("AsString = %v, %v; want hi, nil", got, err)
	}
}

func TestAsAccessorsTypeMismatch(t *testing.T) {
	_, err := AsAddress(Uint{Bits: 256, Val: big.NewInt(1)})
	if err == nil {
		t.Fatal("expected TypeMismatch, got nil")
	}
	kind, ok := xerrors.KindOf(err)
	if !ok || kind != xerrors.KindTypeMismatch {
		t.Errorf("KindOf = %v, %v; want TypeMismatch, true", kind, ok)
	}
}

func TestFromABIAddressAndUint(t *testing.T) {
	addrTy, err := abi.NewType("address", "", nil)
	if err != nil {
		t.Fatalf("abi.NewType: %v", err)
	}
	addr := common.HexToAddress("0x2222222222222222222222222222222222222222")
	tv, err := FromABI(addrTy, addr)
	if err != nil {
		t.Fatalf("FromABI(address): %v", err)
	}
	got, err := AsAddress(tv)
	if err != nil || got != addr {
		t.Errorf("round trip address = %v, %v; want %v, nil", got, err, addr)
	}
}
