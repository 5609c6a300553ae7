package calldata

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/copytrade/router-mirror/internal/abiregistry"
	"github.com/copytrade/router-mirror/internal/abitypes"
	"github.com/copytrade/router-mirror/internal/xerrors"
)

func testRegistry(t *testing.T) *abiregistry.Registry {
	t.Helper()
	reg, err := abiregistry.NewRouterRegistry(8)
	if err != nil {
		t.Fatalf("NewRouterRegistry: %v", err)
	}
	return reg
}

func TestDecodeShortInput(t *testing.T) {
	reg := testRegistry(t)
	if _, err := Decode(reg, []byte{1, 2, 3}); err == nil {
		t.Fatal("expected ShortInput error")
	} else if kind, _ := xerrors.KindOf(err); kind != xerrors.KindShortInput {
		t.Errorf("Kind = %s, want ShortInput", kind)
	}
}

func TestDecodeUnknownSelector(t *testing.T) {
	reg := testRegistry(t)
	if _, err := Decode(reg, []byte{0xde, 0xad, 0xbe, 0xef}); err == nil {
		t.Fatal("expected UnknownSelector error")
	} else if kind, _ := xerrors.KindOf(err); kind != xerrors.KindUnknownSelector {
		t.Errorf("Kind = %s, want UnknownSelector", kind)
	}
}

func TestDecodeSwapExactTokensForTokens(t *testing.T) {
	reg := testRegistry(t)
	tokenA := common.HexToAddress("0x1111111111111111111111111111111111111111")
	tokenB := common.HexToAddress("0x2222222222222222222222222222222222222222")
	recipient := common.HexToAddress("0x3333333333333333333333333333333333333333")

	input, err := reg.ABI().Pack("swapExactTokensForTokens",
		big.NewInt(1000),
		big.NewInt(1),
		[]common.Address{tokenA, tokenB},
		recipient,
	)
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}

	call, err := Decode(reg, input)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if call.Name != "swapExactTokensForTokens" {
		t.Errorf("Name = %q", call.Name)
	}

	recipientVal, ok := call.Param("to")
	if !ok {
		t.Fatal("missing 'to' param")
	}
	gotRecipient, err := abitypes.AsAddress(recipientVal)
	if err != nil {
		t.Fatalf("AsAddress: %v", err)
	}
	if gotRecipient != recipient {
		t.Errorf("recipient = %v, want %v", gotRecipient, recipient)
	}
}

func TestDecodeMulticallExpandsInnerCalls(t *testing.T) {
	reg := testRegistry(t)
	tokenA := common.HexToAddress("0x1111111111111111111111111111111111111111")
	tokenB := common.HexToAddress("0x2222222222222222222222222222222222222222")
	recipient := common.HexToAddress("0x3333333333333333333333333333333333333333")

	inner1, err := reg.ABI().Pack("swapExactTokensForTokens",
		big.NewInt(1000), big.NewInt(1), []common.Address{tokenA, tokenB}, recipient)
	if err != nil {
		t.Fatalf("Pack inner1: %v", err)
	}
	inner2, err := reg.ABI().Pack("swapExactTokensForTokens",
		big.NewInt(2000), big.NewInt(1), []common.Address{tokenB, tokenA}, recipient)
	if err != nil {
		t.Fatalf("Pack inner2: %v", err)
	}

	outer, err := reg.ABI().Pack("multicall", [][]byte{inner1, inner2})
	if err != nil {
		t.Fatalf("Pack multicall: %v", err)
	}

	calls, err := DecodeMulticall(reg, outer)
	if err != nil {
		t.Fatalf("DecodeMulticall: %v", err)
	}
	if len(calls) != 2 {
		t.Fatalf("got %d inner calls, want 2", len(calls))
	}
	for i, c := range calls {
		if c.Name != "swapExactTokensForTokens" {
			t.Errorf("call %d name = %q", i, c.Name)
		}
	}
}

func TestDecodeMulticallPassthroughForNonMulticall(t *testing.T) {
	reg := testRegistry(t)
	tokenA := common.HexToAddress("0x1111111111111111111111111111111111111111")
	tokenB := common.HexToAddress("0x2222222222222222222222222222222222222222")
	recipient := common.HexToAddress("0x3333333333333333333333333333333333333333")

	input, err := reg.ABI().Pack("swapExactTokensForTokens",
		big.NewInt(1000), big.NewInt(1), []common.Address{tokenA, tokenB}, recipient)
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}

	calls, err := DecodeMulticall(reg, input)
	if err != nil {
		t.Fatalf("DecodeMulticall: %v", err)
	}
	if len(calls) != 1 {
		t.Fatalf("got %d calls, want 1", len(calls))
	}
}
