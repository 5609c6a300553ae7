package planner

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/copytrade/router-mirror/internal/abiregistry"
	"github.com/copytrade/router-mirror/internal/abitypes"
	"github.com/copytrade/router-mirror/internal/calldata"
	"github.com/copytrade/router-mirror/internal/domain"
	"github.com/copytrade/router-mirror/internal/trade"
)

var (
	tokenA  = common.HexToAddress("0x1111111111111111111111111111111111111111")
	tokenB  = common.HexToAddress("0x2222222222222222222222222222222222222222")
	tokenC  = common.HexToAddress("0x3333333333333333333333333333333333333333")
	router  = common.HexToAddress("0x9999999999999999999999999999999999999999")
	myself  = common.HexToAddress("0x4444444444444444444444444444444444444444")
)

func u256(v int64) *domain.U256 {
	u, err := domain.NewU256FromBig(big.NewInt(v))
	if err != nil {
		panic(err)
	}
	return u
}

func newRouterReg(t *testing.T) *abiregistry.Registry {
	t.Helper()
	reg, err := abiregistry.NewRouterRegistry(8)
	if err != nil {
		t.Fatalf("NewRouterRegistry: %v", err)
	}
	return reg
}

func TestPlanDirectV2SwapExactIn(t *testing.T) {
	reg := newRouterReg(t)
	pl := New(reg)

	tr := &trade.Trade{
		RouterAddress: router,
		TokenIn:       tokenA,
		TokenOut:      tokenB,
		Swaps: []trade.Swap{
			{
				Selector: trade.SwapExactTokensForTokens,
				TokenIn:  tokenA,
				TokenOut: tokenB,
				Path:     trade.DexPath{Kind: trade.PathV2, V2Path: []common.Address{tokenA, tokenB}},
			},
		},
	}

	plan, err := pl.Plan(tr, u256(1000), u256(1), myself)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if plan.Target != router {
		t.Errorf("Target = %v, want %v", plan.Target, router)
	}

	call, err := calldata.Decode(reg, plan.Calldata)
	if err != nil {
		t.Fatalf("Decode replayed calldata: %v", err)
	}
	if call.Name != "swapExactTokensForTokens" {
		t.Fatalf("Name = %q, want swapExactTokensForTokens", call.Name)
	}
	toVal, ok := call.Param("to")
	if !ok {
		t.Fatal("missing to param")
	}
	to, err := abitypes.AsAddress(toVal)
	if err != nil || to != myself {
		t.Errorf("to = %v, %v; want %v", to, err, myself)
	}
}

func TestPlanDirectReplaysExactOutAsExactIn(t *testing.T) {
	reg := newRouterReg(t)
	pl := New(reg)

	tr := &trade.Trade{
		RouterAddress: router,
		TokenIn:       tokenA,
		TokenOut:      tokenB,
		Swaps: []trade.Swap{
			{
				Selector: trade.SwapTokensForExactTokens,
				TokenIn:  tokenA,
				TokenOut: tokenB,
				Path:     trade.DexPath{Kind: trade.PathV2, V2Path: []common.Address{tokenA, tokenB}},
			},
		},
	}

	plan, err := pl.Plan(tr, u256(500), u256(1), myself)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}

	call, err := calldata.Decode(reg, plan.Calldata)
	if err != nil {
		t.Fatalf("Decode replayed calldata: %v", err)
	}
	if call.Name != "swapExactTokensForTokens" {
		t.Fatalf("Name = %q, want swapExactTokensForTokens (paired exact-in)", call.Name)
	}
}

func TestPlanDirectTokenMismatchRejected(t *testing.T) {
	reg := newRouterReg(t)
	pl := New(reg)

	tr := &trade.Trade{
		RouterAddress: router,
		TokenIn:       tokenC, // does not match the swap's actual token_in
		TokenOut:      tokenB,
		Swaps: []trade.Swap{
			{
				Selector: trade.SwapExactTokensForTokens,
				TokenIn:  tokenA,
				TokenOut: tokenB,
				Path:     trade.DexPath{Kind: trade.PathV2, V2Path: []common.Address{tokenA, tokenB}},
			},
		},
	}

	if _, err := pl.Plan(tr, u256(1000), u256(1), myself); err == nil {
		t.Fatal("expected PlanInconsistent error, got nil")
	}
}

func TestPlanMulticallHopPolicy(t *testing.T) {
	reg := newRouterReg(t)
	pl := New(reg)

	fee := u256(500)
	tr := &trade.Trade{
		RouterAddress: router,
		TokenIn:       tokenA,
		TokenOut:      tokenC,
		Swaps: []trade.Swap{
			{
				Selector: trade.ExactInputSingle,
				TokenIn:  tokenA,
				TokenOut: tokenB,
				Path:     trade.DexPath{Kind: trade.PathV3SingleHop, TokenIn: tokenA, TokenOut: tokenB, Fee: fee},
			},
			{
				Selector: trade.ExactInputSingle,
				TokenIn:  tokenB,
				TokenOut: tokenC,
				Path:     trade.DexPath{Kind: trade.PathV3SingleHop, TokenIn: tokenB, TokenOut: tokenC, Fee: fee},
			},
		},
	}

	plan, err := pl.Plan(tr, u256(1000), u256(1), myself)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}

	outer, err := calldata.Decode(reg, plan.Calldata)
	if err != nil {
		t.Fatalf("Decode outer: %v", err)
	}
	if outer.Name != "multicall" {
		t.Fatalf("outer call = %q, want multicall", outer.Name)
	}

	inner, err := calldata.DecodeMulticall(reg, plan.Calldata)
	if err != nil {
		t.Fatalf("DecodeMulticall: %v", err)
	}
	if len(inner) != 2 {
		t.Fatalf("got %d inner calls, want 2", len(inner))
	}

	firstParams, ok := inner[0].Param("params")
	if !ok {
		t.Fatal("hop 0 missing params")
	}
	tuple, ok := firstParams.(abitypes.Tuple)
	if !ok {
		t.Fatalf("hop 0 params is %T, want Tuple", firstParams)
	}
	recipientVal := fieldByName(t, tuple, "recipient")
	recipientAddr, err := abitypes.AsAddress(recipientVal)
	if err != nil {
		t.Fatalf("AsAddress(hop0 recipient): %v", err)
	}
	if recipientAddr != domain.SelfRecipientSentinel {
		t.Errorf("hop 0 recipient = %v, want self-recipient sentinel", recipientAddr)
	}

	lastParams, ok := inner[1].Param("params")
	if !ok {
		t.Fatal("hop 1 missing params")
	}
	lastTuple, ok := lastParams.(abitypes.Tuple)
	if !ok {
		t.Fatalf("hop 1 params is %T, want Tuple", lastParams)
	}
	lastRecipient, err := abitypes.AsAddress(fieldByName(t, lastTuple, "recipient"))
	if err != nil {
		t.Fatalf("AsAddress(hop1 recipient): %v", err)
	}
	if lastRecipient != myself {
		t.Errorf("hop 1 recipient = %v, want %v", lastRecipient, myself)
	}
}

func fieldByName(t *testing.T, tup abitypes.Tuple, name string) abitypes.TypedValue {
	t.Helper()
	for i, n := range tup.Names {
		if n == name {
			return tup.Elems[i]
		}
	}
	t.Fatalf("tuple has no field %q", name)
	return nil
}

func TestPlanRejectsEmptyTrade(t *testing.T) {
	reg := newRouterReg(t)
	pl := New(reg)
	tr := &trade.Trade{RouterAddress: router, TokenIn: tokenA, TokenOut: tokenB}
	if _, err := pl.Plan(tr, u256(1), u256(1), myself); err == nil {
		t.Fatal("expected PlanInconsistent for a trade with no swaps")
	}
}
