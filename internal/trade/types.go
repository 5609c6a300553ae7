package trade

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/copytrade/router-mirror/internal/calldata"
	"github.com/copytrade/router-mirror/internal/domain"
)

// SelectorKind enumerates the six swap call variants the Trade Extractor
// recognizes (§4.4). An int-backed enum plus a function-name->kind map is the
// natural Go shape for what the specification expresses as a tagged union.
type SelectorKind int

const (
	SwapExactTokensForTokens SelectorKind = iota
	SwapTokensForExactTokens
	ExactInputSingle
	ExactOutputSingle
	ExactInput
	ExactOutput
)

func (k SelectorKind) String() string {
	switch k {
	case SwapExactTokensForTokens:
		return "swapExactTokensForTokens"
	case SwapTokensForExactTokens:
		return "swapTokensForExactTokens"
	case ExactInputSingle:
		return "exactInputSingle"
	case ExactOutputSingle:
		return "exactOutputSingle"
	case ExactInput:
		return "exactInput"
	case ExactOutput:
		return "exactOutput"
	default:
		return "unknown"
	}
}

// IsExactOut reports whether this selector discloses amount_out rather than
// amount_in (§4.4 table, "side disclosed" column).
func (k SelectorKind) IsExactOut() bool {
	switch k {
	case SwapTokensForExactTokens, ExactOutputSingle, ExactOutput:
		return true
	default:
		return false
	}
}

// Version reports whether the selector belongs to the V2 or V3 pool family.
func (k SelectorKind) Version() domain.PoolVersion {
	switch k {
	case SwapExactTokensForTokens, SwapTokensForExactTokens:
		return domain.V2
	default:
		return domain.V3
	}
}

// PairedExactIn returns the exact-in selector variant that replays this
// exact-out selector, per §4.7's planner policy. It is only meaningful when
// k.IsExactOut() is true.
func (k SelectorKind) PairedExactIn() SelectorKind {
	switch k {
	case SwapTokensForExactTokens:
		return SwapExactTokensForTokens
	case ExactOutputSingle:
		return ExactInputSingle
	case ExactOutput:
		return ExactInput
	default:
		return k
	}
}

// selectorNames maps the six recognized function names to their SelectorKind,
// driving the Extractor's dispatch over decoded multicall elements.
var selectorNames = map[string]SelectorKind{
	"swapExactTokensForTokens": SwapExactTokensForTokens,
	"swapTokensForExactTokens": SwapTokensForExactTokens,
	"exactInputSingle":         ExactInputSingle,
	"exactOutputSingle":        ExactOutputSingle,
	"exactInput":               ExactInput,
	"exactOutput":              ExactOutput,
}

// DexPathKind tags which DexPath variant is populated.
type DexPathKind int

const (
	PathV2 DexPathKind = iota
	PathV3SingleHop
	PathV3MultiHop
)

// DexPath is the sum type `V2(...) | V3SingleHop{...} | V3MultiHop(...)`
// from §3. Exactly one field set is meaningful, selected by Kind.
type DexPath struct {
	Kind DexPathKind

	// V2: ordered token addresses, length >= 2.
	V2Path []common.Address

	// V3SingleHop
	TokenIn  common.Address
	TokenOut common.Address
	Fee      *domain.U256

	// V3MultiHop: packed bytes, length = 20 + 23*k for k >= 1.
	V3Packed []byte
}

// Swap is the intermediate, per-inner-call record built by the Trade
// Extractor before and after reconstruction (§3). Before reconstruction
// exactly one of AmountIn/AmountOut is nil; after, both are set.
type Swap struct {
	Selector         SelectorKind
	Recipient        common.Address
	TokenIn          common.Address
	TokenOut         common.Address
	AmountIn         *domain.U256 // nil until reconstructed for exact-out variants
	AmountOut        *domain.U256 // nil until reconstructed for exact-in variants
	AmountOutMinimum *domain.U256 // nil for exact-out variants
	AmountInMaximum  *domain.U256 // nil for exact-in variants
	Path             DexPath
	Call             *calldata.ContractCall // the original decoded inner call, for replay
}

// Trade is the aggregated result of reconstructing a full (possibly
// multi-hop) swap transaction (§3).
type Trade struct {
	Chain         domain.Chain
	RouterAddress common.Address
	DexKind       domain.DexKind
	TokenIn       common.Address
	TokenOut      common.Address
	Caller        common.Address
	AmountIn      *domain.U256
	AmountOut     *domain.U256
	Swaps         []Swap
}
