// Package xerrors defines the error taxonomy shared by every component in the
// copy-trade pipeline: a small set of typed errors, each carrying enough
// context to populate a structured log line without a type switch at the
// call site.
package xerrors

import (
	"errors"
	"fmt"
)

// Kind identifies which class of failure occurred, matching the {kind} field
// of every structured log line the Dispatcher emits.
type Kind string

const (
	KindConfigError           Kind = "ConfigError"
	KindRpcFailure            Kind = "RpcFailure"
	KindNotFound              Kind = "NotFound"
	KindReverted              Kind = "Reverted"
	KindPending               Kind = "Pending"
	KindShortInput            Kind = "ShortInput"
	KindUnknownSelector       Kind = "UnknownSelector"
	KindDecodeFailure         Kind = "DecodeFailure"
	KindReconstructionFailure Kind = "ReconstructionFailure"
	KindUnknownRouter         Kind = "UnknownRouter"
	KindPlanInconsistent      Kind = "PlanInconsistent"
	KindPlanRejectedByNode    Kind = "PlanRejectedByNode"
	KindTypeMismatch          Kind = "TypeMismatch"
)

// Error is the common shape every taxonomy error implements: a kind tag, a
// human-readable detail, and an optional wrapped cause.
type Error struct {
	kind   Kind
	detail string
	err    error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", e.kind, e.detail, e.err)
	}
	return fmt.Sprintf("%s: %s", e.kind, e.detail)
}

func (e *Error) Unwrap() error { return e.err }

// Kind returns the error's taxonomy tag for structured logging.
func (e *Error) Kind() Kind { return e.kind }

func newErr(kind Kind, detail string, cause error) *Error {
	return &Error{kind: kind, detail: detail, err: cause}
}

// ConfigError reports a fatal startup misconfiguration (missing ABI, router
// table entry, signing key, ...).
func ConfigError(detail string, cause error) *Error {
	return newErr(KindConfigError, detail, cause)
}

// RpcFailure reports a transport or protocol error talking to the node.
func RpcFailure(detail string, cause error) *Error {
	return newErr(KindRpcFailure, detail, cause)
}

// NotFound reports that a transaction hash is unknown to the node.
func NotFound(hash string) *Error {
	return newErr(KindNotFound, "transaction not found: "+hash, nil)
}

// Reverted reports a transaction that landed on-chain but failed.
func Reverted(hash string) *Error {
	return newErr(KindReverted, "transaction reverted: "+hash, nil)
}

// Pending reports a transaction observed in the mempool but not yet mined
// within the Watcher's bounded poll window.
func Pending(hash string) *Error {
	return newErr(KindPending, "transaction still pending: "+hash, nil)
}

// ShortInput reports calldata shorter than a 4-byte selector.
func ShortInput(length int) *Error {
	return newErr(KindShortInput, fmt.Sprintf("input length %d < 4", length), nil)
}

// UnknownSelector reports a 4-byte selector absent from the ABI Registry.
func UnknownSelector(selector [4]byte) *Error {
	return newErr(KindUnknownSelector, fmt.Sprintf("selector 0x%x not in registry", selector), nil)
}

// DecodeFailure reports malformed calldata that matched a known selector but
// failed to decode against its declared input types.
func DecodeFailure(detail string, cause error) *Error {
	return newErr(KindDecodeFailure, detail, cause)
}

// ReconstructionFailure reports a missing Transfer log needed to recover an
// undisclosed trade side.
func ReconstructionFailure(detail string) *Error {
	return newErr(KindReconstructionFailure, detail, nil)
}

// UnknownRouter reports a target contract absent from the Router DEX Table.
func UnknownRouter(chain string, address string) *Error {
	return newErr(KindUnknownRouter, fmt.Sprintf("no dex entry for %s/%s", chain, address), nil)
}

// PlanInconsistent reports a planner invariant violation (token mismatch
// between the observed trade and the emitted plan).
func PlanInconsistent(detail string) *Error {
	return newErr(KindPlanInconsistent, detail, nil)
}

// PlanRejectedByNode reports a gas-estimation failure for an otherwise valid plan.
func PlanRejectedByNode(detail string, cause error) *Error {
	return newErr(KindPlanRejectedByNode, detail, cause)
}

// TypeMismatch reports a TypedValue accessed through the wrong variant accessor.
func TypeMismatch(expected, got string) *Error {
	return newErr(KindTypeMismatch, fmt.Sprintf("expected %s, got %s", expected, got), nil)
}

// KindOf extracts the taxonomy Kind from err, walking the Unwrap chain. It
// returns ("", false) if no *Error is found anywhere in the chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.kind, true
	}
	return "", false
}
