package watcher

import (
	"errors"
	"testing"

	ethereum "github.com/ethereum/go-ethereum"

	"github.com/copytrade/router-mirror/internal/xerrors"
)

func TestIsNotFoundErrUnwrapsThroughXerrors(t *testing.T) {
	wrapped := xerrors.RpcFailure("transaction by hash", ethereum.NotFound)
	if !isNotFoundErr(wrapped) {
		t.Fatal("isNotFoundErr did not recognize ethereum.NotFound wrapped in an xerrors.Error")
	}
}

func TestIsNotFoundErrRejectsOtherErrors(t *testing.T) {
	if isNotFoundErr(errors.New("connection refused")) {
		t.Fatal("isNotFoundErr misclassified an unrelated error")
	}
	if isNotFoundErr(xerrors.RpcFailure("timeout", errors.New("deadline exceeded"))) {
		t.Fatal("isNotFoundErr misclassified a non-NotFound rpc failure")
	}
}

func TestWithPollIntervalAndMaxRetriesOptions(t *testing.T) {
	w := New(nil, WithPollInterval(0), WithMaxRetries(2))
	if w.maxRetries != 2 {
		t.Errorf("maxRetries = %d, want 2", w.maxRetries)
	}
	if w.pollInterval != 0 {
		t.Errorf("pollInterval = %v, want 0", w.pollInterval)
	}
}
