package domain

import (
	"math/big"
	"testing"
)

func TestNewU256FromBig(t *testing.T) {
	t.Run("in range", func(t *testing.T) {
		got, err := NewU256FromBig(big.NewInt(12345))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Uint64() != 12345 {
			t.Errorf("got %d, want 12345", got.Uint64())
		}
	})

	t.Run("overflow", func(t *testing.T) {
		huge := new(big.Int).Lsh(big.NewInt(1), 257)
		if _, err := NewU256FromBig(huge); err == nil {
			t.Fatal("expected overflow error, got nil")
		}
	})

	t.Run("negative", func(t *testing.T) {
		if _, err := NewU256FromBig(big.NewInt(-1)); err == nil {
			t.Fatal("expected overflow error for negative value, got nil")
		}
	})
}

func TestZeroU256(t *testing.T) {
	z := ZeroU256()
	if !z.IsZero() {
		t.Errorf("ZeroU256() = %v, want 0", z)
	}
}

func TestTxStatusString(t *testing.T) {
	cases := []struct {
		s    TxStatus
		want string
	}{
		{TxUnknown, "Unknown"},
		{TxPending, "Pending"},
		{TxNotFound, "NotFound"},
		{TxSuccessful, "Successful"},
		{TxReverted, "Reverted"},
	}
	for _, c := range cases {
		if got := c.s.String(); got != c.want {
			t.Errorf("TxStatus(%d).String() = %q, want %q", c.s, got, c.want)
		}
	}
}
