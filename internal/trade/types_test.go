package trade

import (
	"testing"

	"github.com/copytrade/router-mirror/internal/domain"
)

func TestSelectorKindIsExactOut(t *testing.T) {
	cases := []struct {
		k    SelectorKind
		want bool
	}{
		{SwapExactTokensForTokens, false},
		{SwapTokensForExactTokens, true},
		{ExactInputSingle, false},
		{ExactOutputSingle, true},
		{ExactInput, false},
		{ExactOutput, true},
	}
	for _, c := range cases {
		t.Run(c.k.String(), func(t *testing.T) {
			if got := c.k.IsExactOut(); got != c.want {
				t.Errorf("%s.IsExactOut() = %v, want %v", c.k, got, c.want)
			}
		})
	}
}

func TestSelectorKindPairedExactIn(t *testing.T) {
	cases := []struct {
		k    SelectorKind
		want SelectorKind
	}{
		{SwapTokensForExactTokens, SwapExactTokensForTokens},
		{ExactOutputSingle, ExactInputSingle},
		{ExactOutput, ExactInput},
		{SwapExactTokensForTokens, SwapExactTokensForTokens},
	}
	for _, c := range cases {
		t.Run(c.k.String(), func(t *testing.T) {
			if got := c.k.PairedExactIn(); got != c.want {
				t.Errorf("%s.PairedExactIn() = %s, want %s", c.k, got, c.want)
			}
		})
	}
}

func TestSelectorKindVersion(t *testing.T) {
	v2 := []SelectorKind{SwapExactTokensForTokens, SwapTokensForExactTokens}
	v3 := []SelectorKind{ExactInputSingle, ExactOutputSingle, ExactInput, ExactOutput}
	for _, k := range v2 {
		if k.Version() != domain.V2 {
			t.Errorf("%s.Version() should be V2", k)
		}
	}
	for _, k := range v3 {
		if k.Version() == domain.V2 {
			t.Errorf("%s.Version() should not be V2", k)
		}
	}
}

func TestSelectorNamesMatchesString(t *testing.T) {
	for name, kind := range selectorNames {
		if kind.String() != name {
			t.Errorf("selectorNames[%q] = %s, names disagree", name, kind)
		}
	}
}
