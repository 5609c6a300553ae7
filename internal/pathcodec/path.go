// Package pathcodec implements the Uniswap-V3-style packed multi-hop path
// format used by the router's exactInput/exactOutput calls (§4.3):
//
//	address0 || (fee1 || address1) || (fee2 || address2) || ...
//
// each fee is a 3-byte big-endian uint24, each address 20 bytes. Minimum
// length is 43 bytes (one hop).
package pathcodec

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/copytrade/router-mirror/internal/xerrors"
)

const (
	addressLen = 20
	feeLen     = 3
	hopStride  = feeLen + addressLen // 23
	minLen     = addressLen + hopStride
	maxFee     = 1<<24 - 1
)

// Hop is a single pool traversal: (first_token, fee, second_token).
type Hop struct {
	FirstToken  common.Address
	Fee         uint32 // fits in 24 bits, enforced by Encode
	SecondToken common.Address
}

// Decode parses a packed V3 path into its hop sequence. Per SPEC_FULL.md's
// resolution of the open question carried from the source: a length that
// does not satisfy (|b|-20) mod 23 == 0 is a DecodeFailure, not a silently
// truncated partial hop.
func Decode(b []byte) ([]Hop, error) {
	if len(b) < minLen {
		return nil, xerrors.DecodeFailure("packed path shorter than one hop", nil)
	}
	if (len(b)-addressLen)%hopStride != 0 {
		return nil, xerrors.DecodeFailure("packed path length is not 20 + 23*k", nil)
	}

	numHops := (len(b) - addressLen) / hopStride
	hops := make([]Hop, 0, numHops)

	first := common.BytesToAddress(b[0:addressLen])
	offset := addressLen
	for i := 0; i < numHops; i++ {
		fee := uint32(b[offset])<<16 | uint32(b[offset+1])<<8 | uint32(b[offset+2])
		second := common.BytesToAddress(b[offset+feeLen : offset+feeLen+addressLen])
		hops = append(hops, Hop{FirstToken: first, Fee: fee, SecondToken: second})
		first = second
		offset += hopStride
	}
	return hops, nil
}

// Encode serializes a non-empty, contiguous hop sequence (hops[i].SecondToken
// == hops[i+1].FirstToken) back into packed path bytes.
func Encode(hops []Hop) ([]byte, error) {
	if len(hops) == 0 {
		return nil, xerrors.DecodeFailure("cannot encode an empty hop sequence", nil)
	}
	for i, h := range hops {
		if h.Fee > maxFee {
			return nil, xerrors.DecodeFailure("fee exceeds 24 bits", nil)
		}
		if i > 0 && hops[i-1].SecondToken != h.FirstToken {
			return nil, xerrors.DecodeFailure("non-contiguous hop sequence", nil)
		}
	}

	out := make([]byte, 0, addressLen+len(hops)*hopStride)
	out = append(out, hops[0].FirstToken.Bytes()...)
	for _, h := range hops {
		out = append(out, byte(h.Fee>>16), byte(h.Fee>>8), byte(h.Fee))
		out = append(out, h.SecondToken.Bytes()...)
	}
	return out, nil
}

// Invert reverses the hop sequence and swaps first/second token within each
// hop, so a path observed for an "exact out" call can be replayed as an
// "exact in" path against the paired selector. This operation is not present
// anywhere in the retrieved predecessor source (confirmed absent); it is
// authored directly from the hop-sequence representation Decode/Encode share,
// per §4.3's explicit requirement.
func Invert(hops []Hop) []Hop {
	out := make([]Hop, len(hops))
	n := len(hops)
	for i, h := range hops {
		out[n-1-i] = Hop{
			FirstToken:  h.SecondToken,
			Fee:         h.Fee,
			SecondToken: h.FirstToken,
		}
	}
	return out
}

// InvertBytes is the packed-bytes convenience wrapper around Invert, used by
// the Copy-Trade Planner when replaying an exact-out multi-hop path.
func InvertBytes(packed []byte) ([]byte, error) {
	hops, err := Decode(packed)
	if err != nil {
		return nil, err
	}
	return Encode(Invert(hops))
}

// FeeAsU256 widens a decoded 24-bit fee to the *uint256.Int representation
// the rest of the pipeline uses for amounts (§3's U256 type).
func FeeAsU256(fee uint32) *uint256.Int {
	return uint256.NewInt(uint64(fee))
}
