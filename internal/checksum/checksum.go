// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FieldSync

// Package checksum implements the order-independent fingerprint used to
// compare the set of cases a device holds against the server's view without
// exchanging the set itself.
//
// The digest is not cryptographically meaningful: it exists purely as a
// cheap set-equality check. Each case id is hashed with MD5 and the digests
// are folded together with a bytewise XOR, so any permutation of the same
// ids produces the same result.
package checksum

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
)

// Prefix is the textual marker carried by every printed state hash, so a
// malformed or absent hash can be told apart from a real one.
const Prefix = "ccsh:"

// ErrMalformedHash is returned by Parse when the input does not carry the
// expected prefix or the remainder is not a valid hex digest.
var ErrMalformedHash = fmt.Errorf("malformed state hash: expected %q prefix followed by hex", Prefix)

// Checksum computes the fingerprint of a set of case ids.
//
// The empty set maps to the empty string, not to a digest of empty input:
// "no cases" is a distinguished state, and hashing nothing would collide
// with it.
func Checksum(caseIDs []string) string {
	if len(caseIDs) == 0 {
		return ""
	}

	var folded [md5.Size]byte
	for _, id := range caseIDs {
		digest := md5.Sum([]byte(id))
		for i := range folded {
			folded[i] ^= digest[i]
		}
	}
	return hex.EncodeToString(folded[:])
}

// CaseStateHash wraps the hex digest of a sync state's case-id set.
// The zero value represents the hash of an empty case set.
type CaseStateHash struct {
	hex string
}

// New wraps an already-computed hex digest.
func New(hexDigest string) CaseStateHash {
	return CaseStateHash{hex: hexDigest}
}

// Of computes the state hash of the given case ids.
func Of(caseIDs []string) CaseStateHash {
	return CaseStateHash{hex: Checksum(caseIDs)}
}

// Parse reads a printed state hash of the form "ccsh:<hex>".
func Parse(s string) (CaseStateHash, error) {
	rest, ok := strings.CutPrefix(s, Prefix)
	if !ok {
		return CaseStateHash{}, ErrMalformedHash
	}
	if _, err := hex.DecodeString(rest); err != nil || rest == "" {
		return CaseStateHash{}, ErrMalformedHash
	}
	return CaseStateHash{hex: rest}, nil
}

// IsEmpty reports whether the hash describes an empty case set.
func (h CaseStateHash) IsEmpty() bool {
	return h.hex == ""
}

// Hex returns the bare hex digest without the prefix.
func (h CaseStateHash) Hex() string {
	return h.hex
}

// String returns the printable form. The empty-set hash prints as the
// empty string so it never masquerades as a real digest.
func (h CaseStateHash) String() string {
	if h.hex == "" {
		return ""
	}
	return Prefix + h.hex
}

// Equal compares two hashes by their prefix-stripped digest values.
func (h CaseStateHash) Equal(other CaseStateHash) bool {
	return h.hex == other.hex
}
