package qproof

import (
	"crypto/subtle"
	"hash"
	"strings"

	"golang.org/x/crypto/sha3"
)

// PathDelimiter separates path elements in the canonical encoding.
const PathDelimiter = "->"

// Canonicalize encodes path and seed as the UTF-8 bytes of the path elements joined
// by PathDelimiter, immediately followed by the seed. An empty path yields the seed alone.
func Canonicalize(path SolutionPath, seed Seed) []byte {
	var b strings.Builder
	for i, element := range path {
		if i > 0 {
			b.WriteString(PathDelimiter)
		}
		b.WriteString(element)
	}
	b.WriteString(string(seed))
	return []byte(b.String())
}

// keccakState wraps sha3.state. Read is faster than Sum because it doesn't copy
// the internal state, but it also modifies the internal state.
type keccakState interface {
	hash.Hash
	Read([]byte) (int, error)
}

// Hash computes the legacy Keccak-256 digest used by EVM contracts.
func Hash(canonical []byte) (c Commitment) {
	d := sha3.NewLegacyKeccak256().(keccakState)
	_, _ = d.Write(canonical)
	_, _ = d.Read(c[:])
	return
}

// Commit is Hash(Canonicalize(path, seed)).
func Commit(path SolutionPath, seed Seed) Commitment {
	return Hash(Canonicalize(path, seed))
}

// Verify recomputes the commitment for the disclosed path and seed and compares it with expected.
func Verify(path SolutionPath, seed Seed, expected Commitment) bool {
	actual := Commit(path, seed)
	return subtle.ConstantTimeCompare(actual[:], expected[:]) == 1
}
