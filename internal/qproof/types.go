package qproof

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"
)

type (
	// Seed is one unit of externally sourced randomness.
	Seed string

	// FeatureSet describes the optimization request.
	FeatureSet []string

	// SolutionPath is the ordered path found by an optimization engine. The order is committed.
	SolutionPath []string

	// Request is an already-validated inbound proof request.
	Request struct {
		Action   string     `json:"action"`
		Features FeatureSet `json:"features"`
	}
)

// EntropyProvider supplies a fresh seed per call.
type EntropyProvider interface {
	Entropy(ctx context.Context) (Seed, error)
}

// Optimizer searches for a zero-error path for the given features, seeded by seed.
// A returned error is a failure reason and is forwarded verbatim.
type Optimizer interface {
	Search(ctx context.Context, features FeatureSet, seed Seed) (SolutionPath, error)
}

// Publisher hands a committed proof to a downstream consumer, such as an oracle bridge.
type Publisher interface {
	Publish(ctx context.Context, commitment Commitment) error
}

const (
	commitmentPrefix = "0x"
	CommitmentLength = 32
)

// Commitment is the Keccak-256 digest of a canonical path and seed.
type Commitment [CommitmentLength]byte

// Hex renders the commitment as 0x followed by 64 lowercase hex digits.
func (c Commitment) Hex() string {
	buf := make([]byte, len(commitmentPrefix)+hex.EncodedLen(CommitmentLength))
	copy(buf, commitmentPrefix)
	hex.Encode(buf[len(commitmentPrefix):], c[:])
	return string(buf)
}

func (c Commitment) String() string { return c.Hex() }

func (c Commitment) MarshalText() ([]byte, error) { return []byte(c.Hex()), nil }

func (c *Commitment) UnmarshalText(text []byte) error {
	parsed, err := ParseCommitment(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseCommitment accepts exactly 0x followed by 64 hex digits.
func ParseCommitment(s string) (Commitment, error) {
	var c Commitment
	if !strings.HasPrefix(s, commitmentPrefix) {
		return c, fmt.Errorf("commitment %q: missing %s prefix", s, commitmentPrefix)
	}
	digits := s[len(commitmentPrefix):]
	if len(digits) != hex.EncodedLen(CommitmentLength) {
		return c, fmt.Errorf("commitment %q: expected %d hex digits, got %d", s, hex.EncodedLen(CommitmentLength), len(digits))
	}
	if _, err := hex.Decode(c[:], []byte(digits)); err != nil {
		return Commitment{}, fmt.Errorf("commitment %q: %w", s, err)
	}
	return c, nil
}
