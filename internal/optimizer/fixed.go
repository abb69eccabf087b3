package optimizer

import (
	"context"
	"errors"

	"github.com/kroma-network/qproof-proxy/internal/qproof"
)

// Fixed is a stand-in engine that always answers with the same path, or with
// FailureReason when it is set.
type Fixed struct {
	Path          qproof.SolutionPath
	FailureReason string
}

var _ qproof.Optimizer = Fixed{}

func (f Fixed) Search(ctx context.Context, _ qproof.FeatureSet, _ qproof.Seed) (qproof.SolutionPath, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.FailureReason != "" {
		return nil, errors.New(f.FailureReason)
	}
	return append(qproof.SolutionPath{}, f.Path...), nil
}

func (f Fixed) Ping(context.Context) error { return nil }
