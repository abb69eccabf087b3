package qproof

import (
	"context"
	"errors"
	"time"

	logging "github.com/ipfs/go-log/v2"
)

var log = logging.Logger("qproof")

type stage int

const (
	stageAcquireEntropy stage = iota
	stageRunOptimization
	stageComposeAndHash
)

func (s stage) String() string {
	switch s {
	case stageAcquireEntropy:
		return "acquire_entropy"
	case stageRunOptimization:
		return "run_optimization"
	case stageComposeAndHash:
		return "compose_and_hash"
	default:
		return "unknown"
	}
}

// Pipeline turns a request into a commitment: acquire entropy, run the optimization engine
// seeded with it, then hash the canonical path and seed. Stages run strictly in order and
// nothing is retried or kept between runs, so one Pipeline may serve concurrent calls.
type Pipeline struct {
	entropy   EntropyProvider
	optimizer Optimizer
	publisher Publisher
}

func NewPipeline(entropy EntropyProvider, optimizer Optimizer) *Pipeline {
	return &Pipeline{entropy: entropy, optimizer: optimizer}
}

// PublishTo hands every commitment to publisher once it is computed. A failed publish is logged
// and counted; it never changes what Prove returns.
func (p *Pipeline) PublishTo(publisher Publisher) *Pipeline {
	p.publisher = publisher
	return p
}

// Prove runs the pipeline once. It returns either a commitment or an error that is
// ErrEntropyUnavailable or an *OptimizationFailedError; the commitment is only valid when err is nil.
func (p *Pipeline) Prove(ctx context.Context, req Request) (Commitment, error) {
	log.Debugw("prove start", "action", req.Action, "features", len(req.Features))

	seed, err := p.acquireEntropy(ctx)
	if err != nil {
		proofsTotal.WithLabelValues(outcomeEntropyUnavailable).Inc()
		log.Warnw("prove failed", "stage", stageAcquireEntropy, "err", err)
		return Commitment{}, err
	}

	path, err := p.runOptimization(ctx, req.Features, seed)
	if err != nil {
		proofsTotal.WithLabelValues(outcomeOptimizationFailed).Inc()
		log.Warnw("prove failed", "stage", stageRunOptimization, "err", err)
		return Commitment{}, err
	}

	start := time.Now()
	commitment := Commit(path, seed)
	observeStage(stageComposeAndHash, start)

	proofsTotal.WithLabelValues(outcomeCommitted).Inc()
	log.Infow("prove complete", "action", req.Action, "pathLength", len(path), "commitment", commitment.Hex())
	p.publish(ctx, commitment)
	return commitment, nil
}

func (p *Pipeline) publish(ctx context.Context, commitment Commitment) {
	if p.publisher == nil {
		return
	}
	if err := p.publisher.Publish(ctx, commitment); err != nil {
		publishesTotal.WithLabelValues(outcomePublishFailed).Inc()
		log.Warnw("failed to publish commitment", "commitment", commitment.Hex(), "err", err)
		return
	}
	publishesTotal.WithLabelValues(outcomePublished).Inc()
}

func (p *Pipeline) acquireEntropy(ctx context.Context) (Seed, error) {
	defer observeStage(stageAcquireEntropy, time.Now())
	if p.entropy == nil {
		return "", entropyUnavailable(errors.New("no entropy provider"))
	}
	seed, err := p.entropy.Entropy(ctx)
	if err != nil {
		return "", entropyUnavailable(err)
	}
	if seed == "" {
		return "", entropyUnavailable(nil)
	}
	log.Debugw("entropy acquired", "seedLength", len(seed))
	return seed, nil
}

func (p *Pipeline) runOptimization(ctx context.Context, features FeatureSet, seed Seed) (SolutionPath, error) {
	defer observeStage(stageRunOptimization, time.Now())
	if p.optimizer == nil {
		return nil, optimizationFailed(errors.New("no optimization engine"))
	}
	path, err := p.optimizer.Search(ctx, features, seed)
	if err != nil {
		return nil, optimizationFailed(err)
	}
	if len(path) == 0 {
		log.Debugw("optimization returned an empty path")
	}
	return path, nil
}
