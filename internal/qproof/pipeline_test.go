package qproof

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entropyFunc func(ctx context.Context) (Seed, error)

func (f entropyFunc) Entropy(ctx context.Context) (Seed, error) { return f(ctx) }

type optimizerFunc func(ctx context.Context, features FeatureSet, seed Seed) (SolutionPath, error)

func (f optimizerFunc) Search(ctx context.Context, features FeatureSet, seed Seed) (SolutionPath, error) {
	return f(ctx, features, seed)
}

func fixedEntropy(seed Seed) entropyFunc {
	return func(context.Context) (Seed, error) { return seed, nil }
}

func fixedPath(path SolutionPath) optimizerFunc {
	return func(context.Context, FeatureSet, Seed) (SolutionPath, error) { return path, nil }
}

func TestProveExample(t *testing.T) {
	var gotFeatures FeatureSet
	var gotSeed Seed
	engine := optimizerFunc(func(_ context.Context, features FeatureSet, seed Seed) (SolutionPath, error) {
		gotFeatures, gotSeed = features, seed
		return examplePath, nil
	})

	p := NewPipeline(fixedEntropy(exampleSeed), engine)
	features := FeatureSet{"USER_AUTH", "PAYMENT"}
	commitment, err := p.Prove(context.Background(), Request{Action: "CREATE_APP", Features: features})
	require.NoError(t, err)
	assert.Equal(t, exampleCommitment, commitment.Hex())
	assert.Equal(t, features, gotFeatures)
	assert.Equal(t, exampleSeed, gotSeed)
	assert.True(t, Verify(examplePath, exampleSeed, commitment))
}

func TestProveEmptyPath(t *testing.T) {
	p := NewPipeline(fixedEntropy(exampleSeed), fixedPath(SolutionPath{}))
	commitment, err := p.Prove(context.Background(), Request{Action: "CREATE_APP"})
	require.NoError(t, err)
	assert.Equal(t, Hash([]byte(exampleSeed)), commitment)
	assert.Regexp(t, commitmentPattern, commitment.Hex())
}

func TestProveEmptyEntropy(t *testing.T) {
	var searched atomic.Bool
	engine := optimizerFunc(func(context.Context, FeatureSet, Seed) (SolutionPath, error) {
		searched.Store(true)
		return examplePath, nil
	})

	p := NewPipeline(fixedEntropy(""), engine)
	commitment, err := p.Prove(context.Background(), Request{Action: "CREATE_APP"})
	require.ErrorIs(t, err, ErrEntropyUnavailable)
	assert.Equal(t, Commitment{}, commitment)
	assert.False(t, searched.Load(), "optimizer must not run without entropy")
}

func TestProveEntropyError(t *testing.T) {
	cause := errors.New("qrng unreachable")
	engine := optimizerFunc(func(context.Context, FeatureSet, Seed) (SolutionPath, error) {
		t.Fatal("optimizer must not run without entropy")
		return nil, nil
	})

	p := NewPipeline(entropyFunc(func(context.Context) (Seed, error) { return "", cause }), engine)
	_, err := p.Prove(context.Background(), Request{Action: "CREATE_APP"})
	require.ErrorIs(t, err, ErrEntropyUnavailable)
	assert.ErrorIs(t, err, cause)
	var optimizationErr *OptimizationFailedError
	assert.False(t, errors.As(err, &optimizationErr))
}

func TestProveOptimizationFailed(t *testing.T) {
	reason := "no zero-error path within budget"
	p := NewPipeline(fixedEntropy(exampleSeed), optimizerFunc(func(context.Context, FeatureSet, Seed) (SolutionPath, error) {
		return nil, errors.New(reason)
	}))

	commitment, err := p.Prove(context.Background(), Request{Action: "CREATE_APP"})
	require.Error(t, err)
	assert.Equal(t, Commitment{}, commitment)
	assert.False(t, errors.Is(err, ErrEntropyUnavailable))

	var optimizationErr *OptimizationFailedError
	require.True(t, errors.As(err, &optimizationErr))
	assert.Equal(t, reason, optimizationErr.Reason)
	assert.Equal(t, "optimization failed: "+reason, err.Error())
}

func TestProveMissingCollaborators(t *testing.T) {
	_, err := NewPipeline(nil, fixedPath(examplePath)).Prove(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrEntropyUnavailable)

	_, err = NewPipeline(fixedEntropy(exampleSeed), nil).Prove(context.Background(), Request{})
	var optimizationErr *OptimizationFailedError
	assert.True(t, errors.As(err, &optimizationErr))
}

func TestProveCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	entropy := entropyFunc(func(ctx context.Context) (Seed, error) {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		return exampleSeed, nil
	})

	_, err := NewPipeline(entropy, fixedPath(examplePath)).Prove(ctx, Request{})
	assert.ErrorIs(t, err, ErrEntropyUnavailable)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProveConcurrentRunsAreIndependent(t *testing.T) {
	var counter atomic.Int64
	entropy := entropyFunc(func(context.Context) (Seed, error) {
		return Seed(fmt.Sprintf("seed-%d", counter.Add(1))), nil
	})
	engine := optimizerFunc(func(_ context.Context, features FeatureSet, seed Seed) (SolutionPath, error) {
		return SolutionPath{features[0], string(seed)}, nil
	})
	p := NewPipeline(entropy, engine)

	const runs = 32
	var wg sync.WaitGroup
	results := make([]Commitment, runs)
	for i := 0; i < runs; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c, err := p.Prove(context.Background(), Request{Action: "RUN", Features: FeatureSet{fmt.Sprint(i)}})
			assert.NoError(t, err)
			results[i] = c
		}(i)
	}
	wg.Wait()

	seen := make(map[Commitment]struct{}, runs)
	for _, c := range results {
		seen[c] = struct{}{}
	}
	assert.Len(t, seen, runs)
}

type publisherFunc func(ctx context.Context, commitment Commitment) error

func (f publisherFunc) Publish(ctx context.Context, commitment Commitment) error { return f(ctx, commitment) }

func TestProvePublishesCommitment(t *testing.T) {
	var published []Commitment
	publisher := publisherFunc(func(_ context.Context, c Commitment) error {
		published = append(published, c)
		return nil
	})

	p := NewPipeline(fixedEntropy(exampleSeed), fixedPath(examplePath)).PublishTo(publisher)
	commitment, err := p.Prove(context.Background(), Request{Action: "CREATE_APP"})
	require.NoError(t, err)
	assert.Equal(t, []Commitment{commitment}, published)
}

func TestProvePublishFailureKeepsCommitment(t *testing.T) {
	publisher := publisherFunc(func(context.Context, Commitment) error { return errors.New("oracle down") })

	p := NewPipeline(fixedEntropy(exampleSeed), fixedPath(examplePath)).PublishTo(publisher)
	commitment, err := p.Prove(context.Background(), Request{Action: "CREATE_APP"})
	require.NoError(t, err)
	assert.Equal(t, exampleCommitment, commitment.Hex())
}

func TestProveFailureIsNotPublished(t *testing.T) {
	publisher := publisherFunc(func(context.Context, Commitment) error {
		t.Fatal("failed runs must not be published")
		return nil
	})

	_, err := NewPipeline(fixedEntropy(""), fixedPath(examplePath)).PublishTo(publisher).Prove(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrEntropyUnavailable)

	failing := optimizerFunc(func(context.Context, FeatureSet, Seed) (SolutionPath, error) { return nil, errors.New("no path") })
	_, err = NewPipeline(fixedEntropy(exampleSeed), failing).PublishTo(publisher).Prove(context.Background(), Request{})
	var failed *OptimizationFailedError
	assert.ErrorAs(t, err, &failed)
}
