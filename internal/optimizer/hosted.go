package optimizer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"sync"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/kroma-network/qproof-proxy/internal/qproof"
)

// Remote is an engine reachable over the network that can report readiness.
type Remote interface {
	qproof.Optimizer
	Ping(ctx context.Context) error
}

// Instance is the machine an engine runs on. *ec2.Controller implements it.
type Instance interface {
	StartIfNotRunning(ctx context.Context) error
	StopIfRunning(ctx context.Context)
	IpAddress() string
}

// Hosted runs searches on an engine living on an on-demand instance. The instance is started
// before a search and stopped once no search is in flight.
type Hosted struct {
	instance     Instance
	dial         func(host string) (Remote, error)
	pollInterval time.Duration
	stopTimeout  time.Duration

	mu       sync.Mutex
	inFlight int
}

var _ qproof.Optimizer = &Hosted{}

func NewHosted(instance Instance, dial func(host string) (Remote, error)) *Hosted {
	return &Hosted{instance: instance, dial: dial, pollInterval: time.Second, stopTimeout: time.Minute}
}

func (h *Hosted) Search(ctx context.Context, features qproof.FeatureSet, seed qproof.Seed) (qproof.SolutionPath, error) {
	h.mu.Lock()
	h.inFlight++
	h.mu.Unlock()
	defer h.release()

	if err := h.instance.StartIfNotRunning(ctx); err != nil {
		return nil, err
	}
	engine, err := h.dial(h.instance.IpAddress())
	if err != nil {
		return nil, fmt.Errorf("failed to dial optimizer at %s: %w", h.instance.IpAddress(), err)
	}
	if closer, ok := engine.(io.Closer); ok {
		defer closer.Close()
	}
	if err := h.waitReady(ctx, engine); err != nil {
		return nil, err
	}
	return engine.Search(ctx, features, seed)
}

// release stops the instance when the last search finishes. The lock is held until the stop
// returns so a search arriving meanwhile never runs against an instance being stopped; the stop
// is bounded by stopTimeout.
func (h *Hosted) release() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.inFlight--
	if h.inFlight > 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), h.stopTimeout)
	defer cancel()
	h.instance.StopIfRunning(ctx)
}

func (h *Hosted) waitReady(ctx context.Context, engine Remote) error {
	for {
		err := engine.Ping(ctx)
		if err == nil {
			return nil
		}
		if !notReady(err) {
			return err
		}
		log.Info("instance started. but optimizer not ready. waiting...")
		select {
		case <-ctx.Done():
			return fmt.Errorf("optimizer not ready: %w", ctx.Err())
		case <-time.After(h.pollInterval):
		}
	}
}

// notReady reports whether err means the engine's server is not accepting connections yet.
func notReady(err error) bool {
	var urlError *url.Error
	if errors.As(err, &urlError) {
		return true
	}
	return status.Code(err) == codes.Unavailable
}
