package main

import (
	"fmt"
	"io"
	"net"
	"strconv"

	"github.com/hashicorp/go-multierror"

	"github.com/kroma-network/qproof-proxy/internal/config"
	"github.com/kroma-network/qproof-proxy/internal/ec2"
	"github.com/kroma-network/qproof-proxy/internal/entropy"
	"github.com/kroma-network/qproof-proxy/internal/optimizer"
	"github.com/kroma-network/qproof-proxy/internal/oracle"
	"github.com/kroma-network/qproof-proxy/internal/qproof"
)

type collaborators struct {
	entropy   qproof.EntropyProvider
	optimizer qproof.Optimizer
	publisher qproof.Publisher
	closers   []io.Closer
}

func newCollaborators(cfg *config.Config) (*collaborators, error) {
	c := &collaborators{}
	var err error
	if c.entropy, err = c.newEntropy(cfg.Entropy); err != nil {
		return nil, fmt.Errorf("failed to create entropy provider: %w", err)
	}
	if c.optimizer, err = c.newOptimizer(cfg.Optimizer); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to create optimization engine: %w", err)
	}
	if cfg.Oracle.URL != "" {
		c.publisher = oracle.NewBridge(cfg.Oracle.URL, cfg.Oracle.TargetContract, nil)
	}
	return c, nil
}

func (c *collaborators) pipeline() *qproof.Pipeline {
	return qproof.NewPipeline(c.entropy, c.optimizer).PublishTo(c.publisher)
}

func (c *collaborators) newEntropy(cfg config.EntropyConfig) (qproof.EntropyProvider, error) {
	switch cfg.Source {
	case config.EntropyDrand:
		d, err := entropy.NewDrand(cfg.DrandURLs, cfg.DrandChainHash)
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, d)
		return d, nil
	case config.EntropyQRNG:
		return entropy.NewQRNG(cfg.QRNGURL, nil), nil
	case config.EntropyFixed:
		return entropy.Fixed(cfg.FixedSeed), nil
	default:
		return nil, fmt.Errorf("unknown entropy source %q", cfg.Source)
	}
}

func (c *collaborators) newOptimizer(cfg config.OptimizerConfig) (qproof.Optimizer, error) {
	var dial func(address string) (optimizer.Remote, error)
	switch cfg.Kind {
	case config.OptimizerFixed:
		return optimizer.Fixed{Path: cfg.FixedPath, FailureReason: cfg.FailureReason}, nil
	case config.OptimizerJSONRPC:
		dial = func(address string) (optimizer.Remote, error) { return optimizer.NewJSONRPC(address, nil), nil }
	case config.OptimizerGRPC:
		dial = func(address string) (optimizer.Remote, error) { return optimizer.DialGRPC(address) }
	default:
		return nil, fmt.Errorf("unknown optimizer kind %q", cfg.Kind)
	}

	if cfg.AWS.InstanceID == "" {
		engine, err := dial(cfg.Address)
		if err != nil {
			return nil, err
		}
		if closer, ok := engine.(io.Closer); ok {
			c.closers = append(c.closers, closer)
		}
		return engine, nil
	}

	controller, err := ec2.NewController(cfg.AWS.Region, cfg.AWS.InstanceID)
	if err != nil {
		return nil, err
	}
	return optimizer.NewHosted(controller, func(host string) (optimizer.Remote, error) {
		return dial(hostedAddress(cfg, host))
	}), nil
}

func hostedAddress(cfg config.OptimizerConfig, host string) string {
	hostPort := net.JoinHostPort(host, strconv.Itoa(cfg.AWS.Port))
	if cfg.Kind == config.OptimizerGRPC {
		return hostPort
	}
	return cfg.AWS.Scheme + "://" + hostPort
}

func (c *collaborators) Close() error {
	var result error
	for _, closer := range c.closers {
		if err := closer.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result
}
