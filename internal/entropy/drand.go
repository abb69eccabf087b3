package entropy

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"

	"github.com/drand/drand/client"
	dhttp "github.com/drand/drand/client/http"
	"github.com/hashicorp/go-multierror"
	logging "github.com/ipfs/go-log/v2"

	"github.com/kroma-network/qproof-proxy/internal/qproof"
)

var log = logging.Logger("entropy")

// Drand draws seeds from the latest round of a drand randomness beacon.
type Drand struct {
	clients []namedClient
}

type namedClient struct {
	url string
	client.Client
}

var _ qproof.EntropyProvider = &Drand{}

// NewDrand connects to every url. chainHash pins the beacon chain, hex encoded, and every
// round is verified against the chain's public key before its randomness is used.
func NewDrand(urls []string, chainHash string) (*Drand, error) {
	if len(urls) == 0 {
		return nil, errors.New("no drand urls")
	}
	if chainHash == "" {
		return nil, errors.New("drand chain hash is required to verify rounds")
	}
	hash, err := hex.DecodeString(chainHash)
	if err != nil {
		return nil, fmt.Errorf("invalid drand chain hash: %w", err)
	}
	d := &Drand{}
	for _, url := range urls {
		c, err := newVerifiedClient(url, hash)
		if err != nil {
			log.Warnf("failed to connect to drand endpoint %s: %s", url, err)
			continue
		}
		d.clients = append(d.clients, namedClient{url: url, Client: c})
	}
	if len(d.clients) == 0 {
		return nil, errors.New("could not connect to any drand endpoint")
	}
	return d, nil
}

func newVerifiedClient(url string, hash []byte) (client.Client, error) {
	h, err := dhttp.New(url, hash, http.DefaultTransport)
	if err != nil {
		return nil, err
	}
	c, err := client.New(client.From(h), client.WithChainHash(hash))
	if err != nil {
		_ = h.Close()
		return nil, err
	}
	return c, nil
}

// Entropy tries each endpoint in turn and returns the hex encoded randomness of the latest round.
func (d *Drand) Entropy(ctx context.Context) (qproof.Seed, error) {
	for _, c := range d.clients {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		result, err := c.Get(ctx, 0)
		if err != nil {
			log.Warnf("error fetching drand randomness from %s: %s", c.url, err)
			continue
		}
		randomness := result.Randomness()
		if len(randomness) == 0 {
			log.Warnf("drand endpoint %s returned empty randomness for round %d", c.url, result.Round())
			continue
		}
		log.Debugw("drand randomness fetched", "url", c.url, "round", result.Round())
		return qproof.Seed(hex.EncodeToString(randomness)), nil
	}
	return "", errors.New("could not retrieve drand randomness from any endpoint")
}

func (d *Drand) Close() error {
	var result error
	for _, c := range d.clients {
		if err := c.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("close drand client %s: %w", c.url, err))
		}
	}
	return result
}
