package optimizer

import (
	"context"
	"net/http"

	logging "github.com/ipfs/go-log/v2"

	"github.com/kroma-network/qproof-proxy/internal/jsonrpc"
	"github.com/kroma-network/qproof-proxy/internal/qproof"
)

var log = logging.Logger("optimizer")

const (
	searchRpcMethod = "find_zero_error_path"
	healthRpcMethod = "health"
)

// JSONRPC talks to an optimization engine exposing find_zero_error_path(features, seed) over JSON-RPC.
type JSONRPC struct {
	address string
	client  *http.Client
}

var _ Remote = &JSONRPC{}

func NewJSONRPC(address string, client *http.Client) *JSONRPC {
	return &JSONRPC{address: address, client: client}
}

func (j *JSONRPC) Search(ctx context.Context, features qproof.FeatureSet, seed qproof.Seed) (qproof.SolutionPath, error) {
	if features == nil {
		features = qproof.FeatureSet{}
	}
	path, err := jsonrpc.Call[qproof.SolutionPath](ctx, j.client, j.address, searchRpcMethod, []any{features, seed})
	if rpcErr := jsonrpc.ErrorFromErrorOrNil(err); rpcErr != nil {
		return nil, &engineError{rpcErr}
	}
	if err != nil {
		return nil, err
	}
	return *path, nil
}

// engineError reports only the message sent by the engine. The code stays reachable through Unwrap.
type engineError struct {
	rpcErr *jsonrpc.Error
}

func (e *engineError) Error() string { return e.rpcErr.Message }

func (e *engineError) Unwrap() error { return e.rpcErr }

func (j *JSONRPC) Ping(ctx context.Context) error {
	_, err := jsonrpc.Call[any](ctx, j.client, j.address, healthRpcMethod, []any{})
	return err
}
