package qproof

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kroma-network/qproof-proxy/internal/jsonrpc"
)

// Error codes reported for failed proof runs.
const (
	CodeEntropyUnavailable = -32001
	CodeOptimizationFailed = -32002
)

type Server struct {
	pipeline *Pipeline
	inFlight atomic.Int64
	metrics  http.Handler
}

func NewServer(pipeline *Pipeline) *Server {
	return &Server{pipeline: pipeline, metrics: promhttp.Handler()}
}

func (s *Server) ServeHTTP(writer http.ResponseWriter, httpRequest *http.Request) {
	switch httpRequest.URL.Path {
	case "/":
		s.serveJsonRpc(writer, httpRequest)
	case "/health":
		response := map[string]interface{}{
			"status":   "ok",
			"inFlight": s.inFlight.Load(),
		}
		writer.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(writer).Encode(response); err != nil {
			http.Error(writer, "Failed to encode JSON response", http.StatusInternalServerError)
		}
	case "/metrics":
		s.metrics.ServeHTTP(writer, httpRequest)
	default:
		http.NotFound(writer, httpRequest)
	}
}

func (s *Server) serveJsonRpc(writer http.ResponseWriter, httpRequest *http.Request) {
	if httpRequest.Method != http.MethodPost {
		http.Error(writer, "JSON-RPC requests must be POSTed", http.StatusMethodNotAllowed)
		return
	}
	var request struct {
		Method string          `json:"method"`
		Params json.RawMessage `json:"params"`
		Id     any             `json:"id"`
	}
	if err := json.NewDecoder(httpRequest.Body).Decode(&request); err != nil {
		http.Error(writer, "Failed to decode JSON request", http.StatusBadRequest)
		return
	}

	response := map[string]interface{}{
		"jsonrpc": jsonrpc.Version,
		"id":      request.Id,
	}
	if request.Method == "" {
		response["error"] = jsonrpc.NewError(jsonrpc.CodeInvalidRequest, "method not found in JSON request")
	} else if result, err := s.callMethod(httpRequest, request.Method, request.Params); err != nil {
		response["error"] = toRpcError(err)
	} else {
		response["result"] = result
	}

	writer.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(writer).Encode(response); err != nil {
		http.Error(writer, "Failed to encode JSON response", http.StatusInternalServerError)
	}
}

func (s *Server) callMethod(httpRequest *http.Request, method string, raw json.RawMessage) (any, error) {
	switch method {
	case "prove":
		var req Request
		if err := decodeParams(raw, &req.Action, &req.Features); err != nil {
			return nil, err
		}
		if req.Action == "" {
			return nil, invalidParams("action must not be empty")
		}
		log.Infow("prove requested", "action", req.Action, "features", len(req.Features))
		s.inFlight.Add(1)
		defer s.inFlight.Add(-1)
		commitment, err := s.pipeline.Prove(httpRequest.Context(), req)
		if err != nil {
			return nil, err
		}
		return commitment.Hex(), nil
	case "commit":
		var path []string
		var seed string
		if err := decodeParams(raw, &path, &seed); err != nil {
			return nil, err
		}
		if seed == "" {
			return nil, invalidParams("seed must not be empty")
		}
		return Commit(path, Seed(seed)).Hex(), nil
	case "verify":
		var path []string
		var seed string
		var commitment Commitment
		if err := decodeParams(raw, &path, &seed, &commitment); err != nil {
			return nil, err
		}
		return Verify(path, Seed(seed), commitment), nil
	default:
		return nil, jsonrpc.NewError(jsonrpc.CodeMethodNotFound, fmt.Sprintf("unsupported method %s", method))
	}
}

// decodeParams decodes positional params into targets, in order.
func decodeParams(raw json.RawMessage, targets ...any) error {
	var positional []json.RawMessage
	if err := json.Unmarshal(raw, &positional); err != nil {
		return invalidParams("params must be an array")
	}
	if len(positional) != len(targets) {
		return invalidParams(fmt.Sprintf("expected %d params, got %d", len(targets), len(positional)))
	}
	for i, target := range targets {
		if err := json.Unmarshal(positional[i], target); err != nil {
			return invalidParams(fmt.Sprintf("failed to read parameter %d: %v", i, err))
		}
	}
	return nil
}

func invalidParams(message string) error {
	return jsonrpc.NewError(jsonrpc.CodeInvalidParams, message)
}

// toRpcError classifies pipeline errors before looking for a JSON-RPC error,
// since a failed remote engine call wraps one.
func toRpcError(err error) *jsonrpc.Error {
	var optimizationErr *OptimizationFailedError
	switch {
	case errors.Is(err, ErrEntropyUnavailable):
		return jsonrpc.NewError(CodeEntropyUnavailable, err.Error())
	case errors.As(err, &optimizationErr):
		return &jsonrpc.Error{Code: CodeOptimizationFailed, Message: optimizationErr.Error(), Data: optimizationErr.Reason}
	}
	if rpcError := jsonrpc.ErrorFromErrorOrNil(err); rpcError != nil {
		return rpcError
	}
	return jsonrpc.NewErrorFromString(err.Error())
}
