package jsonrpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
)

const Version = "2.0"

// Error codes used by this service on top of the reserved JSON-RPC range.
const (
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeServerError    = -32000
)

type Request struct {
	Jsonrpc string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
	Id      any    `json:"id"`
}

type Response[T any] struct {
	Jsonrpc string `json:"jsonrpc"`
	Result  *T     `json:"result,omitempty"`
	Error   *Error `json:"error,omitempty"`
	Id      any    `json:"id"`
}

type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func NewError(code int, message string) *Error {
	return &Error{Code: code, Message: message}
}

func NewErrorFromString(err string) *Error {
	return &Error{Code: CodeServerError, Message: err}
}

func ErrorFromErrorOrNil(err error) (rpcError *Error) {
	errors.As(err, &rpcError)
	return
}

func (e *Error) Error() string { return fmt.Sprintf("[%d] %s", e.Code, e.Message) }

// Call posts a single JSON-RPC request to address and decodes its result into T.
// A JSON-RPC error object in the response is returned as *Error.
func Call[T any](ctx context.Context, client *http.Client, address string, method string, params any) (*T, error) {
	if client == nil {
		client = http.DefaultClient
	}
	body, err := json.Marshal(Request{Jsonrpc: Version, Method: method, Params: params, Id: uuid.NewString()})
	if err != nil {
		return nil, fmt.Errorf("failed to json.Marshal %s request: %w", method, err)
	}
	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodPost, address, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpRequest.Header.Set("Content-Type", "application/json")
	httpResponse, err := client.Do(httpRequest)
	if err != nil {
		return nil, err
	}
	defer httpResponse.Body.Close()
	raw, err := io.ReadAll(httpResponse.Body)
	if err != nil {
		return nil, err
	}
	var response Response[T]
	if err = json.Unmarshal(raw, &response); err != nil {
		return nil, fmt.Errorf("failed to json.Unmarshal %s response (status %d): %w", method, httpResponse.StatusCode, err)
	}
	if response.Error != nil {
		return nil, response.Error
	}
	if response.Result == nil {
		return nil, fmt.Errorf("empty result for %s", method)
	}
	return response.Result, nil
}
