package entropy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/kroma-network/qproof-proxy/internal/qproof"
)

// QRNG reads seeds from a quantum random number HTTP API answering with
// {"success": true, "data": ["<hex block>", ...]}.
type QRNG struct {
	url    string
	client *http.Client
}

var _ qproof.EntropyProvider = &QRNG{}

func NewQRNG(url string, client *http.Client) *QRNG {
	if client == nil {
		client = http.DefaultClient
	}
	return &QRNG{url: url, client: client}
}

type qrngResponse struct {
	Type    string   `json:"type"`
	Length  int      `json:"length"`
	Data    []string `json:"data"`
	Success bool     `json:"success"`
	Message string   `json:"message"`
}

func (q *QRNG) Entropy(ctx context.Context) (qproof.Seed, error) {
	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodGet, q.url, nil)
	if err != nil {
		return "", err
	}
	httpRequest.Header.Set("Accept", "application/json")
	httpResponse, err := q.client.Do(httpRequest)
	if err != nil {
		return "", err
	}
	defer httpResponse.Body.Close()
	body, err := io.ReadAll(httpResponse.Body)
	if err != nil {
		return "", err
	}
	if httpResponse.StatusCode/100 != 2 {
		return "", fmt.Errorf("qrng responded %s", httpResponse.Status)
	}
	var response qrngResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("failed to json.Unmarshal qrng response: %w", err)
	}
	if !response.Success {
		if response.Message != "" {
			return "", fmt.Errorf("qrng request failed: %s", response.Message)
		}
		return "", errors.New("qrng request failed")
	}
	seed := strings.Join(response.Data, "")
	if seed == "" {
		return "", errors.New("qrng returned no data")
	}
	return qproof.Seed(seed), nil
}
