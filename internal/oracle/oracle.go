package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	logging "github.com/ipfs/go-log/v2"

	"github.com/kroma-network/qproof-proxy/internal/qproof"
)

var log = logging.Logger("oracle")

const (
	DefaultTargetContract = "DLMCore"
	defaultTimeout        = 30 * time.Second
	maxErrorBody          = 512
)

// Payload is posted to the oracle bridge once per committed proof.
type Payload struct {
	QProof         qproof.Commitment `json:"q_proof"`
	TargetContract string            `json:"target_contract"`
}

// Bridge asks an oracle bridge to submit commitments to the target contract.
type Bridge struct {
	url            string
	targetContract string
	client         *http.Client
}

var _ qproof.Publisher = &Bridge{}

func NewBridge(url string, targetContract string, client *http.Client) *Bridge {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	if targetContract == "" {
		targetContract = DefaultTargetContract
	}
	return &Bridge{url: url, targetContract: targetContract, client: client}
}

func (b *Bridge) Publish(ctx context.Context, commitment qproof.Commitment) error {
	body, err := json.Marshal(Payload{QProof: commitment, TargetContract: b.targetContract})
	if err != nil {
		return fmt.Errorf("failed to json.Marshal oracle payload: %w", err)
	}
	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodPost, b.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	httpRequest.Header.Set("Content-Type", "application/json")
	httpResponse, err := b.client.Do(httpRequest)
	if err != nil {
		return err
	}
	defer httpResponse.Body.Close()
	if httpResponse.StatusCode/100 != 2 {
		reason, _ := io.ReadAll(io.LimitReader(httpResponse.Body, maxErrorBody))
		return fmt.Errorf("oracle responded %s: %s", httpResponse.Status, bytes.TrimSpace(reason))
	}
	log.Debugw("commitment handed to oracle", "url", b.url, "target", b.targetContract)
	return nil
}
