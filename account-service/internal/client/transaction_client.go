// Package client holds the account service's outbound HTTP clients.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/meridianbank/banking/shared/errs"
)

// TransactionRecord is the payload sent to the transaction service after a
// balance mutation commits.
type TransactionRecord struct {
	Type            string          `json:"type"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	SourceAccountID string          `json:"sourceAccountId,omitempty"`
	TargetAccountID string          `json:"targetAccountId,omitempty"`
	OwnerID         string          `json:"ownerId"`
	Description     string          `json:"description,omitempty"`
	Status          string          `json:"status,omitempty"`
}

// ResultSink receives the outcome of each best-effort record attempt: nil on
// success, a DownstreamUnavailableError otherwise. It exists so outages stay
// observable without ever reaching the mutation's caller.
type ResultSink func(err error)

func logSink(err error) {
	if err != nil {
		log.Printf("Transaction record dropped: %v", err)
	}
}

// TransactionRecorder posts transaction records to the transaction service.
// The call is structurally fire-and-forget: Record runs in its own
// goroutine, reports only to the sink, and cannot influence the balance
// mutation that triggered it.
type TransactionRecorder struct {
	baseURL string
	client  *http.Client
	sink    ResultSink
}

func NewTransactionRecorder(baseURL string, sink ResultSink) *TransactionRecorder {
	if sink == nil {
		sink = logSink
	}
	return &TransactionRecorder{
		baseURL: baseURL,
		sink:    sink,
		client: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{Timeout: 5 * time.Second}).DialContext,
			},
		},
	}
}

// Record dispatches the attempt and returns immediately.
func (c *TransactionRecorder) Record(record TransactionRecord) {
	go func() {
		c.sink(c.post(context.Background(), record))
	}()
}

func (c *TransactionRecorder) post(ctx context.Context, record TransactionRecord) error {
	body, err := json.Marshal(record)
	if err != nil {
		return errs.DownstreamUnavailable("transaction-service", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/internal/transactions", bytes.NewReader(body))
	if err != nil {
		return errs.DownstreamUnavailable("transaction-service", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return errs.DownstreamUnavailable("transaction-service", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errs.DownstreamUnavailable("transaction-service",
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}
	return nil
}
