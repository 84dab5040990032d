package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"econledger/core"
)

// Sink posts committed transactions to configured HTTP endpoints. Register
// OnTransaction as a success observer; it is synchronous for determinism, so
// keep endpoints fast or run the bus in async dispatch mode.
type Sink struct {
	client    *http.Client
	endpoints []string
}

// Option configures a Sink.
type Option func(*Sink)

// WithClient overrides the HTTP client (defaults to 2s timeout).
func WithClient(c *http.Client) Option {
	return func(s *Sink) {
		if c != nil {
			s.client = c
		}
	}
}

// New creates a webhook sink.
func New(endpoints []string, opts ...Option) *Sink {
	s := &Sink{
		client: &http.Client{Timeout: 2 * time.Second},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.endpoints = append([]string{}, endpoints...)
	return s
}

// OnTransaction posts the transaction JSON to all endpoints; delivery is
// best-effort and failures are dropped.
func (s *Sink) OnTransaction(ctx context.Context, tx core.Transaction) {
	if len(s.endpoints) == 0 {
		return
	}
	body, err := json.Marshal(tx)
	if err != nil {
		return
	}
	for _, ep := range s.endpoints {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, ep, bytes.NewReader(body))
		if err != nil {
			continue
		}
		req.Header.Set("Content-Type", "application/json")
		resp, err := s.client.Do(req)
		if err != nil {
			continue
		}
		// drain so the connection can be reused
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}
}
