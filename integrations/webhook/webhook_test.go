package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"econledger/core"
)

func TestSink_OnTransactionPostsToEndpoints(t *testing.T) {
	var hits int32
	var got core.Transaction
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		body, _ := io.ReadAll(r.Body)
		_ = r.Body.Close()
		_ = json.Unmarshal(body, &got)
	}))
	defer srv.Close()

	sink := New([]string{srv.URL})
	sink.OnTransaction(context.Background(), core.NewTransaction(core.TxAdd, "u1", 0, 5))

	if atomic.LoadInt32(&hits) != 1 {
		t.Fatalf("expected 1 hit, got %d", hits)
	}
	if got.Player != "u1" || got.New != 5 {
		t.Fatalf("unexpected payload: %+v", got)
	}
}

type bodyCloseRecorder struct {
	io.Reader
	closed *bool
}

func (b *bodyCloseRecorder) Close() error {
	*b.closed = true
	return nil
}

type recordingTransport struct {
	closed *bool
}

func (t *recordingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       &bodyCloseRecorder{Reader: strings.NewReader("ok"), closed: t.closed},
		Header:     http.Header{},
	}, nil
}

func TestSink_ClosesResponseBodies(t *testing.T) {
	var closed bool
	client := &http.Client{Transport: &recordingTransport{closed: &closed}}
	sink := New([]string{"http://example.invalid/hook"}, WithClient(client))

	sink.OnTransaction(context.Background(), core.NewTransaction(core.TxAdd, "u1", 0, 5))

	if !closed {
		t.Fatal("response body was not closed")
	}
}
