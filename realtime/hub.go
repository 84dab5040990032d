package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"

	"econledger/core"
)

// Hub fans committed transactions out to subscribers. A slow subscriber never
// blocks the committer: sends that would block are dropped and counted on the
// subscription, so transports can decide when a client is too far behind to
// keep.
type Hub struct {
	mu   sync.RWMutex
	subs map[int]*Subscription
	next int
}

// Subscription is one receiver attached to a Hub. C closes on Unsubscribe.
type Subscription struct {
	ID int
	C  <-chan core.Transaction

	ch      chan core.Transaction
	dropped atomic.Int64
}

// Dropped reports how many transactions were discarded because the
// subscription's buffer was full.
func (s *Subscription) Dropped() int64 { return s.dropped.Load() }

func NewHub() *Hub { return &Hub{subs: map[int]*Subscription{}} }

func (h *Hub) Subscribe(buffer int) *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.next++
	ch := make(chan core.Transaction, buffer)
	sub := &Subscription{ID: h.next, C: ch, ch: ch}
	h.subs[sub.ID] = sub
	return sub
}

func (h *Hub) Unsubscribe(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if sub, ok := h.subs[id]; ok {
		delete(h.subs, id)
		close(sub.ch)
	}
}

// Close drops every subscription, closing their channels. Used at shutdown
// so streaming transports can say goodbye to their clients.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, sub := range h.subs {
		delete(h.subs, id)
		close(sub.ch)
	}
}

func (h *Hub) Broadcast(_ context.Context, tx core.Transaction) {
	h.mu.RLock()
	// copy to avoid holding lock during send
	receivers := make([]*Subscription, 0, len(h.subs))
	for _, sub := range h.subs {
		receivers = append(receivers, sub)
	}
	h.mu.RUnlock()
	for _, sub := range receivers {
		select {
		case sub.ch <- tx:
		default:
			sub.dropped.Add(1)
		}
	}
}

// MarshalJSON is a helper to convert transactions to JSON bytes for WebSocket/SSE.
func MarshalJSON(tx core.Transaction) []byte {
	b, _ := json.Marshal(tx)
	return b
}
