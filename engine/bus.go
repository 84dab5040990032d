package engine

import (
	"context"
	"sync"
	"time"

	"econledger/core"
)

type DispatchMode int

const (
	// DispatchSync delivers success notifications on the committing goroutine.
	DispatchSync DispatchMode = iota
	// DispatchAsync delivers success notifications from a worker pool.
	// Submit notifications are always synchronous regardless of mode.
	DispatchAsync
)

// SubmitObserver inspects a pending transaction while the account lock is
// held. Returning a non-nil error vetoes the transaction; the engine reports
// core.ErrCancelled and commits nothing. Observers must not mutate the same
// account synchronously while the key is locked; defer such work to OnSuccess.
type SubmitObserver func(ctx context.Context, tx core.Transaction) error

// SuccessObserver receives transactions that actually committed.
type SuccessObserver func(ctx context.Context, tx core.Transaction)

type submitSub struct {
	id int64
	fn SubmitObserver
}

type successSub struct {
	id int64
	fn SuccessObserver
}

// Bus delivers cancellable submit notifications and informational success
// notifications to observers in registration order.
type Bus struct {
	mode         DispatchMode
	mu           sync.RWMutex
	submit       []submitSub
	success      []successSub
	nextID       int64
	asyncQueue   chan core.Transaction
	asyncWorkers int
	ctx          context.Context
	cancel       context.CancelFunc
}

func NewBus(mode DispatchMode) *Bus {
	ctx, cancel := context.WithCancel(context.Background())
	b := &Bus{
		mode:         mode,
		asyncQueue:   make(chan core.Transaction, 2048),
		asyncWorkers: 4,
		ctx:          ctx,
		cancel:       cancel,
	}
	if mode == DispatchAsync {
		b.startWorkers()
	}
	return b
}

func (b *Bus) startWorkers() {
	for i := 0; i < b.asyncWorkers; i++ {
		go func() {
			for {
				select {
				case tx := <-b.asyncQueue:
					b.dispatchSuccess(context.Background(), tx)
				case <-b.ctx.Done():
					return
				}
			}
		}()
	}
}

// Close stops async workers.
func (b *Bus) Close() {
	b.cancel()
	// allow workers to drain briefly
	time.Sleep(10 * time.Millisecond)
}

// OnSubmit registers a pre-commit observer. Returns an unsubscribe func.
func (b *Bus) OnSubmit(fn SubmitObserver) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.submit = append(b.submit, submitSub{id: id, fn: fn})
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, s := range b.submit {
			if s.id == id {
				b.submit = append(b.submit[:i], b.submit[i+1:]...)
				return
			}
		}
	}
}

// OnSuccess registers a post-commit observer. Returns an unsubscribe func.
func (b *Bus) OnSuccess(fn SuccessObserver) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.success = append(b.success, successSub{id: id, fn: fn})
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, s := range b.success {
			if s.id == id {
				b.success = append(b.success[:i], b.success[i+1:]...)
				return
			}
		}
	}
}

// Submit announces a pending transaction. The first observer veto wins:
// remaining observers are skipped and the veto reason is returned.
func (b *Bus) Submit(ctx context.Context, tx core.Transaction) error {
	b.mu.RLock()
	// copy to avoid holding the lock during callbacks
	observers := make([]SubmitObserver, 0, len(b.submit))
	for _, s := range b.submit {
		observers = append(observers, s.fn)
	}
	b.mu.RUnlock()
	for _, fn := range observers {
		if err := fn(ctx, tx); err != nil {
			return err
		}
	}
	return nil
}

// Success announces a committed transaction. Never blocks the committer in
// async mode; transactions are dropped if the queue is saturated.
func (b *Bus) Success(ctx context.Context, tx core.Transaction) {
	if b.mode == DispatchAsync {
		select {
		case b.asyncQueue <- tx:
		default:
		}
		return
	}
	b.dispatchSuccess(ctx, tx)
}

func (b *Bus) dispatchSuccess(ctx context.Context, tx core.Transaction) {
	b.mu.RLock()
	observers := make([]SuccessObserver, 0, len(b.success))
	for _, s := range b.success {
		observers = append(observers, s.fn)
	}
	b.mu.RUnlock()
	for _, fn := range observers {
		fn(ctx, tx)
	}
}
