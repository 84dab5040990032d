package engine

import (
	"sync"

	"econledger/core"
)

// keyedLock provides one exclusive mutex per account key so mutations on
// independent accounts never block each other. Entries are reference counted
// and reaped once the last holder releases, keeping the table bounded by the
// number of in-flight mutations rather than the number of accounts.
type keyedLock struct {
	mu      sync.Mutex
	entries map[core.Name]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newKeyedLock() *keyedLock {
	return &keyedLock{entries: map[core.Name]*lockEntry{}}
}

func (k *keyedLock) lock(name core.Name) {
	k.mu.Lock()
	e := k.entries[name]
	if e == nil {
		e = &lockEntry{}
		k.entries[name] = e
	}
	e.refs++
	k.mu.Unlock()
	e.mu.Lock()
}

func (k *keyedLock) unlock(name core.Name) {
	k.mu.Lock()
	e := k.entries[name]
	if e == nil {
		k.mu.Unlock()
		panic("keyedLock: unlock of unheld key " + string(name))
	}
	e.refs--
	if e.refs == 0 {
		delete(k.entries, name)
	}
	k.mu.Unlock()
	e.mu.Unlock()
}

// lockPair acquires both keys in lexicographic order to avoid deadlocks
// between concurrent payments. The keys must differ.
func (k *keyedLock) lockPair(a, b core.Name) {
	if b < a {
		a, b = b, a
	}
	k.lock(a)
	k.lock(b)
}

func (k *keyedLock) unlockPair(a, b core.Name) {
	if b < a {
		a, b = b, a
	}
	k.unlock(b)
	k.unlock(a)
}

func (k *keyedLock) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.entries)
}
