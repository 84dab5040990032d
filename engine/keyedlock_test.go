package engine

import (
	"sync"
	"testing"
)

func TestKeyedLockMutualExclusion(t *testing.T) {
	k := newKeyedLock()
	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			k.lock("acct")
			counter++
			k.unlock("acct")
		}()
	}
	wg.Wait()
	if counter != 50 {
		t.Fatalf("want 50 got %d", counter)
	}
}

func TestKeyedLockReapsIdleEntries(t *testing.T) {
	k := newKeyedLock()
	k.lock("a")
	k.lock("b")
	if k.size() != 2 {
		t.Fatalf("want 2 live entries, got %d", k.size())
	}
	k.unlock("a")
	k.unlock("b")
	if k.size() != 0 {
		t.Fatalf("idle entries must be reaped, got %d", k.size())
	}
}

func TestKeyedLockPairOrdering(t *testing.T) {
	k := newKeyedLock()
	var wg sync.WaitGroup
	// opposite lock orders would deadlock without sorted acquisition
	for i := 0; i < 25; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			k.lockPair("alice", "bob")
			k.unlockPair("alice", "bob")
		}()
		go func() {
			defer wg.Done()
			k.lockPair("bob", "alice")
			k.unlockPair("bob", "alice")
		}()
	}
	wg.Wait()
	if k.size() != 0 {
		t.Fatalf("expected empty table, got %d", k.size())
	}
}
