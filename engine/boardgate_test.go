package engine

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"econledger/leaderboard"
)

func TestBoardGateDiscardsSupersededRefresh(t *testing.T) {
	board := leaderboard.NewSkipList()
	gate := newBoardGate()

	// two commits on one account, refreshes arriving in reverse order
	first := gate.next("alice")
	second := gate.next("alice")

	gate.apply(board, "alice", 999, second)
	gate.apply(board, "alice", 100, first)

	top := board.Top(1, 0)
	require.Len(t, top, 1)
	assert.Equal(t, int64(999), top[0].Balance)
}

func TestBoardGateSequencesPerAccount(t *testing.T) {
	board := leaderboard.NewSkipList()
	gate := newBoardGate()

	aliceSeq := gate.next("alice")
	bobSeq := gate.next("bob")

	// accounts carry independent sequences
	assert.Equal(t, uint64(1), aliceSeq)
	assert.Equal(t, uint64(1), bobSeq)

	gate.apply(board, "alice", 10, aliceSeq)
	gate.apply(board, "bob", 20, bobSeq)
	assert.Equal(t, 2, board.Len())
}

func TestLeaderboardTracksLatestCommit(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				_, err := svc.SetBalance(ctx, "alice", int64(w*1000+i+1))
				assert.NoError(t, err)
			}
		}(w)
	}
	wg.Wait()

	balance, err := svc.Balance(ctx, "alice")
	require.NoError(t, err)

	top := svc.Top(1, 0)
	require.Len(t, top, 1)
	assert.Equal(t, balance, top[0].Balance)

	rank, ok := svc.Rank("alice")
	require.True(t, ok)
	assert.Equal(t, 1, rank)
}
