package redis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"econledger/core"
	"econledger/leaderboard"
)

func TestZSetBoardTopAndRank(t *testing.T) {
	client, cleanup := newTestClient(t)
	defer cleanup()

	board := NewZSetBoard(client, "test:board")
	board.Update("alice", 500)
	board.Update("bob", 300)
	board.Update("carol", 100)

	top := board.Top(2, 0)
	require.Len(t, top, 2)
	assert.Equal(t, leaderboard.Entry{Name: "alice", Balance: 500}, top[0])
	assert.Equal(t, leaderboard.Entry{Name: "bob", Balance: 300}, top[1])

	page := board.Top(2, 2)
	require.Len(t, page, 1)
	assert.Equal(t, core.Name("carol"), page[0].Name)

	rank, ok := board.Rank("bob")
	require.True(t, ok)
	assert.Equal(t, 2, rank)

	_, ok = board.Rank("nobody")
	assert.False(t, ok)

	assert.Equal(t, 3, board.Len())
}

func TestZSetBoardUpdateMovesMember(t *testing.T) {
	client, cleanup := newTestClient(t)
	defer cleanup()

	board := NewZSetBoard(client, "test:board")
	board.Update("alice", 10)
	board.Update("bob", 20)
	board.Update("alice", 30)

	rank, ok := board.Rank("alice")
	require.True(t, ok)
	assert.Equal(t, 1, rank)
	assert.Equal(t, 2, board.Len())
}

func TestZSetBoardTieOrderWithinPage(t *testing.T) {
	client, cleanup := newTestClient(t)
	defer cleanup()

	board := NewZSetBoard(client, "test:board")
	board.Update("zed", 50)
	board.Update("amy", 50)
	board.Update("mia", 50)

	top := board.Top(3, 0)
	require.Len(t, top, 3)
	assert.Equal(t, core.Name("amy"), top[0].Name)
	assert.Equal(t, core.Name("mia"), top[1].Name)
	assert.Equal(t, core.Name("zed"), top[2].Name)
}

func TestZSetBoardRemove(t *testing.T) {
	client, cleanup := newTestClient(t)
	defer cleanup()

	board := NewZSetBoard(client, "test:board")
	board.Update("alice", 10)
	board.Remove("alice")
	if _, ok := board.Rank("alice"); ok {
		t.Fatal("removed member must be unranked")
	}
	assert.Equal(t, 0, board.Len())
}
