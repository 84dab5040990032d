package analytics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"econledger/core"
)

func TestTrackerAggregates(t *testing.T) {
	tr := NewTracker()
	ctx := context.Background()

	tr.OnTransaction(ctx, core.NewTransaction(core.TxSet, "alice", 0, 100))
	tr.OnTransaction(ctx, core.NewTransaction(core.TxAdd, "alice", 100, 150))
	tr.OnTransaction(ctx, core.NewTransaction(core.TxReduce, "bob", 80, 50))

	s := tr.Snapshot()
	assert.Equal(t, int64(3), s.Total)
	assert.Equal(t, int64(1), s.CountByType[core.TxAdd])
	assert.Equal(t, int64(100), s.VolumeByType[core.TxSet])
	assert.Equal(t, int64(50), s.VolumeByType[core.TxAdd])
	assert.Equal(t, int64(30), s.VolumeByType[core.TxReduce])

	day := core.NewTransaction(core.TxSet, "x", 0, 0).Time.UTC().Format("2006-01-02")
	assert.Equal(t, 2, tr.ActivePlayers(day))
	assert.Equal(t, 0, tr.ActivePlayers("1999-01-01"))
}

func TestComputeWealthEmpty(t *testing.T) {
	s := ComputeWealth(nil)
	assert.Equal(t, 0, s.Accounts)
	assert.Equal(t, int64(0), s.TotalWealth)
	assert.Equal(t, 0.0, s.Gini)
}

func TestComputeWealthDistribution(t *testing.T) {
	s := ComputeWealth(map[core.Name]int64{
		"a": 100,
		"b": 200,
		"c": 300,
		"d": 400,
	})
	assert.Equal(t, 4, s.Accounts)
	assert.Equal(t, int64(1000), s.TotalWealth)
	assert.Equal(t, 250.0, s.AverageWealth)
	assert.Equal(t, int64(250), s.MedianWealth)
	assert.InDelta(t, 0.25, s.Gini, 1e-9)
}

func TestComputeWealthPerfectEquality(t *testing.T) {
	s := ComputeWealth(map[core.Name]int64{"a": 50, "b": 50, "c": 50})
	assert.InDelta(t, 0.0, s.Gini, 1e-9)
	assert.Equal(t, int64(50), s.MedianWealth)
}
