package analytics

import (
	"context"
	"sort"
	"sync"
	"time"

	"econledger/core"
)

// Tracker aggregates the committed transaction stream into simple KPIs.
// Register OnTransaction as a success observer.
type Tracker struct {
	mu sync.Mutex

	countByType  map[core.TxType]int64
	volumeByType map[core.TxType]int64 // absolute amounts moved
	activeByDay  map[string]map[core.Name]struct{}
	total        int64
}

func NewTracker() *Tracker {
	return &Tracker{
		countByType:  map[core.TxType]int64{},
		volumeByType: map[core.TxType]int64{},
		activeByDay:  map[string]map[core.Name]struct{}{},
	}
}

func (t *Tracker) OnTransaction(_ context.Context, tx core.Transaction) {
	day := tx.Time.UTC().Format("2006-01-02")
	amount := tx.Amount
	if amount < 0 {
		amount = -amount
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.total++
	t.countByType[tx.Type]++
	t.volumeByType[tx.Type] += amount
	m := t.activeByDay[day]
	if m == nil {
		m = map[core.Name]struct{}{}
		t.activeByDay[day] = m
	}
	m[tx.Player] = struct{}{}
}

// Snapshot is a point-in-time copy of the tracked KPIs.
type Snapshot struct {
	Total        int64                 `json:"total"`
	CountByType  map[core.TxType]int64 `json:"count_by_type"`
	VolumeByType map[core.TxType]int64 `json:"volume_by_type"`
}

func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := Snapshot{
		Total:        t.total,
		CountByType:  make(map[core.TxType]int64, len(t.countByType)),
		VolumeByType: make(map[core.TxType]int64, len(t.volumeByType)),
	}
	for k, v := range t.countByType {
		s.CountByType[k] = v
	}
	for k, v := range t.volumeByType {
		s.VolumeByType[k] = v
	}
	return s
}

// ActivePlayers returns how many distinct players transacted on a day
// (formatted 2006-01-02).
func (t *Tracker) ActivePlayers(day string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.activeByDay[day])
}

// WealthStats summarizes the distribution of balances across a ledger
// snapshot.
type WealthStats struct {
	Timestamp     time.Time `json:"timestamp"`
	Accounts      int       `json:"accounts"`
	TotalWealth   int64     `json:"total_wealth"`
	AverageWealth float64   `json:"average_wealth"`
	MedianWealth  int64     `json:"median_wealth"`
	// Gini is the Gini coefficient of the balance distribution: 0 when every
	// account holds the same amount, approaching 1 as wealth concentrates.
	Gini float64 `json:"gini"`
}

// ComputeWealth derives WealthStats from a balance snapshot (engine.Ledger's
// All result).
func ComputeWealth(balances map[core.Name]int64) WealthStats {
	stats := WealthStats{Timestamp: time.Now().UTC(), Accounts: len(balances)}
	if len(balances) == 0 {
		return stats
	}
	sorted := make([]int64, 0, len(balances))
	for _, b := range balances {
		sorted = append(sorted, b)
		stats.TotalWealth += b
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	n := len(sorted)
	stats.AverageWealth = float64(stats.TotalWealth) / float64(n)
	if n%2 == 1 {
		stats.MedianWealth = sorted[n/2]
	} else {
		stats.MedianWealth = (sorted[n/2-1] + sorted[n/2]) / 2
	}
	if stats.TotalWealth > 0 {
		// Gini over the sorted sample: sum of rank-weighted balances.
		var weighted float64
		for i, b := range sorted {
			weighted += float64(i+1) * float64(b)
		}
		stats.Gini = (2*weighted)/(float64(n)*float64(stats.TotalWealth)) - float64(n+1)/float64(n)
	}
	return stats
}
