package leaderboard

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"testing"

	"econledger/core"
)

func TestSkipListOrdering(t *testing.T) {
	s := NewSkipList()
	s.Update("alice", 10)
	s.Update("bob", 20)
	s.Update("carol", 15)
	top := s.Top(3, 0)
	if len(top) != 3 || top[0].Name != "bob" || top[1].Name != "carol" || top[2].Name != "alice" {
		t.Fatalf("unexpected order: %#v", top)
	}
	s.Update("alice", 25)
	top = s.Top(1, 0)
	if top[0].Name != "alice" {
		t.Fatalf("top should be alice, got %#v", top)
	}
}

func TestSkipListTieBreakByName(t *testing.T) {
	s := NewSkipList()
	s.Update("zed", 50)
	s.Update("amy", 50)
	s.Update("mia", 50)
	top := s.Top(3, 0)
	if top[0].Name != "amy" || top[1].Name != "mia" || top[2].Name != "zed" {
		t.Fatalf("ties must order by name asc: %#v", top)
	}
}

func TestSkipListOffset(t *testing.T) {
	s := NewSkipList()
	for i := 0; i < 10; i++ {
		s.Update(core.Name(fmt.Sprintf("p%02d", i)), int64(100-i))
	}
	page := s.Top(3, 4)
	if len(page) != 3 || page[0].Name != "p04" || page[2].Name != "p06" {
		t.Fatalf("unexpected page: %#v", page)
	}
	if got := s.Top(5, 10); got != nil {
		t.Fatalf("offset past population should be empty, got %#v", got)
	}
	if got := s.Top(5, 8); len(got) != 2 {
		t.Fatalf("tail page should clip to population, got %#v", got)
	}
}

func TestSkipListRank(t *testing.T) {
	s := NewSkipList()
	s.Update("alice", 10)
	s.Update("bob", 30)
	s.Update("carol", 20)

	if r, ok := s.Rank("bob"); !ok || r != 1 {
		t.Fatalf("bob rank = %d %v", r, ok)
	}
	if r, ok := s.Rank("carol"); !ok || r != 2 {
		t.Fatalf("carol rank = %d %v", r, ok)
	}
	if r, ok := s.Rank("alice"); !ok || r != 3 {
		t.Fatalf("alice rank = %d %v", r, ok)
	}
	if _, ok := s.Rank("nobody"); ok {
		t.Fatal("unknown name must be unranked")
	}

	s.Remove("bob")
	if r, ok := s.Rank("carol"); !ok || r != 1 {
		t.Fatalf("after removal carol rank = %d %v", r, ok)
	}
	if _, ok := s.Rank("bob"); ok {
		t.Fatal("removed name must be unranked")
	}
}

func TestSkipListAgainstSort(t *testing.T) {
	s := NewSkipList()
	balances := map[core.Name]int64{}
	for i := 0; i < 500; i++ {
		name := core.Name(fmt.Sprintf("p%03d", rand.IntN(120)))
		bal := int64(rand.IntN(40)) // force plenty of ties
		balances[name] = bal
		s.Update(name, bal)
	}
	want := make([]Entry, 0, len(balances))
	for n, b := range balances {
		want = append(want, Entry{Name: n, Balance: b})
	}
	sort.Slice(want, func(i, j int) bool { return less(want[i], want[j]) })

	if s.Len() != len(want) {
		t.Fatalf("len = %d want %d", s.Len(), len(want))
	}
	got := s.Top(len(want), 0)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("position %d: got %+v want %+v", i, got[i], want[i])
		}
		if r, ok := s.Rank(want[i].Name); !ok || r != i+1 {
			t.Fatalf("rank of %s = %d %v, want %d", want[i].Name, r, ok, i+1)
		}
	}
}
