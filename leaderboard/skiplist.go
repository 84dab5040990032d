package leaderboard

import (
	cryptorand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
	"sync"

	"econledger/core"
)

// A skip list keyed by (balance desc, name asc) with per-level span counts, so
// rank lookups and offset traversal are O(log n) as well as updates.

const maxLevel = 16
const pFactor = 0.25

type node struct {
	e    Entry
	next [maxLevel]*node
	// span[i] counts level-0 steps crossed by following next[i].
	span [maxLevel]int
}

type SkipList struct {
	mu     sync.RWMutex
	head   *node
	lvl    int
	length int
	byName map[core.Name]*node
	rng    *rand.Rand
}

func NewSkipList() *SkipList {
	// Seed PCG from crypto/rand so concurrent boards never share a sequence.
	var seed [16]byte
	if _, err := cryptorand.Read(seed[:]); err != nil {
		seed = [16]byte{}
	}
	seed1 := binary.BigEndian.Uint64(seed[:8])
	seed2 := binary.BigEndian.Uint64(seed[8:])

	return &SkipList{
		head:   &node{},
		lvl:    1,
		byName: map[core.Name]*node{},
		rng:    rand.New(rand.NewPCG(seed1, seed2)),
	}
}

func (s *SkipList) randomLevel() int {
	lvl := 1
	for lvl < maxLevel && s.rng.Float64() < pFactor {
		lvl++
	}
	return lvl
}

func less(a, b Entry) bool {
	if a.Balance == b.Balance {
		return a.Name < b.Name
	}
	return a.Balance > b.Balance // higher balance first
}

// Update inserts name or moves it to a new balance.
func (s *SkipList) Update(name core.Name, balance int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.byName[name]; ok {
		s.removeLocked(name, old.e)
	}
	e := Entry{Name: name, Balance: balance}
	var update [maxLevel]*node
	var rank [maxLevel]int
	cur := s.head
	for i := s.lvl - 1; i >= 0; i-- {
		if i == s.lvl-1 {
			rank[i] = 0
		} else {
			rank[i] = rank[i+1]
		}
		for cur.next[i] != nil && less(cur.next[i].e, e) {
			rank[i] += cur.span[i]
			cur = cur.next[i]
		}
		update[i] = cur
	}
	lvl := s.randomLevel()
	if lvl > s.lvl {
		for i := s.lvl; i < lvl; i++ {
			rank[i] = 0
			update[i] = s.head
			update[i].span[i] = s.length
		}
		s.lvl = lvl
	}
	n := &node{e: e}
	for i := 0; i < lvl; i++ {
		n.next[i] = update[i].next[i]
		update[i].next[i] = n
		n.span[i] = update[i].span[i] - (rank[0] - rank[i])
		update[i].span[i] = rank[0] - rank[i] + 1
	}
	for i := lvl; i < s.lvl; i++ {
		update[i].span[i]++
	}
	s.length++
	s.byName[name] = n
}

func (s *SkipList) removeLocked(name core.Name, e Entry) {
	var update [maxLevel]*node
	cur := s.head
	for i := s.lvl - 1; i >= 0; i-- {
		for cur.next[i] != nil && less(cur.next[i].e, e) {
			cur = cur.next[i]
		}
		update[i] = cur
	}
	target := update[0].next[0]
	if target == nil || target.e.Name != name {
		return
	}
	for i := 0; i < s.lvl; i++ {
		if update[i].next[i] == target {
			update[i].span[i] += target.span[i] - 1
			update[i].next[i] = target.next[i]
		} else {
			update[i].span[i]--
		}
	}
	delete(s.byName, name)
	s.length--
	for s.lvl > 1 && s.head.next[s.lvl-1] == nil {
		s.lvl--
	}
}

func (s *SkipList) Remove(name core.Name) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n, ok := s.byName[name]; ok {
		s.removeLocked(name, n.e)
	}
}

func (s *SkipList) Top(limit, offset int) []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 || offset < 0 || offset >= s.length {
		return nil
	}
	// Skip offset entries using spans instead of walking level 0.
	cur := s.head
	traversed := 0
	for i := s.lvl - 1; i >= 0; i-- {
		for cur.next[i] != nil && traversed+cur.span[i] <= offset {
			traversed += cur.span[i]
			cur = cur.next[i]
		}
	}
	out := make([]Entry, 0, limit)
	for n := cur.next[0]; n != nil && len(out) < limit; n = n.next[0] {
		out = append(out, n.e)
	}
	return out
}

func (s *SkipList) Rank(name core.Name) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.byName[name]
	if !ok {
		return 0, false
	}
	target := n.e
	rank := 0
	cur := s.head
	for i := s.lvl - 1; i >= 0; i-- {
		for cur.next[i] != nil && !less(target, cur.next[i].e) {
			rank += cur.span[i]
			cur = cur.next[i]
			if cur.e.Name == name {
				return rank, true
			}
		}
	}
	return rank, true
}

func (s *SkipList) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.length
}

var _ Board = (*SkipList)(nil)
