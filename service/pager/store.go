package pager

import (
	"time"

	"github.com/botshop/go-seabot/service/metric"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/segmentio/ksuid"
)

// Store holds pager snapshots between button presses.
type Store interface {
	Put(state ViewState)
	Get(id string) (ViewState, bool)
}

// NewID returns a new snapshot id.
func NewID() string {
	return ksuid.New().String()
}

// MemoryStore keeps the most recent snapshots in process memory. Snapshots are dropped once the
// store is full or after ttl, which is what ends a pager session.
type MemoryStore struct {
	cache *expirable.LRU[string, ViewState]
}

func NewMemoryStore(size int, ttl time.Duration) *MemoryStore {
	onEvict := func(string, ViewState) { metric.PagerSnapshots.Dec() }
	return &MemoryStore{cache: expirable.NewLRU[string, ViewState](size, onEvict, ttl)}
}

func (s *MemoryStore) Put(state ViewState) {
	if s.cache.Contains(state.ID) {
		s.cache.Add(state.ID, state)
		return
	}
	s.cache.Add(state.ID, state)
	metric.PagerSnapshots.Inc()
}

func (s *MemoryStore) Get(id string) (ViewState, bool) {
	return s.cache.Get(id)
}

func (s *MemoryStore) Len() int {
	return s.cache.Len()
}
