package auth

import (
	"sync"
	"time"

	"github.com/bits-and-blooms/bloom/v3"
)

// revocationList remembers signed-out token ids until their tokens expire.
// The bloom filter answers most lookups for live tokens without the map.
type revocationList struct {
	mu       sync.RWMutex
	filter   *bloom.BloomFilter
	expiries map[string]time.Time
	capacity uint
}

func newRevocationList(capacity uint) *revocationList {
	if capacity == 0 {
		capacity = 1024
	}
	return &revocationList{
		filter:   bloom.NewWithEstimates(capacity, 0.001),
		expiries: make(map[string]time.Time),
		capacity: capacity,
	}
}

func (l *revocationList) Add(id string, expires, now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if uint(len(l.expiries)) >= l.capacity {
		l.pruneLocked(now)
	}
	l.expiries[id] = expires
	l.filter.AddString(id)
}

func (l *revocationList) Contains(id string, now time.Time) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if !l.filter.TestString(id) {
		return false
	}
	expires, ok := l.expiries[id]
	return ok && now.Before(expires)
}

// pruneLocked drops expired ids and rebuilds the filter from the rest
func (l *revocationList) pruneLocked(now time.Time) {
	for id, expires := range l.expiries {
		if !now.Before(expires) {
			delete(l.expiries, id)
		}
	}

	capacity := l.capacity
	for uint(len(l.expiries)) >= capacity {
		capacity *= 2
	}
	l.capacity = capacity
	l.filter = bloom.NewWithEstimates(capacity, 0.001)
	for id := range l.expiries {
		l.filter.AddString(id)
	}
}
