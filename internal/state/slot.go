package state

import (
	"sync"
	"time"
)

// slot holds the latest value of one telemetry channel. The lock is held
// only while copying in or out.
type slot[T any] struct {
	mu          sync.RWMutex
	value       T
	lastUpdated time.Time
}

func (s *slot[T]) store(v T, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = v
	s.lastUpdated = now
}

func (s *slot[T]) load() (T, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value, s.lastUpdated
}
