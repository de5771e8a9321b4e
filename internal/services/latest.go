package services

import (
	"sync"
	"sync/atomic"
)

// Latest holds the result of the most recently started request. A result
// published for an older request than the one already stored is dropped.
type Latest[T any] struct {
	seq atomic.Uint64

	mu        sync.RWMutex
	published uint64
	value     T
	ok        bool
}

// Begin reserves a sequence number for a new request.
func (l *Latest[T]) Begin() uint64 {
	return l.seq.Add(1)
}

// Publish stores v if seq is newer than the stored result. It reports
// whether v was kept.
func (l *Latest[T]) Publish(seq uint64, v T) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if seq <= l.published {
		return false
	}
	l.published = seq
	l.value = v
	l.ok = true
	return true
}

func (l *Latest[T]) Get() (T, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.value, l.ok
}
