package semaphore

import (
	"container/list"
	"context"
	"sync"
)

// Semaphore is a FIFO bounded-admission primitive with a runtime-adjustable
// limit. Waiters are woken strictly in arrival order so a burst of acquires
// cannot starve earlier callers.
type Semaphore struct {
	mu      sync.Mutex
	limit   int
	held    int
	waiters list.List
}

type waiter struct {
	ready chan struct{}
}

// New constructs a semaphore admitting up to limit concurrent holders.
// A non-positive limit is treated as 1.
func New(limit int) *Semaphore {
	if limit < 1 {
		limit = 1
	}
	return &Semaphore{limit: limit}
}

// Acquire blocks until a slot is free or ctx is done. A nil error means the
// caller holds a slot and must pair it with Release.
func (s *Semaphore) Acquire(ctx context.Context) error {
	s.mu.Lock()
	if s.held < s.limit && s.waiters.Len() == 0 {
		s.held++
		s.mu.Unlock()
		return nil
	}

	w := waiter{ready: make(chan struct{})}
	elem := s.waiters.PushBack(w)
	s.mu.Unlock()

	select {
	case <-ctx.Done():
		s.mu.Lock()
		select {
		case <-w.ready:
			// Granted concurrently with cancellation; hand the slot on.
			s.releaseLocked()
		default:
			s.waiters.Remove(elem)
		}
		s.mu.Unlock()
		return ctx.Err()
	case <-w.ready:
		return nil
	}
}

// Release frees a slot, waking the oldest waiter first.
func (s *Semaphore) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.releaseLocked()
}

func (s *Semaphore) releaseLocked() {
	if s.held > 0 {
		s.held--
	}
	s.wakeLocked()
}

// SetLimit changes capacity immediately. When capacity grows, queued waiters
// are woken up to the new limit; when it shrinks, current holders finish
// normally and the lower bound applies to subsequent admissions.
func (s *Semaphore) SetLimit(limit int) {
	if limit < 1 {
		limit = 1
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.limit = limit
	s.wakeLocked()
}

func (s *Semaphore) wakeLocked() {
	for s.held < s.limit {
		front := s.waiters.Front()
		if front == nil {
			return
		}
		s.waiters.Remove(front)
		s.held++
		close(front.Value.(waiter).ready)
	}
}

// Limit reports the current capacity.
func (s *Semaphore) Limit() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.limit
}

// Held reports the number of slots currently held.
func (s *Semaphore) Held() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.held
}

// Waiting reports the number of queued acquirers.
func (s *Semaphore) Waiting() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.waiters.Len()
}
