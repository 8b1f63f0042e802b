// Package watch provides a single-writer, multi-reader observable
// value for long-lived component state: one owner publishes updates,
// any number of readers load the current value or subscribe to
// changes.
package watch

import "sync"

// Value holds a T and notifies subscribers on every Set. The zero value
// is not usable; construct with New.
type Value[T any] struct {
	mu   sync.RWMutex
	cur  T
	subs map[int]chan T
	next int
}

// New creates a Value with an initial state.
func New[T any](initial T) *Value[T] {
	return &Value[T]{
		cur:  initial,
		subs: make(map[int]chan T),
	}
}

// Load returns the current value.
func (v *Value[T]) Load() T {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.cur
}

// Set publishes a new value to all subscribers. A subscriber that has
// not drained its channel misses intermediate values but always
// observes the latest one.
func (v *Value[T]) Set(val T) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.cur = val
	for _, ch := range v.subs {
		// Drop the stale buffered value, keep only the newest.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- val:
		default:
		}
	}
}

// Subscribe registers a reader. The returned channel has a buffer of one
// and carries the latest value published after the call. Cancel removes
// the subscription and closes the channel.
func (v *Value[T]) Subscribe() (<-chan T, func()) {
	v.mu.Lock()
	defer v.mu.Unlock()

	id := v.next
	v.next++
	ch := make(chan T, 1)
	v.subs[id] = ch

	cancel := func() {
		v.mu.Lock()
		defer v.mu.Unlock()
		if _, ok := v.subs[id]; ok {
			delete(v.subs, id)
			close(ch)
		}
	}
	return ch, cancel
}
