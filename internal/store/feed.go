package store

import (
	"context"
	"sync"
)

// Feed broadcasts the latest value of T to subscribers.
// New subscribers receive the current value first; slow subscribers only see the newest value.
type Feed[T any] struct {
	mu      sync.Mutex
	current T
	subs    map[chan T]struct{}
}

// NewFeed creates a feed holding initial.
func NewFeed[T any](initial T) *Feed[T] {
	return &Feed[T]{
		current: initial,
		subs:    make(map[chan T]struct{}),
	}
}

// Get returns the current value.
func (f *Feed[T]) Get() T {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current
}

// Publish replaces the current value and notifies every subscriber.
func (f *Feed[T]) Publish(v T) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.current = v
	for ch := range f.subs {
		offer(ch, v)
	}
}

// Subscribe returns a channel replaying the current value, then every later one.
// The channel is closed once ctx is done.
func (f *Feed[T]) Subscribe(ctx context.Context) <-chan T {
	ch := make(chan T, 1)

	f.mu.Lock()
	f.subs[ch] = struct{}{}
	ch <- f.current
	f.mu.Unlock()

	go func() {
		<-ctx.Done()
		f.mu.Lock()
		delete(f.subs, ch)
		close(ch)
		f.mu.Unlock()
	}()

	return ch
}

// offer replaces whatever is buffered in ch with v. Callers hold f.mu.
func offer[T any](ch chan T, v T) {
	select {
	case <-ch:
	default:
	}
	ch <- v
}
