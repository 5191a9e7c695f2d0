// Package broadcast implements an ordered observer registry holding a
// current value.
//
// Subscribers receive the current value once on Subscribe and then every
// accepted Set, in subscription order. Deliveries go through a single FIFO
// queue drained outside the lock, so a listener may call Set or Subscribe
// re-entrantly; its publications are delivered after the current one
// finishes. A panicking listener is logged and skipped.
package broadcast

import (
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
)

type subscription[T any] struct {
	id     uint64
	fn     func(T)
	active atomic.Bool
}

type delivery[T any] struct {
	value   T
	targets []*subscription[T]
}

// Broadcaster fans a value out to subscribers.
type Broadcaster[T any] struct {
	name  string
	equal func(a, b T) bool
	log   zerolog.Logger

	mu       sync.Mutex
	current  T
	subs     []*subscription[T]
	nextID   uint64
	queue    []delivery[T]
	draining bool
}

// New returns a Broadcaster seeded with initial. When equal is non-nil, Set
// drops values equal to the current one, which makes notifications
// edge-triggered. A nil equal delivers every Set.
func New[T any](name string, initial T, equal func(a, b T) bool, log zerolog.Logger) *Broadcaster[T] {
	return &Broadcaster[T]{
		name:    name,
		equal:   equal,
		log:     log,
		current: initial,
	}
}

// Current returns the last accepted value.
func (b *Broadcaster[T]) Current() T {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}

// Set stores v and notifies subscribers. It reports whether v was accepted
// as a change.
func (b *Broadcaster[T]) Set(v T) bool {
	b.mu.Lock()
	if b.equal != nil && b.equal(b.current, v) {
		b.mu.Unlock()
		return false
	}
	b.current = v
	targets := make([]*subscription[T], 0, len(b.subs))
	for _, s := range b.subs {
		if s.active.Load() {
			targets = append(targets, s)
		}
	}
	b.queue = append(b.queue, delivery[T]{value: v, targets: targets})
	b.mu.Unlock()

	b.drain()
	return true
}

// Subscribe registers fn and replays the current value to it before any
// later change. The returned func unsubscribes and is safe to call twice.
func (b *Broadcaster[T]) Subscribe(fn func(T)) func() {
	b.mu.Lock()
	b.nextID++
	s := &subscription[T]{id: b.nextID, fn: fn}
	s.active.Store(true)
	b.subs = append(b.subs, s)
	b.queue = append(b.queue, delivery[T]{value: b.current, targets: []*subscription[T]{s}})
	b.mu.Unlock()

	b.drain()

	return func() { b.unsubscribe(s) }
}

// Len returns the number of live subscribers.
func (b *Broadcaster[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

func (b *Broadcaster[T]) unsubscribe(s *subscription[T]) {
	if !s.active.CompareAndSwap(true, false) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, cur := range b.subs {
		if cur == s {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return
		}
	}
}

// drain delivers queued values until the queue is empty. Only one goroutine
// drains at a time; others leave their entries for it.
func (b *Broadcaster[T]) drain() {
	b.mu.Lock()
	if b.draining {
		b.mu.Unlock()
		return
	}
	b.draining = true
	for len(b.queue) > 0 {
		d := b.queue[0]
		b.queue[0] = delivery[T]{}
		b.queue = b.queue[1:]
		b.mu.Unlock()

		for _, s := range d.targets {
			if s.active.Load() {
				b.invoke(s, d.value)
			}
		}

		b.mu.Lock()
	}
	b.draining = false
	b.mu.Unlock()
}

func (b *Broadcaster[T]) invoke(s *subscription[T], v T) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error().
				Str("broadcaster", b.name).
				Uint64("listener", s.id).
				Interface("panic", r).
				Msg("listener panicked, continuing delivery")
		}
	}()
	s.fn(v)
}
