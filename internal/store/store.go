// Package store holds feature state behind a pure reducer and fans state
// changes out to subscribers.
package store

import (
	"slices"
	"sync"
)

// Reducer computes the next state. It must not mutate its input.
type Reducer[S, A any] func(S, A) S

// Store serializes dispatches. Subscribers run outside the lock, in
// subscription order, and see states in dispatch order: while one goroutine
// is delivering, concurrent (or nested) dispatches queue their states for it
// and return immediately.
type Store[S, A any] struct {
	mu     sync.Mutex
	state  S
	reduce Reducer[S, A]
	nextID int
	subs   map[int]func(S)

	pending    []S
	delivering bool
	frozen     bool
}

// New returns a Store starting at initial.
func New[S, A any](initial S, reduce Reducer[S, A]) *Store[S, A] {
	return &Store[S, A]{state: initial, reduce: reduce, subs: make(map[int]func(S))}
}

// State returns the current state.
func (s *Store[S, A]) State() S {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch applies a and notifies subscribers with the resulting state.
// After Freeze it is a no-op returning the frozen state.
func (s *Store[S, A]) Dispatch(a A) S {
	s.mu.Lock()
	if s.frozen {
		st := s.state
		s.mu.Unlock()
		return st
	}
	s.state = s.reduce(s.state, a)
	next := s.state
	s.pending = append(s.pending, next)
	if s.delivering {
		s.mu.Unlock()
		return next
	}
	s.delivering = true
	for len(s.pending) > 0 && !s.frozen {
		st := s.pending[0]
		s.pending = s.pending[1:]
		fns := s.subscribers()
		s.mu.Unlock()
		for _, fn := range fns {
			fn(st)
		}
		s.mu.Lock()
	}
	s.pending = nil
	s.delivering = false
	s.mu.Unlock()
	return next
}

// Freeze stops all further state changes and drops undelivered ones.
func (s *Store[S, A]) Freeze() {
	s.mu.Lock()
	s.frozen = true
	s.pending = nil
	s.mu.Unlock()
}

// subscribers returns the callbacks in subscription order. Caller holds mu.
func (s *Store[S, A]) subscribers() []func(S) {
	ids := make([]int, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	fns := make([]func(S), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.subs[id])
	}
	return fns
}

// Subscribe registers fn and returns an idempotent unsubscribe func.
func (s *Store[S, A]) Subscribe(fn func(S)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}
