package manager

import "sync"

// Ledger is a fixed-capacity, most-recent-first record of completed
// invocations.
type Ledger[C comparable] struct {
	mu      sync.RWMutex
	cap     int
	entries []HistoryEntry[C]
}

// NewLedger returns a Ledger holding at most capacity entries.
func NewLedger[C comparable](capacity int) *Ledger[C] {
	if capacity <= 0 {
		capacity = defaultHistoryCap
	}
	return &Ledger[C]{cap: capacity, entries: make([]HistoryEntry[C], 0, capacity)}
}

// Record inserts e at the front, evicting the oldest entry beyond capacity.
func (l *Ledger[C]) Record(e HistoryEntry[C]) {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := len(l.entries)
	if n >= l.cap {
		n = l.cap - 1
	}
	next := make([]HistoryEntry[C], 0, l.cap)
	next = append(next, e)
	next = append(next, l.entries[:n]...)
	l.entries = next
}

// Entries returns a copy, newest first.
func (l *Ledger[C]) Entries() []HistoryEntry[C] {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]HistoryEntry[C], len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *Ledger[C]) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

func (l *Ledger[C]) Cap() int { return l.cap }

func (l *Ledger[C]) Clear() {
	l.mu.Lock()
	l.entries = l.entries[:0:0]
	l.mu.Unlock()
}
