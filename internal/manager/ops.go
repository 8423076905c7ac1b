package manager

import (
	"context"

	"github.com/google/uuid"
)

// Preload kicks off an asynchronous Ensure for cfg and returns an operation
// ID. Callers observe progress through Snapshot, Status or events. The
// background work is bound to the session, not to the caller.
func (m *Manager[C]) Preload(cfg C) string {
	op := uuid.NewString()
	go func(opID string) {
		if _, err := m.Ensure(m.sessionCtx(), cfg); err != nil {
			m.log.Debug().Err(err).Str("op", opID).Msg("preload did not complete")
		}
	}(op)
	return op
}

// Reset drops the live handle without closing the session; the next Ensure
// creates a fresh instance. Waits for a pending creation to settle first.
func (m *Manager[C]) Reset(ctx context.Context) error {
	for {
		m.mu.Lock()
		if m.closed {
			m.mu.Unlock()
			return ErrSessionClosed(m.name)
		}
		p := m.pending
		if p == nil {
			h := m.cur
			m.cur = nil
			m.state = StateIdle
			// hold the creation slot so nothing is created before h is gone
			hold := &creation[C]{done: make(chan struct{})}
			m.pending = hold
			m.mu.Unlock()
			if h != nil {
				m.retire(h)
			}
			m.finish(hold)
			m.notify()
			return nil
		}
		m.mu.Unlock()
		select {
		case <-p.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
