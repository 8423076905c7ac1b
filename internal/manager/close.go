package manager

import "time"

// retire drains a superseded handle and releases it.
//   - Waits up to drainTimeout for an in-flight invocation to finish.
//   - Keeps the in-flight slot so no new invocation can start on it.
//   - Releases the handle (listener detached, instance destroyed).
func (m *Manager[C]) retire(h *Handle[C]) {
	m.log.Debug().Str("event", EventRetireStart).Str("handle", h.id).Msg("retiring handle")
	m.emit(EventRetireStart, map[string]any{"handle": h.id})

	timer := time.NewTimer(m.drainTimeout)
	defer timer.Stop()
	select {
	case h.genCh <- struct{}{}:
	case <-h.gone:
	case <-m.sessionCtx().Done():
	case <-timer.C:
		m.log.Warn().Str("event", EventRetireTimeout).Str("handle", h.id).Msg("invocation still running; releasing anyway")
		m.emit(EventRetireTimeout, map[string]any{"handle": h.id, "inflight": len(h.genCh)})
	}
	h.Release()
}

// Close tears the session down: the current handle is released right away,
// in-flight creations and invocations are canceled, and anything they
// produce afterwards is discarded. Close is idempotent.
func (m *Manager[C]) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	h := m.cur
	m.cur = nil
	m.state = StateIdle
	m.download.Active = false
	// invalidate any progress listener still attached to a pending attempt
	m.attempt++
	var detach func()
	if m.pending != nil {
		detach = m.pending.detach
	}
	m.mu.Unlock()

	if detach != nil {
		detach()
	}

	m.sessionCtx()
	m.cancel()
	if h != nil {
		h.Release()
	}
	m.log.Debug().Str("event", EventSessionClosed).Msg("session closed")
	m.emit(EventSessionClosed, nil)
	m.notify()
	return nil
}
