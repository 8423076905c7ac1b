package manager

import (
	"context"
	"time"
)

// creation marks the single in-flight creation attempt.
type creation[C comparable] struct {
	cfg  C
	done chan struct{}
	// detach removes the attempt's progress listener; set once the
	// provider is called. Guarded by the Manager's mu.
	detach func()
}

// Ensure returns a live handle configured with cfg. An existing handle with
// an equal config is reused; otherwise the old handle is retired before the
// new creation is awaited.
//
// Requests arriving while a creation is in flight wait for it to settle. The
// newest request's config is the current intent: a waiter or a creation whose
// config no longer matches it fails with a superseded error, and a handle
// created for a stale config is released immediately.
func (m *Manager[C]) Ensure(ctx context.Context, cfg C) (*Handle[C], error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, ErrSessionClosed(m.name)
	}
	m.intent = cfg
	m.hasIntent = true
	m.mu.Unlock()

	for {
		m.mu.Lock()
		if m.closed {
			m.mu.Unlock()
			return nil, ErrSessionClosed(m.name)
		}
		if p := m.pending; p != nil {
			m.mu.Unlock()
			select {
			case <-p.done:
				continue
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		if m.intent != cfg {
			m.mu.Unlock()
			m.emit(EventCreateSuperseded, map[string]any{"stage": "waiting"})
			return nil, ErrSuperseded(m.name)
		}
		if h := m.cur; h != nil && h.config == cfg && !h.Released() {
			m.state = StateReady
			m.mu.Unlock()
			m.log.Debug().Str("event", EventReuse).Str("handle", h.id).Msg("reusing handle")
			m.emit(EventReuse, map[string]any{"handle": h.id})
			return h, nil
		}

		old := m.cur
		m.cur = nil
		p := &creation[C]{cfg: cfg, done: make(chan struct{})}
		m.pending = p
		m.attempt++
		attempt := m.attempt
		m.download = DownloadState{Active: true, Percent: 0}
		m.err = ""
		if old != nil {
			m.state = StateRetiring
		} else {
			m.state = StateCreating
		}
		m.mu.Unlock()
		m.notify()

		if old != nil {
			m.retire(old)
			m.mu.Lock()
			if !m.closed {
				m.state = StateCreating
			}
			m.mu.Unlock()
		}
		return m.createAndCommit(ctx, p, attempt)
	}
}

func (m *Manager[C]) createAndCommit(ctx context.Context, p *creation[C], attempt uint64) (*Handle[C], error) {
	startTs := time.Now()
	m.log.Debug().Str("event", EventCreateStart).Uint64("attempt", attempt).Msg("creating capability")
	m.emit(EventCreateStart, map[string]any{"attempt": attempt})

	cctx, cancel := m.bind(ctx, m.createTimeout)
	h, err := m.acquire(cctx, p, attempt)
	cancel()

	m.mu.Lock()
	closed := m.closed
	stale := m.intent != p.cfg
	switch {
	case closed:
	case err != nil:
		m.state = StateIdle
		m.err = err.Error()
		m.download.Active = false
	case stale:
		m.state = StateIdle
	default:
		m.cur = h
		m.state = StateReady
		m.err = ""
		m.creations++
	}
	m.mu.Unlock()

	// A discarded handle is released before waiters may start another
	// creation, so two live handles are never observable.
	if h != nil && (closed || (err == nil && stale)) {
		h.Release()
	}
	m.finish(p)
	m.notify()

	dur := int(time.Since(startTs) / time.Millisecond)
	switch {
	case closed:
		return nil, ErrSessionClosed(m.name)
	case err != nil:
		m.log.Warn().Err(err).Str("event", EventCreateFailed).Msg("capability creation failed")
		m.emit(EventCreateFailed, map[string]any{"error": err.Error(), "dur_ms": dur})
		if IsUnsupportedEnvironment(err) {
			return nil, err
		}
		return nil, ErrCreationFailed(m.name, err)
	case stale:
		m.emit(EventCreateSuperseded, map[string]any{"stage": "created", "handle": h.id})
		return nil, ErrSuperseded(m.name)
	}
	m.log.Debug().Str("event", EventCreateReady).Str("handle", h.id).Int("dur_ms", dur).Msg("capability ready")
	m.emit(EventCreateReady, map[string]any{"handle": h.id, "dur_ms": dur})
	return h, nil
}

// finish clears the pending slot and wakes waiters.
func (m *Manager[C]) finish(p *creation[C]) {
	m.mu.Lock()
	if m.pending == p {
		m.pending = nil
	}
	m.mu.Unlock()
	close(p.done)
}
