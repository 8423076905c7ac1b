package manager

import (
	"context"
	"time"

	"lingod/pkg/types"
)

// Describer is implemented by configs that can render themselves as flat
// key/value pairs for status and history payloads.
type Describer interface {
	Fields() map[string]string
}

// Describe renders cfg via Describer, or returns nil.
func Describe[C comparable](cfg C) map[string]string {
	if d, ok := any(cfg).(Describer); ok {
		return d.Fields()
	}
	return nil
}

// Snapshot returns a read-only view of the session state.
func (m *Manager[C]) Snapshot() Snapshot[C] {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := Snapshot[C]{
		Name:       m.name,
		State:      m.state,
		Download:   m.download,
		ModelReady: m.modelReady,
		Closed:     m.closed,
		Err:        m.err,
	}
	if m.cur != nil {
		cfg := m.cur.config
		s.Config = &cfg
	}
	return s
}

// Status builds the per-feature block of /status. Availability is queried
// with the current intent (or the zero config) under a short timeout.
func (m *Manager[C]) Status(ctx context.Context) types.FeatureStatus {
	m.mu.Lock()
	resp := types.FeatureStatus{
		Feature:          m.name,
		State:            string(m.state),
		DownloadActive:   m.download.Active,
		DownloadPercent:  m.download.Percent,
		ModelReady:       m.modelReady,
		HistoryLen:       m.history.Len(),
		CreationsTotal:   m.creations,
		InvocationsTotal: m.invocations,
		Closed:           m.closed,
		LastError:        m.err,
	}
	if m.cur != nil {
		resp.Config = Describe(m.cur.config)
		resp.Busy = m.cur.Busy()
	}
	probe := m.intent
	m.mu.Unlock()

	if m.provider != nil && !resp.Closed {
		actx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
		defer cancel()
		if a, err := m.Availability(actx, probe); err == nil {
			resp.Availability = string(a)
		}
	}
	return resp
}
