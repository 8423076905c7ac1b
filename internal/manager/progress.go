package manager

import "lingod/internal/capability"

// Percent maps raw download counts to a completion estimate in [0,100].
// An unknown or zero total counts as complete.
func Percent(loaded, total int64) float64 {
	if total <= 0 {
		return 100
	}
	p := float64(loaded) / float64(total) * 100
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// progressTracker observes one creation attempt. Observations from a stale
// attempt (a newer creation started, or the session closed) are dropped.
type progressTracker[C comparable] struct {
	m         *Manager[C]
	attempt   uint64
	completed bool // guarded by m.mu
}

func (t *progressTracker[C]) observe(ev capability.ProgressEvent) {
	m := t.m
	p := Percent(ev.Loaded, ev.Total)

	m.mu.Lock()
	if m.closed || m.attempt != t.attempt {
		m.mu.Unlock()
		return
	}
	if p < m.download.Percent {
		p = m.download.Percent
	}
	m.download.Percent = p
	firstComplete, firstReady := false, false
	if p >= 100 && !t.completed {
		t.completed = true
		firstComplete = true
		m.download.Active = false
		if !m.modelReady {
			m.modelReady = true
			firstReady = true
		}
	}
	m.mu.Unlock()

	m.emit(EventDownloadProgress, map[string]any{"percent": p, "loaded": ev.Loaded, "total": ev.Total})
	if firstComplete {
		m.log.Debug().Str("event", EventDownloadComplete).Msg("download complete")
		m.emit(EventDownloadComplete, nil)
	}
	if firstReady {
		m.log.Info().Str("event", EventModelReady).Msg("model ready")
		m.emit(EventModelReady, nil)
	}
	m.notify()
}

// settle clears the active flag once creation resolved, whether or not any
// progress was observed.
func (t *progressTracker[C]) settle() {
	m := t.m
	m.mu.Lock()
	changed := false
	if !m.closed && m.attempt == t.attempt && !t.completed {
		t.completed = true
		changed = m.download.Active
		m.download.Active = false
	}
	m.mu.Unlock()
	if changed {
		m.notify()
	}
}
