package manager

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"lingod/internal/capability"
)

// Manager owns the single live Handle of one feature.
type Manager[C comparable] struct {
	name      string
	provider  capability.Provider[C]
	publisher EventPublisher
	log       zerolog.Logger
	history   *Ledger[C]
	onChange  func()

	createTimeout time.Duration
	invokeTimeout time.Duration
	drainTimeout  time.Duration

	// session context; canceled by Close
	ctxOnce sync.Once
	ctx     context.Context
	cancel  context.CancelFunc

	mu         sync.Mutex
	state      State
	cur        *Handle[C]
	pending    *creation[C]
	intent     C
	hasIntent  bool
	attempt    uint64
	download   DownloadState
	modelReady bool
	closed     bool
	err        string

	startTime   time.Time
	creations   uint64
	invocations uint64
}

// New constructs a Manager with package defaults.
func New[C comparable](name string, provider capability.Provider[C]) *Manager[C] {
	// Delegate to NewWithConfig to centralize defaults
	return NewWithConfig(ManagerConfig[C]{Name: name, Provider: provider})
}

// Name returns the feature name.
func (m *Manager[C]) Name() string { return m.name }

// History returns the invocation ledger.
func (m *Manager[C]) History() *Ledger[C] { return m.history }

// Ready reports whether a live handle exists.
func (m *Manager[C]) Ready() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.closed && m.state == StateReady && m.cur != nil
}

// Current returns the live handle, if any. Callers must not Release it.
func (m *Manager[C]) Current() *Handle[C] {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cur
}

// Availability forwards to the provider. Informational only.
func (m *Manager[C]) Availability(ctx context.Context, cfg C) (capability.Availability, error) {
	if m.provider == nil {
		return capability.AvailabilityUnavailable, ErrUnsupportedEnvironment(m.name)
	}
	return m.provider.Availability(ctx, cfg)
}

// sessionCtx lazily builds the context that Close cancels.
func (m *Manager[C]) sessionCtx() context.Context {
	m.ctxOnce.Do(func() {
		m.ctx, m.cancel = context.WithCancel(context.Background())
	})
	return m.ctx
}

// bind derives a context canceled by either parent or the session, with an
// optional timeout.
func (m *Manager[C]) bind(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	stop := context.AfterFunc(m.sessionCtx(), cancel)
	if timeout > 0 {
		tctx, tcancel := context.WithTimeout(ctx, timeout)
		return tctx, func() { tcancel(); stop(); cancel() }
	}
	return ctx, func() { stop(); cancel() }
}

func (m *Manager[C]) isClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// notify invokes the change callback. Never call with m.mu held.
func (m *Manager[C]) notify() {
	if m.onChange == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			m.log.Warn().Interface("panic", r).Msg("onChange panicked")
		}
	}()
	m.onChange()
}

func (m *Manager[C]) emit(name string, fields map[string]any) {
	if fields == nil {
		fields = map[string]any{}
	}
	m.publisher.Publish(Event{Name: name, Feature: m.name, Fields: fields})
}
