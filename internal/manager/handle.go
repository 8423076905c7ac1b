package manager

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"lingod/internal/capability"
)

// errHandleReleased is returned when an invocation races a retirement.
var errHandleReleased = errors.New("handle released")

// Handle pairs one live capability instance with the cleanup of its
// download-progress listener. A Manager owns at most one live Handle.
type Handle[C comparable] struct {
	id              string
	instance        capability.Instance
	config          C
	releaseListener func()

	// size 1: single in-flight invocation
	genCh    chan struct{}
	gone     chan struct{}
	once     sync.Once
	released atomic.Bool
	log      zerolog.Logger
	onClose  func(id string)
}

// NewHandle wraps an already created instance. releaseListener may be nil.
func NewHandle[C comparable](instance capability.Instance, config C, releaseListener func()) *Handle[C] {
	if releaseListener == nil {
		releaseListener = func() {}
	}
	return &Handle[C]{
		id:              uuid.NewString(),
		instance:        instance,
		config:          config,
		releaseListener: releaseListener,
		genCh:           make(chan struct{}, 1),
		gone:            make(chan struct{}),
		log:             zerolog.Nop(),
	}
}

func (h *Handle[C]) ID() string { return h.id }

func (h *Handle[C]) Config() C { return h.config }

func (h *Handle[C]) Instance() capability.Instance { return h.instance }

func (h *Handle[C]) Released() bool { return h.released.Load() }

// Release detaches the progress listener, then disposes the instance.
// Safe to call more than once; only the first call has any effect. Failures
// of either step are swallowed.
func (h *Handle[C]) Release() {
	h.once.Do(func() {
		h.released.Store(true)
		close(h.gone)
		if err := detachQuietly(h.releaseListener); err != nil {
			h.log.Debug().Err(err).Str("handle", h.id).Msg("listener cleanup failed")
		}
		if err := destroyQuietly(h.instance); err != nil {
			h.log.Debug().Err(err).Str("handle", h.id).Msg("destroy failed")
		}
		if h.onClose != nil {
			h.onClose(h.id)
		}
	})
}

func detachQuietly(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	fn()
	return nil
}

func destroyQuietly(inst capability.Instance) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	if inst == nil {
		return nil
	}
	return inst.Destroy()
}

// acquire creates an instance for p's config with a progress listener
// attached for the given creation attempt. The detach func is published on
// p so Close can drop the listener while the host is still creating.
func (m *Manager[C]) acquire(ctx context.Context, p *creation[C], attempt uint64) (*Handle[C], error) {
	if m.provider == nil {
		return nil, ErrUnsupportedEnvironment(m.name)
	}
	cfg := p.cfg
	tracker := &progressTracker[C]{m: m, attempt: attempt}
	var (
		mu       sync.Mutex
		detach   []func()
		detached bool
	)
	opts := capability.CreateOptions{
		Monitor: func(mon *capability.Monitor) {
			remove := mon.AddEventListener(capability.EventDownloadProgress, tracker.observe)
			mu.Lock()
			if detached {
				mu.Unlock()
				remove()
				return
			}
			detach = append(detach, remove)
			mu.Unlock()
		},
	}
	release := func() {
		mu.Lock()
		fns := detach
		detach = nil
		detached = true
		mu.Unlock()
		for _, fn := range fns {
			fn()
		}
	}
	m.mu.Lock()
	p.detach = release
	m.mu.Unlock()

	inst, err := m.create(ctx, cfg, opts)
	tracker.settle()
	if err == nil && inst == nil {
		err = errors.New("provider returned no instance")
	}
	if err != nil {
		release()
		return nil, err
	}
	h := NewHandle(inst, cfg, release)
	h.log = m.log
	h.onClose = func(id string) {
		m.emit(EventHandleReleased, map[string]any{"handle": id})
	}
	return h, nil
}

// create calls the provider, converting a panic into an error.
func (m *Manager[C]) create(ctx context.Context, cfg C, opts capability.CreateOptions) (inst capability.Instance, err error) {
	defer func() {
		if r := recover(); r != nil {
			inst, err = nil, fmt.Errorf("provider panic: %v", r)
		}
	}()
	return m.provider.Create(ctx, cfg, opts)
}
