package manager

import (
	"time"

	"github.com/rs/zerolog"

	"lingod/internal/capability"
)

// Defaults applied when corresponding ManagerConfig fields are unset.
const (
	defaultHistoryCap   = 10
	defaultDrainTimeout = 2 * time.Second
)

// ManagerConfig encapsulates all tunables for Manager construction.
type ManagerConfig[C comparable] struct {
	// Name identifies the feature in events, logs and errors.
	Name     string
	Provider capability.Provider[C]
	// Publisher receives lifecycle events. Nil drops them.
	Publisher EventPublisher
	Logger    *zerolog.Logger
	// HistoryCap bounds the ledger (default 10).
	HistoryCap int
	// Zero disables the timeout.
	CreateTimeout time.Duration
	InvokeTimeout time.Duration
	// DrainTimeout bounds how long a retiring handle waits for its in-flight
	// invocation before it is released anyway.
	DrainTimeout time.Duration
	// OnChange is called after every state change (download progress, handle
	// swap, history append). It must not call back into the Manager while
	// holding its own locks.
	OnChange func()
}

// NewWithConfig constructs a Manager from ManagerConfig.
func NewWithConfig[C comparable](cfg ManagerConfig[C]) *Manager[C] {
	m := &Manager[C]{
		name:          cfg.Name,
		provider:      cfg.Provider,
		publisher:     cfg.Publisher,
		createTimeout: cfg.CreateTimeout,
		invokeTimeout: cfg.InvokeTimeout,
		onChange:      cfg.OnChange,
		state:         StateIdle,
		startTime:     time.Now(),
	}
	if m.name == "" {
		m.name = "capability"
	}
	if m.publisher == nil {
		m.publisher = noopPublisher{}
	}
	if cfg.Logger != nil {
		m.log = cfg.Logger.With().Str("feature", m.name).Logger()
	} else {
		m.log = zerolog.Nop()
	}
	// Apply defaults if unset
	if cfg.HistoryCap <= 0 {
		m.history = NewLedger[C](defaultHistoryCap)
	} else {
		m.history = NewLedger[C](cfg.HistoryCap)
	}
	if cfg.DrainTimeout <= 0 {
		m.drainTimeout = defaultDrainTimeout
	} else {
		m.drainTimeout = cfg.DrainTimeout
	}
	return m
}
