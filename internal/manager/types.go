package manager

import "time"

// State represents the lifecycle state of a session.
type State string

const (
	StateIdle     State = "idle"
	StateCreating State = "creating"
	StateReady    State = "ready"
	StateRetiring State = "retiring"
)

// DownloadState reports model download progress of the current creation
// attempt. Percent is in [0,100].
type DownloadState struct {
	Active  bool
	Percent float64
}

// Mode selects how an invocation consumes the capability.
type Mode string

const (
	ModeSingleShot Mode = "single-shot"
	ModeStreaming  Mode = "streaming"
)

// ParseMode maps a streaming flag to a Mode.
func ParseMode(streaming bool) Mode {
	if streaming {
		return ModeStreaming
	}
	return ModeSingleShot
}

// Result is the outcome of one invocation. Partial equals Final once the
// invocation completed.
type Result struct {
	ID      string
	Final   string
	Partial string
}

// HistoryEntry records one completed invocation. Entries are never mutated.
type HistoryEntry[C comparable] struct {
	ID          string
	Config      C
	Input       string
	Output      string
	CompletedAt time.Time
}

// Snapshot is a read-only projection of the session state.
type Snapshot[C comparable] struct {
	Name       string
	State      State
	Config     *C
	Download   DownloadState
	ModelReady bool
	Closed     bool
	Err        string
}
