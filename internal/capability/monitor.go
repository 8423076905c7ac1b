package capability

import (
	"slices"
	"sync"
)

// EventDownloadProgress is the only event dispatched on a Monitor.
const EventDownloadProgress = "downloadprogress"

// ProgressEvent carries byte counts of a model download. Total may be zero
// when the host does not know the size.
type ProgressEvent struct {
	Loaded int64
	Total  int64
}

// Listener receives dispatched events.
type Listener func(ProgressEvent)

// Monitor is a minimal event target. Listeners run on the dispatching
// goroutine, outside the monitor's lock.
type Monitor struct {
	mu        sync.Mutex
	nextID    int
	listeners map[string]map[int]Listener
}

func NewMonitor() *Monitor {
	return &Monitor{listeners: make(map[string]map[int]Listener)}
}

// AddEventListener registers fn and returns a func that detaches it.
// The returned func is idempotent.
func (m *Monitor) AddEventListener(event string, fn Listener) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	if m.listeners[event] == nil {
		m.listeners[event] = make(map[int]Listener)
	}
	m.listeners[event][id] = fn
	return func() {
		m.mu.Lock()
		delete(m.listeners[event], id)
		m.mu.Unlock()
	}
}

// Dispatch delivers ev to the listeners attached for event.
func (m *Monitor) Dispatch(event string, ev ProgressEvent) {
	m.mu.Lock()
	fns := make([]Listener, 0, len(m.listeners[event]))
	ids := make([]int, 0, len(m.listeners[event]))
	for id := range m.listeners[event] {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		fns = append(fns, m.listeners[event][id])
	}
	m.mu.Unlock()
	for _, fn := range fns {
		fn(ev)
	}
}

// ListenerCount reports how many listeners are attached for event.
func (m *Monitor) ListenerCount(event string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.listeners[event])
}

