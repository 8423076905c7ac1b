package manager

// Event represents a session lifecycle event.
// Minimal and stable: name + feature and optional fields via key/values.
type Event struct {
	Name    string
	Feature string
	Fields  map[string]any
}

// Event names published by the Manager.
const (
	EventCreateStart      = "create_start"
	EventCreateReady      = "create_ready"
	EventCreateFailed     = "create_failed"
	EventCreateSuperseded = "create_superseded"
	EventReuse            = "handle_reuse"
	EventRetireStart      = "retire_start"
	EventRetireTimeout    = "retire_timeout"
	EventHandleReleased   = "handle_released"
	EventDownloadProgress = "download_progress"
	EventDownloadComplete = "download_complete"
	EventModelReady       = "model_ready"
	EventInvokeStart      = "invoke_start"
	EventInvokePartial    = "invoke_partial"
	EventInvokeDone       = "invoke_done"
	EventInvokeFailed     = "invoke_failed"
	EventInvokeRejected   = "invoke_rejected"
	EventSessionClosed    = "session_closed"
)

// EventPublisher receives events from the manager. Implementations should be
// lightweight and non-blocking; Publish must not panic.
type EventPublisher interface {
	Publish(Event)
}

// noopPublisher is the default; it drops events.
type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}

// PublisherFunc adapts a func to EventPublisher.
type PublisherFunc func(Event)

func (f PublisherFunc) Publish(e Event) { f(e) }

// multiPublisher fans out to several publishers in order.
type multiPublisher []EventPublisher

func (mp multiPublisher) Publish(e Event) {
	for _, p := range mp {
		p.Publish(e)
	}
}

// Publishers combines publishers, skipping nils.
func Publishers(ps ...EventPublisher) EventPublisher {
	out := make(multiPublisher, 0, len(ps))
	for _, p := range ps {
		if p != nil {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return noopPublisher{}
	}
	return out
}
