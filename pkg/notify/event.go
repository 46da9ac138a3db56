package notify

// EventKind names a client lifecycle event.
type EventKind string

const (
	// EventInit fires once after the first successful fetch.
	EventInit EventKind = "init"
	// EventUpdated fires after a refresh that changed at least one toggle.
	EventUpdated EventKind = "updated"
)

// Event carries the toggle names affected by a fetch or refresh.
type Event struct {
	Kind EventKind
	Keys []string
}

// Listener handles an event synchronously on the emitting goroutine.
type Listener func(Event)
