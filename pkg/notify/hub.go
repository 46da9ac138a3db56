package notify

import (
	"context"
	"slices"
	"sync"
)

type listenerEntry struct {
	id uint64
	fn Listener
}

type subscriber struct {
	ch     chan Event
	closed bool
	mu     sync.RWMutex
}

func (s *subscriber) send(ev Event) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return false
	}

	select {
	case s.ch <- ev:
		return true
	default:
		return false
	}
}

func (s *subscriber) close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		close(s.ch)
		s.closed = true
	}
}

// Hub fans events out to callback listeners and channel subscribers.
// Listeners run synchronously in registration order; channel subscribers
// never block Emit, so a slow subscriber misses events instead.
// All methods are safe for concurrent use.
type Hub struct {
	listeners   map[EventKind][]listenerEntry
	subscribers map[*subscriber]struct{}
	nextID      uint64
	bufferSize  int
	closed      bool
	done        chan struct{}
	mu          sync.RWMutex
	cleanupWg   sync.WaitGroup
}

// NewHub creates a hub. bufferSize is the channel buffer of each subscriber;
// values below 1 are raised to 1.
func NewHub(bufferSize int) *Hub {
	return &Hub{
		listeners:   make(map[EventKind][]listenerEntry),
		subscribers: make(map[*subscriber]struct{}),
		bufferSize:  max(bufferSize, 1),
		done:        make(chan struct{}),
	}
}

// On registers fn for events of kind and returns a func that removes it.
// On a closed hub the listener is ignored.
func (h *Hub) On(kind EventKind, fn Listener) (off func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed || fn == nil {
		return func() {}
	}

	h.nextID++
	id := h.nextID
	h.listeners[kind] = append(h.listeners[kind], listenerEntry{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() { h.off(kind, id) })
	}
}

func (h *Hub) off(kind EventKind, id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.listeners[kind] = slices.DeleteFunc(h.listeners[kind], func(e listenerEntry) bool {
		return e.id == id
	})
}

// Subscribe returns a channel receiving every event until ctx is done or
// the hub is closed, whichever comes first; the channel is then closed.
func (h *Hub) Subscribe(ctx context.Context) <-chan Event {
	h.mu.Lock()
	defer h.mu.Unlock()

	sub := &subscriber{ch: make(chan Event, h.bufferSize)}
	if h.closed {
		sub.close()
		return sub.ch
	}
	h.subscribers[sub] = struct{}{}

	if ctx.Done() != nil {
		h.cleanupWg.Add(1)
		go func() {
			defer h.cleanupWg.Done()
			select {
			case <-ctx.Done():
				h.unsubscribe(sub)
			case <-h.done:
			}
		}()
	}

	return sub.ch
}

// Emit delivers ev to listeners registered for ev.Kind and to all subscribers.
func (h *Hub) Emit(ev Event) error {
	h.mu.RLock()
	if h.closed {
		h.mu.RUnlock()
		return ErrHubClosed
	}
	listeners := slices.Clone(h.listeners[ev.Kind])
	for sub := range h.subscribers {
		sub.send(ev)
	}
	h.mu.RUnlock()

	// Called without the lock so listeners may unregister themselves.
	for _, l := range listeners {
		l.fn(ev)
	}
	return nil
}

// Close closes all subscriber channels and drops every listener.
// It is safe to call Close multiple times.
func (h *Hub) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	close(h.done)

	for sub := range h.subscribers {
		sub.close()
	}
	clear(h.subscribers)
	clear(h.listeners)
	h.mu.Unlock()

	h.cleanupWg.Wait()
	return nil
}

func (h *Hub) unsubscribe(sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.subscribers, sub)
	sub.close()
}
