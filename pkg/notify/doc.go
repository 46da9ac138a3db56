// Package notify delivers client lifecycle events.
//
// A Hub supports two styles of consumption. Callback listeners are invoked
// synchronously for a single event kind:
//
//	hub := notify.NewHub(16)
//	off := hub.On(notify.EventUpdated, func(ev notify.Event) {
//		log.Println("changed toggles:", ev.Keys)
//	})
//	defer off()
//
// Channel subscribers receive every event and are cleaned up when their
// context is cancelled:
//
//	for ev := range hub.Subscribe(ctx) {
//		fmt.Println(ev.Kind, ev.Keys)
//	}
//
// Sends to subscribers never block. When a subscriber's buffer is full the
// event is dropped for that subscriber only.
package notify
