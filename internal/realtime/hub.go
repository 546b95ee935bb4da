// Package realtime provides the change-notification fan-out for the push
// binding. Services publish a topic after every successful mutation; the
// hub delivers a signal to every listener of that topic, in process. The
// websocket watch endpoint bridges the same signals to remote clients.
//
// Notifications carry no data. A signal only means "the query result for
// this topic may have changed — re-read it". Subscribers always fetch a
// full snapshot, so a coalesced or spurious signal is harmless.
package realtime

import (
	"context"
	"sync"
)

// Hub is a topic-keyed broadcaster. The zero value is not usable; construct
// with NewHub. Safe for concurrent use.
type Hub struct {
	mu     sync.Mutex
	subs   map[string]map[int]chan struct{}
	nextID int
}

// NewHub returns an empty Hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[int]chan struct{})}
}

// Publish signals every listener of each given topic. Sends never block:
// each listener channel holds one pending signal and further publishes
// coalesce into it, which is sound because subscribers re-fetch full
// snapshots rather than consuming deltas.
func (h *Hub) Publish(topics ...string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, topic := range topics {
		for _, ch := range h.subs[topic] {
			select {
			case ch <- struct{}{}:
			default:
			}
		}
	}
}

// Notify registers a listener for one topic and returns its signal channel
// plus a cancel function. After cancel returns, the channel is closed and
// no further signals are delivered. The listener is also removed when ctx
// is done.
func (h *Hub) Notify(ctx context.Context, topic string) (<-chan struct{}, func(), error) {
	ch := make(chan struct{}, 1)

	h.mu.Lock()
	if h.subs[topic] == nil {
		h.subs[topic] = make(map[int]chan struct{})
	}
	id := h.nextID
	h.nextID++
	h.subs[topic][id] = ch
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs[topic], id)
			if len(h.subs[topic]) == 0 {
				delete(h.subs, topic)
			}
			h.mu.Unlock()
			close(ch)
		})
	}

	if ctx != nil && ctx.Done() != nil {
		go func() {
			<-ctx.Done()
			cancel()
		}()
	}

	return ch, cancel, nil
}

// ListenerCount reports the number of live listeners for a topic.
// Used by tests to verify cancellation releases resources.
func (h *Hub) ListenerCount(topic string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[topic])
}
