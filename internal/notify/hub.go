// Package notify fans per-user change signals out to subscribers.
package notify

import (
	"context"
	"sync"
)

// Hub is a set of per-user subscriptions. Signals coalesce: a subscriber
// that has not drained the previous signal receives a single pending one.
// The zero value is not usable; call NewHub.
type Hub struct {
	mu   sync.Mutex
	subs map[int64]map[int]chan struct{}
	next int
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[int64]map[int]chan struct{})}
}

// Subscribe returns a channel signalled on every Publish for userID. The
// channel closes when ctx is done or cancel is called; cancel is idempotent.
func (h *Hub) Subscribe(ctx context.Context, userID int64) (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	h.mu.Lock()
	id := h.next
	h.next++
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[int]chan struct{})
	}
	h.subs[userID][id] = ch
	h.mu.Unlock()

	done := make(chan struct{})
	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, ok := h.subs[userID][id]; !ok {
			return
		}
		delete(h.subs[userID], id)
		if len(h.subs[userID]) == 0 {
			delete(h.subs, userID)
		}
		close(ch)
		close(done)
	}

	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-done:
		}
	}()

	return ch, cancel
}

// Publish signals every subscriber of userID without blocking.
func (h *Hub) Publish(userID int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs[userID] {
		signal(ch)
	}
}

// Broadcast signals every subscriber of every user.
func (h *Hub) Broadcast() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, subs := range h.subs {
		for _, ch := range subs {
			signal(ch)
		}
	}
}

// Subscribers returns the number of live subscriptions for userID.
func (h *Hub) Subscribers(userID int64) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[userID])
}

func signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
