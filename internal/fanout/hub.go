// Package fanout maintains the set of live administrative subscribers
// and pushes order events to all of them, best-effort. The hub is an
// injected, lifecycle-scoped value owned by main, not a process-wide
// singleton; subscribe, unsubscribe and broadcast are its only surface.
package fanout

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/iliyamo/qr-table-ordering/internal/model"
)

// Event is the wire shape pushed to subscribers. Data carries the full
// order projection.
type Event struct {
	Type    string `json:"type"`
	OrderID string `json:"order_id,omitempty"`
	Status  string `json:"status,omitempty"`
	Data    any    `json:"data"`
}

// NewOrderEvent wraps a freshly created order.
func NewOrderEvent(o *model.Order) Event {
	return Event{Type: "new_order", Data: o}
}

// StatusUpdateEvent wraps an order whose payment or fulfillment status
// changed. Status is the value that changed, duplicated at the top
// level so dashboards can route without digging into the projection.
func StatusUpdateEvent(o *model.Order, status string) Event {
	return Event{Type: "order_status_update", OrderID: o.ID.String(), Status: status, Data: o}
}

// subscriber buffer size. A subscriber that falls this far behind is
// treated as gone and pruned on the next broadcast.
const subscriberBuffer = 16

// Hub is a concurrency-safe set of subscriber channels. Connects and
// disconnects race with broadcasts, so every access to the set happens
// under the mutex. Delivery within one subscriber preserves broadcast
// order; across subscribers no ordering is guaranteed.
type Hub struct {
	mu   sync.Mutex
	subs map[chan []byte]struct{}
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[chan []byte]struct{})}
}

// Subscribe registers a new subscriber and returns its delivery
// channel. The caller reads from the channel until it is closed and
// must call Unsubscribe when the underlying transport goes away.
func (h *Hub) Subscribe() chan []byte {
	ch := make(chan []byte, subscriberBuffer)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscriber and closes its channel. Removing a
// channel that is already gone is a no-op, so transport teardown and
// broadcast-side pruning can race safely.
func (h *Hub) Unsubscribe(ch chan []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[ch]; ok {
		delete(h.subs, ch)
		close(ch)
	}
}

// Broadcast serializes the event once and attempts delivery to every
// current subscriber. A subscriber whose buffer is full is pruned;
// its failure never affects other subscribers and never surfaces to
// the business operation that triggered the event. Serialization
// errors are logged and swallowed for the same reason.
func (h *Hub) Broadcast(ev Event) {
	msg, err := json.Marshal(ev)
	if err != nil {
		log.Printf("fanout: marshal %s event failed: %v", ev.Type, err)
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- msg:
		default:
			delete(h.subs, ch)
			close(ch)
			log.Printf("fanout: dropped slow subscriber (now %d)", len(h.subs))
		}
	}
}

// Count returns the number of live subscribers.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
