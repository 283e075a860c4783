// Package events provides the in-process publish/subscribe channel that
// carries import progress notifications to observers. Groups are keyed by
// the opaque file key of an upload; subscribers join a group and receive
// progress, error and completion events in publication order.
package events

import (
	"log"
	"sync"
)

// subscriberBuffer bounds how far behind a subscriber may fall before
// events are dropped for it.
const subscriberBuffer = 64

// Event is one notification delivered to the subscribers of a group. Name is
// the client-visible event kind (ImportProgress, ImportError,
// ImportCompleted); Data is the JSON-serializable payload.
type Event struct {
	Name string
	Data any
}

// Hub fans events out to group subscribers. Publishing is fire-and-forget:
// it never blocks, and a subscriber that cannot keep up loses events rather
// than stalling the publisher.
type Hub struct {
	mu     sync.RWMutex
	groups map[string]map[*Subscription]struct{}
}

// Subscription is one subscriber's membership in a group. Receive from C
// until it is closed; call Close when done.
type Subscription struct {
	C chan Event

	hub   *Hub
	group string
	once  sync.Once
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{groups: make(map[string]map[*Subscription]struct{})}
}

// Subscribe joins a group. The group does not need to exist yet; subscribing
// before the import starts is the normal usage.
func (h *Hub) Subscribe(group string) *Subscription {
	sub := &Subscription{
		C:     make(chan Event, subscriberBuffer),
		hub:   h,
		group: group,
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.groups[group] == nil {
		h.groups[group] = make(map[*Subscription]struct{})
	}
	h.groups[group][sub] = struct{}{}
	return sub
}

// Close leaves the group and closes the event channel. Safe to call more
// than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.mu.Lock()
		if subs, ok := s.hub.groups[s.group]; ok {
			delete(subs, s)
			if len(subs) == 0 {
				delete(s.hub.groups, s.group)
			}
		}
		s.hub.mu.Unlock()
		close(s.C)
	})
}

// Publish delivers an event to every current subscriber of the group. A full
// subscriber channel drops the event for that subscriber only.
func (h *Hub) Publish(group string, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.groups[group] {
		select {
		case sub.C <- event:
		default:
			log.Printf("events: dropping %s for slow subscriber of group %s", event.Name, group)
		}
	}
}

// SubscriberCount returns how many subscribers a group currently has.
func (h *Hub) SubscriberCount(group string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[group])
}
