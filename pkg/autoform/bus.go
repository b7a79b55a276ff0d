package autoform

import (
	"golang.org/x/net/html"

	"github.com/goliatone/go-autoform/pkg/schema"
)

// ComponentName is the component tag reported by readiness notifications.
const ComponentName = "JSON-AUTOFORM"

// Event is a notification published on a form tree's Bus.
type Event interface {
	eventName() string
}

// ComponentReady is published when a node finished its setup and can accept
// a schema.
type ComponentReady struct {
	ID        string
	Component string
	Node      *Node
}

// FieldUpdated is published when a control changed or its validity did.
type FieldUpdated struct {
	NodeID string
	Types  *schema.Ordered[schema.TypeTag]
	Target *html.Node
}

// SaveRequested is published by the root when a save passed validation.
type SaveRequested struct {
	ID   string
	Data map[string]any
}

// NodeFailed is published when a nested node could not render.
type NodeFailed struct {
	ID  string
	Err error
}

func (ComponentReady) eventName() string { return "wc-ready" }
func (FieldUpdated) eventName() string   { return "json-autoform-field-updated" }
func (SaveRequested) eventName() string  { return "json-autoform-save-form" }
func (NodeFailed) eventName() string     { return "json-autoform-node-failed" }

// EventName returns the wire name of an event.
func EventName(e Event) string {
	return e.eventName()
}

// Bus is a callback registry scoped to one form tree. Subscribers run
// synchronously in registration order.
type Bus struct {
	next int
	subs []subscriber
}

type subscriber struct {
	id int
	fn func(Event)
}

// Subscription removes a subscriber when no longer needed.
type Subscription struct {
	bus *Bus
	id  int
}

// Unsubscribe removes the subscriber. It is safe to call more than once and
// from inside the subscriber itself.
func (s Subscription) Unsubscribe() {
	if s.bus == nil {
		return
	}
	for i, sub := range s.bus.subs {
		if sub.id == s.id {
			s.bus.subs = append(s.bus.subs[:i:i], s.bus.subs[i+1:]...)
			return
		}
	}
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers fn for every event.
func (b *Bus) Subscribe(fn func(Event)) Subscription {
	b.next++
	b.subs = append(b.subs, subscriber{id: b.next, fn: fn})
	return Subscription{bus: b, id: b.next}
}

// Publish delivers e to the subscribers registered when the call started.
func (b *Bus) Publish(e Event) {
	snapshot := append([]subscriber(nil), b.subs...)
	for _, sub := range snapshot {
		if !b.active(sub.id) {
			continue
		}
		sub.fn(e)
	}
}

// Len returns the number of subscribers.
func (b *Bus) Len() int {
	return len(b.subs)
}

func (b *Bus) active(id int) bool {
	for _, sub := range b.subs {
		if sub.id == id {
			return true
		}
	}
	return false
}

// On subscribes fn to events of type T.
func On[T Event](b *Bus, fn func(T)) Subscription {
	return b.Subscribe(func(e Event) {
		if typed, ok := e.(T); ok {
			fn(typed)
		}
	})
}

// Once subscribes fn to the first event of type T accepted by match and
// unsubscribes before calling it.
func Once[T Event](b *Bus, match func(T) bool, fn func(T)) Subscription {
	var sub Subscription
	sub = On(b, func(e T) {
		if match != nil && !match(e) {
			return
		}
		sub.Unsubscribe()
		fn(e)
	})
	return sub
}
