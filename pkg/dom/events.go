package dom

import (
	"sync"

	"golang.org/x/net/html"
)

// Event is delivered to listeners registered on a node.
type Event struct {
	Type   string
	Target *html.Node
}

// Listener handles an event.
type Listener func(Event) error

// Events keeps listeners keyed by node and event type. The parsed node tree
// has no listener slots of its own so the registry plays that role.
type Events struct {
	mu        sync.RWMutex
	listeners map[*html.Node]map[string][]Listener
}

// NewEvents creates an empty listener registry.
func NewEvents() *Events {
	return &Events{listeners: make(map[*html.Node]map[string][]Listener)}
}

// On registers a listener for event on node.
func (e *Events) On(node *html.Node, event string, fn Listener) {
	if node == nil || fn == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	byType, ok := e.listeners[node]
	if !ok {
		byType = make(map[string][]Listener)
		e.listeners[node] = byType
	}
	byType[event] = append(byType[event], fn)
}

// Has reports whether node has at least one listener for event.
func (e *Events) Has(node *html.Node, event string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.listeners[node][event]) > 0
}

// Dispatch runs the listeners registered for event on target in registration
// order. It stops at the first error. The boolean reports whether any
// listener ran.
func (e *Events) Dispatch(target *html.Node, event string) (bool, error) {
	e.mu.RLock()
	fns := append([]Listener(nil), e.listeners[target][event]...)
	e.mu.RUnlock()

	for _, fn := range fns {
		if err := fn(Event{Type: event, Target: target}); err != nil {
			return true, err
		}
	}
	return len(fns) > 0, nil
}

// Forget drops every listener attached to root or its descendants.
func (e *Events) Forget(root *html.Node) {
	e.mu.Lock()
	defer e.mu.Unlock()
	Walk(root, func(n *html.Node) Visit {
		delete(e.listeners, n)
		return Continue
	})
}

// Len returns the number of nodes with listeners.
func (e *Events) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.listeners)
}
