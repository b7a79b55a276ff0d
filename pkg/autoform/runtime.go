package autoform

import (
	"slices"

	"golang.org/x/net/html"

	"github.com/goliatone/go-autoform/pkg/controls"
	"github.com/goliatone/go-autoform/pkg/dom"
	"github.com/goliatone/go-autoform/pkg/schema"
)

// Elements tracks which custom elements are defined. Callbacks waiting on a
// name run when it gets defined and are dropped afterwards, so a registry
// shared by many forms only holds the ones still waiting.
type Elements struct {
	defined map[string]bool
	waiting map[string][]func()
}

// NewElements returns a registry with the given names already defined.
func NewElements(defined ...string) *Elements {
	e := &Elements{
		defined: make(map[string]bool),
		waiting: make(map[string][]func()),
	}
	for _, name := range defined {
		e.defined[name] = true
	}
	return e
}

// Defined reports whether name is defined.
func (e *Elements) Defined(name string) bool {
	return e.defined[name]
}

// WhenDefined runs fn now if name is defined, otherwise once it is.
func (e *Elements) WhenDefined(name string, fn func()) {
	if e.defined[name] {
		fn()
		return
	}
	e.waiting[name] = append(e.waiting[name], fn)
}

// Define marks name as defined and releases its waiters.
func (e *Elements) Define(name string) {
	if e.defined[name] {
		return
	}
	e.defined[name] = true
	waiters := e.waiting[name]
	delete(e.waiting, name)
	for _, fn := range waiters {
		fn()
	}
}

// taskQueue runs deferred work in FIFO order. Draining is not re-entrant:
// tasks queued while draining run in the same drain.
type taskQueue struct {
	tasks    []func()
	draining bool
}

func (q *taskQueue) push(fn func()) {
	q.tasks = append(q.tasks, fn)
}

func (q *taskQueue) drain() {
	if q.draining {
		return
	}
	q.draining = true
	defer func() { q.draining = false }()
	for len(q.tasks) > 0 {
		task := q.tasks[0]
		q.tasks = q.tasks[1:]
		task()
	}
}

func (q *taskQueue) len() int {
	return len(q.tasks)
}

// runtime is shared by every node of a form tree.
type runtime struct {
	cfg      config
	bundle   *schema.Bundle
	bus      *Bus
	events   *dom.Events
	queue    taskQueue
	elements *Elements
	nodes    map[string]*Node
	pending  map[string]struct{}
}

func newRuntime(cfg config) *runtime {
	rt := &runtime{
		cfg:      cfg,
		bus:      NewBus(),
		events:   dom.NewEvents(),
		elements: cfg.elements,
		nodes:    make(map[string]*Node),
		pending:  make(map[string]struct{}),
	}
	if rt.elements == nil {
		rt.elements = NewElements(controls.FileTag)
	}
	return rt
}

func (rt *runtime) pendingIDs() []string {
	ids := make([]string, 0, len(rt.pending))
	for id := range rt.pending {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// forget releases the listeners and file controls bound inside root.
func (rt *runtime) forget(root *html.Node) {
	rt.events.Forget(root)
	if f, ok := rt.cfg.files.(interface{ Forget(*html.Node) }); ok {
		f.Forget(root)
	}
}
