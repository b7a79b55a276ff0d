// Package autoform renders schema-driven forms into a live HTML node tree and
// keeps that tree as the source of truth for the form's data.
//
// A Node binds one model of a schema bundle to one <json-autoform> host. The
// host carries a declarative shadow root holding the <form> container. Fields
// are laid out into group fieldsets and repeatable containers; model-kind
// fields spawn child Nodes that receive their schema through a readiness
// handshake on the root-scoped Bus.
//
// Every node of a tree shares one runtime: the bundle, the bus, the listener
// registry and a cooperative task queue. Public operations drain the queue
// before returning, so readiness broadcasts are asynchronous relative to
// construction yet fully settled by the time a call returns. A tree is meant
// to be driven from a single goroutine.
//
//	root := autoform.New(autoform.WithModel("profile"))
//	if err := root.SetSchema(bundle); err != nil {
//		return err
//	}
//	_ = root.FillDataValues("", map[string]any{"name": "Ada"}, nil)
//	data := root.GetFormData()
package autoform
