package schema

import (
	"strings"
)

// EntryKind classifies a bundle entry.
type EntryKind int

const (
	EntryNamespace EntryKind = iota
	EntryDescriptor
	EntryOptions
)

func (k EntryKind) String() string {
	switch k {
	case EntryDescriptor:
		return "descriptor"
	case EntryOptions:
		return "options"
	default:
		return "namespace"
	}
}

// Entry is one node of a bundle: a model descriptor, a flat option list or a
// namespace grouping further entries.
type Entry struct {
	kind       EntryKind
	descriptor *Descriptor
	options    []string
	children   *Ordered[*Entry]
}

// DescriptorEntry wraps a descriptor.
func DescriptorEntry(d *Descriptor) *Entry {
	return &Entry{kind: EntryDescriptor, descriptor: d}
}

// OptionsEntry wraps a flat option list.
func OptionsEntry(options ...string) *Entry {
	return &Entry{kind: EntryOptions, options: append([]string(nil), options...)}
}

// NamespaceEntry wraps nested entries.
func NamespaceEntry(children *Ordered[*Entry]) *Entry {
	if children == nil {
		children = NewOrdered[*Entry]()
	}
	return &Entry{kind: EntryNamespace, children: children}
}

// Kind returns the entry classification.
func (e *Entry) Kind() EntryKind { return e.kind }

// Descriptor returns the wrapped descriptor, nil for other kinds.
func (e *Entry) Descriptor() *Descriptor { return e.descriptor }

// Options returns a copy of the wrapped option list.
func (e *Entry) Options() []string { return append([]string(nil), e.options...) }

// Children returns the nested entries of a namespace.
func (e *Entry) Children() *Ordered[*Entry] { return e.children }

// Bundle is the decoded schema shared by every node of a form tree. It must
// not be mutated once handed to a form.
type Bundle struct {
	source  Source
	entries *Ordered[*Entry]
}

// NewBundle creates an empty bundle. Use Set to populate it.
func NewBundle() *Bundle {
	return &Bundle{entries: NewOrdered[*Entry]()}
}

// Set stores an entry under a top-level key. Descriptor names are filled in
// from the key when empty.
func (b *Bundle) Set(key string, entry *Entry) {
	if entry == nil {
		return
	}
	if entry.kind == EntryDescriptor && entry.descriptor != nil && entry.descriptor.Name == "" {
		entry.descriptor.Name = key
	}
	b.entries.Set(key, entry)
}

// Source returns where the bundle was decoded from, if known.
func (b *Bundle) Source() Source {
	if b == nil {
		return nil
	}
	return b.source
}

// Keys returns the top-level keys in document order.
func (b *Bundle) Keys() []string {
	if b == nil {
		return nil
	}
	return b.entries.Keys()
}

// Entry returns the top-level entry stored under key.
func (b *Bundle) Entry(key string) (*Entry, bool) {
	if b == nil {
		return nil, false
	}
	return b.entries.Get(key)
}

// Models returns the top-level keys that hold descriptors.
func (b *Bundle) Models() []string {
	var out []string
	for _, key := range b.Keys() {
		if e, _ := b.entries.Get(key); e.kind == EntryDescriptor {
			out = append(out, key)
		}
	}
	return out
}

// Descriptor returns the descriptor of a top-level model name.
func (b *Bundle) Descriptor(model string) (*Descriptor, bool) {
	entry, ok := b.Entry(model)
	if !ok || entry.kind != EntryDescriptor {
		return nil, false
	}
	return entry.descriptor, true
}

// Resolve walks a reference path. Segments are separated by "/" and a leading
// slash is ignored. Only namespaces can be traversed.
func (b *Bundle) Resolve(path string) (*Entry, bool) {
	if b == nil {
		return nil, false
	}
	path = strings.TrimPrefix(strings.TrimSpace(path), "/")
	if path == "" {
		return nil, false
	}
	segments := strings.Split(path, "/")
	current := b.entries
	for i, segment := range segments {
		entry, ok := current.Get(segment)
		if !ok {
			return nil, false
		}
		if i == len(segments)-1 {
			return entry, true
		}
		if entry.kind != EntryNamespace {
			return nil, false
		}
		current = entry.children
	}
	return nil, false
}

// ResolveDescriptor resolves path and returns the descriptor it points to.
func (b *Bundle) ResolveDescriptor(path string) (*Descriptor, bool) {
	entry, ok := b.Resolve(path)
	if !ok || entry.kind != EntryDescriptor {
		return nil, false
	}
	return entry.descriptor, true
}

// Options resolves path into a choice list. Option lists are returned as is
// and descriptors contribute their field names. The boolean is false when the
// path cannot be resolved to either.
func (b *Bundle) Options(path string) ([]string, bool) {
	entry, ok := b.Resolve(path)
	if !ok {
		return nil, false
	}
	switch entry.kind {
	case EntryOptions:
		return entry.Options(), true
	case EntryDescriptor:
		names := entry.descriptor.FieldNames()
		return names, len(names) > 0
	}
	return nil, false
}

// NestedModel resolves the model a model-kind field renders. The reference
// path wins when it names a descriptor; otherwise the field name is looked up
// as a top-level model. It returns the resolved model path.
func (b *Bundle) NestedModel(field string, tag TypeTag) (string, *Descriptor, bool) {
	if ref := tag.Reference(); ref != "" {
		if d, ok := b.ResolveDescriptor(ref); ok {
			return strings.TrimPrefix(ref, "/"), d, true
		}
	}
	if d, ok := b.Descriptor(field); ok {
		return field, d, true
	}
	return "", nil, false
}

// Descriptors returns every descriptor in the bundle, including those nested
// in namespaces, keyed by path in document order.
func (b *Bundle) Descriptors() *Ordered[*Descriptor] {
	out := NewOrdered[*Descriptor]()
	if b == nil {
		return out
	}
	var visit func(entries *Ordered[*Entry], prefix string)
	visit = func(entries *Ordered[*Entry], prefix string) {
		for _, key := range entries.Keys() {
			entry, _ := entries.Get(key)
			path := key
			if prefix != "" {
				path = prefix + "/" + key
			}
			switch entry.kind {
			case EntryDescriptor:
				out.Set(path, entry.descriptor)
			case EntryNamespace:
				visit(entry.children, path)
			}
		}
	}
	visit(b.entries, "")
	return out
}
