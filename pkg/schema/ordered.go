package schema

// Ordered is a string-keyed map that remembers insertion order. Decoded
// bundles use it wherever the document order of keys drives rendering.
type Ordered[V any] struct {
	keys   []string
	values map[string]V
}

// NewOrdered creates an empty ordered map.
func NewOrdered[V any]() *Ordered[V] {
	return &Ordered[V]{values: make(map[string]V)}
}

// Set stores value under key. Re-setting a key keeps its original position.
func (o *Ordered[V]) Set(key string, value V) {
	if o.values == nil {
		o.values = make(map[string]V)
	}
	if _, exists := o.values[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
}

// Get returns the value stored under key. It is safe on a nil map.
func (o *Ordered[V]) Get(key string) (V, bool) {
	var zero V
	if o == nil {
		return zero, false
	}
	v, ok := o.values[key]
	if !ok {
		return zero, false
	}
	return v, true
}

// Has reports whether key is present.
func (o *Ordered[V]) Has(key string) bool {
	_, ok := o.Get(key)
	return ok
}

// Keys returns a copy of the keys in insertion order.
func (o *Ordered[V]) Keys() []string {
	if o == nil {
		return nil
	}
	return append([]string(nil), o.keys...)
}

// Len returns the number of entries.
func (o *Ordered[V]) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}
