// Package filecontrol provides the default rich file control collaborator.
// The control keeps the pending file payload in memory and mirrors its state
// onto the element's attributes so validators and renderers can read it.
package filecontrol

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"golang.org/x/net/html"

	"github.com/goliatone/go-autoform/pkg/dom"
)

// TagName is the custom element the control is attached to.
const TagName = "rich-inputfile"

// Control is the contract forms consume.
type Control interface {
	SetValue(value string)
	SetBytes(data []byte)
	Bytes() []byte
	Value() string
}

// Factory returns the control attached to an element, creating it on first
// use.
type Factory interface {
	Control(el *html.Node) Control
}

// Store is the default Factory. It is safe for concurrent use.
type Store struct {
	mu       sync.Mutex
	controls map[*html.Node]*Element
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{controls: make(map[*html.Node]*Element)}
}

// Control implements Factory.
func (s *Store) Control(el *html.Node) Control {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.controls[el]; ok {
		return c
	}
	c := &Element{node: el}
	s.controls[el] = c
	return c
}

// Forget drops the controls attached to root or its descendants.
func (s *Store) Forget(root *html.Node) {
	s.mu.Lock()
	defer s.mu.Unlock()
	dom.Walk(root, func(n *html.Node) dom.Visit {
		delete(s.controls, n)
		return dom.Continue
	})
}

// Element is the default Control.
type Element struct {
	node *html.Node
	data []byte
}

// SetValue stores a file reference such as a name or URL and clears any
// pending payload.
func (e *Element) SetValue(value string) {
	e.data = nil
	dom.SetAttr(e.node, "value", value)
	dom.RemoveAttr(e.node, "data-size")
	e.flag(value != "")
}

// SetBytes stores a pending payload.
func (e *Element) SetBytes(data []byte) {
	e.data = append([]byte(nil), data...)
	dom.SetAttr(e.node, "data-size", strconv.Itoa(len(data)))
	e.flag(len(data) > 0 || dom.GetAttr(e.node, "value") != "")
}

// Bytes returns a copy of the pending payload, nil when there is none.
func (e *Element) Bytes() []byte {
	if e.data == nil {
		return nil
	}
	return append([]byte(nil), e.data...)
}

// Value returns the stored file reference.
func (e *Element) Value() string {
	return dom.GetAttr(e.node, "value")
}

func (e *Element) flag(has bool) {
	if has {
		dom.SetAttr(e.node, "data-has-file", "true")
		return
	}
	dom.RemoveAttr(e.node, "data-has-file")
}

// Payload is a pending file body. It marshals to a "base64:" prefixed JSON
// string so form data written out as JSON can be applied again.
type Payload []byte

// MarshalJSON implements json.Marshaler.
func (p Payload) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON accepts the prefixed string form and plain base64.
func (p *Payload) UnmarshalJSON(raw []byte) error {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return fmt.Errorf("filecontrol: payload: %w", err)
	}
	if data, ok := decodeBase64(s); ok {
		*p = data
		return nil
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return fmt.Errorf("filecontrol: payload: %w", err)
	}
	*p = data
	return nil
}

// String returns the "base64:" prefixed encoding.
func (p Payload) String() string {
	return base64Prefix + base64.StdEncoding.EncodeToString(p)
}

// Apply writes a JSON-decoded value into a control. Strings set the file
// reference unless prefixed with "base64:"; payloads, byte slices, lists of
// numbers and index-keyed objects set the payload.
func Apply(c Control, value any) error {
	switch v := value.(type) {
	case nil:
		c.SetValue("")
	case string:
		if payload, ok := decodeBase64(v); ok {
			c.SetBytes(payload)
			return nil
		}
		c.SetValue(v)
	case Payload:
		c.SetBytes(v)
	case []byte:
		c.SetBytes(v)
	case []any:
		data, err := bytesFromList(v)
		if err != nil {
			return err
		}
		c.SetBytes(data)
	case map[string]any:
		data, err := bytesFromIndexMap(v)
		if err != nil {
			return err
		}
		c.SetBytes(data)
	default:
		return fmt.Errorf("filecontrol: unsupported value type %T", value)
	}
	return nil
}

// Read returns the value a form reports for a control: the Payload when one
// is pending, otherwise the file reference.
func Read(c Control) any {
	if data := c.Bytes(); data != nil {
		return Payload(data)
	}
	return c.Value()
}

const base64Prefix = "base64:"

func decodeBase64(s string) ([]byte, bool) {
	if len(s) <= len(base64Prefix) || s[:len(base64Prefix)] != base64Prefix {
		return nil, false
	}
	data, err := base64.StdEncoding.DecodeString(s[len(base64Prefix):])
	if err != nil {
		return nil, false
	}
	return data, true
}

func bytesFromList(values []any) ([]byte, error) {
	out := make([]byte, 0, len(values))
	for i, item := range values {
		b, err := toByte(item)
		if err != nil {
			return nil, fmt.Errorf("filecontrol: byte %d: %w", i, err)
		}
		out = append(out, b)
	}
	return out, nil
}

func bytesFromIndexMap(values map[string]any) ([]byte, error) {
	type indexed struct {
		idx int
		val byte
	}
	items := make([]indexed, 0, len(values))
	for key, raw := range values {
		idx, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("filecontrol: key %q is not an index", key)
		}
		b, err := toByte(raw)
		if err != nil {
			return nil, fmt.Errorf("filecontrol: byte %q: %w", key, err)
		}
		items = append(items, indexed{idx: idx, val: b})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].idx < items[j].idx })
	out := make([]byte, len(items))
	for i, item := range items {
		out[i] = item.val
	}
	return out, nil
}

func toByte(v any) (byte, error) {
	var n float64
	switch t := v.(type) {
	case float64:
		n = t
	case int:
		n = float64(t)
	case int64:
		n = float64(t)
	case uint8:
		return t, nil
	default:
		return 0, fmt.Errorf("unsupported %T", v)
	}
	if n < 0 || n > 255 || n != float64(int(n)) {
		return 0, fmt.Errorf("%v out of byte range", n)
	}
	return byte(n), nil
}
