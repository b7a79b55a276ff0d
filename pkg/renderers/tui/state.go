package tui

import (
	"fmt"
	"strconv"
	"strings"
)

// State tracks the answers of a session and the server errors to show, both
// keyed by dotted paths such as "addresses.1.city".
type State struct {
	values map[string]any
	errors map[string][]string
}

// NewState seeds the state with prefilled values and errors.
func NewState(prefill map[string]any, errs map[string][]string) *State {
	return &State{
		values: cloneValues(prefill),
		errors: cloneErrors(errs),
	}
}

// Values returns the current value map (mutable).
func (s *State) Values() map[string]any {
	if s == nil {
		return nil
	}
	return s.values
}

// Errors returns the current errors map (mutable).
func (s *State) Errors() map[string][]string {
	if s == nil {
		return nil
	}
	return s.errors
}

// ErrorsFor returns the errors attached to a dotted path.
func (s *State) ErrorsFor(path string) []string {
	if s == nil || len(s.errors) == 0 {
		return nil
	}
	return s.errors[path]
}

// GetValue resolves a dotted path into the values map.
func (s *State) GetValue(path string) (any, bool) {
	if s == nil {
		return nil, false
	}
	return getPath(s.values, path)
}

// SetValue writes a value using a dotted path, creating intermediate maps/slices
// as needed.
func (s *State) SetValue(path string, value any) error {
	if s == nil {
		return fmt.Errorf("tui: state is nil")
	}
	if s.values == nil {
		s.values = make(map[string]any)
	}
	return setPath(s.values, path, value)
}

func cloneValues(src map[string]any) map[string]any {
	if len(src) == 0 {
		return make(map[string]any)
	}
	out := make(map[string]any, len(src))
	for k, v := range src {
		out[k] = deepCopy(v)
	}
	return out
}

func cloneErrors(src map[string][]string) map[string][]string {
	if len(src) == 0 {
		return make(map[string][]string)
	}
	out := make(map[string][]string, len(src))
	for k, v := range src {
		out[k] = append([]string(nil), v...)
	}
	return out
}

func deepCopy(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		clone := make(map[string]any, len(typed))
		for k, v := range typed {
			clone[k] = deepCopy(v)
		}
		return clone
	case []any:
		clone := make([]any, len(typed))
		for i, v := range typed {
			clone[i] = deepCopy(v)
		}
		return clone
	default:
		return typed
	}
}

func getPath(root map[string]any, path string) (any, bool) {
	if root == nil || path == "" {
		return nil, false
	}
	current := any(root)
	segments := strings.Split(path, ".")
	for _, segment := range segments {
		switch node := current.(type) {
		case map[string]any:
			next, ok := node[segment]
			if !ok {
				return nil, false
			}
			current = next
		case []any:
			idx, err := strconv.Atoi(segment)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			current = node[idx]
		default:
			return nil, false
		}
	}
	return current, true
}

// setPath writes value at a dotted path. Numeric segments index lists, which
// grow as needed; other segments index objects, replacing scalars in the way.
func setPath(root map[string]any, path string, value any) error {
	if root == nil {
		return fmt.Errorf("tui: root map is nil")
	}
	if path == "" {
		return fmt.Errorf("tui: empty path")
	}
	_, err := setIn(root, strings.Split(path, "."), value)
	return err
}

func setIn(node any, segments []string, value any) (any, error) {
	if len(segments) == 0 {
		return value, nil
	}
	segment := segments[0]
	if idx, err := strconv.Atoi(segment); err == nil {
		if idx < 0 {
			return node, fmt.Errorf("tui: negative index %d", idx)
		}
		list, _ := node.([]any)
		if len(list) <= idx {
			list = append(list, make([]any, idx+1-len(list))...)
		}
		next, err := setIn(list[idx], segments[1:], value)
		list[idx] = next
		return list, err
	}
	m, ok := node.(map[string]any)
	if !ok || m == nil {
		m = make(map[string]any)
	}
	next, err := setIn(m[segment], segments[1:], value)
	m[segment] = next
	return m, err
}
