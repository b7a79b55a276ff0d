package schema

import (
	"bytes"
	"encoding/json"
	"slices"
	"strconv"
)

// MarshalJSON encodes the bundle with keys in document order.
func (b *Bundle) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	writeEntries(&buf, b.entries)
	return buf.Bytes(), nil
}

func writeEntries(buf *bytes.Buffer, entries *Ordered[*Entry]) {
	buf.WriteByte('{')
	for i, key := range entries.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		entry, _ := entries.Get(key)
		writeString(buf, key)
		buf.WriteByte(':')
		switch entry.kind {
		case EntryOptions:
			writeStrings(buf, entry.options)
		case EntryDescriptor:
			writeDescriptor(buf, entry.descriptor)
		default:
			writeEntries(buf, entry.children)
		}
	}
	buf.WriteByte('}')
}

func writeDescriptor(buf *bytes.Buffer, d *Descriptor) {
	var fields []func()
	if d.FieldTypes != nil {
		fields = append(fields, func() {
			writeString(buf, keyFieldTypes)
			buf.WriteByte(':')
			writeOrdered(buf, d.FieldTypes.Keys(), func(k string) string { v, _ := d.FieldTypes.Get(k); return string(v) })
		})
	}
	if d.ModelTypes != nil {
		fields = append(fields, func() {
			writeString(buf, keyModelTypes)
			buf.WriteByte(':')
			writeOrdered(buf, d.ModelTypes.Keys(), func(k string) string { v, _ := d.ModelTypes.Get(k); return string(v) })
		})
	}
	if len(d.Labels) > 0 {
		fields = append(fields, func() {
			writeString(buf, keyLabels)
			buf.WriteByte(':')
			writeOrdered(buf, fieldOrder(d, d.Labels), func(k string) string { return d.Labels[k] })
		})
	}
	if len(d.Groups) > 0 {
		fields = append(fields, func() {
			writeString(buf, keyGroups)
			buf.WriteString(":{")
			for i, g := range d.Groups {
				if i > 0 {
					buf.WriteByte(',')
				}
				writeString(buf, g.Key)
				buf.WriteByte(':')
				writeStrings(buf, g.Fields)
			}
			buf.WriteByte('}')
		})
	}
	if len(d.Info) > 0 {
		fields = append(fields, func() {
			writeString(buf, keyInfo)
			buf.WriteByte(':')
			writeOrdered(buf, fieldOrder(d, d.Info), func(k string) string { return d.Info[k] })
		})
	}
	if len(d.Validations) > 0 {
		fields = append(fields, func() {
			writeString(buf, keyValidations)
			buf.WriteString(":{")
			for i, field := range fieldOrder(d, d.Validations) {
				if i > 0 {
					buf.WriteByte(',')
				}
				writeString(buf, field)
				buf.WriteString(":{")
				for j, rule := range d.Validations[field] {
					if j > 0 {
						buf.WriteByte(',')
					}
					writeString(buf, rule.Name)
					buf.WriteByte(':')
					writeRuleValue(buf, rule.Value)
				}
				buf.WriteByte('}')
			}
			buf.WriteByte('}')
		})
	}

	buf.WriteByte('{')
	for i, write := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		write()
	}
	buf.WriteByte('}')
}

// fieldOrder lists the keys of m following the descriptor's field order, then
// any remaining keys sorted.
func fieldOrder[V any](d *Descriptor, m map[string]V) []string {
	seen := map[string]bool{}
	var out []string
	for _, field := range append(d.Universe(), d.ModelTypes.Keys()...) {
		if _, ok := m[field]; ok && !seen[field] {
			seen[field] = true
			out = append(out, field)
		}
	}
	var rest []string
	for k := range m {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	slices.Sort(rest)
	return append(out, rest...)
}

func writeOrdered(buf *bytes.Buffer, keys []string, value func(string) string) {
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		writeString(buf, k)
		buf.WriteByte(':')
		writeString(buf, value(k))
	}
	buf.WriteByte('}')
}

func writeStrings(buf *bytes.Buffer, values []string) {
	buf.WriteByte('[')
	for i, v := range values {
		if i > 0 {
			buf.WriteByte(',')
		}
		writeString(buf, v)
	}
	buf.WriteByte(']')
}

func writeRuleValue(buf *bytes.Buffer, raw string) {
	switch typed := typedRuleValue(raw).(type) {
	case bool:
		buf.WriteString(strconv.FormatBool(typed))
	case int64:
		buf.WriteString(strconv.FormatInt(typed, 10))
	case float64:
		buf.WriteString(strconv.FormatFloat(typed, 'g', -1, 64))
	default:
		writeString(buf, raw)
	}
}

func writeString(buf *bytes.Buffer, s string) {
	encoded, _ := json.Marshal(s)
	buf.Write(encoded)
}
