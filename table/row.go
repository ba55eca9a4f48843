package table

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"
)

// Field is a single key/value pair of a Row.
type Field struct {
	Key   string
	Value Value
}

// F is shorthand for a Text field.
func F(key, text string) Field { return Field{Key: key, Value: Text(text)} }

// Row is one record of a table: an ordered mapping from column name to a
// Value. Rows are immutable; With returns a modified copy.
//
// Rows produced by the parser share their key slice with the table headers.
type Row struct {
	keys []string
	vals map[string]Value
}

// NewRow builds a row from fields in order. A repeated key keeps its first
// position and takes the last value.
func NewRow(fields ...Field) Row {
	r := Row{
		keys: make([]string, 0, len(fields)),
		vals: make(map[string]Value, len(fields)),
	}
	for _, f := range fields {
		if _, exists := r.vals[f.Key]; !exists {
			r.keys = append(r.keys, f.Key)
		}
		r.vals[f.Key] = f.Value
	}
	return r
}

// RowFromCells pairs headers with raw string cells. Missing trailing cells
// become Null. The headers slice is shared, not copied.
func RowFromCells(headers []string, cells []string) Row {
	r := Row{keys: headers, vals: make(map[string]Value, len(headers))}
	for i, h := range headers {
		if i < len(cells) {
			r.vals[h] = Text(cells[i])
		} else {
			r.vals[h] = Null()
		}
	}
	return r
}

// Keys returns the column names in order.
func (r Row) Keys() []string { return slices.Clone(r.keys) }

// Len returns the number of fields.
func (r Row) Len() int { return len(r.keys) }

// Get returns the value for key, or Null if absent.
func (r Row) Get(key string) Value { return r.vals[key] }

// Lookup returns the value for key and whether it exists.
func (r Row) Lookup(key string) (Value, bool) {
	v, ok := r.vals[key]
	return v, ok
}

// With returns a shallow copy of r with the given fields replaced or
// appended. r itself is not modified.
func (r Row) With(fields ...Field) Row {
	out := Row{
		keys: r.keys,
		vals: make(map[string]Value, len(r.vals)+len(fields)),
	}
	for k, v := range r.vals {
		out.vals[k] = v
	}
	appended := false
	for _, f := range fields {
		if _, exists := out.vals[f.Key]; !exists {
			if !appended {
				out.keys = slices.Clone(r.keys)
				appended = true
			}
			out.keys = append(out.keys, f.Key)
		}
		out.vals[f.Key] = f.Value
	}
	return out
}

// Fields returns the row's fields in order.
func (r Row) Fields() []Field {
	fields := make([]Field, len(r.keys))
	for i, k := range r.keys {
		fields[i] = Field{Key: k, Value: r.vals[k]}
	}
	return fields
}

// Equal reports whether both rows hold the same keys in the same order with
// equal values.
func (r Row) Equal(o Row) bool {
	if !slices.Equal(r.keys, o.keys) {
		return false
	}
	for _, k := range r.keys {
		if !r.vals[k].Equal(o.vals[k]) {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the row as a JSON object preserving key order.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := r.vals[k].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, keeping its key order.
func (r *Row) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("row must be a JSON object")
	}

	var fields []Field
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("row key must be a string, got %v", tok)
		}
		var v Value
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("row field %q: %w", key, err)
		}
		fields = append(fields, Field{Key: key, Value: v})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*r = NewRow(fields...)
	return nil
}

// MarshalYAML encodes the row as a YAML mapping preserving key order.
func (r Row) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, k := range r.keys {
		var val yaml.Node
		if err := val.Encode(r.vals[k]); err != nil {
			return nil, fmt.Errorf("row field %q: %w", k, err)
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
			&val)
	}
	return node, nil
}
