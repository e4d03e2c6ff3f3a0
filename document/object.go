package document

import (
	"bytes"
	"strings"

	"github.com/segmentio/encoding/json"
)

// Object is a mapping from string keys to Values that remembers the order
// in which keys were first set.
type Object struct {
	keys   []string
	fields map[string]Value
}

// Row is a single record flowing through query execution
type Row = *Object

// NewObject creates an empty object
func NewObject() *Object {
	return &Object{fields: make(map[string]Value)}
}

// Len returns the number of keys
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// Keys returns the keys in insertion order
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

// Has reports whether key is present
func (o *Object) Has(key string) bool {
	if o == nil {
		return false
	}
	_, ok := o.fields[key]
	return ok
}

// Get returns the value stored under key. Missing keys yield undefined.
func (o *Object) Get(key string) (Value, bool) {
	if o == nil {
		return Value{}, false
	}
	v, ok := o.fields[key]
	return v, ok
}

// GetFold looks key up exactly, then falls back to the first key in
// insertion order that matches case-insensitively.
func (o *Object) GetFold(key string) (Value, bool) {
	if v, ok := o.Get(key); ok {
		return v, true
	}
	if o == nil {
		return Value{}, false
	}
	for _, k := range o.keys {
		if strings.EqualFold(k, key) {
			return o.fields[k], true
		}
	}
	return Value{}, false
}

// Set stores v under key. A key that already exists keeps its position.
func (o *Object) Set(key string, v Value) {
	if _, ok := o.fields[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.fields[key] = v
}

// Range calls fn for every field in insertion order until fn returns false
func (o *Object) Range(fn func(key string, v Value) bool) {
	if o == nil {
		return
	}
	for _, k := range o.keys {
		if !fn(k, o.fields[k]) {
			return
		}
	}
}

// Clone returns a shallow copy of o
func (o *Object) Clone() *Object {
	out := &Object{
		keys:   make([]string, 0, o.Len()),
		fields: make(map[string]Value, o.Len()),
	}
	o.Range(func(k string, v Value) bool {
		out.Set(k, v)
		return true
	})
	return out
}

// Interface converts o into a map[string]interface{}, dropping undefined fields
func (o *Object) Interface() map[string]interface{} {
	out := make(map[string]interface{}, o.Len())
	o.Range(func(k string, v Value) bool {
		if !v.IsUndefined() {
			out[k] = v.Interface()
		}
		return true
	})
	return out
}

// MarshalJSON encodes o with its keys in insertion order. Undefined fields are omitted.
func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := o.writeJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (o *Object) writeJSON(buf *bytes.Buffer) error {
	buf.WriteByte('{')
	first := true
	var err error
	o.Range(func(k string, v Value) bool {
		if v.IsUndefined() {
			return true
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		var key []byte
		if key, err = json.Append(buf.AvailableBuffer(), k, 0); err != nil {
			return false
		}
		buf.Write(key)
		buf.WriteByte(':')
		err = v.writeJSON(buf)
		return err == nil
	})
	if err != nil {
		return err
	}
	buf.WriteByte('}')
	return nil
}

// UniqueKeys returns every key that appears in rows, in order of first appearance
func UniqueKeys(rows []Row) []string {
	seen := make(map[string]struct{})
	var keys []string
	for _, row := range rows {
		row.Range(func(k string, _ Value) bool {
			if _, ok := seen[k]; !ok {
				seen[k] = struct{}{}
				keys = append(keys, k)
			}
			return true
		})
	}
	return keys
}
