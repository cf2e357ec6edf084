// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package parcela

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/goccy/go-yaml"
)

// Trace records what each step of a resolution saw, in the order the steps ran.
// Writing a key again replaces its value but keeps its position.
type Trace struct {
	keys   []string
	values map[string]any
}

// NewTrace creates an empty trace.
func NewTrace() *Trace {
	return &Trace{values: make(map[string]any)}
}

// Set records value under key.
func (t *Trace) Set(key string, value any) {
	if _, ok := t.values[key]; !ok {
		t.keys = append(t.keys, key)
	}

	t.values[key] = value
}

// SetError records err under "<key>_error".
func (t *Trace) SetError(key string, err error) {
	t.Set(key+"_error", err.Error())
}

// Get returns the value recorded under key.
func (t *Trace) Get(key string) (any, bool) {
	if t == nil {
		return nil, false
	}

	v, ok := t.values[key]

	return v, ok
}

// Has reports whether key was recorded.
func (t *Trace) Has(key string) bool {
	_, ok := t.Get(key)

	return ok
}

// Keys returns the recorded keys in insertion order.
func (t *Trace) Keys() []string {
	if t == nil {
		return nil
	}

	return append([]string(nil), t.keys...)
}

// Len returns the number of recorded keys.
func (t *Trace) Len() int {
	if t == nil {
		return 0
	}

	return len(t.keys)
}

// MarshalJSON writes the trace as an object, keys in insertion order.
func (t *Trace) MarshalJSON() ([]byte, error) {
	if t == nil {
		return []byte("{}"), nil
	}

	var buf bytes.Buffer

	buf.WriteByte('{')

	for i, k := range t.keys {
		if i > 0 {
			buf.WriteByte(',')
		}

		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}

		vb, err := json.Marshal(t.values[k])
		if err != nil {
			return nil, fmt.Errorf("marshaling trace key %q: %w", k, err)
		}

		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// MarshalYAML writes the trace as a mapping, keys in insertion order.
func (t *Trace) MarshalYAML() (any, error) {
	ret := yaml.MapSlice{}
	if t == nil {
		return ret, nil
	}

	for _, k := range t.keys {
		ret = append(ret, yaml.MapItem{Key: k, Value: t.values[k]})
	}

	return ret, nil
}
