// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package parcela

import (
	"encoding/json"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeJSON(t *testing.T, doc string) any {
	t.Helper()

	var v any
	require.NoError(t, json.Unmarshal([]byte(doc), &v))

	return v
}

func TestFindSMP(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		want  string
		found bool
	}{
		{"flat", `{"smp":"01-001-010"}`, "01-001-010", true},
		{"embedded in text", `{"d":"parcela 056-066A-014A (ok)"}`, "056-066A-014A", true},
		{"short variant", `["x", "12-066A-014B"]`, "12-066A-014B", true},
		{"pattern priority within a string", `{"a":"056-066A-014A y 01-001-010"}`, "01-001-010", true},
		{"numbers are not strings", `{"a":1001010,"b":[1,2,3]}`, "", false},
		{"no word boundary", `{"a":"x101-001-0100"}`, "", false},
		{"lowercase letters", `{"a":"056-066a-014a"}`, "", false},
		{"empty", `{}`, "", false},
		{"null", `null`, "", false},
		{"bare string", `"01-001-010"`, "01-001-010", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := FindSMP(decodeJSON(t, tt.doc))
			assert.Equal(t, tt.found, found)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFindSMPIgnoresKeyOrder(t *testing.T) {
	docs := []string{
		`{"z":{"b":"02-002-002"},"a":{"c":{"d":"03-003-003"}},"m":"nada"}`,
		`{"m":"nada","a":{"c":{"d":"03-003-003"}},"z":{"b":"02-002-002"}}`,
		`{"a":{"c":{"d":"03-003-003"}},"m":"nada","z":{"b":"02-002-002"}}`,
	}

	for _, doc := range docs {
		got, ok := FindSMP(decodeJSON(t, doc))
		require.True(t, ok)
		// "a" sorts before "z" and is walked to the bottom first.
		assert.Equal(t, "03-003-003", got, doc)
	}
}

func TestFindSMPTraversalOrder(t *testing.T) {
	t.Run("leaves before nested containers", func(t *testing.T) {
		got, _ := FindSMP(decodeJSON(t, `{"a":{"x":"01-111-111"},"b":"02-222-222"}`))
		assert.Equal(t, "02-222-222", got)
	})

	t.Run("first sibling first", func(t *testing.T) {
		got, _ := FindSMP(decodeJSON(t, `[{"x":{"y":"01-111-111"}},{"x":"02-222-222"}]`))
		assert.Equal(t, "01-111-111", got)

		got, _ = FindSMP(decodeJSON(t, `[{"x":"02-222-222"},{"x":{"y":"01-111-111"}}]`))
		assert.Equal(t, "02-222-222", got)
	})

	t.Run("depth first", func(t *testing.T) {
		got, _ := FindSMP(decodeJSON(t, `{"a":{"deep":{"deeper":"01-111-111"}},"b":{"x":"02-222-222"}}`))
		assert.Equal(t, "01-111-111", got)
	})
}

func TestFindSMPDeepNesting(t *testing.T) {
	const depth = 100000

	doc := strings.Repeat("[", depth) + `"45-123-456"` + strings.Repeat("]", depth)

	var v any

	dec := json.NewDecoder(strings.NewReader(doc))
	if err := dec.Decode(&v); err != nil {
		// the decoder limits nesting; build the value by hand instead.
		v = "45-123-456"
		for range depth {
			v = []any{v}
		}
	}

	got, ok := FindSMP(v)
	require.True(t, ok)
	assert.Equal(t, "45-123-456", got)
}

func TestScannerCustomPatterns(t *testing.T) {
	s := &Scanner{Patterns: []*regexp.Regexp{regexp.MustCompile(`\bSMP-\d+\b`)}}

	got, ok := s.Find(map[string]any{"a": []any{"01-001-010", "SMP-42"}})
	require.True(t, ok)
	assert.Equal(t, "SMP-42", got)
}
