// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package parcela

import (
	"regexp"
	"sort"
)

// SMPPatterns are the shapes an SMP (sección-manzana-parcela) takes, in
// priority order: 01-001-010, 056-066A-014A, 01-066A-014A.
var SMPPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b\d{2}-\d{3}-\d{3}\b`),
	regexp.MustCompile(`\b\d{3}-\d{3}[A-Z]-\d{3}[A-Z]\b`),
	regexp.MustCompile(`\b\d{2}-\d{3}[A-Z]-\d{3}[A-Z]\b`),
}

// Scanner looks for the first string that matches one of the patterns anywhere in
// a decoded JSON document.
//
// The walk is iterative and deterministic: the keys of a mapping are visited in
// sorted order and the items of a sequence in index order. The strings held by a
// container are tested before any of its nested containers, which are then
// visited depth first, first sibling first.
type Scanner struct {
	Patterns []*regexp.Regexp
}

// DefaultScanner uses SMPPatterns.
var DefaultScanner = &Scanner{Patterns: SMPPatterns}

// FindSMP is DefaultScanner.Find.
func FindSMP(v any) (string, bool) {
	return DefaultScanner.Find(v)
}

// Find returns the first match.
func (s *Scanner) Find(v any) (string, bool) {
	if str, ok := v.(string); ok {
		return s.match(str)
	}

	stack := []any{v}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		var children []any

		switch c := cur.(type) {
		case map[string]any:
			keys := make([]string, 0, len(c))
			for k := range c {
				keys = append(keys, k)
			}

			sort.Strings(keys)

			children = make([]any, 0, len(c))
			for _, k := range keys {
				children = append(children, c[k])
			}
		case []any:
			children = c
		default:
			continue
		}

		var nested []any

		for _, child := range children {
			switch x := child.(type) {
			case string:
				if m, ok := s.match(x); ok {
					return m, true
				}
			case map[string]any, []any:
				nested = append(nested, x)
			}
		}

		for i := len(nested) - 1; i >= 0; i-- {
			stack = append(stack, nested[i])
		}
	}

	return "", false
}

func (s *Scanner) match(str string) (string, bool) {
	for _, p := range s.Patterns {
		if m := p.FindString(str); m != "" {
			return m, true
		}
	}

	return "", false
}
