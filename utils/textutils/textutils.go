// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

// Package textutils holds string helpers shared by the upstream clients and the CLI.
package textutils

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// LowerASCIIFolding normalizes a string by removing accents, lowercasing, and trimming spaces.
func LowerASCIIFolding(s string) string {
	s, _, _ = transform.String(
		transform.Chain(
			norm.NFD,
			runes.Remove(runes.In(unicode.Mn)),
			norm.NFC,
		),
		strings.TrimSpace(strings.ToLower(s)),
	)

	return s
}

var foldCaser = cases.Fold()

// FoldKey returns a case-insensitive key for s: Unicode case folding, with
// surrounding and repeated spaces collapsed. Accents are preserved.
func FoldKey(s string) string {
	return foldCaser.String(strings.Join(strings.Fields(s), " "))
}

var hasLetterRegex = regexp.MustCompile(`(?i)[a-záéíóúüñ]`)

// HasLetter reports whether s contains at least one (Spanish) letter.
func HasLetter(s string) bool {
	return hasLetterRegex.MatchString(s)
}

// FormatInt formats an integer with commas for human readability.
func FormatInt(n int64) string {
	in := strconv.FormatInt(n, 10)

	numOfDigits := len(in)
	if n < 0 {
		numOfDigits-- // First character is the - sign (not a digit)
	}

	numOfCommas := (numOfDigits - 1) / 3

	out := make([]byte, len(in)+numOfCommas)
	if n < 0 {
		in, out[0] = in[1:], '-'
	}

	for i, j, k := len(in)-1, len(out)-1, 0; ; i, j = i-1, j-1 {
		out[j] = in[i]
		if i == 0 {
			return string(out)
		}

		if k++; k == 3 {
			j, k = j-1, 0
			out[j] = ','
		}
	}
}

// FormatArea renders square metres with thousands separators and two decimals.
func FormatArea(m2 float64) string {
	cents := int64(m2*100 + 0.5)

	return FormatInt(cents/100) + "." + strconv.FormatInt(100+cents%100, 10)[1:] + " m²"
}
