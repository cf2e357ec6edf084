// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package usig

import (
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/jcodagnone/parcela/utils/textutils"
)

// Suggestion limits.
const (
	MinSuggestQueryLen  = 3
	DefaultSuggestLimit = 10
)

// Suggestion is one autocomplete entry.
type Suggestion struct {
	Label       string `json:"label"                  yaml:"label"`
	NombreCalle string `json:"nombre_calle,omitempty" yaml:"nombre_calle,omitempty"`
	CodCalle    int    `json:"cod_calle,omitempty"    yaml:"cod_calle,omitempty"`
	Altura      int    `json:"altura,omitempty"       yaml:"altura,omitempty"`
	Tipo        string `json:"tipo,omitempty"         yaml:"tipo,omitempty"`
}

// SuggestResult is the answer of Suggest.
type SuggestResult struct {
	Query       string       `json:"query"       yaml:"query"`
	Suggestions []Suggestion `json:"sugerencias" yaml:"sugerencias"`
}

// Suggest autocompletes streets and addresses of the given municipality.
// Queries shorter than MinSuggestQueryLen return no suggestions without calling
// the normalizer.
func (c *Client) Suggest(query, partido string, limit int) (*SuggestResult, error) {
	q := strings.TrimSpace(query)

	ret := &SuggestResult{Query: q, Suggestions: []Suggestion{}}
	if utf8.RuneCountInString(q) < MinSuggestQueryLen {
		return ret, nil
	}

	params := url.Values{}
	params.Set("direccion", q)

	resp, err := c.normalize(params)
	if err != nil {
		return ret, err
	}

	ret.Suggestions = BuildSuggestions(resp.Candidates, partido, limit)

	return ret, nil
}

// BuildSuggestions filters candidates (municipality, kind, display text) and
// dedupes them by label, ignoring case. The first occurrence wins.
func BuildSuggestions(candidates []NormalizedAddress, partido string, limit int) []Suggestion {
	if limit <= 0 {
		limit = DefaultSuggestLimit
	}

	if partido == "" {
		partido = DefaultPartido
	}

	ret := []Suggestion{}
	seen := make(map[string]bool)

	for i := range candidates {
		it := &candidates[i]
		if !it.InPartido(partido) || !it.AllowedKind() || !it.HasStreetText() {
			continue
		}

		label := it.Label()
		if label == "" {
			continue
		}

		key := textutils.FoldKey(label)
		if seen[key] {
			continue
		}

		seen[key] = true

		ret = append(ret, Suggestion{
			Label:       label,
			NombreCalle: strings.TrimSpace(it.NombreCalle),
			CodCalle:    int(it.CodCalle),
			Altura:      int(it.Altura),
			Tipo:        it.Tipo,
		})

		if len(ret) >= limit {
			break
		}
	}

	return ret
}
