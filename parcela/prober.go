// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package parcela

import (
	"fmt"
	"log"
	"strings"
)

// Probe defaults.
const (
	DefaultProbeLimit  = 5
	DefaultProbeRadius = 10
	MaxProbeRadius     = 20
)

// DefaultIndicatorKeys are the keys that make a cadastre answer look like a
// parcel.
var DefaultIndicatorKeys = []string{"smp", "codigo", "direccion", "manzana"}

// Alternative is a nearby house number with a parcel.
type Alternative struct {
	Altura    int    `json:"altura"        yaml:"altura"`
	Direccion string `json:"direccion"     yaml:"direccion"`
	SMP       string `json:"smp,omitempty" yaml:"smp,omitempty"`
}

// ProberOptions configuration for Prober.
type ProberOptions struct {
	// IndicatorKeys, DefaultIndicatorKeys when empty.
	IndicatorKeys []string

	// Scanner extracts the SMP of each hit, DefaultScanner when nil.
	Scanner *Scanner
}

// Prober looks for parcels around a house number that has none.
type Prober struct {
	cadastre   StreetCodeCadastre
	indicators []string
	scanner    *Scanner

	// OnProbe, when set, is called after each query with the number tried and
	// whether it was a hit.
	OnProbe func(altura int, hit bool)
}

// NewProber creates a new prober.
func NewProber(cadastre StreetCodeCadastre, options *ProberOptions) *Prober {
	if options == nil {
		options = &ProberOptions{}
	}

	p := &Prober{
		cadastre:   cadastre,
		indicators: options.IndicatorKeys,
		scanner:    options.Scanner,
	}

	if len(p.indicators) == 0 {
		p.indicators = DefaultIndicatorKeys
	}

	if p.scanner == nil {
		p.scanner = DefaultScanner
	}

	return p
}

// ProbeOffsets returns the numbers to try around altura: altura, altura-1,
// altura+1, ... up to radius, skipping non-positive ones.
func ProbeOffsets(altura, radius int) []int {
	ret := make([]int, 0, 2*radius+1)
	seen := make(map[int]bool, 2*radius+1)

	add := func(n int) {
		if n <= 0 || seen[n] {
			return
		}

		seen[n] = true
		ret = append(ret, n)
	}

	add(altura)

	for d := 1; d <= radius; d++ {
		add(altura - d)
		add(altura + d)
	}

	return ret
}

// Probe queries the cadastre for the numbers around altura, nearest first and
// lower first on ties, until limit parcels are found or radius is exhausted.
// Failed queries are skipped.
func (p *Prober) Probe(codCalle int, calle string, altura, limit, radius int) []Alternative {
	if limit <= 0 {
		limit = DefaultProbeLimit
	}

	if radius < 0 {
		radius = 0
	}

	ret := []Alternative{}
	calle = strings.TrimSpace(calle)

	for _, n := range ProbeOffsets(altura, radius) {
		v, err := p.cadastre.ParcelaByStreetCode(codCalle, n)
		if err != nil {
			log.Printf("Probe - %d %d: %v", codCalle, n, err)
		}

		hit := err == nil && p.IsValid(v)
		if p.OnProbe != nil {
			p.OnProbe(n, hit)
		}

		if !hit {
			continue
		}

		alt := Alternative{Altura: n, Direccion: strings.TrimSpace(fmt.Sprintf("%s %d", calle, n))}
		if smp, ok := p.scanner.Find(v); ok {
			alt.SMP = smp
		}

		ret = append(ret, alt)
		if len(ret) >= limit {
			break
		}
	}

	return ret
}

// IsValid reports whether a cadastre answer is a non-empty mapping holding at
// least one indicator key with a value.
func (p *Prober) IsValid(v any) bool {
	m, ok := v.(map[string]any)
	if !ok || len(m) == 0 {
		return false
	}

	for _, k := range p.indicators {
		if val, ok := m[k]; ok && val != nil {
			return true
		}
	}

	return false
}
