// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package parcela

import (
	"github.com/jcodagnone/parcela/spatial"
	"github.com/jcodagnone/parcela/usig"
)

// CoordinateRule tells where to look for a point in a normalizer candidate.
//
// Container names a nested object; an empty Container reads the candidate itself.
// Lat and Lng list the accepted key names, in order. The first (lat, lng) pair
// whose values both read as numbers wins.
type CoordinateRule struct {
	Container string   `mapstructure:"container" yaml:"container,omitempty" json:"container,omitempty"`
	Lat       []string `mapstructure:"lat"       yaml:"lat"                 json:"lat"`
	Lng       []string `mapstructure:"lng"       yaml:"lng"                 json:"lng"`
}

// DefaultCoordinateRules tries the usual nested objects first, then flat keys.
func DefaultCoordinateRules() []CoordinateRule {
	nestedLat := []string{"y", "lat", "latitude"}
	nestedLng := []string{"x", "lng", "lon", "longitude"}

	var rules []CoordinateRule
	for _, c := range []string{"coordenadas", "ubicacion", "geo", "punto", "location", "coords"} {
		rules = append(rules, CoordinateRule{Container: c, Lat: nestedLat, Lng: nestedLng})
	}

	return append(rules, CoordinateRule{
		Lat: []string{"lat", "latitude", "y"},
		Lng: []string{"lng", "lon", "longitude", "x"},
	})
}

// Extract applies the rule to an object.
func (r CoordinateRule) Extract(obj map[string]any) (spatial.Point, bool) {
	if r.Container != "" {
		nested, ok := obj[r.Container].(map[string]any)
		if !ok {
			return spatial.Point{}, false
		}

		obj = nested
	}

	for _, latKey := range r.Lat {
		lat, ok := usig.AsFloat(obj[latKey])
		if !ok {
			continue
		}

		for _, lngKey := range r.Lng {
			if lng, ok := usig.AsFloat(obj[lngKey]); ok {
				return spatial.Point{Lat: lat, Lng: lng}, true
			}
		}
	}

	return spatial.Point{}, false
}

// ExtractPoint applies the rules in order; the first match wins.
func ExtractPoint(rules []CoordinateRule, obj map[string]any) (spatial.Point, bool) {
	for _, r := range rules {
		if p, ok := r.Extract(obj); ok {
			return p, true
		}
	}

	return spatial.Point{}, false
}
