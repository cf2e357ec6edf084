// Copyright 2025 The ChapaUY Authors
//
// SPDX-License-Identifier: Apache-2.0
package spatial

import (
	"fmt"
	"math"

	"github.com/uber/h3-go/v4"
)

const earthRadius = 6371e3 // meters

// Point represents a geographical point with latitude and longitude (WGS84).
type Point struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

// String returns a string representation of the Point.
func (p Point) String() string {
	return fmt.Sprintf("POINT(%f %f)", p.Lng, p.Lat)
}

// Valid reports whether the point lies within the WGS84 bounds.
func (p Point) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// HaversineDistance calculates the distance between two points on Earth in meters.
func (p *Point) HaversineDistance(other *Point) float64 {
	lat1 := p.Lat * math.Pi / 180
	lat2 := other.Lat * math.Pi / 180
	dLat := (other.Lat - p.Lat) * math.Pi / 180
	dLng := (other.Lng - p.Lng) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadius * c
}

// Cell returns the H3 cell containing the point at the given resolution, in its
// canonical hexadecimal form.
func (p Point) Cell(res int) (string, error) {
	if !p.Valid() {
		return "", fmt.Errorf("spatial: invalid point %s", p)
	}

	cell, err := h3.LatLngToCell(h3.NewLatLng(p.Lat, p.Lng), res)
	if err != nil {
		return "", fmt.Errorf("error converting to h3 cell at res %d: %w", res, err)
	}

	return cell.String(), nil
}

// XY is a planar coordinate pair, in the units of the geometry it was computed from
// (meters for GKBA, SRID 97433).
type XY struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// String returns a string representation of the XY.
func (p XY) String() string {
	return fmt.Sprintf("XY(%f %f)", p.X, p.Y)
}
