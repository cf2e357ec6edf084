// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package spatial

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// Geometry kinds understood by this package.
const (
	KindPolygon           = "Polygon"
	KindMultiPolygon      = "MultiPolygon"
	KindFeature           = "Feature"
	KindFeatureCollection = "FeatureCollection"
)

var (
	// ErrDegenerateGeometry is returned when a centroid is requested for a geometry
	// without area (zero area, or an exterior ring with fewer than 3 points).
	ErrDegenerateGeometry = errors.New("geometría degenerada")

	// ErrInvalidGeometry is returned when a GeoJSON document does not have the
	// expected shape.
	ErrInvalidGeometry = errors.New("geometría inválida")
)

// UnsupportedGeometryError is returned for GeoJSON geometry kinds other than
// Polygon and MultiPolygon.
type UnsupportedGeometryError struct {
	Type string
}

func (e *UnsupportedGeometryError) Error() string {
	return fmt.Sprintf("geometría no soportada: %q", e.Type)
}

// Geometry is a parsed areal geometry.
type Geometry interface {
	Kind() string
	Area() float64
	Centroid() (XY, error)
}

// Ring is one boundary loop. It may or may not repeat the first point at the end.
type Ring []XY

// Polygon is an exterior ring followed by zero or more holes.
type Polygon []Ring

// MultiPolygon is a list of polygons.
type MultiPolygon []Polygon

// shoelace sums the cross products of consecutive points. The last point is not
// joined back to the first: unclosed rings are measured against the chord between
// their explicit end points, as the cadastre geometries are.
func (r Ring) shoelace() (s, sx, sy float64) {
	for i := 0; i < len(r)-1; i++ {
		p, q := r[i], r[i+1]
		c := p.X*q.Y - q.X*p.Y
		s += c
		sx += (p.X + q.X) * c
		sy += (p.Y + q.Y) * c
	}

	return s, sx, sy
}

// Area returns the absolute planar area of the ring.
func (r Ring) Area() float64 {
	if len(r) < 3 {
		return 0
	}

	s, _, _ := r.shoelace()

	return math.Abs(s) / 2
}

// moments returns the ring area and its centroid; ok is false when the ring has no
// area.
func (r Ring) moments() (area float64, c XY, ok bool) {
	if len(r) < 3 {
		return 0, XY{}, false
	}

	s, sx, sy := r.shoelace()
	if s == 0 {
		return 0, XY{}, false
	}

	return math.Abs(s) / 2, XY{X: sx / (3 * s), Y: sy / (3 * s)}, true
}

type centroidAccumulator struct {
	area   float64
	sx, sy float64
}

func (a *centroidAccumulator) add(area float64, c XY) {
	a.area += area
	a.sx += area * c.X
	a.sy += area * c.Y
}

func (a *centroidAccumulator) result() (XY, error) {
	if a.area <= 0 {
		return XY{}, ErrDegenerateGeometry
	}

	return XY{X: a.sx / a.area, Y: a.sy / a.area}, nil
}

// Kind implements Geometry.
func (p Polygon) Kind() string { return KindPolygon }

// Area is the exterior area minus the holes, floored at zero.
func (p Polygon) Area() float64 {
	if len(p) == 0 {
		return 0
	}

	outer := p[0].Area()

	var holes float64
	for _, h := range p[1:] {
		holes += h.Area()
	}

	return math.Max(0, outer-holes)
}

// Centroid implements Geometry.
func (p Polygon) Centroid() (XY, error) {
	if len(p) == 0 {
		return XY{}, ErrDegenerateGeometry
	}

	area, c, ok := p[0].moments()
	if !ok {
		return XY{}, ErrDegenerateGeometry
	}

	var acc centroidAccumulator
	acc.add(area, c)

	for _, h := range p[1:] {
		if ha, hc, ok := h.moments(); ok {
			acc.add(-ha, hc)
		}
	}

	return acc.result()
}

// Kind implements Geometry.
func (m MultiPolygon) Kind() string { return KindMultiPolygon }

// Area sums the first ring of every member. Holes of the members are not
// subtracted.
func (m MultiPolygon) Area() float64 {
	var total float64

	for _, p := range m {
		if len(p) > 0 {
			total += p[0].Area()
		}
	}

	return total
}

// Centroid implements Geometry, over the same rings Area uses.
func (m MultiPolygon) Centroid() (XY, error) {
	var acc centroidAccumulator

	for _, p := range m {
		if len(p) == 0 {
			continue
		}

		if area, c, ok := p[0].moments(); ok {
			acc.add(area, c)
		}
	}

	return acc.result()
}

// Metrics are the measures derived from a parcel geometry.
type Metrics struct {
	Kind     string  `json:"tipo" yaml:"tipo"`
	Area     float64 `json:"area_m2" yaml:"area_m2"`
	Centroid *XY     `json:"centroide,omitempty" yaml:"centroide,omitempty"`
}

// ComputeMetrics parses a decoded GeoJSON document and measures it. A degenerate
// geometry yields a nil centroid rather than an error; unsupported kinds fail.
func ComputeMetrics(geojson any) (Metrics, error) {
	g, err := ParseGeoJSON(geojson)
	if err != nil {
		return Metrics{}, err
	}

	m := Metrics{Kind: g.Kind(), Area: g.Area()}

	c, err := g.Centroid()
	switch {
	case err == nil:
		m.Centroid = &c
	case !errors.Is(err, ErrDegenerateGeometry):
		return m, err
	}

	return m, nil
}

// ParseGeoJSONBytes decodes and parses a GeoJSON document.
func ParseGeoJSONBytes(data []byte) (Geometry, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decoding geojson: %w", err)
	}

	return ParseGeoJSON(v)
}

// ParseGeoJSON turns a decoded GeoJSON value (as produced by encoding/json into an
// any) into a Geometry. Feature and FeatureCollection wrappers are unwrapped to
// their first geometry.
func ParseGeoJSON(v any) (Geometry, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: se esperaba un objeto, no %T", ErrInvalidGeometry, v)
	}

	for {
		kind, _ := obj["type"].(string)

		switch kind {
		case KindFeatureCollection:
			features, _ := obj["features"].([]any)
			if len(features) == 0 {
				return nil, fmt.Errorf("%w: FeatureCollection sin features", ErrInvalidGeometry)
			}

			feature, ok := features[0].(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%w: feature no es un objeto", ErrInvalidGeometry)
			}

			obj = feature
		case KindFeature:
			geom, ok := obj["geometry"].(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%w: Feature sin geometry", ErrInvalidGeometry)
			}

			obj = geom
		case KindPolygon:
			return parsePolygon(obj["coordinates"])
		case KindMultiPolygon:
			return parseMultiPolygon(obj["coordinates"])
		case "":
			return nil, fmt.Errorf("%w: falta type", ErrInvalidGeometry)
		default:
			return nil, &UnsupportedGeometryError{Type: kind}
		}
	}
}

func parseMultiPolygon(v any) (MultiPolygon, error) {
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: coordenadas de MultiPolygon", ErrInvalidGeometry)
	}

	m := make(MultiPolygon, 0, len(items))

	for i, item := range items {
		p, err := parsePolygon(item)
		if err != nil {
			return nil, fmt.Errorf("polígono %d: %w", i, err)
		}

		m = append(m, p)
	}

	return m, nil
}

func parsePolygon(v any) (Polygon, error) {
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: coordenadas de Polygon", ErrInvalidGeometry)
	}

	p := make(Polygon, 0, len(items))

	for i, item := range items {
		r, err := parseRing(item)
		if err != nil {
			return nil, fmt.Errorf("anillo %d: %w", i, err)
		}

		p = append(p, r)
	}

	return p, nil
}

func parseRing(v any) (Ring, error) {
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: anillo", ErrInvalidGeometry)
	}

	r := make(Ring, 0, len(items))

	for i, item := range items {
		pos, ok := item.([]any)
		if !ok || len(pos) < 2 {
			return nil, fmt.Errorf("%w: posición %d", ErrInvalidGeometry, i)
		}

		x, okX := number(pos[0])
		y, okY := number(pos[1])

		if !okX || !okY {
			return nil, fmt.Errorf("%w: posición %d no numérica", ErrInvalidGeometry, i)
		}

		r = append(r, XY{X: x, Y: y})
	}

	return r, nil
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()

		return f, err == nil
	default:
		return 0, false
	}
}
