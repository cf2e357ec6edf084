// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package parcela

import (
	"errors"
	"fmt"

	"github.com/jcodagnone/parcela/spatial"
	"github.com/jcodagnone/parcela/usig"
)

var errBoom = &usig.UpstreamError{Type: usig.ErrorTypeNetwork, Service: usig.ServiceCatastro, Message: "la llamada falló", Err: errors.New("connection refused")}

// fakeUpstream answers from tables and records every call.
type fakeUpstream struct {
	normalize    *usig.NormalizeResponse
	normalizeErr error

	byStreetCode    map[int]any
	byStreetCodeErr error
	byLatLng        any
	byLatLngErr     error
	informal        any
	informalErr     error

	parcela     any
	parcelaErr  error
	geometria   any
	geometryErr error
	lonlat      spatial.Point
	lonlatErr   error

	calls []string
}

func (f *fakeUpstream) Normalize(address string) (*usig.NormalizeResponse, error) {
	f.calls = append(f.calls, "normalize "+address)
	if f.normalizeErr != nil {
		return nil, f.normalizeErr
	}

	if f.normalize == nil {
		return &usig.NormalizeResponse{Raw: map[string]any{"direccionesNormalizadas": []any{}}}, nil
	}

	return f.normalize, nil
}

func (f *fakeUpstream) ParcelaByStreetCode(codCalle, altura int) (any, error) {
	f.calls = append(f.calls, fmt.Sprintf("codcalle %d %d", codCalle, altura))
	if f.byStreetCodeErr != nil {
		return nil, f.byStreetCodeErr
	}

	if v, ok := f.byStreetCode[altura]; ok {
		return v, nil
	}

	return map[string]any{}, nil
}

func (f *fakeUpstream) ParcelaByLatLngAprox(lat, lng float64) (any, error) {
	f.calls = append(f.calls, fmt.Sprintf("latlng %g %g", lat, lng))

	return f.byLatLng, f.byLatLngErr
}

func (f *fakeUpstream) DireccionInformal(calle, puerta string) (any, error) {
	f.calls = append(f.calls, "informal "+calle+" "+puerta)

	return f.informal, f.informalErr
}

func (f *fakeUpstream) ParcelaBySMP(smp string) (any, error) {
	f.calls = append(f.calls, "smp "+smp)

	return f.parcela, f.parcelaErr
}

func (f *fakeUpstream) GeometriaBySMP(smp string, srid int) (any, error) {
	f.calls = append(f.calls, fmt.Sprintf("geometria %s %d", smp, srid))

	return f.geometria, f.geometryErr
}

func (f *fakeUpstream) ToLonLat(p spatial.XY) (spatial.Point, error) {
	f.calls = append(f.calls, "lonlat "+p.String())

	return f.lonlat, f.lonlatErr
}

// davila is a normalizer answer with street code, number and coordinates.
func davila() *usig.NormalizeResponse {
	raw := map[string]any{
		"altura":       1130.0,
		"cod_calle":    "17036",
		"cod_partido":  "caba",
		"coordenadas":  map[string]any{"srid": 4326.0, "x": "-58.452735", "y": "-34.626558"},
		"direccion":    "DAVILA 1130, CABA",
		"nombre_calle": "DAVILA",
		"tipo":         "calle_altura",
	}

	return &usig.NormalizeResponse{
		Candidates: []usig.NormalizedAddress{{
			CodPartido:  "caba",
			Tipo:        "calle_altura",
			NombreCalle: "DAVILA",
			CodCalle:    17036,
			Altura:      1130,
			Direccion:   "DAVILA 1130, CABA",
			Raw:         raw,
		}},
		Raw: map[string]any{"direccionesNormalizadas": []any{raw}},
	}
}

func squareGeometry(side float64) map[string]any {
	return map[string]any{
		"type": "FeatureCollection",
		"features": []any{map[string]any{
			"type": "Feature",
			"geometry": map[string]any{
				"type": "Polygon",
				"coordinates": []any{[]any{
					[]any{100000.0, 100000.0},
					[]any{100000.0 + side, 100000.0},
					[]any{100000.0 + side, 100000.0 + side},
					[]any{100000.0, 100000.0 + side},
					[]any{100000.0, 100000.0},
				}},
			},
		}},
	}
}
