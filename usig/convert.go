// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package usig

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/jcodagnone/parcela/spatial"
)

// Output systems of the coordinate converter.
const (
	OutputLonLat = "lonlat"
	OutputGKBA   = "gkba"
)

// ConvertResponse is the converter answer.
type ConvertResponse struct {
	TipoResultado string `json:"tipo_resultado"`
	Resultado     struct {
		X FlexFloat `json:"x"`
		Y FlexFloat `json:"y"`
	} `json:"resultado"`
}

// ConvertCoordinates converts (x, y) into the output system. Anything but an
// "Ok" result is an error.
func (c *Client) ConvertCoordinates(x, y float64, output string) (*ConvertResponse, error) {
	params := url.Values{}
	params.Set("x", formatFloat(x))
	params.Set("y", formatFloat(y))
	params.Set("output", output)

	body, err := c.fetch(ServiceConverter, c.options.ConverterURL, params)
	if err != nil {
		return nil, err
	}

	var ret ConvertResponse
	if err := decode(ServiceConverter, body, &ret); err != nil {
		return nil, err
	}

	if !strings.EqualFold(strings.TrimSpace(ret.TipoResultado), "ok") {
		return nil, &UpstreamError{
			Type:    ErrorTypeRejected,
			Service: ServiceConverter,
			Message: fmt.Sprintf("conversión rechazada: %s", strings.TrimSpace(string(body))),
		}
	}

	return &ret, nil
}

// ToLonLat converts a GKBA point to WGS84.
func (c *Client) ToLonLat(p spatial.XY) (spatial.Point, error) {
	resp, err := c.ConvertCoordinates(p.X, p.Y, OutputLonLat)
	if err != nil {
		return spatial.Point{}, err
	}

	return spatial.Point{Lat: float64(resp.Resultado.Y), Lng: float64(resp.Resultado.X)}, nil
}

// ToGKBA converts a WGS84 point to GKBA.
func (c *Client) ToGKBA(p spatial.Point) (spatial.XY, error) {
	resp, err := c.ConvertCoordinates(p.Lng, p.Lat, OutputGKBA)
	if err != nil {
		return spatial.XY{}, err
	}

	return spatial.XY{X: float64(resp.Resultado.X), Y: float64(resp.Resultado.Y)}, nil
}
