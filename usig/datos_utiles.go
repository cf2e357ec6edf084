// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package usig

import (
	"net/url"
	"strconv"
)

// DatosUtilesByXY returns neighbourhood, commune, police station and similar
// data for a point.
func (c *Client) DatosUtilesByXY(x, y float64) (any, error) {
	params := url.Values{}
	params.Set("x", formatFloat(x))
	params.Set("y", formatFloat(y))

	return c.getJSON(ServiceDatosUtiles, c.options.DatosUtilesURL, params)
}

// DatosUtilesByAddress is DatosUtilesByXY for a street and house number.
func (c *Client) DatosUtilesByAddress(calle string, altura int) (any, error) {
	params := url.Values{}
	params.Set("calle", calle)
	params.Set("altura", strconv.Itoa(altura))

	return c.getJSON(ServiceDatosUtiles, c.options.DatosUtilesURL, params)
}
