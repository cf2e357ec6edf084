// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package usig

import (
	"net/url"
	"strconv"
)

// DefaultGeometrySRID is Gauss-Krüger Buenos Aires, in meters.
const DefaultGeometrySRID = 97433

// the cadastre expects these flags, with no value, on every parcel query.
func parcelaParams() url.Values {
	params := url.Values{}
	params.Set("ib", "")
	params.Set("ft", "")

	return params
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// ParcelaByStreetCode queries the cadastre by street code and house number.
func (c *Client) ParcelaByStreetCode(codCalle, altura int) (any, error) {
	params := parcelaParams()
	params.Set("codigo_calle", strconv.Itoa(codCalle))
	params.Set("altura", strconv.Itoa(altura))

	return c.getJSON(ServiceCatastro, joinURL(c.options.CatastroURL, "parcela/"), params)
}

// ParcelaByLatLngAprox queries the cadastre for the parcel closest to a WGS84
// point.
func (c *Client) ParcelaByLatLngAprox(lat, lng float64) (any, error) {
	params := parcelaParams()
	params.Set("lat", formatFloat(lat))
	params.Set("lng", formatFloat(lng))
	params.Set("aprox", "")

	return c.getJSON(ServiceCatastro, joinURL(c.options.CatastroURL, "parcela/"), params)
}

// ParcelaBySMP returns the parcel record of an SMP.
func (c *Client) ParcelaBySMP(smp string) (any, error) {
	params := parcelaParams()
	params.Set("smp", smp)

	return c.getJSON(ServiceCatastro, joinURL(c.options.CatastroURL, "parcela/"), params)
}

// GeometriaBySMP returns the parcel geometry as GeoJSON, in the given SRID.
func (c *Client) GeometriaBySMP(smp string, srid int) (any, error) {
	if srid <= 0 {
		srid = DefaultGeometrySRID
	}

	params := url.Values{}
	params.Set("smp", smp)
	params.Set("srid", strconv.Itoa(srid))

	return c.getJSON(ServiceCatastro, joinURL(c.options.CatastroURL, "geometria/"), params)
}

// DireccionInformal queries the informal cadastre (settlements) by street name
// and door. An empty object is a valid "nothing here" answer.
func (c *Client) DireccionInformal(calle, puerta string) (any, error) {
	params := url.Values{}
	params.Set("calle", calle)
	params.Set("puerta", puerta)

	return c.getJSON(ServiceCatastroInformal, joinURL(c.options.CatastroInformalURL, "direccioninformal/"), params)
}
