// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package usig

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/jcodagnone/parcela/utils/textutils"
)

// Kinds of normalized elements.
const (
	KindCalle        = "calle"
	KindCalleAltura  = "calle_altura"
	KindCalleYCalle  = "calle_y_calle"
	DefaultPartido   = "caba"
	normalizerOutput = "4326"
)

// NormalizedAddress is one candidate returned by the normalizer.
//
// The typed fields cover what the resolver needs; Raw keeps the whole object so
// the coordinate rules can look at whatever shape the service returned.
type NormalizedAddress struct {
	CodPartido  string     `json:"cod_partido"`
	Partido     string     `json:"nombre_partido,omitempty"`
	Tipo        string     `json:"tipo"`
	NombreCalle string     `json:"nombre_calle"`
	Calle       FlexString `json:"calle,omitempty"`
	CodCalle    FlexInt    `json:"cod_calle"`
	Altura      FlexInt    `json:"altura"`
	Puerta      FlexString `json:"puerta,omitempty"`
	Direccion   string     `json:"direccion"`

	Raw map[string]any `json:"-"`
}

type normalizedAddress NormalizedAddress

// UnmarshalJSON implements json.Unmarshaler.
func (a *NormalizedAddress) UnmarshalJSON(data []byte) error {
	var typed normalizedAddress
	if err := json.Unmarshal(data, &typed); err != nil {
		return err
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*a = NormalizedAddress(typed)
	a.Raw = raw

	return nil
}

// MarshalJSON writes back the raw object when present, so nothing the service
// sent is lost in traces.
func (a NormalizedAddress) MarshalJSON() ([]byte, error) {
	if a.Raw != nil {
		return json.Marshal(a.Raw)
	}

	return json.Marshal(normalizedAddress(a))
}

// InPartido reports whether the candidate belongs to the given municipality code.
func (a *NormalizedAddress) InPartido(partido string) bool {
	return textutils.LowerASCIIFolding(a.CodPartido) == textutils.LowerASCIIFolding(partido)
}

// AllowedKind reports whether the candidate is a street, an address or an
// intersection. Candidates without a kind are accepted.
func (a *NormalizedAddress) AllowedKind() bool {
	switch textutils.LowerASCIIFolding(a.Tipo) {
	case "", KindCalle, KindCalleAltura, KindCalleYCalle:
		return true
	default:
		return false
	}
}

// HasStreetText reports whether the candidate has something to show: a street
// name, or a direccion with at least one letter.
func (a *NormalizedAddress) HasStreetText() bool {
	if strings.TrimSpace(a.NombreCalle) != "" {
		return true
	}

	return textutils.HasLetter(a.Direccion)
}

// Label is the display text of the candidate.
func (a *NormalizedAddress) Label() string {
	direccion := strings.TrimSpace(a.Direccion)
	if textutils.LowerASCIIFolding(a.Tipo) == KindCalleAltura && direccion != "" {
		return direccion
	}

	if nombre := strings.TrimSpace(a.NombreCalle); nombre != "" {
		return nombre
	}

	return direccion
}

// StreetName returns nombre_calle, falling back to calle.
func (a *NormalizedAddress) StreetName() string {
	if nombre := strings.TrimSpace(a.NombreCalle); nombre != "" {
		return nombre
	}

	return strings.TrimSpace(string(a.Calle))
}

// Door returns the house number as text: altura, falling back to puerta.
func (a *NormalizedAddress) Door() string {
	if a.Altura > 0 {
		return fmt.Sprintf("%d", a.Altura)
	}

	return strings.TrimSpace(string(a.Puerta))
}

// NormalizeResponse is the normalizer answer.
type NormalizeResponse struct {
	Candidates   []NormalizedAddress `json:"direccionesNormalizadas"`
	ErrorMessage string              `json:"errorMessage,omitempty"`

	// Raw is the decoded document, as received.
	Raw any `json:"-"`
}

// Normalize turns a free-text address into structured candidates. The
// normalizer is asked to geocode them in WGS84.
func (c *Client) Normalize(address string) (*NormalizeResponse, error) {
	params := url.Values{}
	params.Set("direccion", strings.TrimSpace(address))
	params.Set("geocodificar", "true")
	params.Set("srid", normalizerOutput)

	return c.normalize(params)
}

func (c *Client) normalize(params url.Values) (*NormalizeResponse, error) {
	body, err := c.fetch(ServiceNormalizer, c.options.NormalizerURL, params)
	if err != nil {
		return nil, err
	}

	var ret NormalizeResponse
	if err := decode(ServiceNormalizer, body, &ret); err != nil {
		return nil, err
	}

	if err := decode(ServiceNormalizer, body, &ret.Raw); err != nil {
		return nil, err
	}

	return &ret, nil
}
