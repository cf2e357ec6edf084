// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

// Package usig provides typed clients for the Buenos Aires city geographic
// services: the USIG address normalizer and coordinate converter, the EPOK
// cadastre (formal and informal) and the "datos útiles" lookup.
//
// Every call is a single synchronous GET bounded by the client timeout. There are
// no retries: callers decide what a failure means.
package usig

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/jcodagnone/parcela/utils/htmlutils"
	"github.com/jcodagnone/parcela/utils/httputils"
)

// Default endpoints.
const (
	DefaultNormalizerURL       = "https://servicios.usig.buenosaires.gob.ar/normalizar/"
	DefaultCatastroURL         = "https://epok.buenosaires.gob.ar/catastro"
	DefaultCatastroInformalURL = "https://epok.buenosaires.gob.ar/catastroinformal"
	DefaultConverterURL        = "https://ws.usig.buenosaires.gob.ar/rest/convertir_coordenadas"
	DefaultDatosUtilesURL      = "https://datosabiertos-usig-apis.buenosaires.gob.ar/datos_utiles"

	DefaultTimeout          = 30 * time.Second
	DefaultMaxResponseBytes = 16 << 20
)

// Service names, used in errors and traces.
const (
	ServiceNormalizer       = "usig_normalizar"
	ServiceCatastro         = "catastro"
	ServiceCatastroInformal = "catastro_informal"
	ServiceConverter        = "convertir_coordenadas"
	ServiceDatosUtiles      = "datos_utiles"
)

// ClientOptions configuration for Client.
type ClientOptions struct {
	NormalizerURL       string
	CatastroURL         string
	CatastroInformalURL string
	ConverterURL        string
	DatosUtilesURL      string

	// Timeout applies to each call on its own.
	Timeout time.Duration

	// MaxResponseBytes bounds the size of a response body.
	MaxResponseBytes int64

	// UserAgent is the User-Agent header to use in HTTP requests
	UserAgent string

	// Enables light tracing of HTTP requests and responses
	EnableHTTPTrace bool

	// Enables full HTTP body tracing
	EnableHTTPBodyTrace bool

	// Where traces are written, stderr when nil
	TraceWriter io.Writer

	// Transport overrides the base transport, for tests.
	Transport http.RoundTripper
}

func (o *ClientOptions) withDefaults() ClientOptions {
	ret := *o

	for _, v := range []struct {
		dst *string
		def string
	}{
		{&ret.NormalizerURL, DefaultNormalizerURL},
		{&ret.CatastroURL, DefaultCatastroURL},
		{&ret.CatastroInformalURL, DefaultCatastroInformalURL},
		{&ret.ConverterURL, DefaultConverterURL},
		{&ret.DatosUtilesURL, DefaultDatosUtilesURL},
		{&ret.UserAgent, "parcela/unknown"},
	} {
		if *v.dst == "" {
			*v.dst = v.def
		}
	}

	if ret.Timeout <= 0 {
		ret.Timeout = DefaultTimeout
	}

	if ret.MaxResponseBytes <= 0 {
		ret.MaxResponseBytes = DefaultMaxResponseBytes
	}

	return ret
}

// Client talks to the USIG and EPOK services.
type Client struct {
	client  *http.Client
	options ClientOptions
}

// NewClient creates a new client with the provided options.
func NewClient(options *ClientOptions) *Client {
	if options == nil {
		options = &ClientOptions{}
	}

	opts := options.withDefaults()

	var httpLogWriter io.Writer
	if opts.EnableHTTPTrace || opts.EnableHTTPBodyTrace {
		httpLogWriter = opts.TraceWriter
		if httpLogWriter == nil {
			httpLogWriter = os.Stderr
		}
	}

	transport := opts.Transport
	if transport == nil {
		transport = &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			MaxIdleConns:          10,
			MaxIdleConnsPerHost:   4,
			IdleConnTimeout:       30 * time.Second,
			ResponseHeaderTimeout: opts.Timeout,
		}
	}

	loggingTransport := &httputils.LoggingRoundTripper{
		Writer:    httpLogWriter,
		DumpBody:  opts.EnableHTTPBodyTrace,
		Transport: transport,
	}

	headerTransport := &httputils.AppendRequestHeadersRoundTripper{
		Headers: http.Header{
			"User-Agent": {opts.UserAgent},
			"Accept":     {"application/json"},
		},
		Transport: loggingTransport,
	}

	return &Client{
		client: &http.Client{
			Timeout: opts.Timeout,
			// a redirect here means we are being sent to a web page instead of
			// the API, so the 3xx is reported as is.
			CheckRedirect: func(_ *http.Request, _ []*http.Request) error {
				return http.ErrUseLastResponse
			},
			Transport: headerTransport,
		},
		options: opts,
	}
}

// Options returns the effective options.
func (c *Client) Options() ClientOptions {
	return c.options
}

func joinURL(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

// fetch issues a GET and returns the body of a successful JSON response.
func (c *Client) fetch(service, endpoint string, params url.Values) (body []byte, err error) {
	reqURL := endpoint
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	resp, err := c.client.Get(reqURL)
	if err != nil {
		errType := ErrorTypeNetwork

		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			errType = ErrorTypeTimeout
		}

		return nil, &UpstreamError{
			Type:    errType,
			Service: service,
			Message: "la llamada falló",
			Err:     err,
		}
	}

	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("closing resp.Body: %w", cerr))
		}
	}()

	media := httputils.MediaType(resp)
	contentType := resp.Header.Get("Content-Type")
	r := io.LimitReader(resp.Body, c.options.MaxResponseBytes)

	if !httputils.IsSuccess(resp.StatusCode) {
		var detail string
		if loc := resp.Header.Get("Location"); loc != "" {
			detail = "location: " + loc
		} else {
			detail = describeBody(r, media, contentType)
		}

		upErr := ClassifyHTTPError(resp.StatusCode, detail)
		upErr.Service = service

		return nil, upErr
	}

	if media == "text/html" {
		return nil, &UpstreamError{
			Type:       ErrorTypeFormat,
			Service:    service,
			StatusCode: resp.StatusCode,
			Message:    "la respuesta es HTML, no JSON: " + describeBody(r, media, contentType),
		}
	}

	body, err = io.ReadAll(r)
	if err != nil {
		return nil, &UpstreamError{
			Type:    ErrorTypeNetwork,
			Service: service,
			Message: "leyendo la respuesta",
			Err:     err,
		}
	}

	return body, nil
}

// describeBody returns a short, human readable description of an error body.
// contentType is the full header, so HTML pages are decoded with their charset.
func describeBody(r io.Reader, media, contentType string) string {
	const maxChars = 200

	if media == "text/html" {
		n, err := htmlutils.AsNode(io.LimitReader(r, 64<<10), contentType)
		if err != nil {
			return ""
		}

		return htmlutils.Summary(n, maxChars)
	}

	s := strings.Join(strings.Fields(httputils.ReadSnippet(r, 4<<10)), " ")
	if rs := []rune(s); len(rs) > maxChars {
		s = string(rs[:maxChars]) + "…"
	}

	return s
}

func decode(service string, body []byte, out any) error {
	if err := json.Unmarshal(body, out); err != nil {
		return &UpstreamError{
			Type:    ErrorTypeFormat,
			Service: service,
			Message: "la respuesta no es JSON válido",
			Err:     err,
		}
	}

	return nil
}

// getJSON fetches an opaque JSON document.
func (c *Client) getJSON(service, endpoint string, params url.Values) (any, error) {
	body, err := c.fetch(service, endpoint, params)
	if err != nil {
		return nil, err
	}

	var out any
	if err := decode(service, body, &out); err != nil {
		return nil, err
	}

	return out, nil
}
