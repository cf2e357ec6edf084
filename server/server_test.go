// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jcodagnone/parcela/parcela"
	"github.com/jcodagnone/parcela/spatial"
	"github.com/jcodagnone/parcela/usig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockLookup struct {
	report  *parcela.Report
	err     error
	address string
}

func (m *mockLookup) Lookup(address string) (*parcela.Report, error) {
	m.address = address

	return m.report, m.err
}

type probeCall struct {
	codCalle, altura, limit, radius int
	calle                           string
}

type mockProber struct {
	alts  []parcela.Alternative
	calls []probeCall
}

func (m *mockProber) Probe(codCalle int, calle string, altura, limit, radius int) []parcela.Alternative {
	m.calls = append(m.calls, probeCall{codCalle: codCalle, calle: calle, altura: altura, limit: limit, radius: radius})

	return m.alts
}

type mockDirectory struct {
	suggest    *usig.SuggestResult
	suggestErr error
	datos      any
	datosErr   error
	calls      []string
}

func (m *mockDirectory) Suggest(query, partido string, limit int) (*usig.SuggestResult, error) {
	m.calls = append(m.calls, "suggest "+query+" "+partido+" "+strconv.Itoa(limit))

	return m.suggest, m.suggestErr
}

func (m *mockDirectory) DatosUtilesByXY(x, y float64) (any, error) {
	m.calls = append(m.calls, "xy")

	return m.datos, m.datosErr
}

func (m *mockDirectory) DatosUtilesByAddress(calle string, altura int) (any, error) {
	m.calls = append(m.calls, "address "+calle+" "+strconv.Itoa(altura))

	return m.datos, m.datosErr
}

func setupServerTest(t *testing.T, lookup *mockLookup, prober *mockProber, dir *mockDirectory) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	if lookup == nil {
		lookup = &mockLookup{}
	}

	if prober == nil {
		prober = &mockProber{}
	}

	if dir == nil {
		dir = &mockDirectory{}
	}

	return NewServer(lookup, prober, dir, &Options{MaxRadius: 20, Radius: 5, Limit: 3}).Router()
}

func do(router *gin.Engine, method, target string, body []byte) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, target, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}

func TestHealth(t *testing.T) {
	router := setupServerTest(t, nil, nil, nil)

	w := do(router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)
}

func TestRequestIDIsKept(t *testing.T) {
	router := setupServerTest(t, nil, nil, nil)

	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestCatastroAPI(t *testing.T) {
	area := 100.0

	tests := []struct {
		name   string
		body   string
		lookup *mockLookup
		status int
		check  func(t *testing.T, got map[string]any)
	}{
		{
			name:   "missing direccion",
			body:   `{}`,
			lookup: &mockLookup{},
			status: http.StatusBadRequest,
			check: func(t *testing.T, got map[string]any) {
				assert.Equal(t, "Falta 'direccion'", got["error"])
			},
		},
		{
			name:   "not json",
			body:   `direccion=Davila`,
			lookup: &mockLookup{},
			status: http.StatusBadRequest,
		},
		{
			name: "resolved",
			body: `{"direccion":"Davila 1130"}`,
			lookup: &mockLookup{report: &parcela.Report{
				OK: true, Outcome: parcela.OutcomeWithMetrics, Input: "Davila 1130", SMP: "45-123-456", AreaM2: &area, Debug: parcela.NewTrace(),
			}},
			status: http.StatusOK,
			check: func(t *testing.T, got map[string]any) {
				assert.Equal(t, "45-123-456", got["smp"])
				assert.Equal(t, 100.0, got["area_m2"])
			},
		},
		{
			name: "resolved without metrics",
			body: `{"direccion":"Davila 1130"}`,
			lookup: &mockLookup{report: &parcela.Report{
				OK: true, Outcome: parcela.OutcomeWithoutMetrics, SMP: "45-123-456",
			}},
			status: http.StatusOK,
		},
		{
			name: "unresolved",
			body: `{"direccion":"Davila 99999"}`,
			lookup: &mockLookup{report: &parcela.Report{
				Outcome:      parcela.OutcomeAlternatives,
				Error:        parcela.ErrUnresolvedAddress.Error(),
				Alternatives: []parcela.Alternative{{Altura: 1131, Direccion: "DAVILA 1131"}},
				Debug:        parcela.NewTrace(),
			}},
			status: http.StatusNotFound,
			check: func(t *testing.T, got map[string]any) {
				assert.Equal(t, false, got["ok"])
				assert.Len(t, got["alternativas"], 1)
				assert.Contains(t, got, "debug")
			},
		},
		{
			name: "unsupported geometry",
			body: `{"direccion":"Davila 1130"}`,
			lookup: &mockLookup{
				report: &parcela.Report{OK: true, Outcome: parcela.OutcomeWithoutMetrics, SMP: "45-123-456"},
				err:    &spatial.UnsupportedGeometryError{Type: "LineString"},
			},
			status: http.StatusUnprocessableEntity,
			check: func(t *testing.T, got map[string]any) {
				assert.Equal(t, "45-123-456", got["smp"])
				assert.Contains(t, got["error"], "LineString")
			},
		},
		{
			name:   "unexpected error",
			body:   `{"direccion":"Davila 1130"}`,
			lookup: &mockLookup{err: assert.AnError},
			status: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupServerTest(t, tt.lookup, nil, nil)

			w := do(router, http.MethodPost, "/api/catastro", []byte(tt.body))
			assert.Equal(t, tt.status, w.Code, w.Body.String())

			var got map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))

			if tt.check != nil {
				tt.check(t, got)
			}
		})
	}
}

func TestAlturasAPI(t *testing.T) {
	prober := &mockProber{alts: []parcela.Alternative{{Altura: 98, Direccion: "DAVILA 98", SMP: "45-123-098"}}}
	router := setupServerTest(t, nil, prober, nil)

	w := do(router, http.MethodGet, "/api/alturas?cod_calle=17036&calle=DAVILA&altura=100", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got AlturasResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 5, got.Radio)
	assert.Equal(t, prober.alts, got.Alternativas)
	assert.Equal(t, probeCall{codCalle: 17036, calle: "DAVILA", altura: 100, limit: 3, radius: 5}, prober.calls[0])

	w = do(router, http.MethodGet, "/api/alturas?cod_calle=17036&altura=100&limit=1&radio=500", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, probeCall{codCalle: 17036, altura: 100, limit: 1, radius: 20}, prober.calls[1])

	for _, target := range []string{
		"/api/alturas?altura=100",
		"/api/alturas?cod_calle=17036",
		"/api/alturas?cod_calle=x&altura=100",
		"/api/alturas?cod_calle=17036&altura=-1",
		"/api/alturas?cod_calle=17036&altura=100&radio=-2",
		"/api/alturas?cod_calle=17036&altura=100&limit=0",
	} {
		w := do(router, http.MethodGet, target, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, target)
	}

	assert.Len(t, prober.calls, 2)
}

func TestSuggestAPI(t *testing.T) {
	dir := &mockDirectory{suggest: &usig.SuggestResult{
		Query:       "more",
		Suggestions: []usig.Suggestion{{Label: "MORENO", NombreCalle: "MORENO", CodCalle: 14005, Tipo: "calle"}},
	}}
	router := setupServerTest(t, nil, nil, dir)

	w := do(router, http.MethodGet, "/autocomplete/calles?q=more", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"query":"more","sugerencias":[{"label":"MORENO","nombre_calle":"MORENO","cod_calle":14005,"tipo":"calle"}]}`, w.Body.String())
	assert.Equal(t, []string{"suggest more caba 10"}, dir.calls)

	w = do(router, http.MethodGet, "/autocomplete/calles?q=more&limit=x", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	dir.suggestErr = &usig.UpstreamError{Type: usig.ErrorTypeTimeout, Service: usig.ServiceNormalizer, Message: "la llamada falló"}
	w = do(router, http.MethodGet, "/autocomplete/calles?q=more", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "usig_normalizar")
}

func TestDatosUtilesAPI(t *testing.T) {
	dir := &mockDirectory{datos: map[string]any{"barrio": "FLORES"}}
	router := setupServerTest(t, nil, nil, dir)

	w := do(router, http.MethodGet, "/api/datos-utiles?calle=Monroe&altura=4848", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"barrio":"FLORES"}`, w.Body.String())

	w = do(router, http.MethodGet, "/api/datos-utiles?x=102000.5&y=99000", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"address Monroe 4848", "xy"}, dir.calls)

	for _, target := range []string{
		"/api/datos-utiles",
		"/api/datos-utiles?x=1",
		"/api/datos-utiles?x=a&y=b",
		"/api/datos-utiles?calle=Monroe&altura=cero",
	} {
		w := do(router, http.MethodGet, target, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, target)
	}

	dir.datosErr = &usig.UpstreamError{Type: usig.ErrorTypeNotFound, Service: usig.ServiceDatosUtiles, Message: "recurso no encontrado"}
	w = do(router, http.MethodGet, "/api/datos-utiles?calle=Monroe&altura=4848", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	dir.datosErr = &usig.UpstreamError{Type: usig.ErrorTypeFormat, Service: usig.ServiceDatosUtiles, Message: "la respuesta es HTML, no JSON"}
	w = do(router, http.MethodGet, "/api/datos-utiles?calle=Monroe&altura=4848", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}
