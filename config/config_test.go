// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jcodagnone/parcela/parcela"
	"github.com/jcodagnone/parcela/usig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(nil, "")
	require.NoError(t, err)

	assert.Equal(t, usig.DefaultNormalizerURL, cfg.Upstream.NormalizerURL)
	assert.Equal(t, 30*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, "caba", cfg.Resolver.Partido)
	assert.Equal(t, 97433, cfg.Resolver.GeometrySRID)
	assert.Empty(t, cfg.Resolver.CoordinateRules)
	assert.Equal(t, parcela.DefaultIndicatorKeys, cfg.Prober.IndicatorKeys)
	assert.Equal(t, 20, cfg.Prober.MaxRadius)
	assert.Equal(t, 10, cfg.Prober.Radius)
	assert.Equal(t, 5, cfg.Prober.LookupRadius)
	assert.Equal(t, 5, cfg.ServiceOptions().ProbeRadius)
	assert.Equal(t, "127.0.0.1:8000", cfg.Server.Addr)
	assert.Equal(t, 11, cfg.H3.Resolution)

	opts := cfg.ClientOptions()
	assert.Equal(t, usig.DefaultCatastroURL, opts.CatastroURL)
	assert.False(t, opts.EnableHTTPTrace)
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("PARCELA_HTTP_TIMEOUT", "5s")
	t.Setenv("PARCELA_UPSTREAM_CATASTRO_URL", "http://localhost:9999/catastro")
	t.Setenv("PARCELA_PROBER_RADIUS", "50")
	t.Setenv("PARCELA_PROBER_LOOKUP_RADIUS", "30")
	t.Setenv("PARCELA_HTTP_TRACE", "true")

	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, "http://localhost:9999/catastro", cfg.ClientOptions().CatastroURL)
	assert.True(t, cfg.ClientOptions().EnableHTTPTrace)

	// clamped by max_radius
	assert.Equal(t, 20, cfg.ClampRadius(cfg.Prober.Radius))
	assert.Equal(t, 20, cfg.ServiceOptions().ProbeRadius)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "parcela.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  timeout: 10s
  user_agent: prefactibilidad/1.0
resolver:
  partido: caba
  coordinate_rules:
    - container: punto
      lat: [lat]
      lng: [lon]
    - lat: [y]
      lng: [x]
prober:
  indicator_keys: [smp, pdamatriz]
h3:
  resolution: 9
`), 0o600))

	cfg, err := Load(nil, path)
	require.NoError(t, err)

	assert.Equal(t, 10*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, "prefactibilidad/1.0", cfg.HTTP.UserAgent)
	assert.Equal(t, []parcela.CoordinateRule{
		{Container: "punto", Lat: []string{"lat"}, Lng: []string{"lon"}},
		{Lat: []string{"y"}, Lng: []string{"x"}},
	}, cfg.Resolver.CoordinateRules)
	assert.Equal(t, []string{"smp", "pdamatriz"}, cfg.Prober.IndicatorKeys)

	opts := cfg.ServiceOptions()
	assert.Equal(t, 9, opts.H3Resolution)
	assert.Len(t, opts.Resolver.CoordinateRules, 2)
	assert.Equal(t, []string{"smp", "pdamatriz"}, opts.Prober.IndicatorKeys)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(nil, filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "reading config file")

	t.Setenv("PARCELA_HTTP_TIMEOUT", "0s")
	t.Setenv("PARCELA_H3_RESOLUTION", "16")

	_, err = Load(nil, "")
	require.Error(t, err)
	assert.ErrorContains(t, err, "http.timeout")
	assert.ErrorContains(t, err, "h3.resolution")
}

func TestValidateCoordinateRules(t *testing.T) {
	cfg, err := Load(nil, "")
	require.NoError(t, err)

	cfg.Resolver.CoordinateRules = []parcela.CoordinateRule{{Container: "geo", Lat: []string{"y"}}}
	assert.ErrorContains(t, cfg.Validate(), "coordinate_rules[0]")
}

func TestClampRadius(t *testing.T) {
	cfg := &Config{Prober: ProberConfig{MaxRadius: 20}}

	assert.Equal(t, 0, cfg.ClampRadius(-1))
	assert.Equal(t, 7, cfg.ClampRadius(7))
	assert.Equal(t, 20, cfg.ClampRadius(21))
}
