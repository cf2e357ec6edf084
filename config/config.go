// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the parcela configuration from defaults, an optional
// YAML file and PARCELA_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jcodagnone/parcela/parcela"
	"github.com/jcodagnone/parcela/usig"
	"github.com/spf13/viper"
)

// EnvPrefix of the environment variables: http.timeout is PARCELA_HTTP_TIMEOUT.
const EnvPrefix = "PARCELA"

// Config holds all application configuration.
type Config struct {
	Upstream UpstreamConfig `mapstructure:"upstream"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Resolver ResolverConfig `mapstructure:"resolver"`
	Prober   ProberConfig   `mapstructure:"prober"`
	Server   ServerConfig   `mapstructure:"server"`
	H3       H3Config       `mapstructure:"h3"`
}

// UpstreamConfig holds the city service endpoints.
type UpstreamConfig struct {
	NormalizerURL       string `mapstructure:"normalizer_url"`
	CatastroURL         string `mapstructure:"catastro_url"`
	CatastroInformalURL string `mapstructure:"catastro_informal_url"`
	ConverterURL        string `mapstructure:"converter_url"`
	DatosUtilesURL      string `mapstructure:"datos_utiles_url"`
}

// HTTPConfig holds the upstream HTTP client settings.
type HTTPConfig struct {
	Timeout          time.Duration `mapstructure:"timeout"`
	MaxResponseBytes int64         `mapstructure:"max_response_bytes"`
	UserAgent        string        `mapstructure:"user_agent"`
	Trace            bool          `mapstructure:"trace"`
	TraceBody        bool          `mapstructure:"trace_body"`
}

// ResolverConfig holds the address resolution settings.
type ResolverConfig struct {
	Partido         string                   `mapstructure:"partido"`
	GeometrySRID    int                      `mapstructure:"geometry_srid"`
	CoordinateRules []parcela.CoordinateRule `mapstructure:"coordinate_rules"`
}

// ProberConfig holds the nearby house number search settings.
type ProberConfig struct {
	Limit         int      `mapstructure:"limit"`
	Radius        int      `mapstructure:"radius"`
	LookupRadius  int      `mapstructure:"lookup_radius"`
	MaxRadius     int      `mapstructure:"max_radius"`
	IndicatorKeys []string `mapstructure:"indicator_keys"`
}

// ServerConfig holds the local HTTP server settings.
type ServerConfig struct {
	Addr    string `mapstructure:"addr"`
	GinMode string `mapstructure:"gin_mode"`
}

// H3Config holds the H3 indexing settings.
type H3Config struct {
	Resolution int `mapstructure:"resolution"`
}

// SetDefaults registers every key with its default value.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("upstream.normalizer_url", usig.DefaultNormalizerURL)
	v.SetDefault("upstream.catastro_url", usig.DefaultCatastroURL)
	v.SetDefault("upstream.catastro_informal_url", usig.DefaultCatastroInformalURL)
	v.SetDefault("upstream.converter_url", usig.DefaultConverterURL)
	v.SetDefault("upstream.datos_utiles_url", usig.DefaultDatosUtilesURL)

	v.SetDefault("http.timeout", usig.DefaultTimeout.String())
	v.SetDefault("http.max_response_bytes", usig.DefaultMaxResponseBytes)
	v.SetDefault("http.user_agent", "")
	v.SetDefault("http.trace", false)
	v.SetDefault("http.trace_body", false)

	v.SetDefault("resolver.partido", usig.DefaultPartido)
	v.SetDefault("resolver.geometry_srid", usig.DefaultGeometrySRID)
	v.SetDefault("resolver.coordinate_rules", []any{})

	v.SetDefault("prober.limit", parcela.DefaultProbeLimit)
	v.SetDefault("prober.radius", parcela.DefaultProbeRadius)
	v.SetDefault("prober.lookup_radius", parcela.DefaultLookupProbeRadius)
	v.SetDefault("prober.max_radius", parcela.MaxProbeRadius)
	v.SetDefault("prober.indicator_keys", parcela.DefaultIndicatorKeys)

	v.SetDefault("server.addr", "127.0.0.1:8000")
	v.SetDefault("server.gin_mode", "release")

	v.SetDefault("h3.resolution", parcela.DefaultH3Resolution)
}

// New returns a viper instance with the defaults and the environment wired.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)

	return v
}

// Load reads the optional configuration file into v and decodes the result.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if v == nil {
		v = New()
	}

	if configFile != "" {
		v.SetConfigFile(configFile)

		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", configFile, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the values that would otherwise fail late.
func (c *Config) Validate() error {
	var errs []error

	if c.HTTP.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("http.timeout must be positive, got %v", c.HTTP.Timeout))
	}

	if strings.TrimSpace(c.Resolver.Partido) == "" {
		errs = append(errs, errors.New("resolver.partido is required"))
	}

	if c.H3.Resolution < 0 || c.H3.Resolution > 15 {
		errs = append(errs, fmt.Errorf("h3.resolution must be in [0, 15], got %d", c.H3.Resolution))
	}

	if c.Prober.Radius < 0 || c.Prober.LookupRadius < 0 || c.Prober.MaxRadius < 0 {
		errs = append(errs, errors.New("prober radius cannot be negative"))
	}

	for i, r := range c.Resolver.CoordinateRules {
		if len(r.Lat) == 0 || len(r.Lng) == 0 {
			errs = append(errs, fmt.Errorf("resolver.coordinate_rules[%d] needs lat and lng keys", i))
		}
	}

	return errors.Join(errs...)
}

// ClampRadius bounds a requested probe radius by prober.max_radius.
func (c *Config) ClampRadius(radius int) int {
	if radius < 0 {
		return 0
	}

	if radius > c.Prober.MaxRadius {
		return c.Prober.MaxRadius
	}

	return radius
}

// ClientOptions builds the upstream client options.
func (c *Config) ClientOptions() *usig.ClientOptions {
	return &usig.ClientOptions{
		NormalizerURL:       c.Upstream.NormalizerURL,
		CatastroURL:         c.Upstream.CatastroURL,
		CatastroInformalURL: c.Upstream.CatastroInformalURL,
		ConverterURL:        c.Upstream.ConverterURL,
		DatosUtilesURL:      c.Upstream.DatosUtilesURL,
		Timeout:             c.HTTP.Timeout,
		MaxResponseBytes:    c.HTTP.MaxResponseBytes,
		UserAgent:           c.HTTP.UserAgent,
		EnableHTTPTrace:     c.HTTP.Trace,
		EnableHTTPBodyTrace: c.HTTP.TraceBody,
	}
}

// ServiceOptions builds the lookup service options.
func (c *Config) ServiceOptions() *parcela.Options {
	return &parcela.Options{
		Resolver: parcela.ResolverOptions{
			Partido:         c.Resolver.Partido,
			CoordinateRules: c.Resolver.CoordinateRules,
		},
		Prober: parcela.ProberOptions{
			IndicatorKeys: c.Prober.IndicatorKeys,
		},
		GeometrySRID: c.Resolver.GeometrySRID,
		H3Resolution: c.H3.Resolution,
		ProbeLimit:   c.Prober.Limit,
		ProbeRadius:  c.ClampRadius(c.Prober.LookupRadius),
	}
}
