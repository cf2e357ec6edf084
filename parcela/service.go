// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package parcela

import (
	"errors"
	"log"
	"strings"

	"github.com/jcodagnone/parcela/spatial"
	"github.com/jcodagnone/parcela/usig"
)

// Outcome of a lookup.
type Outcome string

// Outcomes.
const (
	OutcomeWithMetrics    Outcome = "resuelta_con_metricas"
	OutcomeWithoutMetrics Outcome = "resuelta_sin_metricas"
	OutcomeAlternatives   Outcome = "no_resuelta_con_alternativas"
	OutcomeNoAlternatives Outcome = "no_resuelta_sin_alternativas"
)

const (
	DefaultH3Resolution = 11

	// DefaultLookupProbeRadius bounds the search for alternatives done by
	// Lookup, narrower than the explicit nearby search.
	DefaultLookupProbeRadius = 5
)

// Resolved reports whether the outcome carries an SMP.
func (o Outcome) Resolved() bool {
	return o == OutcomeWithMetrics || o == OutcomeWithoutMetrics
}

// Upstream is everything the lookup needs from the city services.
type Upstream interface {
	Normalizer
	Cadastre
	ParcelaBySMP(smp string) (any, error)
	GeometriaBySMP(smp string, srid int) (any, error)
	ToLonLat(p spatial.XY) (spatial.Point, error)
}

// Options configuration for Service.
type Options struct {
	Resolver ResolverOptions
	Prober   ProberOptions

	// GeometrySRID requested for the parcel geometry, GKBA by default.
	GeometrySRID int

	// H3Resolution of the centroid cell.
	H3Resolution int

	// ProbeLimit and ProbeRadius bound the search for alternatives when the
	// address is not resolved.
	ProbeLimit  int
	ProbeRadius int
}

// Report is the full answer for an address.
type Report struct {
	OK             bool           `json:"ok"                         yaml:"ok"`
	Outcome        Outcome        `json:"outcome"                    yaml:"outcome"`
	Input          string         `json:"input"                      yaml:"input"`
	Error          string         `json:"error,omitempty"            yaml:"error,omitempty"`
	SMP            string         `json:"smp,omitempty"              yaml:"smp,omitempty"`
	Strategy       string         `json:"estrategia,omitempty"       yaml:"estrategia,omitempty"`
	Parcela        any            `json:"parcela,omitempty"          yaml:"parcela,omitempty"`
	Geometria      any            `json:"geometria,omitempty"        yaml:"geometria,omitempty"`
	GeometryKind   string         `json:"tipo_geometria,omitempty"   yaml:"tipo_geometria,omitempty"`
	AreaM2         *float64       `json:"area_m2"                    yaml:"area_m2"`
	Centroid       *spatial.XY    `json:"centroide,omitempty"        yaml:"centroide,omitempty"`
	CentroidLonLat *spatial.Point `json:"centroide_lonlat,omitempty" yaml:"centroide_lonlat,omitempty"`
	H3             string         `json:"h3,omitempty"               yaml:"h3,omitempty"`
	DistanceM      *float64       `json:"distancia_m,omitempty"      yaml:"distancia_m,omitempty"`
	Alternatives   []Alternative  `json:"alternativas,omitempty"     yaml:"alternativas,omitempty"`
	Debug          *Trace         `json:"debug"                      yaml:"debug"`
}

// Service runs the whole lookup: resolution, parcel record, geometry metrics and,
// when the address is not resolved, nearby alternatives.
type Service struct {
	upstream Upstream
	resolver *Resolver
	prober   *Prober
	options  Options
}

// NewService creates a new lookup service.
func NewService(upstream Upstream, options *Options) *Service {
	if options == nil {
		options = &Options{}
	}

	opts := *options
	if opts.GeometrySRID <= 0 {
		opts.GeometrySRID = usig.DefaultGeometrySRID
	}

	if opts.H3Resolution <= 0 {
		opts.H3Resolution = DefaultH3Resolution
	}

	if opts.ProbeLimit <= 0 {
		opts.ProbeLimit = DefaultProbeLimit
	}

	if opts.ProbeRadius <= 0 {
		opts.ProbeRadius = DefaultLookupProbeRadius
	}

	return &Service{
		upstream: upstream,
		resolver: NewResolver(upstream, upstream, &opts.Resolver),
		prober:   NewProber(upstream, &opts.Prober),
		options:  opts,
	}
}

// Resolver returns the resolver used by the service.
func (s *Service) Resolver() *Resolver {
	return s.resolver
}

// Prober returns the prober used by the service.
func (s *Service) Prober() *Prober {
	return s.prober
}

// Lookup builds the report of an address. The report is always returned, also
// together with an error when the parcel geometry is of an unsupported kind.
func (s *Service) Lookup(address string) (*Report, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, ErrEmptyAddress
	}

	res := s.resolver.Resolve(address)
	report := &Report{Input: address, Debug: res.Trace}

	if !res.Found() {
		s.alternatives(report, res)

		return report, nil
	}

	report.OK = true
	report.Outcome = OutcomeWithoutMetrics
	report.SMP = res.SMP
	report.Strategy = res.Strategy

	trace := res.Trace

	parcela, err := s.upstream.ParcelaBySMP(res.SMP)
	if err != nil {
		trace.SetError(TraceParcelaBySMP, err)
	} else {
		report.Parcela = parcela
	}

	geometria, err := s.upstream.GeometriaBySMP(res.SMP, s.options.GeometrySRID)
	if err != nil {
		trace.SetError(TraceGeometria, err)

		return report, nil
	}

	report.Geometria = geometria

	metrics, err := spatial.ComputeMetrics(geometria)
	if err != nil {
		trace.Set(TraceAreaError, err.Error())

		var unsupported *spatial.UnsupportedGeometryError
		if errors.As(err, &unsupported) {
			return report, err
		}

		return report, nil
	}

	report.GeometryKind = metrics.Kind
	report.AreaM2 = &metrics.Area

	if metrics.Centroid == nil {
		return report, nil
	}

	report.Outcome = OutcomeWithMetrics
	report.Centroid = metrics.Centroid

	s.locate(report, res)

	return report, nil
}

// locate adds the WGS84 centroid, its H3 cell and its distance to the
// normalizer's point.
func (s *Service) locate(report *Report, res *Resolution) {
	trace := res.Trace

	p, err := s.upstream.ToLonLat(*report.Centroid)
	if err != nil {
		trace.SetError(TraceCentroidLonLat, err)

		return
	}

	report.CentroidLonLat = &p

	cell, err := p.Cell(s.options.H3Resolution)
	if err != nil {
		trace.SetError(TraceH3, err)
	} else {
		report.H3 = cell
	}

	if res.Point != nil {
		d := res.Point.HaversineDistance(&p)
		report.DistanceM = &d
	}
}

func (s *Service) alternatives(report *Report, res *Resolution) {
	report.Error = ErrUnresolvedAddress.Error()
	report.Outcome = OutcomeNoAlternatives

	cand := res.Candidate
	if cand == nil || cand.CodCalle <= 0 || cand.Altura <= 0 {
		return
	}

	log.Printf("Lookup - probing around %s %d", cand.StreetName(), cand.Altura)

	alts := s.prober.Probe(int(cand.CodCalle), cand.StreetName(), int(cand.Altura), s.options.ProbeLimit, s.options.ProbeRadius)
	if len(alts) > 0 {
		report.Outcome = OutcomeAlternatives
		report.Alternatives = alts
	}
}
