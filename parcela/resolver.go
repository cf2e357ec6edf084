// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

// Package parcela resolves Buenos Aires street addresses into cadastral parcels
// (SMP) and builds the parcel report on top of it.
package parcela

import (
	"errors"
	"log"
	"strings"

	"github.com/jcodagnone/parcela/spatial"
	"github.com/jcodagnone/parcela/usig"
)

// Strategy names, in the order they are tried.
const (
	StrategyStreetCode = "codcalle_altura"
	StrategyLatLng     = "latlng_aprox"
	StrategyInformal   = "catastro_informal"
)

// Selection branches.
const (
	SelectionPartido = "partido"
	SelectionFirst   = "primer_candidato"
)

// Trace keys.
const (
	TraceAddress         = "address"
	TraceNormalizer      = "usig_normalizar"
	TraceCandidate       = "usig_direccion_elegida"
	TraceSelection       = "usig_seleccion"
	TraceStreetCode      = "usig_cod_calle_altura"
	TraceByStreetCode    = "catastro_parcela_por_codcalle_altura"
	TraceLatLng          = "usig_latlng"
	TraceByLatLng        = "catastro_parcela_por_latlng_aprox"
	TraceStreetDoor      = "usig_calle_puerta"
	TraceInformal        = "catastroinformal"
	TraceStrategies      = "estrategias"
	TraceParcelaBySMP    = "catastro_parcela_por_smp"
	TraceGeometria       = "catastro_geometria"
	TraceAreaError       = "area_error"
	TraceCentroidLonLat  = "centroide_lonlat"
	TraceH3              = "h3"
	TraceNormalizerError = TraceNormalizer + "_error"
)

var (
	// ErrUnresolvedAddress is returned by the outer layers when no strategy found
	// a parcel.
	ErrUnresolvedAddress = errors.New("no se pudo resolver el SMP desde la dirección")

	// ErrEmptyAddress means there is nothing to resolve.
	ErrEmptyAddress = errors.New("falta la dirección")
)

// Normalizer turns free text into address candidates.
type Normalizer interface {
	Normalize(address string) (*usig.NormalizeResponse, error)
}

// StreetCodeCadastre finds parcels by street code and house number.
type StreetCodeCadastre interface {
	ParcelaByStreetCode(codCalle, altura int) (any, error)
}

// Cadastre is what the resolver queries.
type Cadastre interface {
	StreetCodeCadastre
	ParcelaByLatLngAprox(lat, lng float64) (any, error)
	DireccionInformal(calle, puerta string) (any, error)
}

// ResolverOptions configuration for Resolver.
type ResolverOptions struct {
	// Partido is the municipality code candidates are preferred from.
	Partido string

	// CoordinateRules locate the candidate point, DefaultCoordinateRules when empty.
	CoordinateRules []CoordinateRule

	// Scanner finds the SMP in cadastre answers, DefaultScanner when nil.
	Scanner *Scanner
}

// Resolution is the outcome of Resolve. SMP is empty when the address could not
// be resolved; Trace is always set.
type Resolution struct {
	SMP       string
	Strategy  string
	Candidate *usig.NormalizedAddress
	Point     *spatial.Point
	Trace     *Trace
}

// Found reports whether an SMP was resolved.
func (r *Resolution) Found() bool {
	return r.SMP != ""
}

// Resolver walks the strategy ladder: street code and number, approximate
// coordinates and finally the informal cadastre. The first SMP wins.
type Resolver struct {
	normalizer Normalizer
	cadastre   Cadastre
	partido    string
	rules      []CoordinateRule
	scanner    *Scanner
}

// NewResolver creates a new resolver.
func NewResolver(normalizer Normalizer, cadastre Cadastre, options *ResolverOptions) *Resolver {
	if options == nil {
		options = &ResolverOptions{}
	}

	r := &Resolver{
		normalizer: normalizer,
		cadastre:   cadastre,
		partido:    options.Partido,
		rules:      options.CoordinateRules,
		scanner:    options.Scanner,
	}

	if r.partido == "" {
		r.partido = usig.DefaultPartido
	}

	if len(r.rules) == 0 {
		r.rules = DefaultCoordinateRules()
	}

	if r.scanner == nil {
		r.scanner = DefaultScanner
	}

	return r
}

// Resolve finds the SMP of an address. Upstream failures never abort the
// ladder: they are recorded in the trace under "<step>_error".
func (r *Resolver) Resolve(address string) *Resolution {
	address = strings.TrimSpace(address)

	res := &Resolution{Trace: NewTrace()}
	trace := res.Trace
	trace.Set(TraceAddress, address)

	resp, err := r.normalizer.Normalize(address)
	if err != nil {
		log.Printf("Resolve - normalizing %q: %v", address, err)
		trace.SetError(TraceNormalizer, err)

		return res
	}

	trace.Set(TraceNormalizer, resp.Raw)

	cand, branch := SelectCandidate(resp.Candidates, r.partido)
	if cand == nil {
		trace.Set(TraceCandidate, nil)

		return res
	}

	res.Candidate = cand
	trace.Set(TraceCandidate, cand)
	trace.Set(TraceSelection, branch)

	if p, ok := ExtractPoint(r.rules, cand.Raw); ok {
		res.Point = &p
	}

	var attempted []string

	defer func() {
		trace.Set(TraceStrategies, attempted)
	}()

	// A: street code and number
	codCalle, altura := int(cand.CodCalle), int(cand.Altura)
	trace.Set(TraceStreetCode, map[string]any{"cod_calle": positiveOrNil(codCalle), "altura": positiveOrNil(altura)})

	if codCalle > 0 && altura > 0 {
		attempted = append(attempted, StrategyStreetCode)
		if r.try(res, StrategyStreetCode, TraceByStreetCode, func() (any, error) {
			return r.cadastre.ParcelaByStreetCode(codCalle, altura)
		}) {
			return res
		}
	}

	// B: approximate coordinates
	if res.Point != nil {
		p := *res.Point
		trace.Set(TraceLatLng, map[string]any{"lat": p.Lat, "lng": p.Lng})

		attempted = append(attempted, StrategyLatLng)
		if r.try(res, StrategyLatLng, TraceByLatLng, func() (any, error) {
			return r.cadastre.ParcelaByLatLngAprox(p.Lat, p.Lng)
		}) {
			return res
		}
	} else {
		trace.Set(TraceLatLng, map[string]any{"lat": nil, "lng": nil})
	}

	// C: informal cadastre
	calle, puerta := cand.StreetName(), cand.Door()
	trace.Set(TraceStreetDoor, map[string]any{"calle": calle, "puerta": puerta})

	if calle != "" && puerta != "" {
		attempted = append(attempted, StrategyInformal)
		if r.try(res, StrategyInformal, TraceInformal, func() (any, error) {
			return r.cadastre.DireccionInformal(calle, puerta)
		}) {
			return res
		}
	}

	log.Printf("Resolve - no SMP for %q after %v", address, attempted)

	return res
}

// positiveOrNil records absent numbers as null rather than 0.
func positiveOrNil(n int) any {
	if n <= 0 {
		return nil
	}

	return n
}

func (r *Resolver) try(res *Resolution, strategy, key string, call func() (any, error)) bool {
	v, err := call()
	if err != nil {
		log.Printf("Resolve - strategy %s failed: %v", strategy, err)
		res.Trace.SetError(key, err)

		return false
	}

	res.Trace.Set(key, v)

	smp, ok := r.scanner.Find(v)
	if !ok {
		return false
	}

	res.SMP = smp
	res.Strategy = strategy

	return true
}

// SelectCandidate picks the first candidate of the municipality. When there is
// none, the first candidate is taken anyway and the branch says so.
func SelectCandidate(candidates []usig.NormalizedAddress, partido string) (*usig.NormalizedAddress, string) {
	if len(candidates) == 0 {
		return nil, ""
	}

	for i := range candidates {
		if candidates[i].InPartido(partido) {
			return &candidates[i], SelectionPartido
		}
	}

	return &candidates[0], SelectionFirst
}
