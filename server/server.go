// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

// Package server exposes the lookup, the nearby house number search, street
// suggestions and "datos útiles" as a local JSON API.
package server

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jcodagnone/parcela/parcela"
	"github.com/jcodagnone/parcela/spatial"
	"github.com/jcodagnone/parcela/usig"
)

// Lookuper builds the report of an address.
type Lookuper interface {
	Lookup(address string) (*parcela.Report, error)
}

// Prober searches parcels around a house number.
type Prober interface {
	Probe(codCalle int, calle string, altura, limit, radius int) []parcela.Alternative
}

// Directory is the pass-through part of the city services.
type Directory interface {
	Suggest(query, partido string, limit int) (*usig.SuggestResult, error)
	DatosUtilesByXY(x, y float64) (any, error)
	DatosUtilesByAddress(calle string, altura int) (any, error)
}

// Options configuration for Server.
type Options struct {
	Addr      string
	Partido   string
	Limit     int
	Radius    int
	MaxRadius int
}

// Server is the HTTP front of the lookup service.
type Server struct {
	lookup    Lookuper
	prober    Prober
	directory Directory
	options   Options
}

// NewServer creates a new server.
func NewServer(lookup Lookuper, prober Prober, directory Directory, options *Options) *Server {
	if options == nil {
		options = &Options{}
	}

	opts := *options
	if opts.Addr == "" {
		opts.Addr = "127.0.0.1:8000"
	}

	if opts.Partido == "" {
		opts.Partido = usig.DefaultPartido
	}

	if opts.Limit <= 0 {
		opts.Limit = parcela.DefaultProbeLimit
	}

	if opts.MaxRadius <= 0 {
		opts.MaxRadius = parcela.MaxProbeRadius
	}

	if opts.Radius <= 0 || opts.Radius > opts.MaxRadius {
		opts.Radius = min(parcela.DefaultProbeRadius, opts.MaxRadius)
	}

	return &Server{
		lookup:    lookup,
		prober:    prober,
		directory: directory,
		options:   opts,
	}
}

// Router returns the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), Logger(), gin.Recovery())

	r.GET("/health", s.health)
	r.POST("/api/catastro", s.catastro)
	r.GET("/api/alturas", s.alturas)
	r.GET("/api/datos-utiles", s.datosUtiles)
	r.GET("/autocomplete/calles", s.suggestStreets)

	return r
}

// Run listens on the configured address.
func (s *Server) Run() error {
	log.Printf("Listening on http://%s", s.options.Addr)

	return s.Router().Run(s.options.Addr)
}

func (s *Server) health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"ok": true})
}

// CatastroRequest is the body of POST /api/catastro.
type CatastroRequest struct {
	Direccion string `json:"direccion"`
}

func (s *Server) catastro(ctx *gin.Context) {
	var req CatastroRequest
	if err := ctx.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Direccion) == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "Falta 'direccion'"})

		return
	}

	report, err := s.lookup.Lookup(req.Direccion)
	if err != nil {
		var unsupported *spatial.UnsupportedGeometryError

		switch {
		case errors.As(err, &unsupported) && report != nil:
			report.Error = err.Error()
			ctx.JSON(http.StatusUnprocessableEntity, report)
		case errors.Is(err, parcela.ErrEmptyAddress):
			ctx.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "Falta 'direccion'"})
		default:
			ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		}

		return
	}

	if !report.Outcome.Resolved() {
		ctx.JSON(http.StatusNotFound, report)

		return
	}

	ctx.JSON(http.StatusOK, report)
}

// AlturasResponse is the answer of GET /api/alturas.
type AlturasResponse struct {
	CodCalle     int                   `json:"cod_calle"`
	Altura       int                   `json:"altura"`
	Radio        int                   `json:"radio"`
	Alternativas []parcela.Alternative `json:"alternativas"`
}

func (s *Server) alturas(ctx *gin.Context) {
	codCalle, err := positiveQuery(ctx, "cod_calle", 0)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	altura, err := positiveQuery(ctx, "altura", 0)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	limit, err := positiveQuery(ctx, "limit", s.options.Limit)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	radius, err := strconv.Atoi(ctx.DefaultQuery("radio", strconv.Itoa(s.options.Radius)))
	if err != nil || radius < 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "radio must be a non-negative integer"})

		return
	}

	radius = min(radius, s.options.MaxRadius)

	alts := s.prober.Probe(codCalle, ctx.Query("calle"), altura, limit, radius)

	ctx.JSON(http.StatusOK, AlturasResponse{
		CodCalle:     codCalle,
		Altura:       altura,
		Radio:        radius,
		Alternativas: alts,
	})
}

func (s *Server) suggestStreets(ctx *gin.Context) {
	q := ctx.Query("q")

	limit, err := positiveQuery(ctx, "limit", usig.DefaultSuggestLimit)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "query": q})

		return
	}

	res, err := s.directory.Suggest(q, s.options.Partido, limit)
	if err != nil {
		ctx.JSON(http.StatusBadGateway, gin.H{
			"error":   "Error consultando USIG normalizar",
			"detalle": err.Error(),
			"query":   strings.TrimSpace(q),
		})

		return
	}

	ctx.JSON(http.StatusOK, res)
}

func (s *Server) datosUtiles(ctx *gin.Context) {
	var (
		data any
		err  error
	)

	x, y := ctx.Query("x"), ctx.Query("y")
	calle, altura := strings.TrimSpace(ctx.Query("calle")), ctx.Query("altura")

	switch {
	case x != "" && y != "":
		fx, errX := strconv.ParseFloat(x, 64)
		fy, errY := strconv.ParseFloat(y, 64)

		if errX != nil || errY != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "x and y must be numbers"})

			return
		}

		data, err = s.directory.DatosUtilesByXY(fx, fy)
	case calle != "" && altura != "":
		n, convErr := strconv.Atoi(altura)
		if convErr != nil || n <= 0 {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "altura must be a positive integer"})

			return
		}

		data, err = s.directory.DatosUtilesByAddress(calle, n)
	default:
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "x and y, or calle and altura, are required"})

		return
	}

	if err != nil {
		status := http.StatusBadGateway
		if usig.IsNotFoundError(err) {
			status = http.StatusNotFound
		}

		ctx.JSON(status, gin.H{"error": "Error consultando datos útiles", "detalle": err.Error()})

		return
	}

	ctx.JSON(http.StatusOK, data)
}

// positiveQuery reads a positive integer query parameter; def is used when the
// parameter is absent, and a zero def makes it required.
func positiveQuery(ctx *gin.Context, name string, def int) (int, error) {
	raw, ok := ctx.GetQuery(name)
	if !ok || raw == "" {
		if def > 0 {
			return def, nil
		}

		return 0, errors.New(name + " is required")
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, errors.New(name + " must be a positive integer")
	}

	return n, nil
}
