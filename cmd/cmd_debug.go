// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jcodagnone/parcela/parcela"
	"github.com/jcodagnone/parcela/spatial"
	"github.com/jcodagnone/parcela/utils/textutils"
	"github.com/spf13/cobra"
)

var debugCmd = &cobra.Command{
	Use:   "debug",
	Short: "Dev tools",
}

var debugSRID int

var debugGeometriaCmd = &cobra.Command{
	Use:   "geometria <smp | archivo.geojson>",
	Short: "Calcula superficie y centroide de una parcela",
	Long: `Descarga la geometría de la parcela identificada por su SMP, o lee un archivo
GeoJSON local si el argumento termina en .json o .geojson, y muestra su tipo,
superficie y centroide.

Ejemplos:
  parcela debug geometria 045-123-004
  parcela debug geometria ./parcela.geojson`,
	Args: cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		geojson, err := loadGeometry(args[0])
		if err != nil {
			return err
		}

		m, err := spatial.ComputeMetrics(geojson)
		if err != nil {
			return err
		}

		fmt.Printf("tipo\t\t%s\n", m.Kind)
		fmt.Printf("superficie\t%s\n", textutils.FormatArea(m.Area))

		if m.Centroid != nil {
			fmt.Printf("centroide\t%s\n", m.Centroid)
		} else {
			fmt.Printf("centroide\t-\n")
		}

		return nil
	},
}

func loadGeometry(arg string) (any, error) {
	if isGeoJSONFile(arg) {
		b, err := os.ReadFile(arg)
		if err != nil {
			return nil, err
		}

		var v any
		if err := json.Unmarshal(b, &v); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", arg, err)
		}

		return v, nil
	}

	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	client, _ := newService(cfg)

	srid := debugSRID
	if srid <= 0 {
		srid = cfg.Resolver.GeometrySRID
	}

	return client.GeometriaBySMP(arg, srid)
}

func isGeoJSONFile(arg string) bool {
	return strings.HasSuffix(arg, ".json") || strings.HasSuffix(arg, ".geojson")
}

var debugSMPCmd = &cobra.Command{
	Use:   "smp [file]",
	Short: "Busca el primer SMP dentro de un documento JSON",
	Long: `Lee un documento JSON desde un archivo o desde la entrada estándar y muestra
el primer valor con forma de SMP que encuentra recorriendo su estructura.

Ejemplo:
  curl -s 'https://epok.buenosaires.gob.ar/catastro/parcela/?codigo_calle=17036&altura=1130' | parcela debug smp`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		var r io.Reader

		if len(args) > 0 {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("error opening file: %w", err)
			}
			defer f.Close()

			r = f
		} else {
			r = os.Stdin
			if isTerminal(os.Stdin) {
				fmt.Fprintln(os.Stderr, "Ingrese un documento JSON, terminando con Ctrl-D…")
			}
		}

		var v any
		if err := json.NewDecoder(r).Decode(&v); err != nil {
			return fmt.Errorf("error decoding json: %w", err)
		}

		smp, ok := parcela.FindSMP(v)
		if !ok {
			return errors.New("no SMP found")
		}

		fmt.Println(smp)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(debugCmd)
	debugCmd.AddCommand(debugGeometriaCmd)
	debugCmd.AddCommand(debugSMPCmd)
	debugGeometriaCmd.Flags().IntVar(&debugSRID, "srid", 0, "SRID pedido al servicio de geometría; por defecto resolver.geometry_srid")
}
