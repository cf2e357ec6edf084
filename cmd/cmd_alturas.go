// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/jcodagnone/parcela/parcela"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

type alturasOptions struct {
	codCalle int
	calle    string
	altura   int
	limit    int
	radius   int
	format   string
}

var alturasOpts = &alturasOptions{}

var alturasCmd = &cobra.Command{
	Use:   "alturas",
	Short: "Busca parcelas en alturas cercanas a una dirección",
	Long: `Consulta el catastro en las alturas alrededor de la indicada, la más cercana
primero, hasta encontrar --limit parcelas o agotar --radio.

Ejemplo:
  parcela alturas --cod-calle 17036 --calle DAVILA --altura 1131`,
	RunE: func(_ *cobra.Command, _ []string) error {
		if alturasOpts.codCalle <= 0 || alturasOpts.altura <= 0 {
			return errors.New("--cod-calle and --altura must be positive")
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		_, service := newService(cfg)
		prober := service.Prober()

		radius := cfg.ClampRadius(alturasOpts.radius)
		if radius != alturasOpts.radius {
			fmt.Fprintf(os.Stderr, "radio limitado a %d\n", radius)
		}

		if isTerminal(os.Stderr) {
			bar := progressbar.NewOptions(len(parcela.ProbeOffsets(alturasOpts.altura, radius)),
				progressbar.OptionSetDescription("Consultando alturas"),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)
			prober.OnProbe = func(_ int, _ bool) {
				_ = bar.Add(1)
			}

			defer func() { _ = bar.Finish() }()
		}

		alts := prober.Probe(alturasOpts.codCalle, alturasOpts.calle, alturasOpts.altura, alturasOpts.limit, radius)

		return writeValue(os.Stdout, alturasOpts.format, alts)
	},
}

func init() {
	rootCmd.AddCommand(alturasCmd)

	flags := alturasCmd.Flags()
	flags.IntVar(&alturasOpts.codCalle, "cod-calle", 0, "Código de calle USIG")
	flags.StringVar(&alturasOpts.calle, "calle", "", "Nombre de la calle, para armar las direcciones sugeridas")
	flags.IntVar(&alturasOpts.altura, "altura", 0, "Altura de referencia")
	flags.IntVar(&alturasOpts.limit, "limit", parcela.DefaultProbeLimit, "Cantidad máxima de alternativas")
	flags.IntVar(&alturasOpts.radius, "radio", parcela.DefaultProbeRadius, "Distancia máxima, en números, a la altura de referencia")
	flags.StringVarP(&alturasOpts.format, "format", "f", formatJSON, "Formato de salida: json o yaml")
}
