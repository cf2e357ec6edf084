// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/jcodagnone/parcela/parcela"
	"github.com/spf13/cobra"
)

var resolveFormat string

var resolveCmd = &cobra.Command{
	Use:   "resolve <dirección>",
	Short: "Resuelve una dirección a su SMP, parcela y métricas",
	Long: `Resuelve una dirección de la Ciudad a su SMP recorriendo las estrategias
disponibles (código de calle y altura, coordenadas aproximadas, catastro
informal) y completa el reporte con la parcela, su geometría, superficie,
centroide y celda H3. Si la dirección no se resuelve, sugiere alturas cercanas.

Ejemplos:
  parcela resolve "Av. Directorio 4400"
  parcela resolve --format yaml Davila 1130`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		_, service := newService(cfg)

		report, lookupErr := service.Lookup(strings.Join(args, " "))
		if report != nil {
			if err := writeValue(os.Stdout, resolveFormat, report); err != nil {
				return err
			}
		}

		if lookupErr != nil {
			return lookupErr
		}

		if !report.Outcome.Resolved() {
			return fmt.Errorf("%q: %w", report.Input, parcela.ErrUnresolvedAddress)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(resolveCmd)
	resolveCmd.Flags().StringVarP(&resolveFormat, "format", "f", formatJSON, "Formato de salida: json o yaml")
}
