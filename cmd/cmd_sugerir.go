// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/jcodagnone/parcela/usig"
	"github.com/spf13/cobra"
)

var sugerirLimit int

var sugerirCmd = &cobra.Command{
	Use:   "sugerir <texto>",
	Short: "Sugiere calles de la Ciudad a partir de un texto parcial",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		client, _ := newService(cfg)

		res, err := client.Suggest(strings.Join(args, " "), cfg.Resolver.Partido, sugerirLimit)
		if err != nil {
			return err
		}

		for _, s := range res.Suggestions {
			fmt.Fprintf(os.Stdout, "%d\t%s\t%s\n", s.CodCalle, s.Tipo, s.Label)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(sugerirCmd)
	sugerirCmd.Flags().IntVar(&sugerirLimit, "limit", usig.DefaultSuggestLimit, "Cantidad máxima de sugerencias")
}
