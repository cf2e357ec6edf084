// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"github.com/gin-gonic/gin"
	"github.com/jcodagnone/parcela/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Expone la búsqueda como API JSON local",
	Long: `Levanta un servidor HTTP con las rutas:

  GET  /health
  POST /api/catastro         {"direccion": "..."}
  GET  /api/alturas          ?cod_calle=&altura=&calle=&limit=&radio=
  GET  /api/datos-utiles     ?x=&y= o ?calle=&altura=
  GET  /autocomplete/calles  ?q=&limit=`,
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		gin.SetMode(cfg.Server.GinMode)

		client, service := newService(cfg)

		return server.NewServer(service, service.Prober(), client, &server.Options{
			Addr:      cfg.Server.Addr,
			Partido:   cfg.Resolver.Partido,
			Limit:     cfg.Prober.Limit,
			Radius:    cfg.ClampRadius(cfg.Prober.Radius),
			MaxRadius: cfg.Prober.MaxRadius,
		}).Run()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Dirección donde escuchar, por ejemplo 127.0.0.1:8000")
	bindFlag("server.addr", serveCmd, "addr")
}
