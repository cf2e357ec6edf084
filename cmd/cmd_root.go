// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/jcodagnone/parcela/config"
	"github.com/jcodagnone/parcela/parcela"
	"github.com/jcodagnone/parcela/usig"
	"github.com/spf13/cobra"
)

type logWriter struct {
	writer io.Writer
}

func (w *logWriter) Write(bytes []byte) (int, error) {
	return fmt.Fprintf(w.writer, "%s %s", time.Now().Format("2006-01-02 15:04:05"), string(bytes))
}

func init() {
	log.SetFlags(0)
	log.SetOutput(&logWriter{writer: os.Stderr})
}

var rootCmd = &cobra.Command{
	Use:   "parcela",
	Short: "parcelas catastrales de la Ciudad de Buenos Aires",
	Long: `
parcela resuelve direcciones de la Ciudad Autónoma de Buenos Aires a su código
SMP (Sección-Manzana-Parcela) usando los servicios públicos de USIG y EPOK, y
calcula superficie y centroide de la parcela.
`,
	SilenceUsage: true,
}

var (
	Version = "dev"

	configFile string
	settings   = config.New()
)

func Execute(version string) {
	Version = version

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// loadConfig merges defaults, the --config file, PARCELA_* variables and flags.
func loadConfig() (*config.Config, error) {
	return config.Load(settings, configFile)
}

// newService wires the upstream client and the lookup service from cfg.
func newService(cfg *config.Config) (*usig.Client, *parcela.Service) {
	client := usig.NewClient(cfg.ClientOptions())

	return client, parcela.NewService(client, cfg.ServiceOptions())
}

// bindFlag makes the flag name of cmd override the configuration key.
func bindFlag(key string, cmd *cobra.Command, name string) {
	flag := cmd.PersistentFlags().Lookup(name)
	if flag == nil {
		flag = cmd.Flags().Lookup(name)
	}

	if err := settings.BindPFlag(key, flag); err != nil {
		log.Fatalf("binding flag %s: %v", name, err)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "Archivo de configuración YAML")
	flags.Bool("trace-http", false, "Display HTTP requests-responses")
	flags.Bool("trace-http-body", false, "Display HTTP requests-responses bodies")
	flags.Duration("timeout", usig.DefaultTimeout, "Timeout de cada llamada a los servicios")
	flags.String("user-agent", "", "User-Agent enviado a los servicios")

	bindFlag("http.trace", rootCmd, "trace-http")
	bindFlag("http.trace_body", rootCmd, "trace-http-body")
	bindFlag("http.timeout", rootCmd, "timeout")
	bindFlag("http.user_agent", rootCmd, "user-agent")
}
