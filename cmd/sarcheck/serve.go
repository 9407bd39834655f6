package main

import (
	"github.com/spf13/cobra"

	"github.com/ersonp/sarcheck/internal/domain/services"
	"github.com/ersonp/sarcheck/internal/infrastructure/config"
	"github.com/ersonp/sarcheck/internal/infrastructure/httpapi"
)

func newServeCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the compliance engine over HTTP",
		Long:  "Exposes extraction, checking, diffing, remediation prompts and export as a JSON API.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(func(cfg *config.Config, rules *services.RuleSet) error {
				serverCfg := cfg.Server
				if port != 0 {
					serverCfg.Port = port
				}
				return httpapi.NewServer(serverCfg, rules).ListenAndServe(cmd.Context())
			})
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default: server.port from config)")

	return cmd
}
