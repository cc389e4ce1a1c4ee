package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"vinaudit/internal/server"
	"vinaudit/pkg/logger"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		port    int
		devMode bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Start the HTTP API.

  GET  /api/status          service status
  POST /api/process         upload a vehicle list (multipart "file"), progress as SSE
  GET  /api/download/:token one-shot download of a result file
  GET  /api/runs?limit=N    run history`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// config.toml 显式配置的端口优先
			if port > 0 && !a.info.PortSpecified {
				a.cfg.Server.Port = port
			}
			if devMode {
				a.cfg.Server.DevMode = true
			}

			srv, err := server.NewServer(a.cfg, version, a.logger)
			if err != nil {
				return err
			}
			defer srv.Close()

			addr := fmt.Sprintf(":%d", a.cfg.Server.Port)
			a.logger.Info("vinaudit api starting",
				logger.String("addr", addr),
				logger.String("version", version),
				logger.String("lookup", a.cfg.Lookup.BaseURL),
				logger.Bool("dev", a.cfg.Server.DevMode),
			)
			return srv.Run(cmd.Context(), addr)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "listen port (ignored when config.toml sets server.port)")
	cmd.Flags().BoolVar(&devMode, "dev", false, "development mode (request logging)")
	return cmd
}
