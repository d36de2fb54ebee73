package main

import (
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/siyaamtanzeel/Motoshop/internal/bootstrap"
	"github.com/siyaamtanzeel/Motoshop/internal/logging"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and the payment/status consumers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			log := logging.Init(logging.Options{Component: cfg.App.Name, FilePath: cfg.App.LogFile, Level: cfg.App.LogLevel})
			if envName != "dev" {
				gin.SetMode(gin.ReleaseMode)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			app, err := bootstrap.InitWithConfig(ctx, cfg)
			if err != nil {
				return err
			}
			defer app.Close()

			log.Info("motoshop starting", "env", envName, "addr", cfg.App.HTTPAddr, "version", Version)
			return app.Run(ctx)
		},
	}
}
