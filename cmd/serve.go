package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kass/capital-routes/internal/config"
	"github.com/kass/capital-routes/internal/server"
	"github.com/kass/capital-routes/pkg/geoindex"
	"github.com/kass/capital-routes/pkg/style"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve routes, capitals and legend over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		index, err := loadIndex(ctx)
		if err != nil {
			// the API still answers, with no capitals
			zap.L().Error("capital data unavailable, serving an empty dataset", zap.Error(err))
			index = geoindex.New(nil)
		}

		dataset, err := newDataset(index, "", resolveTheme(""))
		if err != nil {
			return err
		}
		if _, err := dataset.RoutesFromOrigin(); err != nil {
			zap.L().Warn("initial routes incomplete", zap.Error(err))
		}

		srv := server.New(dataset, server.Options{
			CORSOrigins: cfg.Server.CORSOrigins,
			OnThemeChange: func(theme style.Theme) {
				if err := config.SaveTheme(cfg.Routes.StateFile, theme); err != nil {
					zap.L().Warn("theme not saved", zap.Error(err))
				}
			},
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}
		return srv.ListenAndServe(ctx, fmt.Sprintf(":%d", port))
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
