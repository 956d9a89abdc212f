package commands

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/utafrali/minicart/internal/app"
	"github.com/utafrali/minicart/pkg/logger"
)

var (
	port         int
	kafkaEnabled bool
)

// serve: run the HTTP shop front until SIGINT or SIGTERM.
func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the shop page and JSON API over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.NewWithFormat("minicart", cfg.LogLevel, cfg.LogFormat, os.Stdout)
			log.Info("starting minicart",
				slog.String("environment", cfg.Environment),
				slog.Int("http_port", cfg.HTTPPort),
				slog.Bool("kafka_enabled", cfg.KafkaEnabled),
				slog.Bool("otel_enabled", cfg.OTELEnabled),
			)

			application, err := app.NewApp(cfg, log)
			if err != nil {
				log.Error("failed to initialize application", slog.String("error", err.Error()))
				return err
			}

			if err := application.Run(cmd.Context()); err != nil {
				log.Error("application error", slog.String("error", err.Error()))
				return err
			}

			log.Info("minicart stopped")
			return nil
		},
	}
	cmd.Flags().IntVar(&port, "port", 8080, "HTTP port (env MINICART_HTTP_PORT)")
	cmd.Flags().BoolVar(&kafkaEnabled, "kafka", false, "publish cart.updated events (env KAFKA_ENABLED)")
	return cmd
}
