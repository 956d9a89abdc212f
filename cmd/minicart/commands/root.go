package commands

import (
	"context"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/utafrali/minicart/internal/config"
)

var (
	logLevel  string
	logFormat string
	currency  string
	cfg       *config.Config
)

// Execute runs the root command.
func Execute() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return NewRootCommand().ExecuteContext(ctx)
}

// NewRootCommand builds the minicart command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "minicart",
		Short:        "A tiny shop front with an in-memory cart",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(overrides(cmd))
			if err != nil {
				return err
			}
			cfg = loaded
			return nil
		},
	}

	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (env LOG_LEVEL)")
	root.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: json or text (env LOG_FORMAT)")
	root.PersistentFlags().StringVar(&currency, "currency", "", "currency symbol for prices (env CURRENCY_SYMBOL)")

	root.AddCommand(serveCmd(), shellCmd())
	return root
}

// overrides maps flags the user actually set onto their environment names.
func overrides(cmd *cobra.Command) map[string]string {
	out := make(map[string]string)
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		out["LOG_LEVEL"] = logLevel
	}
	if flags.Changed("log-format") {
		out["LOG_FORMAT"] = logFormat
	}
	if flags.Changed("currency") {
		out["CURRENCY_SYMBOL"] = currency
	}
	if flags.Lookup("port") != nil && flags.Changed("port") {
		out["MINICART_HTTP_PORT"] = strconv.Itoa(port)
	}
	if flags.Lookup("kafka") != nil && flags.Changed("kafka") {
		out["KAFKA_ENABLED"] = strconv.FormatBool(kafkaEnabled)
	}
	return out
}
