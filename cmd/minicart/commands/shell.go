package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/utafrali/minicart/internal/app"
	"github.com/utafrali/minicart/internal/shell"
	"github.com/utafrali/minicart/pkg/logger"
)

// shell: interactive cart on stdin/stdout. Logs go to stderr at warn level
// unless --log-level is given.
func shellCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Use the cart from an interactive terminal session",
		RunE: func(cmd *cobra.Command, args []string) error {
			level := "warn"
			if cmd.Flags().Changed("log-level") {
				level = cfg.LogLevel
			}
			log := logger.NewWithFormat("minicart", level, logger.FormatText, cmd.ErrOrStderr())

			core := app.NewCore(cfg, log)
			defer func() {
				if err := core.Close(); err != nil {
					log.Error("kafka producer close error", slog.String("error", err.Error()))
				}
			}()

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "minicart: digita help per i comandi")
			return shell.New(core.Store, core.Formatter, out).Run(cmd.Context(), cmd.InOrStdin())
		},
	}
	return cmd
}
