package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tonix-tuft/cliche/internal/config"
)

var (
	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:           "cliche",
	Short:         "Run shell command lines and inspect their results",
	Long:          "cliche runs command lines through the host shell and reports stdout, stderr and exit code.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(viper.New(), cmd.Root().PersistentFlags())
		if err != nil {
			return err
		}
		logger, err = cfg.Logger(os.Stderr)
		return err
	},
}

func init() {
	config.RegisterFlags(rootCmd.PersistentFlags())
}

// exitCodeError makes the process exit with the code of a failed command.
type exitCodeError struct {
	code int
}

func (e *exitCodeError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var exitErr *exitCodeError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
