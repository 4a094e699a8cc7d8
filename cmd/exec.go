package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/tonix-tuft/cliche/executor"
	"github.com/tonix-tuft/cliche/internal/artifact"
	dagerrors "github.com/tonix-tuft/cliche/internal/errors"
)

var execSave bool

// execOutput is printed by `cliche exec --json`.
type execOutput struct {
	Stdout   string              `json:"stdout"`
	Stderr   string              `json:"stderr"`
	ExitCode int                 `json:"exitCode"`
	Error    *dagerrors.RunError `json:"error,omitempty"`
	Saved    string              `json:"saved,omitempty"`
}

var execCmd = &cobra.Command{
	Use:   "exec <command line>",
	Short: "Execute a single command line",
	Long: `Execute a single command line through the host shell.

The arguments are joined with spaces and passed to the shell as-is, so quote
pipes and redirects: cliche exec 'echo A | grep -E A'`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		line := strings.Join(args, " ")
		ex := newExecutor()

		stdout, execErr := ex.Execute(line)
		out := execOutput{Stdout: stdout}
		if execErr != nil {
			// On failure the diagnostics come from the accessors.
			out.Stdout, _ = ex.LastStdout()
			out.Error = dagerrors.FromExecError("", execErr)
		}
		out.Stderr, _ = ex.LastStderr()
		out.ExitCode, _ = ex.LastExitCode()

		if execSave {
			dir, err := saveExecution(ex)
			if err != nil {
				return err
			}
			out.Saved = dir
		}

		if cfg.JSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(out); err != nil {
				return err
			}
		} else {
			if out.Stdout != "" {
				fmt.Fprintln(os.Stdout, out.Stdout)
			}
			if out.Stderr != "" {
				fmt.Fprintln(os.Stderr, out.Stderr)
			}
			if out.Saved != "" {
				fmt.Fprintf(os.Stderr, "Saved to %s\n", out.Saved)
			}
		}

		if execErr != nil {
			if executor.KindOf(execErr) == executor.KindNonZeroExit {
				return &exitCodeError{code: out.ExitCode}
			}
			if cfg.JSON {
				return &exitCodeError{code: 1}
			}
			return execErr
		}
		return nil
	},
}

func saveExecution(ex *executor.ProcExecutor) (string, error) {
	last, err := ex.Last()
	if err != nil {
		return "", err
	}
	store, err := artifact.New(uuid.New().String(), workDir())
	if err != nil {
		return "", err
	}
	if err := store.WriteStepOutput("exec", last.Stdout, last.Stderr); err != nil {
		return "", err
	}
	if err := store.WriteResult(last); err != nil {
		return "", err
	}
	return store.BaseDir, nil
}

func init() {
	execCmd.Flags().BoolVar(&execSave, "save", false, "Save stdout, stderr and result under .cliche/runs")
	rootCmd.AddCommand(execCmd)
}
