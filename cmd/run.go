package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tonix-tuft/cliche/internal/engine"
	"github.com/tonix-tuft/cliche/internal/plan"
)

var (
	runInputs  []string
	runApprove bool
)

var runCmd = &cobra.Command{
	Use:   "run <plan.yaml>",
	Short: "Execute a plan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := plan.LoadFile(args[0])
		if err != nil {
			return err
		}
		inputs := parseInputs(runInputs)
		applyDefaults(p, inputs)
		if err := plan.Validate(p, inputs); err != nil {
			return err
		}

		ctx := engine.NewRunContext(workDir(), inputs, runApprove, newExecutor())
		ctx.Logger = logger
		result, err := engine.Execute(p, ctx, engine.ModeRun)
		if err != nil {
			return err
		}

		if cfg.JSON {
			if err := json.NewEncoder(os.Stdout).Encode(result); err != nil {
				return err
			}
		} else {
			printRunResult(p, result)
		}
		if !result.Success {
			return &exitCodeError{code: 1}
		}
		return nil
	},
}

func printRunResult(p *plan.Plan, result *engine.Result) {
	for _, sr := range result.Steps {
		fmt.Printf("Step: %s [%s]", sr.ID, sr.Status)
		if sr.Status == engine.StatusSuccess || sr.Status == engine.StatusFailed {
			fmt.Printf(" exit=%d %s", sr.ExitCode, sr.Duration)
		}
		fmt.Println()
		if sr.Stdout != "" {
			fmt.Printf("  %s\n", sr.Stdout)
		}
	}
	fmt.Println()
	if result.Success {
		fmt.Printf("Plan %q completed successfully.\n", p.Name)
	} else {
		fmt.Printf("Plan %q failed at step %q.\n", p.Name, result.FailedStepID)
	}
	for _, e := range result.Errors {
		fmt.Printf("  Error: %s\n", e.Message)
		if e.Hint != "" {
			fmt.Printf("  Hint: %s\n", e.Hint)
		}
	}
	fmt.Printf("Run ID: %s\n", result.RunID)
}

func init() {
	runCmd.Flags().StringArrayVar(&runInputs, "input", nil, "Input values (key=value)")
	runCmd.Flags().BoolVar(&runApprove, "approve", false, "Allow destructive steps")
	rootCmd.AddCommand(runCmd)
}
