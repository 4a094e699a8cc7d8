package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tonix-tuft/cliche/executor"
	"github.com/tonix-tuft/cliche/internal/engine"
	"github.com/tonix-tuft/cliche/internal/plan"
)

var dryRunInputs []string

var dryRunCmd = &cobra.Command{
	Use:   "dry-run <plan.yaml>",
	Short: "Show the resolved command lines without running them",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := plan.LoadFile(args[0])
		if err != nil {
			return err
		}
		inputs := parseInputs(dryRunInputs)
		applyDefaults(p, inputs)
		if err := plan.Validate(p, inputs); err != nil {
			return err
		}

		// Dry runs never reach the executor; the mock guards that.
		ctx := engine.NewRunContext(workDir(), inputs, true, executor.NewMockExecutor())
		ctx.Logger = logger
		result, err := engine.Execute(p, ctx, engine.ModeDryRun)
		if err != nil {
			return err
		}

		if cfg.JSON {
			return json.NewEncoder(os.Stdout).Encode(result)
		}

		fmt.Printf("Dry-run: %s\n", p.Name)
		if p.Description != "" {
			fmt.Printf("  %s\n", p.Description)
		}
		fmt.Println()
		for i, sr := range result.Steps {
			fmt.Printf("Step: %s\n", sr.ID)
			if sr.Description != "" {
				fmt.Printf("  Description: %s\n", sr.Description)
			}
			fmt.Printf("  Would run: %s\n", sr.Command)
			if p.Steps[i].Destructive {
				fmt.Println("  Destructive: requires --approve")
			}
			fmt.Println()
		}
		return nil
	},
}

func init() {
	dryRunCmd.Flags().StringArrayVar(&dryRunInputs, "input", nil, "Input values (key=value)")
	rootCmd.AddCommand(dryRunCmd)
}
