package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tonix-tuft/cliche/internal/plan"
)

var validateCmd = &cobra.Command{
	Use:   "validate <plan.yaml>",
	Short: "Validate a plan file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := plan.LoadFile(args[0])
		if err == nil {
			err = plan.Validate(p, nil)
		}
		if err != nil {
			if cfg.JSON {
				_ = json.NewEncoder(os.Stdout).Encode(map[string]any{"valid": false, "error": err.Error()})
			} else {
				fmt.Fprintf(os.Stderr, "Validation failed: %s\n", err)
			}
			return &exitCodeError{code: 1}
		}
		if cfg.JSON {
			return json.NewEncoder(os.Stdout).Encode(map[string]any{"valid": true})
		}
		fmt.Println("Plan is valid.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
