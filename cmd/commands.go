package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tonix-tuft/cliche/command"
)

var commandsCmd = &cobra.Command{
	Use:   "commands",
	Short: "List command names usable as {{cmd.<name>}} in plans",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		all := command.All()
		if cfg.JSON {
			names := make([]string, len(all))
			for i, p := range all {
				names[i] = p.String()
			}
			return json.NewEncoder(os.Stdout).Encode(names)
		}
		for _, p := range all {
			fmt.Printf("{{cmd.%s}}\t%s\n", p, p)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(commandsCmd)
}
