package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var depCmd = &cobra.Command{
	Use:   "dep",
	Short: "Report the dependency graph and compiled execution order for a batch",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) != 0 {
			_ = cmd.Help()
			return errors.New("too many arguments")
		}

		res, err := compileBatch()
		if err != nil {
			return err
		}
		if !res.Success {
			fmt.Println("Error during compilation:")
			for _, e := range res.Errors {
				fmt.Println("  " + e.Error())
			}
			return nil
		}
		if res.Manifest == nil || len(res.Manifest.Entries) == 0 {
			fmt.Println("No ruleblocks compiled (empty batch, or subset/pruning removed everything)")
			return nil
		}
		for _, e := range res.Manifest.Entries {
			fmt.Printf("%d: %s -> %s\n", e.ExecutionOrder, e.RuleblockId, e.TargetTable)
			if len(e.Dependencies) > 0 {
				fmt.Println("  depends on:")
				for _, d := range e.Dependencies {
					fmt.Println("    " + d)
				}
			}
			if len(e.OutputVariables) > 0 {
				fmt.Println("  outputs: " + fmt.Sprint(e.OutputVariables))
			}
			fmt.Println()
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(depCmd)
}
