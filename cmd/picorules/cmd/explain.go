package cmd

import (
	"errors"
	"fmt"

	"github.com/alecthomas/repr"
	"github.com/spf13/cobra"

	"github.com/asaabey/picorules/internal/parser"
)

// explainCmd dumps the parsed rule structure of a single ruleblock using
// repr, the way the teacher's sqltest/querydump.go dumps *sql.Rows with
// repr — retargeted here at an in-memory parsed structure, since there is
// no live database row to query in this domain.
var explainCmd = &cobra.Command{
	Use:   "explain <ruleblock-name>",
	Short: "Dump the parsed rule structure of one ruleblock in ruleblocks.yaml",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			_ = cmd.Help()
			return errors.New("need to specify argument <ruleblock-name>")
		}
		name := args[0]

		blocks, err := LoadBatch(directory)
		if err != nil {
			return err
		}

		for _, b := range blocks {
			if b.Name != name {
				continue
			}
			rb, errs := parser.Parse(b.Name, b.IsActive, b.Text)
			for _, e := range errs {
				fmt.Println("parse error: " + e.Error())
			}
			repr.Println(rb)
			return nil
		}
		return fmt.Errorf("ruleblock %q not found in %s/ruleblocks.yaml", name, directory)
	},
}

func init() {
	rootCmd.AddCommand(explainCmd)
}
