// Package cmd wires the picorules library to a small cobra CLI, the way
// cli/cmd wires sqlcode's library to its own command tree: flags in,
// Compile (or a batch-loading helper) called, results dumped to stdout.
// No business logic lives here.
package cmd

import (
	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:          "picorules",
		Short:        "picorules",
		SilenceUsage: true,
		Long:         `CLI for compiling picorules ruleblock batches to dialect-specific SQL. See SPEC_FULL.md.`,
	}

	directory string
	dialect   string
)

// Execute executes the root command.
func Execute() error {
	rootCmd.PersistentFlags().StringVarP(&directory, "directory", "d", ".", "directory to scan for a ruleblocks.yaml batch file")
	rootCmd.PersistentFlags().StringVar(&dialect, "dialect", "postgresql", "target SQL dialect: oracle, mssql, or postgresql")
	return rootCmd.Execute()
}
