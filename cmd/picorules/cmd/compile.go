package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/gofrs/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/asaabey/picorules"
)

var (
	subset          []string
	pruneInputs     []string
	pruneOutputs    []string
	includeInactive bool
	withManifest    bool
)

// compileBatch loads the batch from --directory and runs picorules.Compile
// with the flags currently bound on compileCmd. Every invocation is
// tagged with a run id for log correlation, the way the teacher tags its
// per-test schema names with a uuid suffix (sqltest/fixture.go) —
// repurposed here from schema-namespacing to log-correlation, since there
// is no database schema to namespace in this domain.
func compileBatch() (picorules.Result, error) {
	runID := uuid.Must(uuid.NewV4()).String()
	logger := logrus.WithField("run_id", runID)

	blocks, err := LoadBatch(directory)
	if err != nil {
		logger.WithError(err).Error("failed to load ruleblock batch")
		return picorules.Result{}, err
	}
	logger.WithField("ruleblocks", len(blocks)).Info("loaded batch")

	res := picorules.Compile(blocks, picorules.Options{
		Dialect:         dialect,
		IncludeInactive: includeInactive,
		Subset:          subset,
		PruneInputs:     pruneInputs,
		PruneOutputs:    pruneOutputs,
	})

	if !res.Success {
		logger.WithField("errors", len(res.Errors)).Warn("compile failed")
	} else {
		logger.WithField("sql", len(res.Sql)).Info("compile succeeded")
	}
	return res, nil
}

var compileCmd = &cobra.Command{
	Use:   "compile",
	Short: "Compile a ruleblocks.yaml batch and dump the generated SQL to stdout",
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
			for _, e := range res.Errors {
				fmt.Println("error: " + e.Error())
			}
			return errors.New("compilation failed")
		}
		for _, w := range res.Warnings {
			fmt.Println("warning: " + w.Message)
		}
		for _, s := range res.Sql {
			fmt.Println(strings.TrimRight(s, "\n"))
			fmt.Println("===")
		}
		if withManifest && res.Manifest != nil {
			b, err := json.MarshalIndent(res.Manifest, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(b))
		}
		return nil
	},
}

func init() {
	compileCmd.Flags().StringSliceVar(&subset, "subset", nil, "compile only these ruleblocks (case-insensitive)")
	compileCmd.Flags().StringSliceVar(&pruneInputs, "prune-inputs", nil, "keep only descendants of these ruleblocks")
	compileCmd.Flags().StringSliceVar(&pruneOutputs, "prune-outputs", nil, "keep only ancestors of these ruleblocks")
	compileCmd.Flags().BoolVar(&includeInactive, "include-inactive", false, "include ruleblocks marked isActive: false")
	compileCmd.Flags().BoolVar(&withManifest, "manifest", false, "also print the compiled manifest as JSON")
	rootCmd.AddCommand(compileCmd)
}
