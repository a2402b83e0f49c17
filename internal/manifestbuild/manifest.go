// Package manifestbuild assembles the structural description of a
// compilation: dependency graph, execution order, and output-table naming
// per ruleblock.
package manifestbuild

import (
	"github.com/asaabey/picorules/internal/linker"
	"github.com/asaabey/picorules/internal/model"
)

// Entry describes one compiled ruleblock's position, dependencies and
// outputs in the compiled batch.
type Entry struct {
	RuleblockId     string   `json:"ruleblockId"`
	ExecutionOrder  int      `json:"executionOrder"`
	TargetTable     string   `json:"targetTable"`
	Dependencies    []string `json:"dependencies"`
	OutputVariables []string `json:"outputVariables"`
	SqlIndex        int      `json:"sqlIndex"`
}

// Manifest is the top-level structural description of a compiled batch.
type Manifest struct {
	Version          string              `json:"version"`
	Dialect          string              `json:"dialect"`
	CompiledAt       string              `json:"compiledAt"`
	TotalRuleblocks  int                 `json:"totalRuleblocks"`
	Entries          []Entry             `json:"entries"`
	DependencyGraph  map[string][]string `json:"dependencyGraph"`
}

const Version = "1.0.0"

// TargetTableFunc computes a dialect's target table name for a ruleblock
// name; supplied by internal/codegen so this package stays dialect-agnostic.
type TargetTableFunc func(ruleblockName string) string

// Build walks the post-transform ordered list and produces a Manifest.
// graph is the full dependency graph produced by the linker (restricted
// internally to the present, post-transform node set); compiledAt is
// passed in by the caller since the compiler itself has no time source.
func Build(blocks []model.Ruleblock, graph *linker.Graph, dialect string, targetTable TargetTableFunc, compiledAt string) Manifest {
	present := make(map[string]bool, len(blocks))
	for _, b := range blocks {
		present[b.Name] = true
	}

	entries := make([]Entry, 0, len(blocks))
	depGraph := make(map[string][]string, len(blocks))

	for i, b := range blocks {
		deps := graph.DependenciesOf(b.Name)
		filtered := make([]string, 0, len(deps))
		for _, d := range deps {
			if present[d] {
				filtered = append(filtered, d)
			}
		}

		entries = append(entries, Entry{
			RuleblockId:     b.Name,
			ExecutionOrder:  i,
			TargetTable:     targetTable(b.Name),
			Dependencies:    filtered,
			OutputVariables: outputVariables(b),
			SqlIndex:        i,
		})
		depGraph[b.Name] = filtered
	}

	return Manifest{
		Version:         Version,
		Dialect:         dialect,
		CompiledAt:      compiledAt,
		TotalRuleblocks: len(blocks),
		Entries:         entries,
		DependencyGraph: depGraph,
	}
}

func outputVariables(b model.Ruleblock) []string {
	names := make([]string, 0, len(b.Rules))
	for _, r := range b.Rules {
		names = append(names, r.AssignedVariable)
	}
	return names
}
