// Package transform applies subset filtering and ancestor/descendant
// pruning to a topologically ordered ruleblock list, preserving order.
package transform

import (
	"strings"

	"github.com/asaabey/picorules/internal/linker"
	"github.com/asaabey/picorules/internal/model"
)

func toLowerSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[strings.ToLower(n)] = true
	}
	return set
}

// Subset retains only ruleblocks whose name (case-insensitive) is in
// subset. An empty subset is a no-op.
func Subset(blocks []model.Ruleblock, subset []string) []model.Ruleblock {
	if len(subset) == 0 {
		return blocks
	}
	wanted := toLowerSet(subset)
	out := make([]model.Ruleblock, 0, len(blocks))
	for _, b := range blocks {
		if wanted[strings.ToLower(b.Name)] {
			out = append(out, b)
		}
	}
	return out
}

// closure computes the set of nodes reachable from start by following g's
// edges, including start itself. Names not present in g are ignored.
func closure(g *linker.Graph, start map[string]bool) map[string]bool {
	visited := make(map[string]bool)
	var visit func(name string)
	visit = func(name string) {
		if visited[name] || !g.HasNode(name) {
			return
		}
		visited[name] = true
		for _, dep := range g.DependenciesOf(name) {
			visit(dep)
		}
	}
	for _, n := range g.Nodes() {
		if start[strings.ToLower(n)] {
			visit(n)
		}
	}
	return visited
}

// Ancestors returns Anc(O): the transitive closure over outgoing edges
// from O (including O) — the ruleblocks that O's members depend on.
func Ancestors(g *linker.Graph, outputs []string) map[string]bool {
	return closure(g, toLowerSet(outputs))
}

// Descendants returns Desc(I): the transitive closure over reverse edges
// from I (including I) — the ruleblocks that consume I's members.
func Descendants(g *linker.Graph, inputs []string) map[string]bool {
	return closure(g.Reverse(), toLowerSet(inputs))
}

// Prune applies pruneInputs/pruneOutputs per spec.md §4.4: with only
// outputs given, keep Anc(O); with only inputs given, keep Desc(I); with
// both, keep the intersection; with neither, keep everything.
func Prune(blocks []model.Ruleblock, g *linker.Graph, pruneInputs, pruneOutputs []string) []model.Ruleblock {
	if len(pruneInputs) == 0 && len(pruneOutputs) == 0 {
		return blocks
	}

	var keep map[string]bool
	switch {
	case len(pruneOutputs) > 0 && len(pruneInputs) == 0:
		keep = Ancestors(g, pruneOutputs)
	case len(pruneInputs) > 0 && len(pruneOutputs) == 0:
		keep = Descendants(g, pruneInputs)
	default:
		anc := Ancestors(g, pruneOutputs)
		desc := Descendants(g, pruneInputs)
		keep = make(map[string]bool)
		for name := range anc {
			if desc[name] {
				keep[name] = true
			}
		}
	}

	out := make([]model.Ruleblock, 0, len(blocks))
	for _, b := range blocks {
		if keep[b.Name] {
			out = append(out, b)
		}
	}
	return out
}

// Apply runs Subset then Prune, in the order spec.md §4.4 specifies.
func Apply(blocks []model.Ruleblock, g *linker.Graph, subset, pruneInputs, pruneOutputs []string) []model.Ruleblock {
	blocks = Subset(blocks, subset)
	blocks = Prune(blocks, g, pruneInputs, pruneOutputs)
	return blocks
}
