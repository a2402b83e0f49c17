package linker

import "github.com/asaabey/picorules/internal/model"

// Link populates each rule's References field, builds the cross-ruleblock
// dependency graph from Bind rules (an edge is only added when the bound
// ruleblock is present in the batch — spec.md §3's "present nodes only"
// invariant), and returns the batch reordered into a stable topological
// order (dependencies before dependents, original order preserved
// otherwise). A cycle aborts with a CycleError.
func Link(blocks []model.Ruleblock) ([]model.Ruleblock, *Graph, error) {
	g := NewGraph()
	for _, b := range blocks {
		g.AddNode(b.Name)
	}

	byName := make(map[string]model.Ruleblock, len(blocks))

	for _, b := range blocks {
		for i := range b.Rules {
			r := &b.Rules[i]
			switch r.Kind {
			case model.FetchKind:
				r.References = FetchReferences(r.Predicate)
			case model.ComputeKind:
				var predicates, returns []string
				for _, arm := range r.Conditions {
					if arm.HasPredicate {
						predicates = append(predicates, arm.Predicate)
					}
					returns = append(returns, arm.ReturnValue)
				}
				r.References = ComputeReferences(predicates, returns)
			case model.BindKind:
				r.References = map[string]struct{}{r.SourceVariable: {}}
				if g.HasNode(r.SourceRuleblock) {
					g.AddEdge(b.Name, r.SourceRuleblock)
				}
			}
		}
		byName[b.Name] = b
	}

	order, err := TopologicalSort(g)
	if err != nil {
		return nil, nil, err
	}

	ordered := make([]model.Ruleblock, 0, len(order))
	for _, name := range order {
		ordered = append(ordered, byName[name])
	}

	return ordered, g, nil
}
