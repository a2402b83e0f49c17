package linker

import "strings"

// CycleError reports a dependency cycle as the arrow-joined sequence of
// ruleblock names that form it. Its Error() message is required by
// spec.md §4.3 to begin with the literal prefix "Circular dependency".
type CycleError struct {
	Path []string
}

func (e CycleError) Error() string {
	return "Circular dependency: " + strings.Join(e.Path, " -> ")
}

// TopologicalSort performs a depth-first, white/grey/black colouring walk
// over g, visiting each node's dependencies before the node itself
// (reverse postorder), so that for any edge A -> B ("A depends on B"), B
// precedes A in the result. Nodes are visited in g.Nodes() insertion
// order, and a node already placed is skipped, which is what keeps
// unrelated nodes in their original input order (spec.md §4.3, §9).
//
// Grounded on sqlparser/sqldocument.TopologicalSort's visiting/visited
// boolean-array design; extended to reconstruct and report the offending
// cycle path rather than a bare sentinel error, per spec.md §4.3's
// requirement that the message name the cycle.
func TopologicalSort(g *Graph) ([]string, error) {
	visiting := make(map[string]bool, len(g.nodes))
	visited := make(map[string]bool, len(g.nodes))
	var order []string
	var path []string

	var visit func(name string) error
	visit = func(name string) error {
		if visited[name] {
			return nil
		}
		if visiting[name] {
			idx := 0
			for i, p := range path {
				if p == name {
					idx = i
					break
				}
			}
			cycle := append(append([]string{}, path[idx:]...), name)
			return CycleError{Path: cycle}
		}

		visiting[name] = true
		path = append(path, name)

		for _, dep := range g.DependenciesOf(name) {
			if err := visit(dep); err != nil {
				return err
			}
		}

		path = path[:len(path)-1]
		visiting[name] = false
		visited[name] = true
		order = append(order, name)
		return nil
	}

	for _, n := range g.Nodes() {
		if err := visit(n); err != nil {
			return nil, err
		}
	}

	return order, nil
}
