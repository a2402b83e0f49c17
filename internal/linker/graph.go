// Package linker builds the cross-ruleblock dependency graph, detects
// cycles, and produces a stable topological order — generalised from the
// teacher's single-namespace "CREATE statement depends on CREATE
// statement" graph (sqlparser/sqldocument/topological_sort.go) to
// picorules' "ruleblock binds another ruleblock's output table" graph.
package linker

// Graph is a directed graph of ruleblock names. An edge A -> B means "A
// depends on B" (A contains a Bind rule targeting B). Insertion order is
// preserved for both nodes and each node's edge list, since spec.md
// requires that ruleblocks with no ordering relation keep their original
// input order in the compiled output.
type Graph struct {
	nodes   []string
	nodeSet map[string]bool
	edges   map[string][]string
	edgeSet map[string]map[string]bool
}

func NewGraph() *Graph {
	return &Graph{
		nodeSet: make(map[string]bool),
		edges:   make(map[string][]string),
		edgeSet: make(map[string]map[string]bool),
	}
}

func (g *Graph) AddNode(name string) {
	if g.nodeSet[name] {
		return
	}
	g.nodeSet[name] = true
	g.nodes = append(g.nodes, name)
}

func (g *Graph) HasNode(name string) bool {
	return g.nodeSet[name]
}

// AddEdge records that `from` depends on `to`. Both nodes must already be
// present; duplicate edges are ignored.
func (g *Graph) AddEdge(from, to string) {
	if g.edgeSet[from] == nil {
		g.edgeSet[from] = make(map[string]bool)
	}
	if g.edgeSet[from][to] {
		return
	}
	g.edgeSet[from][to] = true
	g.edges[from] = append(g.edges[from], to)
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []string {
	return g.nodes
}

// DependenciesOf returns the (present) nodes that `name` depends on, in
// insertion order.
func (g *Graph) DependenciesOf(name string) []string {
	return g.edges[name]
}

// Reverse returns a graph with every edge flipped: an edge A -> B in g
// becomes B -> A in the result. Used by the transformer to compute
// descendant closures (consumers of a set of inputs).
func (g *Graph) Reverse() *Graph {
	r := NewGraph()
	for _, n := range g.nodes {
		r.AddNode(n)
	}
	for _, from := range g.nodes {
		for _, to := range g.edges[from] {
			r.AddEdge(to, from)
		}
	}
	return r
}
