package linker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildGraph(edges map[string][]string, nodeOrder []string) *Graph {
	g := NewGraph()
	for _, n := range nodeOrder {
		g.AddNode(n)
	}
	for _, from := range nodeOrder {
		for _, to := range edges[from] {
			g.AddEdge(from, to)
		}
	}
	return g
}

func TestTopologicalSort_HappyDay(t *testing.T) {
	g := buildGraph(map[string][]string{
		"b": {"c"},
		"a": {"b", "c"},
		"d": {"a"},
	}, []string{"c", "b", "a", "d"})

	order, err := TopologicalSort(g)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b", "a", "d"}, order)
}

func TestTopologicalSort_PreservesInputOrderForUnrelated(t *testing.T) {
	g := buildGraph(map[string][]string{}, []string{"rb1", "rb2", "rb3"})
	order, err := TopologicalSort(g)
	require.NoError(t, err)
	assert.Equal(t, []string{"rb1", "rb2", "rb3"}, order)
}

func TestTopologicalSort_Cycle(t *testing.T) {
	g := buildGraph(map[string][]string{
		"a": {"b"},
		"b": {"c"},
		"c": {"a"},
	}, []string{"a", "b", "c"})

	_, err := TopologicalSort(g)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Circular dependency")
	var cycleErr CycleError
	require.ErrorAs(t, err, &cycleErr)
	assert.Equal(t, []string{"a", "b", "c", "a"}, cycleErr.Path)
}
