package transform

import (
	"testing"

	"github.com/asaabey/picorules/internal/linker"
	"github.com/asaabey/picorules/internal/model"
	"github.com/stretchr/testify/assert"
)

func blocksNamed(names ...string) []model.Ruleblock {
	out := make([]model.Ruleblock, len(names))
	for i, n := range names {
		out[i] = model.Ruleblock{Name: n}
	}
	return out
}

func names(blocks []model.Ruleblock) []string {
	out := make([]string, len(blocks))
	for i, b := range blocks {
		out[i] = b.Name
	}
	return out
}

func TestSubset_NoOpWhenEmpty(t *testing.T) {
	blocks := blocksNamed("rb1", "rb2")
	assert.Equal(t, blocks, Subset(blocks, nil))
}

func TestSubset_FiltersCaseInsensitively(t *testing.T) {
	blocks := blocksNamed("rb1", "rb2", "rb3")
	got := Subset(blocks, []string{"RB1", "rb3"})
	assert.Equal(t, []string{"rb1", "rb3"}, names(got))
}

// chain: rb1 <- rb2 <- rb3 <- rb4 (rb2 depends on rb1, etc.)
func chainGraph() *linker.Graph {
	g := linker.NewGraph()
	for _, n := range []string{"rb1", "rb2", "rb3", "rb4"} {
		g.AddNode(n)
	}
	g.AddEdge("rb2", "rb1")
	g.AddEdge("rb3", "rb2")
	g.AddEdge("rb4", "rb3")
	return g
}

func TestAncestors_TransitiveClosureOverDependencies(t *testing.T) {
	g := chainGraph()
	anc := Ancestors(g, []string{"rb3"})
	assert.True(t, anc["rb1"])
	assert.True(t, anc["rb2"])
	assert.True(t, anc["rb3"])
	assert.False(t, anc["rb4"])
}

func TestDescendants_TransitiveClosureOverConsumers(t *testing.T) {
	g := chainGraph()
	desc := Descendants(g, []string{"rb2"})
	assert.True(t, desc["rb2"])
	assert.True(t, desc["rb3"])
	assert.True(t, desc["rb4"])
	assert.False(t, desc["rb1"])
}

func TestPrune_OutputsOnlyKeepsAncestors(t *testing.T) {
	g := chainGraph()
	blocks := blocksNamed("rb1", "rb2", "rb3", "rb4")
	got := Prune(blocks, g, nil, []string{"rb3"})
	assert.Equal(t, []string{"rb1", "rb2", "rb3"}, names(got))
}

func TestPrune_InputsOnlyKeepsDescendants(t *testing.T) {
	g := chainGraph()
	blocks := blocksNamed("rb1", "rb2", "rb3", "rb4")
	got := Prune(blocks, g, []string{"rb2"}, nil)
	assert.Equal(t, []string{"rb2", "rb3", "rb4"}, names(got))
}

func TestPrune_BothKeepsIntersection(t *testing.T) {
	g := chainGraph()
	blocks := blocksNamed("rb1", "rb2", "rb3", "rb4")
	got := Prune(blocks, g, []string{"rb1"}, []string{"rb3"})
	assert.Equal(t, []string{"rb1", "rb2", "rb3"}, names(got))
}

func TestPrune_NeitherIsNoOp(t *testing.T) {
	g := chainGraph()
	blocks := blocksNamed("rb1", "rb2", "rb3", "rb4")
	assert.Equal(t, blocks, Prune(blocks, g, nil, nil))
}
