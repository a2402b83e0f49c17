package linker

import (
	"testing"

	"github.com/asaabey/picorules/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bindRule(assigned, sourceBlock, sourceVar string) model.Rule {
	return model.Rule{
		Kind:             model.BindKind,
		AssignedVariable: assigned,
		SourceRuleblock:  sourceBlock,
		SourceVariable:   sourceVar,
	}
}

func fetchRule(assigned string) model.Rule {
	return model.Rule{Kind: model.FetchKind, AssignedVariable: assigned, Table: "eadv"}
}

func TestLink_OrdersDependenciesFirst(t *testing.T) {
	blocks := []model.Ruleblock{
		{Name: "rb3", Rules: []model.Rule{bindRule("c", "rb2", "b")}},
		{Name: "rb1", Rules: []model.Rule{fetchRule("a")}},
		{Name: "rb2", Rules: []model.Rule{bindRule("b", "rb1", "a")}},
	}

	ordered, graph, err := Link(blocks)
	require.NoError(t, err)
	require.Len(t, ordered, 3)
	assert.Equal(t, []string{"rb1", "rb2", "rb3"}, []string{ordered[0].Name, ordered[1].Name, ordered[2].Name})
	assert.Equal(t, []string{"rb1"}, graph.DependenciesOf("rb2"))
	assert.Equal(t, []string{"rb2"}, graph.DependenciesOf("rb3"))
}

func TestLink_AbsentBindTargetContributesNoEdge(t *testing.T) {
	blocks := []model.Ruleblock{
		{Name: "rb1", Rules: []model.Rule{bindRule("x", "rb_missing", "y")}},
	}
	ordered, graph, err := Link(blocks)
	require.NoError(t, err)
	require.Len(t, ordered, 1)
	assert.Empty(t, graph.DependenciesOf("rb1"))
}

func TestLink_Cycle(t *testing.T) {
	blocks := []model.Ruleblock{
		{Name: "rb1", Rules: []model.Rule{bindRule("a", "rb2", "b")}},
		{Name: "rb2", Rules: []model.Rule{bindRule("b", "rb1", "a")}},
	}
	_, _, err := Link(blocks)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Circular dependency")
}

func TestLink_ComputeReferencesExcludeStopwords(t *testing.T) {
	blocks := []model.Ruleblock{
		{
			Name: "rb1",
			Rules: []model.Rule{
				fetchRule("egfr_last"),
				{
					Kind:             model.ComputeKind,
					AssignedVariable: "has_ckd",
					Conditions: []model.ComputeArm{
						{HasPredicate: true, Predicate: "egfr_last < 60 and egfr_last!?", ReturnValue: "1"},
						{HasPredicate: false, ReturnValue: "0"},
					},
				},
			},
		},
	}
	ordered, _, err := Link(blocks)
	require.NoError(t, err)
	refs := ordered[0].Rules[1].References
	_, hasEgfr := refs["egfr_last"]
	_, hasAnd := refs["and"]
	assert.True(t, hasEgfr)
	assert.False(t, hasAnd)
}
