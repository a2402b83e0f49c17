package codegen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asaabey/picorules/internal/model"
)

func lastRule(varName, table string) model.Rule {
	return model.Rule{
		Kind:             model.FetchKind,
		AssignedVariable: varName,
		Table:            table,
		Property:         "_",
		FunctionName:     "last",
	}
}

func TestGenerate_CTEDialectsJoinUsingEid(t *testing.T) {
	rb := model.Ruleblock{
		Name:  "ckd",
		Rules: []model.Rule{lastRule("egfr", "labs")},
	}

	for _, d := range []Dialect{Oracle, PostgreSQL} {
		sql, err := Generate(d, rb)
		require.NoError(t, err)
		assert.Contains(t, sql, "LEFT JOIN SQ_EGFR USING (eid)")
		assert.NotContains(t, sql, "= UEADV.eid")
		assert.Contains(t, sql, "WITH UEADV AS (SELECT DISTINCT eid FROM eadv)")
	}
}

func TestGenerate_CTETargetTableNamePerDialect(t *testing.T) {
	rb := model.Ruleblock{
		Name:  "ckd",
		Rules: []model.Rule{lastRule("egfr", "labs")},
	}

	oracleSQL, err := Generate(Oracle, rb)
	require.NoError(t, err)
	assert.Contains(t, oracleSQL, "CREATE TABLE ROUT_CKD AS")

	pgSQL, err := Generate(PostgreSQL, rb)
	require.NoError(t, err)
	assert.Contains(t, pgSQL, "CREATE TABLE rout_ckd AS")
}

func TestGenerate_MSSQLSerialScriptShape(t *testing.T) {
	rb := model.Ruleblock{
		Name:  "ckd",
		Rules: []model.Rule{lastRule("egfr", "labs")},
	}
	sql, err := Generate(MSSQL, rb)
	require.NoError(t, err)

	assert.Contains(t, sql, "IF OBJECT_ID('SROUT_ckd') IS NOT NULL DROP TABLE SROUT_ckd;")
	assert.Contains(t, sql, "SELECT eid INTO #UEADV FROM eadv GROUP BY eid;")
	assert.Contains(t, sql, "INTO #SQ_egfr")
	assert.Contains(t, sql, "ALTER TABLE #SQ_egfr ADD PRIMARY KEY (eid);")
	assert.Contains(t, sql, "INTO SROUT_ckd")
	assert.Contains(t, sql, "LEFT OUTER JOIN #SQ_egfr ON #SQ_egfr.eid = #UEADV.eid")
}

func TestGenerate_DvFunctionContributesTwoColumns(t *testing.T) {
	rb := model.Ruleblock{
		Name: "ckd",
		Rules: []model.Rule{
			{
				Kind:             model.FetchKind,
				AssignedVariable: "egfr",
				Table:            "labs",
				Property:         "_",
				FunctionName:     "lastdv",
			},
		},
	}
	sql, err := Generate(Oracle, rb)
	require.NoError(t, err)
	assert.Contains(t, sql, "AS egfr_val")
	assert.Contains(t, sql, "AS egfr_dt")
}

func TestGenerate_UnsupportedFunctionNameErrors(t *testing.T) {
	rb := model.Ruleblock{
		Name: "ckd",
		Rules: []model.Rule{
			{
				Kind:             model.FetchKind,
				AssignedVariable: "egfr",
				Table:            "labs",
				Property:         "_",
				FunctionName:     "bogus_fn",
			},
		},
	}
	_, err := Generate(Oracle, rb)
	assert.Error(t, err)
}

func TestInjectInto_SplicesAtTopLevelFromOnly(t *testing.T) {
	got := injectInto("SELECT eid, (SELECT 1 FROM dual) AS v FROM labs WHERE 1=1", "#SQ_X")
	assert.Equal(t, "SELECT eid, (SELECT 1 FROM dual) AS v INTO #SQ_X FROM labs WHERE 1=1", got)
}
