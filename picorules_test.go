package picorules

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// S1: smoke test, Oracle.
func TestCompile_S1_SmokeOracle(t *testing.T) {
	res := Compile([]RuleblockInput{
		{Name: "ckd", IsActive: true, Text: "egfr_last => eadv.lab_bld_egfr.val.last(); has_ckd : {egfr_last < 60 => 1}, {=> 0};"},
	}, Options{Dialect: "oracle"})

	require.True(t, res.Success, "%+v", res.Errors)
	require.Len(t, res.Sql, 1)
	sql := res.Sql[0]
	assert.Contains(t, sql, "CREATE TABLE ROUT_CKD AS")
	assert.Contains(t, sql, "WITH")
	assert.Contains(t, sql, "UEADV AS")
	assert.Contains(t, sql, "SQ_EGFR_LAST")
	assert.Contains(t, sql, "SQ_HAS_CKD")
	assert.Contains(t, sql, "USING (eid)")
}

// S2: cross-block ordering, T-SQL.
func TestCompile_S2_CrossBlockOrderingMssql(t *testing.T) {
	res := Compile([]RuleblockInput{
		{Name: "rb3", IsActive: true, Text: "c => rout_rb2.b.val.bind();"},
		{Name: "rb1", IsActive: true, Text: "a => eadv.att1.val.last();"},
		{Name: "rb2", IsActive: true, Text: "b => rout_rb1.a.val.bind();"},
	}, Options{Dialect: "mssql"})

	require.True(t, res.Success, "%+v", res.Errors)
	require.Len(t, res.Sql, 3)
	assert.Contains(t, res.Sql[0], "SROUT_rb1")
	assert.Contains(t, res.Sql[1], "SROUT_rb2")
	assert.Contains(t, res.Sql[2], "SROUT_rb3")
}

// S3: cycle detection.
func TestCompile_S3_Cycle(t *testing.T) {
	res := Compile([]RuleblockInput{
		{Name: "rb1", IsActive: true, Text: "a => rout_rb2.b.val.bind();"},
		{Name: "rb2", IsActive: true, Text: "b => rout_rb1.a.val.bind();"},
	}, Options{Dialect: "mssql"})

	require.False(t, res.Success)
	require.Len(t, res.Errors, 1)
	assert.True(t, strings.HasPrefix(res.Errors[0].Message, "Circular dependency"), res.Errors[0].Message)
	assert.Empty(t, res.Sql)
}

// S4: path pruning.
func TestCompile_S4_PathPruning(t *testing.T) {
	blocks := []RuleblockInput{
		{Name: "a", IsActive: true, Text: "x => eadv.att1.val.last();"},
		{Name: "b", IsActive: true, Text: "y => rout_a.x.val.bind();"},
		{Name: "c", IsActive: true, Text: "z => rout_b.y.val.bind();"},
		{Name: "d", IsActive: true, Text: "w => rout_c.z.val.bind();"},
		{Name: "unrelated", IsActive: true, Text: "q => eadv.att2.val.last();"},
	}

	res := Compile(blocks, Options{
		Dialect:      "mssql",
		PruneInputs:  []string{"b"},
		PruneOutputs: []string{"d"},
	})

	require.True(t, res.Success, "%+v", res.Errors)
	require.Len(t, res.Manifest.Entries, 3)
	var got []string
	for _, e := range res.Manifest.Entries {
		got = append(got, e.RuleblockId)
	}
	assert.Equal(t, []string{"b", "c", "d"}, got)
}

// S5: dv-family, PostgreSQL.
func TestCompile_S5_DvFamilyPostgres(t *testing.T) {
	res := Compile([]RuleblockInput{
		{Name: "g", IsActive: true, Text: "acr_max => eadv.lab_ua_acr._.maxldv();"},
	}, Options{Dialect: "postgresql"})

	require.True(t, res.Success, "%+v", res.Errors)
	require.Len(t, res.Sql, 1)
	sql := res.Sql[0]
	assert.Contains(t, sql, "acr_max_val")
	assert.Contains(t, sql, "acr_max_dt")
	assert.False(t, regexp.MustCompile(`\bacr_max\b`).MatchString(sql), "expected no bare acr_max column, got: %s", sql)
	assert.Contains(t, sql, "CREATE TABLE rout_g AS")
}

// S6: nested-paren function parameter, T-SQL.
func TestCompile_S6_NestedParenParameterMssql(t *testing.T) {
	res := Compile([]RuleblockInput{
		{Name: "h", IsActive: true, Text: "acr_graph => eadv.lab_ua_acr.val.serializedv2(round(val,0)~dt);"},
	}, Options{Dialect: "mssql"})

	require.True(t, res.Success, "%+v", res.Errors)
	require.Len(t, res.Sql, 1)
	sql := res.Sql[0]
	assert.Contains(t, sql, "STRING_AGG")
}

func TestCompile_UnknownDialectIsFatal(t *testing.T) {
	res := Compile([]RuleblockInput{
		{Name: "a", IsActive: true, Text: "x => eadv.att.val.last();"},
	}, Options{Dialect: "db2"})

	require.False(t, res.Success)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0].Message, "unsupported dialect")
}

func TestCompile_InvalidRuleblockNameIsFatal(t *testing.T) {
	res := Compile([]RuleblockInput{
		{Name: "Bad-Name", IsActive: true, Text: "x => eadv.att.val.last();"},
	}, Options{Dialect: "oracle"})

	require.False(t, res.Success)
	require.Len(t, res.Errors, 1)
}

func TestCompile_OversizedTextIsFatal(t *testing.T) {
	res := Compile([]RuleblockInput{
		{Name: "huge", IsActive: true, Text: strings.Repeat("a", MaxRuleblockTextBytes+1)},
	}, Options{Dialect: "oracle"})

	require.False(t, res.Success)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0].Message, "exceeding")
}

func TestCompile_EmptySubsetIsAllRuleblocks(t *testing.T) {
	res := Compile([]RuleblockInput{
		{Name: "a", IsActive: true, Text: "x => eadv.att.val.last();"},
		{Name: "b", IsActive: true, Text: "y => eadv.att2.val.last();"},
	}, Options{Dialect: "oracle"})

	require.True(t, res.Success, "%+v", res.Errors)
	assert.Len(t, res.Sql, 2)
}

func TestCompile_SubsetCaseInsensitive(t *testing.T) {
	res := Compile([]RuleblockInput{
		{Name: "a", IsActive: true, Text: "x => eadv.att.val.last();"},
		{Name: "b", IsActive: true, Text: "y => eadv.att2.val.last();"},
	}, Options{Dialect: "oracle", Subset: []string{"A"}})

	require.True(t, res.Success, "%+v", res.Errors)
	require.Len(t, res.Sql, 1)
	assert.Len(t, res.Manifest.Entries, 1)
	assert.Equal(t, "a", res.Manifest.Entries[0].RuleblockId)
}

func TestCompile_InactiveRuleblockExcludedByDefault(t *testing.T) {
	res := Compile([]RuleblockInput{
		{Name: "a", IsActive: false, Text: "x => eadv.att.val.last();"},
	}, Options{Dialect: "oracle"})

	require.True(t, res.Success, "%+v", res.Errors)
	assert.Empty(t, res.Sql)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0].Message, "inactive")
}

func TestCompile_InactiveRuleblockIncludedWhenRequested(t *testing.T) {
	res := Compile([]RuleblockInput{
		{Name: "a", IsActive: false, Text: "x => eadv.att.val.last();"},
	}, Options{Dialect: "oracle", IncludeInactive: true})

	require.True(t, res.Success, "%+v", res.Errors)
	assert.Len(t, res.Sql, 1)
}

func TestCompile_DirectiveIsWarningNotError(t *testing.T) {
	res := Compile([]RuleblockInput{
		{Name: "a", IsActive: true, Text: "# some directive\nx => eadv.att.val.last();"},
	}, Options{Dialect: "oracle"})

	require.True(t, res.Success, "%+v", res.Errors)
	require.Len(t, res.Sql, 1)
	found := false
	for _, w := range res.Warnings {
		if strings.Contains(w.Message, "ignored directive") {
			found = true
		}
	}
	assert.True(t, found)
}

func TestCompile_ManifestRoundTripInvariants(t *testing.T) {
	res := Compile([]RuleblockInput{
		{Name: "rb1", IsActive: true, Text: "a => eadv.att1.val.last();"},
		{Name: "rb2", IsActive: true, Text: "b => rout_rb1.a.val.bind();"},
	}, Options{Dialect: "postgresql"})

	require.True(t, res.Success, "%+v", res.Errors)
	require.Equal(t, len(res.Sql), len(res.Manifest.Entries))
	for i, e := range res.Manifest.Entries {
		assert.Equal(t, i, e.SqlIndex)
		assert.Equal(t, i, e.ExecutionOrder)
	}
	assert.Empty(t, res.Manifest.Entries[0].Dependencies)
	assert.Equal(t, []string{"rb1"}, res.Manifest.Entries[1].Dependencies)
}
