package codegen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAttributeFilter_Empty(t *testing.T) {
	assert.Equal(t, "", AttributeFilter(oracleSpec, nil))
}

func TestAttributeFilter_SingleLiteral(t *testing.T) {
	assert.Equal(t, "att = 'egfr'", AttributeFilter(oracleSpec, []string{"egfr"}))
}

func TestAttributeFilter_SingleWildcard(t *testing.T) {
	assert.Equal(t, "att LIKE 'lab_%'", AttributeFilter(postgresSpec, []string{"lab_%"}))
}

func TestAttributeFilter_WildcardEscapesUnderscoreOnMssql(t *testing.T) {
	got := AttributeFilter(mssqlSpec, []string{"lab_%"})
	assert.Equal(t, `att LIKE 'lab\_%' ESCAPE '\'`, got)
}

func TestAttributeFilter_MultipleMixedWrapsInParens(t *testing.T) {
	got := AttributeFilter(oracleSpec, []string{"egfr", "lab_%"})
	assert.Equal(t, "(att = 'egfr' OR att LIKE 'lab_%')", got)
}

func TestResolveProperty_SentinelResolvesToVal(t *testing.T) {
	assert.Equal(t, "val", RawProperty("_"))
}

func TestResolveProperty_DtNeverCastNumeric(t *testing.T) {
	assert.Equal(t, "dt", ResolveProperty(mssqlSpec, "dt", true))
}

func TestResolveProperty_NumericContextCasts(t *testing.T) {
	assert.Equal(t, "CAST(val AS FLOAT)", ResolveProperty(mssqlSpec, "_", true))
	assert.Equal(t, "val::numeric", ResolveProperty(postgresSpec, "_", true))
	assert.Equal(t, "val", ResolveProperty(oracleSpec, "_", true))
}

func TestResolveProperty_StringContextCasts(t *testing.T) {
	assert.Equal(t, "CAST(val AS VARCHAR(1000))", ResolveProperty(mssqlSpec, "_", false))
	assert.Equal(t, "val::text", ResolveProperty(postgresSpec, "_", false))
}
