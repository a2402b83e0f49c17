package codegen

import (
	"fmt"
	"strings"

	"github.com/asaabey/picorules/internal/model"
)

// fragment is one per-variable unit of SQL: a CTE body (Oracle/PostgreSQL)
// or a SELECT ... INTO body (T-SQL), plus the output column names it
// contributes to the ruleblock's final SELECT list.
type fragment struct {
	VarName string
	Alias   string
	Body    string
	Columns []string
}

// buildFragments walks a ruleblock's rules in source order, producing one
// fragment per rule via the matching Fetch/Compute/Bind builder. Per
// spec.md §4.5's "Ruleblock assembly": fragments are emitted in source-rule
// order, dv-family variables contribute two consecutive columns.
func buildFragments(d dialectSpec, rb model.Ruleblock) ([]fragment, error) {
	frags := make([]fragment, 0, len(rb.Rules))
	for i, rule := range rb.Rules {
		prior := priorVariables(rb, i)
		var body string
		var cols []string
		switch rule.Kind {
		case model.FetchKind:
			b, c, err := BuildFetchFragment(d, rule, prior)
			if err != nil {
				return nil, fmt.Errorf("ruleblock %s: %w", rb.Name, err)
			}
			body, cols = b, c
		case model.ComputeKind:
			expr := BuildComputeFragment(d, rule, prior)
			body = fmt.Sprintf("SELECT eid, %s AS v FROM %s", expr, ComputeFrom(d, "u", prior))
			cols = []string{rule.AssignedVariable}
		case model.BindKind:
			body = BuildBindFragment(d, rule)
			cols = []string{rule.AssignedVariable}
		}
		frags = append(frags, fragment{
			VarName: rule.AssignedVariable,
			Alias:   d.IntermediateAlias(rule.AssignedVariable),
			Body:    body,
			Columns: cols,
		})
	}
	return frags, nil
}

// outputColumn maps one fragment output column name to its final aliased
// form. dv-family fragments carry "v_val"/"v_dt"; everything else carries
// "v".
func outputColumn(frag fragment, col string) (exprCol, outAlias string) {
	if len(frag.Columns) == 2 {
		if col == frag.VarName+"_val" {
			return "v_val", col
		}
		return "v_dt", col
	}
	return "v", col
}

// Generate emits the complete SQL text for one post-transform ruleblock.
func Generate(dialect Dialect, rb model.Ruleblock) (string, error) {
	d := specFor(dialect)
	frags, err := buildFragments(d, rb)
	if err != nil {
		return "", err
	}
	if d.Name == MSSQL {
		return generateSerial(d, rb, frags), nil
	}
	return generateCTE(d, rb, frags), nil
}

func generateCTE(d dialectSpec, rb model.Ruleblock, frags []fragment) string {
	var b strings.Builder
	target := d.TargetTable(rb.Name)

	fmt.Fprintf(&b, "CREATE TABLE %s AS\n", target)
	b.WriteString("WITH UEADV AS (SELECT DISTINCT eid FROM eadv)")
	for _, f := range frags {
		fmt.Fprintf(&b, ",\n%s AS (\n  %s\n)", f.Alias, f.Body)
	}
	b.WriteString("\nSELECT UEADV.eid")
	for _, f := range frags {
		for _, col := range f.Columns {
			exprCol, outAlias := outputColumn(f, col)
			fmt.Fprintf(&b, ",\n  %s.%s AS %s", f.Alias, exprCol, outAlias)
		}
	}
	b.WriteString("\nFROM UEADV")
	for _, f := range frags {
		fmt.Fprintf(&b, "\nLEFT JOIN %s USING (eid)", f.Alias)
	}
	b.WriteString(";\n")
	return b.String()
}

func generateSerial(d dialectSpec, rb model.Ruleblock, frags []fragment) string {
	var b strings.Builder
	target := d.TargetTable(rb.Name)

	fmt.Fprintf(&b, "IF OBJECT_ID('%s') IS NOT NULL DROP TABLE %s;\n", target, target)
	for _, f := range frags {
		fmt.Fprintf(&b, "IF OBJECT_ID('tempdb..%s') IS NOT NULL DROP TABLE %s;\n", f.Alias, f.Alias)
	}
	b.WriteString("SELECT eid INTO #UEADV FROM eadv GROUP BY eid;\n")

	for _, f := range frags {
		fmt.Fprintf(&b, "%s;\n", injectInto(f.Body, f.Alias))
		fmt.Fprintf(&b, "ALTER TABLE %s ADD PRIMARY KEY (eid);\n", f.Alias)
	}

	b.WriteString("SELECT #UEADV.eid")
	for _, f := range frags {
		for _, col := range f.Columns {
			exprCol, outAlias := outputColumn(f, col)
			fmt.Fprintf(&b, ", %s.%s AS %s", f.Alias, exprCol, outAlias)
		}
	}
	fmt.Fprintf(&b, "\nINTO %s\nFROM #UEADV", target)
	for _, f := range frags {
		fmt.Fprintf(&b, "\nLEFT OUTER JOIN %s ON %s.eid = #UEADV.eid", f.Alias, f.Alias)
	}
	b.WriteString(";\n")
	return b.String()
}

// injectInto splices "INTO target" between a SELECT's column list and its
// top-level FROM keyword. Every fragment body has the shape
// "SELECT <collist> FROM <rest>" with only balanced parens inside
// <collist>, so the first " FROM " reached at paren depth zero is the
// fragment's own FROM, never one nested inside a subquery in the column
// list.
func injectInto(sql, target string) string {
	depth := 0
	for i := 0; i+6 <= len(sql); i++ {
		switch sql[i] {
		case '(':
			depth++
		case ')':
			depth--
		}
		if depth == 0 && strings.EqualFold(sql[i:i+6], " FROM ") {
			return sql[:i] + " INTO " + target + sql[i:]
		}
	}
	return sql
}
