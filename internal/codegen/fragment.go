package codegen

import (
	"fmt"
	"strings"

	"github.com/asaabey/picorules/internal/model"
)

// priorVariables returns the variable names assigned earlier than index i
// in the ruleblock, in source order.
func priorVariables(rb model.Ruleblock, i int) []string {
	names := make([]string, 0, i)
	for j := 0; j < i; j++ {
		names = append(names, rb.Rules[j].AssignedVariable)
	}
	return names
}

// referencedPriors intersects a rule's References set with the variables
// assigned earlier in the same ruleblock, preserving their source order.
func referencedPriors(rule model.Rule, prior []string) []string {
	if len(rule.References) == 0 {
		return nil
	}
	var out []string
	for _, name := range prior {
		if _, ok := rule.References[name]; ok {
			out = append(out, name)
		}
	}
	return out
}

// innerJoinPriorFragments builds the join fragment bringing a set of
// already-materialised ruleblock variables into scope for a fetch
// predicate, so a predicate referencing them resolves. Per spec.md
// §4.5's "Predicate-with-dependency rule". An INNER join is correct
// here: the predicate only evaluates (and the WHERE clause only
// matches) subjects present in every referenced prior fragment, the
// same semantics a plain JOIN gives.
func innerJoinPriorFragments(d dialectSpec, alias string, priors []string) string {
	if len(priors) == 0 {
		return ""
	}
	var b strings.Builder
	for _, v := range priors {
		fmt.Fprintf(&b, " JOIN %s %s ON %s.eid = %s.eid", d.IntermediateAlias(v), v, v, alias)
	}
	return b.String()
}

// leftJoinPriorFragments builds the same join fragment for a Compute
// fragment's FROM clause, using LEFT JOIN instead of JOIN. The Compute
// CTE starts from UEADV precisely so every subject in the universal set
// survives into the CASE expression; an INNER join here would silently
// drop any subject missing a row in a referenced prior fetch variable
// (the ordinary case a fetch operator like last/count leaves NULL or
// omits), sending it to NULL instead of the rule's own ELSE arm.
func leftJoinPriorFragments(d dialectSpec, alias string, priors []string) string {
	if len(priors) == 0 {
		return ""
	}
	var b strings.Builder
	for _, v := range priors {
		fmt.Fprintf(&b, " LEFT JOIN %s %s ON %s.eid = %s.eid", d.IntermediateAlias(v), v, v, alias)
	}
	return b.String()
}

// BuildFetchContext resolves a Fetch rule's table/filter/predicate/column
// fields into the FetchContext an Operator.Build needs. prior is every
// variable name assigned earlier in the same ruleblock.
func BuildFetchContext(d dialectSpec, rule model.Rule, prior []string) FetchContext {
	ctx := FetchContext{
		VarName:    rule.AssignedVariable,
		Table:      rule.Table,
		AttrFilter: AttributeFilter(d, rule.AttributeList),
		Params:     rule.FunctionParams,
		RawColumn:  RawProperty(rule.Property),
	}
	ctx.NumericColumn = ResolveProperty(d, rule.Property, true)

	if rule.HasPredicate {
		ctx.Predicate = Translate(d, rule.Predicate)
	}

	priors := referencedPriors(rule, prior)
	if len(priors) > 0 {
		ctx.PriorJoinSQL = innerJoinPriorFragments(d, "t", priors)
	}
	return ctx
}

// BuildFetchFragment returns the SELECT body for one Fetch rule and the
// output column names it contributes, via the operator catalogue.
func BuildFetchFragment(d dialectSpec, rule model.Rule, prior []string) (string, []string, error) {
	op, ok := operators[rule.FunctionName]
	if !ok {
		return "", nil, fmt.Errorf("unsupported function name %q", rule.FunctionName)
	}
	ctx := BuildFetchContext(d, rule, prior)
	return op.Build(d, ctx), op.OutputColumns(rule.AssignedVariable), nil
}

// BuildComputeFragment emits the CASE expression for one Compute rule,
// with the ELSE arm (if any) last. It returns the expression only; the
// FROM clause that goes with it is built by ComputeFrom, and prior is not
// consulted here. Per spec.md §4.5's "Compute fragment".
func BuildComputeFragment(d dialectSpec, rule model.Rule, prior []string) string {
	var b strings.Builder
	b.WriteString("CASE")
	var elseArm *model.ComputeArm
	for i := range rule.Conditions {
		arm := rule.Conditions[i]
		if !arm.HasPredicate {
			elseArm = &rule.Conditions[i]
			continue
		}
		fmt.Fprintf(&b, " WHEN %s THEN %s", Translate(d, arm.Predicate), Translate(d, arm.ReturnValue))
	}
	if elseArm != nil {
		fmt.Fprintf(&b, " ELSE %s", Translate(d, elseArm.ReturnValue))
	}
	b.WriteString(" END")
	return b.String()
}

// ComputeFrom builds the FROM clause for a compute fragment: the
// universal subject set left-joined with every prior variable.
func ComputeFrom(d dialectSpec, alias string, prior []string) string {
	return fmt.Sprintf("%s %s%s", d.UEADV, alias, leftJoinPriorFragments(d, alias, prior))
}

// BuildBindFragment selects eid and the source variable, aliased to the
// local name, from the source ruleblock's target table. Per spec.md
// §4.5's "Bind fragment".
func BuildBindFragment(d dialectSpec, rule model.Rule) string {
	return fmt.Sprintf("SELECT eid, %s AS %s FROM %s", rule.SourceVariable, rule.AssignedVariable, d.TargetTable(rule.SourceRuleblock))
}
