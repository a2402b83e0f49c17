package linker

import "github.com/asaabey/picorules/internal/lexer"

// stopWords are excluded from reference extraction over Compute
// expressions: logical connectives, word-spelled comparisons, built-in
// aggregate/operator names, CASE-expression keywords, and literal
// constants. Per spec.md §9 (Open Question 2), dialect-specific scalar
// functions (power, sqrt, stdev, ...) are deliberately *not* in this set:
// the original behaviour lets them leak into References. The leak is
// harmless here: dependency edges come from Bind rules' SourceRuleblock,
// not from References, and the generator only consults References
// intersected with variable names assigned earlier in the same ruleblock
// (codegen's referencedPriors), which drops any spurious entry.
var stopWords = map[string]bool{
	"and": true, "or": true, "not": true,
	"is": true, "like": true, "between": true, "in": true,
	"case": true, "when": true, "then": true, "else": true, "end": true,
	"null": true, "true": true, "false": true, "sysdate": true,

	// built-in aggregate / operator names from the operator catalogue
	"last": true, "first": true, "count": true, "sum": true, "avg": true,
	"min": true, "max": true, "median": true, "distinct_count": true,
	"nth": true, "lastdv": true, "firstdv": true, "maxldv": true,
	"minldv": true, "minfdv": true, "max_neg_delta_dv": true,
	"serialize": true, "serialize2": true, "serializedv": true,
	"serializedv2": true, "regr_slope": true, "regr_intercept": true,
	"regr_r2": true, "exists": true, "stats_mode": true,
	"temporal_regularity": true,
}

// eventTableColumns are never variable references in a Fetch predicate.
var eventTableColumns = map[string]bool{
	"eid": true, "att": true, "dt": true, "val": true, "loc": true,
}

// ExtractIdentifiers returns every identifier token in text, in order of
// first appearance, using the lexer's identifier recognition.
func ExtractIdentifiers(text string) []string {
	var out []string
	seen := make(map[string]bool)
	s := lexer.NewScanner("expr", text)
	for {
		tt := s.NextToken()
		if tt == lexer.EOFToken {
			break
		}
		if tt != lexer.IdentifierToken {
			continue
		}
		tok := s.Token()
		if seen[tok] {
			continue
		}
		seen[tok] = true
		out = append(out, tok)
	}
	return out
}

// ComputeReferences returns the free variables referenced by a Compute
// rule's predicates and return values, excluding stopWords.
func ComputeReferences(predicates, returnValues []string) map[string]struct{} {
	refs := make(map[string]struct{})
	for _, text := range predicates {
		for _, ident := range ExtractIdentifiers(text) {
			if !stopWords[ident] {
				refs[ident] = struct{}{}
			}
		}
	}
	for _, text := range returnValues {
		for _, ident := range ExtractIdentifiers(text) {
			if !stopWords[ident] {
				refs[ident] = struct{}{}
			}
		}
	}
	return refs
}

// FetchReferences returns the free variables referenced by a Fetch rule's
// predicate, excluding event-table columns.
func FetchReferences(predicate string) map[string]struct{} {
	refs := make(map[string]struct{})
	for _, ident := range ExtractIdentifiers(predicate) {
		if !eventTableColumns[ident] && !stopWords[ident] {
			refs[ident] = struct{}{}
		}
	}
	return refs
}
