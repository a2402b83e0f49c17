// Package model defines the parsed representation of picorules rule text:
// the three rule shapes (Fetch, Compute, Bind) as a tagged union, and the
// ruleblock that groups them.
package model

import "github.com/asaabey/picorules/internal/lexer"

// Kind discriminates the three rule shapes. A tagged-union struct (rather
// than an interface with three implementations) keeps the ~20-operator
// generator dispatch and the linker's reference-extraction pass both able
// to switch on a plain field instead of a type assertion.
type Kind int

const (
	FetchKind Kind = iota
	ComputeKind
	BindKind
)

func (k Kind) String() string {
	switch k {
	case FetchKind:
		return "fetch"
	case ComputeKind:
		return "compute"
	case BindKind:
		return "bind"
	default:
		return "unknown"
	}
}

// ComputeArm is one `{predicate => value}` arm of a Compute rule. An arm
// with HasPredicate == false is the ELSE arm; at most one may appear, and
// it must be last if present.
type ComputeArm struct {
	Predicate    string
	HasPredicate bool
	ReturnValue  string
}

// Rule is one parsed statement: exactly one of the Fetch/Compute/Bind
// field groups is meaningful, selected by Kind.
type Rule struct {
	Kind Kind
	Pos  lexer.Pos

	AssignedVariable string

	// References is the set of free variable names this rule uses,
	// populated by the linker (internal/linker), not the parser.
	References map[string]struct{}

	// Fetch fields.
	Table          string
	AttributeList  []string
	Property       string
	FunctionName   string
	FunctionParams []string
	Predicate      string
	HasPredicate   bool

	// Compute fields.
	Conditions []ComputeArm

	// Bind fields.
	SourceRuleblock string
	SourceVariable  string
}

// IsDvFunction reports whether this fetch rule's operator produces two
// output columns (`<var>_val`, `<var>_dt`) rather than one.
func (r Rule) IsDvFunction() bool {
	if r.Kind != FetchKind {
		return false
	}
	switch r.FunctionName {
	case "lastdv", "firstdv", "maxldv", "minldv", "minfdv", "max_neg_delta_dv":
		return true
	default:
		return false
	}
}

// Ruleblock is one parsed unit of rule source text.
type Ruleblock struct {
	Name     string
	IsActive bool
	Rules    []Rule
}

// VariableNames returns the assigned variable names in source order.
func (rb Ruleblock) VariableNames() []string {
	names := make([]string, 0, len(rb.Rules))
	for _, r := range rb.Rules {
		names = append(names, r.AssignedVariable)
	}
	return names
}

// RuleByVariable finds the rule assigning the given variable name, if any.
func (rb Ruleblock) RuleByVariable(name string) (Rule, bool) {
	for _, r := range rb.Rules {
		if r.AssignedVariable == name {
			return r, true
		}
	}
	return Rule{}, false
}
