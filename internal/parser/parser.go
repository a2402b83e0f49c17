// Package parser turns one ruleblock's raw rule text into an ordered
// []model.Rule, following the three fixed statement shapes (Fetch,
// Compute, Bind).
package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/asaabey/picorules/internal/lexer"
	"github.com/asaabey/picorules/internal/model"
)

// Error is a structured parse failure: which ruleblock, and why.
type Error struct {
	Message   string
	Ruleblock string
}

func (e Error) Error() string {
	if e.Ruleblock == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Ruleblock, e.Message)
}

func errf(ruleblock, format string, args ...interface{}) Error {
	return Error{Message: fmt.Sprintf(format, args...), Ruleblock: ruleblock}
}

var identRe = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

var fetchHeadRe = regexp.MustCompile(
	`^([A-Za-z_][A-Za-z0-9_]*)\s*=>\s*([A-Za-z_][A-Za-z0-9_]*)\.(\[[^\]]*\]|[A-Za-z0-9_%]+)\.(_|[A-Za-z_][A-Za-z0-9_]*)\.([A-Za-z_][A-Za-z0-9_]*)\(`)

var bindRe = regexp.MustCompile(
	`^([A-Za-z_][A-Za-z0-9_]*)\s*=>\s*rout_([A-Za-z_][A-Za-z0-9_]*)\.([A-Za-z_][A-Za-z0-9_]*)\.([A-Za-z_][A-Za-z0-9_]*)\.bind\(\)\s*$`)

// Preprocess runs the substitution/comment-strip/bracket-normalize/
// whitespace-collapse pipeline that precedes statement splitting.
func Preprocess(name, text string) string {
	file := lexer.FileRef(name)
	out := strings.ReplaceAll(text, "[[rb_id]]", name)
	out = lexer.StripComments(file, out)
	out = lexer.NormalizeBrackets(file, out)
	out = lexer.CollapseWhitespace(out)
	return out
}

// Parse parses one ruleblock's text into a model.Ruleblock. Parse errors
// are collected and returned alongside whatever rules parsed cleanly, so
// callers can report every failure in the ruleblock rather than just the
// first.
func Parse(name string, isActive bool, text string) (model.Ruleblock, []Error) {
	rb := model.Ruleblock{Name: name, IsActive: isActive}
	var errs []Error

	file := lexer.FileRef(name)
	preprocessed := Preprocess(name, text)
	segments := lexer.SplitTopLevel(file, preprocessed, lexer.SemicolonToken)

	for _, raw := range segments {
		seg := strings.TrimSpace(raw)
		if seg == "" || strings.HasPrefix(seg, "#") {
			continue
		}

		hasArrow := strings.Contains(seg, "=>")
		hasColon := strings.Contains(seg, ":")
		hasBind := strings.Contains(seg, ".bind()")

		switch {
		case hasArrow && !hasColon && hasBind:
			rule, err := parseBind(name, seg)
			if err != nil {
				errs = append(errs, *err)
				continue
			}
			rb.Rules = append(rb.Rules, rule)
		case hasArrow && !hasColon:
			rule, err := parseFetch(name, file, seg)
			if err != nil {
				errs = append(errs, *err)
				continue
			}
			rb.Rules = append(rb.Rules, rule)
		case hasColon:
			rule, err := parseCompute(name, seg)
			if err != nil {
				errs = append(errs, *err)
				continue
			}
			rb.Rules = append(rb.Rules, rule)
		default:
			// Matches no recognised shape; silently dropped, per the
			// observed behaviour this port preserves.
		}
	}

	return rb, errs
}

func parseFetch(ruleblock string, file lexer.FileRef, seg string) (model.Rule, *Error) {
	loc := fetchHeadRe.FindStringSubmatchIndex(seg)
	if loc == nil {
		e := errf(ruleblock, "invalid fetch: %q does not match name => table.attr.property.function(...)", seg)
		return model.Rule{}, &e
	}
	group := func(n int) string { return seg[loc[2*n]:loc[2*n+1]] }
	assigned := group(1)
	table := group(2)
	attrSpec := group(3)
	property := group(4)
	funcName := group(5)

	afterParen := seg[loc[1]:]
	params, rest, ok := lexer.ExtractBalanced(afterParen, '(', ')')
	if !ok {
		e := errf(ruleblock, "invalid fetch: unbalanced parameter list in %q", seg)
		return model.Rule{}, &e
	}

	rest = strings.TrimSpace(rest)
	var predicate string
	var hasPredicate bool
	if rest != "" {
		const wherePrefix = ".where("
		if !strings.HasPrefix(rest, wherePrefix) {
			e := errf(ruleblock, "invalid fetch: unexpected trailer %q in %q", rest, seg)
			return model.Rule{}, &e
		}
		inner, tail, ok := lexer.ExtractBalanced(rest[len(wherePrefix):], '(', ')')
		if !ok || strings.TrimSpace(tail) != "" {
			e := errf(ruleblock, "invalid fetch: malformed .where(...) in %q", seg)
			return model.Rule{}, &e
		}
		predicate = strings.TrimSpace(inner)
		hasPredicate = true
	}

	var attrs []string
	if strings.HasPrefix(attrSpec, "[") {
		inner := strings.TrimSuffix(strings.TrimPrefix(attrSpec, "["), "]")
		for _, a := range strings.Split(inner, ",") {
			a = strings.TrimSpace(a)
			if a != "" {
				attrs = append(attrs, a)
			}
		}
	} else {
		attrs = []string{attrSpec}
	}

	return model.Rule{
		Kind:             model.FetchKind,
		AssignedVariable: assigned,
		Table:            table,
		AttributeList:    attrs,
		Property:         property,
		FunctionName:     funcName,
		FunctionParams:   lexer.SplitArgsAtDepthZero(file, params),
		Predicate:        predicate,
		HasPredicate:     hasPredicate,
	}, nil
}

func parseBind(ruleblock, seg string) (model.Rule, *Error) {
	m := bindRe.FindStringSubmatch(seg)
	if m == nil {
		e := errf(ruleblock, "invalid bind: %q does not match name => rout_<block>.<var>.<prop>.bind()", seg)
		return model.Rule{}, &e
	}
	return model.Rule{
		Kind:             model.BindKind,
		AssignedVariable: m[1],
		SourceRuleblock:  m[2],
		SourceVariable:   m[3],
		Property:         m[4],
	}, nil
}

func parseCompute(ruleblock, seg string) (model.Rule, *Error) {
	idx := strings.Index(seg, ":")
	if idx < 0 {
		e := errf(ruleblock, "invalid compute: missing ':' in %q", seg)
		return model.Rule{}, &e
	}
	assigned := strings.TrimSpace(seg[:idx])
	if !identRe.MatchString(assigned) {
		e := errf(ruleblock, "invalid compute: %q is not a valid variable name", assigned)
		return model.Rule{}, &e
	}

	groups := splitBraceGroups(seg[idx+1:])
	if len(groups) == 0 {
		e := errf(ruleblock, "invalid compute: no {predicate => value} arms in %q", seg)
		return model.Rule{}, &e
	}

	arms := make([]model.ComputeArm, 0, len(groups))
	for i, g := range groups {
		pred, val, ok := splitArrowTopLevel(g)
		if !ok {
			e := errf(ruleblock, "invalid compute: arm %q is missing '=>'", g)
			return model.Rule{}, &e
		}
		pred = strings.TrimSpace(pred)
		val = strings.TrimSpace(val)
		hasPred := pred != ""
		if !hasPred && i != len(groups)-1 {
			e := errf(ruleblock, "invalid compute: ELSE arm must be last in %q", seg)
			return model.Rule{}, &e
		}
		arms = append(arms, model.ComputeArm{Predicate: pred, HasPredicate: hasPred, ReturnValue: val})
	}

	return model.Rule{
		Kind:             model.ComputeKind,
		AssignedVariable: assigned,
		Conditions:       arms,
	}, nil
}

// splitBraceGroups returns the trimmed content of each top-level {...}
// span in s, in order. Text outside the spans (separating commas and
// whitespace) is ignored.
func splitBraceGroups(s string) []string {
	var out []string
	depth := 0
	start := 0
	inBacktick := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '`':
			inBacktick = !inBacktick
		case inBacktick:
		case c == '{':
			if depth == 0 {
				start = i + 1
			}
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				out = append(out, s[start:i])
			}
		}
	}
	return out
}

// splitArrowTopLevel splits on the first "=>" that occurs at paren depth
// zero and outside a backtick string.
func splitArrowTopLevel(s string) (left, right string, ok bool) {
	depth := 0
	inBacktick := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '`':
			inBacktick = !inBacktick
		case inBacktick:
		case c == '(':
			depth++
		case c == ')':
			depth--
		case depth == 0 && c == '=' && i+1 < len(s) && s[i+1] == '>':
			return s[:i], s[i+2:], true
		}
	}
	return "", "", false
}
