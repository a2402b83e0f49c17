// Package picorules compiles a batch of ruleblocks — a small
// domain-specific rule language for deriving per-subject values from a
// long-format clinical event table — into a topologically ordered
// sequence of dialect-specific SQL statements, plus a manifest
// describing the compiled dependency graph.
//
// Compile is the sole public entry point. It is synchronous, performs no
// I/O, and never panics across its boundary: every failure, fatal or
// not, is returned by value in Result.
package picorules

import (
	"strings"
	"time"

	"github.com/asaabey/picorules/internal/codegen"
	"github.com/asaabey/picorules/internal/lexer"
	"github.com/asaabey/picorules/internal/linker"
	"github.com/asaabey/picorules/internal/manifestbuild"
	"github.com/asaabey/picorules/internal/model"
	"github.com/asaabey/picorules/internal/parser"
	"github.com/asaabey/picorules/internal/transform"
)

// fatal builds a short-circuited Result: success=false, no sql, the
// given errors, and whatever warnings were collected before the failure.
func fatal(errs []Error, warnings []Warning) Result {
	return Result{Success: false, Errors: errs, Warnings: warnings}
}

// Compile runs the full parse -> link -> transform -> generate ->
// manifest pipeline described by spec.md over one batch of ruleblocks.
func Compile(ruleblocks []RuleblockInput, opts Options) Result {
	dialect, errs := validateOptions(opts)
	if len(errs) > 0 {
		return fatal(errs, nil)
	}

	if errs := validateBatch(ruleblocks); len(errs) > 0 {
		return fatal(errs, nil)
	}

	var warnings []Warning
	var parsed []model.Ruleblock

	for _, rb := range ruleblocks {
		warnings = append(warnings, directiveWarnings(rb.Name, rb.Text)...)

		block, perrs := parser.Parse(rb.Name, rb.IsActive, rb.Text)
		if len(perrs) > 0 {
			out := make([]Error, 0, len(perrs))
			for _, e := range perrs {
				out = append(out, Error{Message: e.Message, Ruleblock: e.Ruleblock})
			}
			return fatal(out, warnings)
		}
		parsed = append(parsed, block)
	}

	active := parsed
	if !opts.IncludeInactive {
		active = make([]model.Ruleblock, 0, len(parsed))
		for _, b := range parsed {
			if !b.IsActive {
				warnings = append(warnings, Warning{Ruleblock: b.Name, Message: "ruleblock is inactive and was excluded (includeInactive=false)"})
				continue
			}
			active = append(active, b)
		}
	}

	ordered, graph, err := linker.Link(active)
	if err != nil {
		return fatal([]Error{{Message: err.Error()}}, warnings)
	}

	transformed := transform.Apply(ordered, graph, opts.Subset, opts.PruneInputs, opts.PruneOutputs)

	sql := make([]string, 0, len(transformed))
	for _, rb := range transformed {
		s, err := codegen.Generate(dialect, rb)
		if err != nil {
			return fatal([]Error{{Message: err.Error(), Ruleblock: rb.Name}}, warnings)
		}
		sql = append(sql, s)
	}

	manifest := manifestbuild.Build(
		transformed,
		graph,
		dialect.String(),
		func(name string) string { return codegen.TargetTableName(dialect, name) },
		time.Now().UTC().Format(time.RFC3339),
	)

	return Result{
		Success:  true,
		Sql:      sql,
		Warnings: warnings,
		Manifest: &manifest,
	}
}

// directiveWarnings re-runs the parser's own preprocessing pipeline far
// enough to find segments starting with '#' — compiler directives this
// core does not interpret (spec.md §4.2(vi), §7) — and reports one
// warning per occurrence. It deliberately duplicates parser.Parse's
// splitting rather than having parser.Parse return warnings itself,
// keeping the parser's signature focused on "text in, rules out" for its
// own unit tests.
func directiveWarnings(name, text string) []Warning {
	file := lexer.FileRef(name)
	preprocessed := parser.Preprocess(name, text)
	segments := lexer.SplitTopLevel(file, preprocessed, lexer.SemicolonToken)

	var warnings []Warning
	for _, raw := range segments {
		seg := strings.TrimSpace(raw)
		if strings.HasPrefix(seg, "#") {
			warnings = append(warnings, Warning{Ruleblock: name, Message: "ignored directive: " + seg})
		}
	}
	return warnings
}
