package picorules

import (
	"fmt"
	"regexp"

	"github.com/asaabey/picorules/internal/codegen"
)

// MaxRuleblockNameLength and MaxRuleblockTextBytes are the size ceilings
// spec.md §4.1 enforces before parsing begins.
const (
	MaxRuleblockNameLength = 100
	MaxRuleblockTextBytes  = 1 << 20 // 1 MiB
)

var nameGrammar = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// validateOptions checks the shape of Options that must hold before the
// pipeline runs at all: a dialect must be named and recognised. Every
// other option is structurally a plain string/slice and has no
// additional grammar to enforce at this stage.
func validateOptions(opts Options) (codegen.Dialect, []Error) {
	if opts.Dialect == "" {
		return 0, []Error{{Message: "options.dialect is required (one of: oracle, mssql, postgresql)"}}
	}
	d, ok := codegen.ParseDialect(opts.Dialect)
	if !ok {
		return 0, []Error{{Message: fmt.Sprintf("unsupported dialect %q (must be one of: oracle, mssql, postgresql)", opts.Dialect)}}
	}
	return d, nil
}

// validateBatch enforces spec.md §3's ruleblock-input invariants: name
// grammar and length, text size ceiling, and batch-wide name uniqueness.
// It does not parse rule text — that is internal/parser's job, run only
// once the batch as a whole is structurally valid.
func validateBatch(blocks []RuleblockInput) []Error {
	var errs []Error
	seen := make(map[string]bool, len(blocks))

	for _, b := range blocks {
		if b.Name == "" || len(b.Name) > MaxRuleblockNameLength || !nameGrammar.MatchString(b.Name) {
			errs = append(errs, Error{
				Ruleblock: b.Name,
				Message:   fmt.Sprintf("ruleblock name %q must match [a-z_][a-z0-9_]* and be 1..%d characters", b.Name, MaxRuleblockNameLength),
			})
			continue
		}
		if seen[b.Name] {
			errs = append(errs, Error{Ruleblock: b.Name, Message: "duplicate ruleblock name in batch"})
			continue
		}
		seen[b.Name] = true

		if len(b.Text) > MaxRuleblockTextBytes {
			errs = append(errs, Error{
				Ruleblock: b.Name,
				Message:   fmt.Sprintf("ruleblock text is %d bytes, exceeding the %d byte ceiling", len(b.Text), MaxRuleblockTextBytes),
			})
		}
	}

	return errs
}
