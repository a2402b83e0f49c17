package picorules

import (
	"strconv"

	"github.com/asaabey/picorules/internal/manifestbuild"
)

// Manifest and ManifestEntry are re-exported at the package boundary so
// callers never need to import internal/manifestbuild directly.
type Manifest = manifestbuild.Manifest
type ManifestEntry = manifestbuild.Entry

// RuleblockInput is one named unit of rule source text supplied to
// Compile. Name must match the grammar `[a-z_][a-z0-9_]*`, 1..100 chars;
// Text is bounded to 1 MiB (see validate.go). IsActive defaults to true
// when the caller omits it at the surface (YAML/CLI) layer; the zero
// value here is false, so callers constructing RuleblockInput directly
// must set it explicitly.
type RuleblockInput struct {
	Name     string
	Text     string
	IsActive bool
}

// Options controls one Compile invocation. Dialect is the only required
// field; everything else is a no-op at its zero value.
type Options struct {
	// Dialect selects the SQL target: "oracle", "mssql", or "postgresql".
	Dialect string

	// IncludeInactive, when false (the default), drops ruleblocks whose
	// IsActive is false after parsing but before linking. Such
	// ruleblocks are still parsed (a syntax error in an inactive
	// ruleblock is still reported), but contribute no node to the
	// dependency graph and no emitted SQL.
	IncludeInactive bool

	// Subset, if non-empty, retains only ruleblocks whose name
	// (case-insensitive) appears in this list.
	Subset []string

	// PruneInputs retains the transitive descendants (consumers) of the
	// named ruleblocks, including the named ruleblocks themselves.
	PruneInputs []string

	// PruneOutputs retains the transitive ancestors (dependencies) of the
	// named ruleblocks, including the named ruleblocks themselves.
	PruneOutputs []string

	// StaticSysdate is reserved: it overrides the textual rendering of
	// `sysdate` in generated SQL (e.g. to pin a compile to a fixed date
	// for golden-file testing). Not yet consulted by the generator.
	StaticSysdate string
}

// Error is one compilation failure. Ruleblock is populated when the
// failure can be attributed to one ruleblock (a validation, parse or
// generation failure) and is left empty for batch-level failures (an
// unknown dialect, a cycle spanning several ruleblocks). Compile does not
// track source lines, so Line is always 0 in the errors it returns.
type Error struct {
	Message   string
	Ruleblock string
	Line      int
}

func (e Error) Error() string {
	switch {
	case e.Ruleblock != "" && e.Line > 0:
		return e.Ruleblock + ":" + strconv.Itoa(e.Line) + ": " + e.Message
	case e.Ruleblock != "":
		return e.Ruleblock + ": " + e.Message
	default:
		return e.Message
	}
}

// Warning is a non-fatal diagnostic: something the compiler noticed but
// did not need to stop for (an ignored `#` directive, an inactive
// ruleblock skipped by default).
type Warning struct {
	Message   string
	Ruleblock string
}

// Metrics is reserved for caller-supplied timing instrumentation.
// Compile itself performs no timing (spec.md's compiler core treats
// timing instrumentation as an external collaborator's concern); a
// caller wrapping Compile may populate and attach its own Metrics to
// whatever it does with Result.
type Metrics struct {
	ElapsedMs int64
}

// Result is the outcome of one Compile call: either a complete, ordered
// SQL program per surviving ruleblock plus its Manifest, or a non-empty
// Errors list and an empty Sql/Manifest.
type Result struct {
	Success  bool
	Sql      []string
	Errors   []Error
	Warnings []Warning
	Metrics  *Metrics
	Manifest *Manifest
}

