package codegen

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/asaabey/picorules/internal/lexer"
)

// dateVarPattern matches a date-typed identifier: the literal column dt,
// or a variable ending in _dt, _dt_min, _dt_max, _fd or _ld.
const dateVarPattern = `[A-Za-z_][A-Za-z0-9_]*_dt(?:_min|_max)?|[A-Za-z_][A-Za-z0-9_]*_fd|[A-Za-z_][A-Za-z0-9_]*_ld|dt`

var (
	backtickRe       = regexp.MustCompile("`([^`]*)`")
	sysdateDiffRe    = regexp.MustCompile(`\bsysdate\s*-\s*(` + dateVarPattern + `)\b`)
	sysdateAddRe     = regexp.MustCompile(`\bsysdate\s*([+-])\s*(\d+)\b`)
	sysdateRe        = regexp.MustCompile(`\bsysdate\b`)
	dateVarDiffRe    = regexp.MustCompile(`\b(` + dateVarPattern + `)\s*-\s*(` + dateVarPattern + `)\b`)
	dateVarAddRe     = regexp.MustCompile(`\b(` + dateVarPattern + `)\s*([+-])\s*(\d+)\b`)
	lowerBoundRe     = regexp.MustCompile(`\blower__bound__dt\b`)
	upperBoundRe     = regexp.MustCompile(`\bupper__bound__dt\b`)
	ceilRe           = regexp.MustCompile(`\bceil\(`)
	notNullAfterRe   = regexp.MustCompile(`([A-Za-z_][A-Za-z0-9_]*|\))!\?`)
	isNullAfterRe    = regexp.MustCompile(`([A-Za-z_][A-Za-z0-9_]*|\))\?`)
)

// Translate converts one Picorules expression fragment (a predicate or a
// compute return value) to dialect SQL text. Rewrites run in a fixed
// order — the date-arithmetic rewrites involving sysdate must precede
// the generic sysdate substitution, and the null-test rewrites must run
// after every rewrite that changes identifiers or calls has settled
// identifier boundaries (only the concatenation-operator rewrite, which
// touches neither, runs after them).
func Translate(d dialectSpec, expr string) string {
	if strings.TrimSpace(expr) == "." {
		return "1=1"
	}

	s := expr
	s = backtickRe.ReplaceAllString(s, "'$1'")
	s = rewriteSysdateArithmetic(d, s)
	s = sysdateRe.ReplaceAllString(s, d.CurrentDate)
	s = rewriteDateVarDiff(d, s)
	s = rewriteDateVarArithmetic(d, s)
	s = rewriteLeastGreatestDate(d, s)
	s = rewriteLeastGreatest(s)
	s = lowerBoundRe.ReplaceAllString(s, "'0001-01-01'")
	s = upperBoundRe.ReplaceAllString(s, "'9999-12-31'")
	s = rewriteNvl(d, s)
	s = rewriteToNumber(d, s)
	s = rewriteToChar(d, s)
	s = rewriteCeil(d, s)
	s = rewriteSubstr(d, s)
	s = rewriteNullTests(s)
	s = rewriteConcat(d, s)
	return s
}

func rewriteSysdateArithmetic(d dialectSpec, s string) string {
	s = sysdateDiffRe.ReplaceAllStringFunc(s, func(m string) string {
		sub := sysdateDiffRe.FindStringSubmatch(m)
		return d.DateDiff(d.CurrentDate, sub[1])
	})
	s = sysdateAddRe.ReplaceAllStringFunc(s, func(m string) string {
		sub := sysdateAddRe.FindStringSubmatch(m)
		days := sub[2]
		if sub[1] == "-" {
			days = "-" + days
		}
		return d.DateAdd(d.CurrentDate, days)
	})
	return s
}

func rewriteDateVarDiff(d dialectSpec, s string) string {
	return dateVarDiffRe.ReplaceAllStringFunc(s, func(m string) string {
		sub := dateVarDiffRe.FindStringSubmatch(m)
		return d.DateDiff(sub[1], sub[2])
	})
}

func rewriteDateVarArithmetic(d dialectSpec, s string) string {
	return dateVarAddRe.ReplaceAllStringFunc(s, func(m string) string {
		sub := dateVarAddRe.FindStringSubmatch(m)
		days := sub[3]
		if sub[2] == "-" {
			days = "-" + days
		}
		return d.DateAdd(sub[1], days)
	})
}

// rewriteCalls finds every top-level call to name(...) in s and replaces
// it with build(args), where args is the comma-split argument list
// (respecting nested parens). Repeats until no more calls are found, so
// nested renamed calls (e.g. a least() inside a least_date()) resolve
// inside-out is not guaranteed — callers needing that order should chain
// separate passes, as Translate does.
func rewriteCalls(s, name string, build func(args []string) string) string {
	re := regexp.MustCompile(`\b` + regexp.QuoteMeta(name) + `\(`)
	for {
		loc := re.FindStringIndex(s)
		if loc == nil {
			return s
		}
		inner, rest, ok := lexer.ExtractBalanced(s[loc[1]:], '(', ')')
		if !ok {
			return s
		}
		args := lexer.SplitArgsAtDepthZero(lexer.FileRef("expr"), inner)
		s = s[:loc[0]] + build(args) + rest
	}
}

func rewriteLeastGreatestDate(d dialectSpec, s string) string {
	s = rewriteCalls(s, "least_date", func(args []string) string {
		const sentinel = "'9999-12-31'"
		coalesced := make([]string, len(args))
		for i, a := range args {
			coalesced[i] = d.Coalesce(a, sentinel)
		}
		expr := "LEAST(" + strings.Join(coalesced, ", ") + ")"
		return fmt.Sprintf("(CASE WHEN %s = %s THEN NULL ELSE %s END)", expr, sentinel, expr)
	})
	s = rewriteCalls(s, "greatest_date", func(args []string) string {
		const sentinel = "'0001-01-01'"
		coalesced := make([]string, len(args))
		for i, a := range args {
			coalesced[i] = d.Coalesce(a, sentinel)
		}
		expr := "GREATEST(" + strings.Join(coalesced, ", ") + ")"
		return fmt.Sprintf("(CASE WHEN %s = %s THEN NULL ELSE %s END)", expr, sentinel, expr)
	})
	return s
}

func rewriteLeastGreatest(s string) string {
	s = rewriteCalls(s, "least", func(args []string) string {
		return fmt.Sprintf("(CASE WHEN %s THEN LEAST(%s) ELSE NULL END)", allNotNull(args), strings.Join(args, ", "))
	})
	s = rewriteCalls(s, "greatest", func(args []string) string {
		return fmt.Sprintf("(CASE WHEN %s THEN GREATEST(%s) ELSE NULL END)", allNotNull(args), strings.Join(args, ", "))
	})
	return s
}

func allNotNull(args []string) string {
	checks := make([]string, len(args))
	for i, a := range args {
		checks[i] = a + " IS NOT NULL"
	}
	return strings.Join(checks, " AND ")
}

func rewriteNvl(d dialectSpec, s string) string {
	return rewriteCalls(s, "nvl", func(args []string) string {
		switch len(args) {
		case 0:
			return "NULL"
		case 1:
			return args[0]
		}
		return d.Coalesce(args...)
	})
}

func rewriteToNumber(d dialectSpec, s string) string {
	return rewriteCalls(s, "to_number", func(args []string) string {
		if len(args) == 0 {
			return "NULL"
		}
		return d.CastNumeric(args[0])
	})
}

func rewriteToChar(d dialectSpec, s string) string {
	return rewriteCalls(s, "to_char", func(args []string) string {
		switch len(args) {
		case 0:
			return "NULL"
		case 1:
			return d.CastString(args[0])
		}
		return d.DateFormat(args[0], args[1])
	})
}

func rewriteCeil(d dialectSpec, s string) string {
	if d.Name != MSSQL {
		return s
	}
	return ceilRe.ReplaceAllString(s, "CEILING(")
}

func rewriteSubstr(d dialectSpec, s string) string {
	if d.Name != MSSQL {
		// Oracle and PostgreSQL both accept SUBSTR(s, start[, len])
		// natively; no rewrite needed there.
		return s
	}
	return rewriteCalls(s, "substr", func(args []string) string {
		switch len(args) {
		case 2:
			if strings.HasPrefix(strings.TrimSpace(args[1]), "-") {
				n := strings.TrimPrefix(strings.TrimSpace(args[1]), "-")
				return fmt.Sprintf("RIGHT(%s, %s)", args[0], n)
			}
			return fmt.Sprintf("SUBSTRING(%s, %s, LEN(%s))", args[0], args[1], args[0])
		case 3:
			return fmt.Sprintf("SUBSTRING(%s, %s, %s)", args[0], args[1], args[2])
		default:
			return "SUBSTRING(" + strings.Join(args, ", ") + ")"
		}
	})
}

// rewriteNullTests applies the x?/x!? rewrites only outside single-quoted
// string literals, so a literal '?' inside a string (e.g. a backtick
// literal already converted to '...') is left untouched rather than
// mistaken for a null test anchored on the preceding word.
func rewriteNullTests(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); {
		j := strings.IndexByte(s[i:], '\'')
		if j == -1 {
			b.WriteString(applyNullTestRewrite(s[i:]))
			break
		}
		b.WriteString(applyNullTestRewrite(s[i : i+j]))
		k := strings.IndexByte(s[i+j+1:], '\'')
		if k == -1 {
			b.WriteString(s[i+j:])
			break
		}
		b.WriteString(s[i+j : i+j+1+k+1])
		i += j + 1 + k + 1
	}
	return b.String()
}

func applyNullTestRewrite(s string) string {
	s = notNullAfterRe.ReplaceAllString(s, "$1 IS NOT NULL")
	s = isNullAfterRe.ReplaceAllString(s, "$1 IS NULL")
	return s
}

func rewriteConcat(d dialectSpec, s string) string {
	return strings.ReplaceAll(s, "||", d.Concat)
}
