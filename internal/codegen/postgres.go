package codegen

import (
	"fmt"
	"strings"
)

var postgresSpec = dialectSpec{
	Name: PostgreSQL,
	TargetTable: func(name string) string {
		return "rout_" + strings.ToLower(name)
	},
	IntermediateAlias: func(varName string) string {
		return "SQ_" + strings.ToUpper(varName)
	},
	UEADV:       "UEADV",
	StdDev:      "STDDEV",
	CurrentDate: "CURRENT_DATE",
	DateAdd: func(expr, days string) string {
		return fmt.Sprintf("(%s + (%s || ' days')::interval)", expr, days)
	},
	DateDiff: func(a, b string) string {
		return fmt.Sprintf("(%s - %s)", a, b)
	},
	StringAgg: func(expr, delim, orderBy string) string {
		return fmt.Sprintf("STRING_AGG(%s, %s ORDER BY %s)", expr, delim, orderBy)
	},
	Median: func(expr string) string {
		return fmt.Sprintf("PERCENTILE_CONT(0.5) WITHIN GROUP (ORDER BY %s)", expr)
	},
	Coalesce: func(args ...string) string {
		return "COALESCE(" + strings.Join(args, ", ") + ")"
	},
	NullIf: func(a, b string) string {
		return fmt.Sprintf("NULLIF(%s, %s)", a, b)
	},
	CastNumeric: func(expr string) string {
		return expr + "::numeric"
	},
	TryCastNumeric: func(expr string) string {
		return fmt.Sprintf("CASE WHEN %s ~ '^-?[0-9]+(\\.[0-9]+)?$' THEN %s::numeric ELSE NULL END", expr, expr)
	},
	CastString: func(expr string) string {
		return expr + "::text"
	},
	DateFormat: func(expr, format string) string {
		return fmt.Sprintf("TO_CHAR(%s, %s)", expr, format)
	},
	Concat:               "||",
	LikeEscapeUnderscore: false,
	Regression:           nativeRegression,
}
