package codegen

import (
	"fmt"
	"strings"
)

var oracleSpec = dialectSpec{
	Name: Oracle,
	TargetTable: func(name string) string {
		return "ROUT_" + strings.ToUpper(name)
	},
	IntermediateAlias: func(varName string) string {
		return "SQ_" + strings.ToUpper(varName)
	},
	UEADV:       "UEADV",
	StdDev:      "STDDEV",
	CurrentDate: "SYSDATE",
	DateAdd: func(expr, days string) string {
		return fmt.Sprintf("(%s + %s)", expr, days)
	},
	DateDiff: func(a, b string) string {
		return fmt.Sprintf("(%s - %s)", a, b)
	},
	StringAgg: func(expr, delim, orderBy string) string {
		return fmt.Sprintf("LISTAGG(%s, %s) WITHIN GROUP (ORDER BY %s)", expr, delim, orderBy)
	},
	Median: func(expr string) string {
		return fmt.Sprintf("MEDIAN(%s)", expr)
	},
	Coalesce: func(args ...string) string {
		return "COALESCE(" + strings.Join(args, ", ") + ")"
	},
	NullIf: func(a, b string) string {
		return fmt.Sprintf("NULLIF(%s, %s)", a, b)
	},
	CastNumeric: func(expr string) string {
		return expr
	},
	TryCastNumeric: func(expr string) string {
		return fmt.Sprintf("CASE WHEN REGEXP_LIKE(%s, '^-?[0-9]+(\\.[0-9]+)?$') THEN TO_NUMBER(%s) ELSE NULL END", expr, expr)
	},
	CastString: func(expr string) string {
		return expr
	},
	DateFormat: func(expr, format string) string {
		return fmt.Sprintf("TO_CHAR(%s, %s)", expr, format)
	},
	Concat:               "||",
	LikeEscapeUnderscore: false,
	Regression:           nativeRegression,
}
