package codegen

import "fmt"

var mssqlSpec = dialectSpec{
	Name: MSSQL,
	TargetTable: func(name string) string {
		return "SROUT_" + name
	},
	IntermediateAlias: func(varName string) string {
		return "#SQ_" + varName
	},
	UEADV:       "#UEADV",
	StdDev:      "STDEV",
	CurrentDate: "GETDATE()",
	DateAdd: func(expr, days string) string {
		return fmt.Sprintf("DATEADD(day, %s, %s)", days, expr)
	},
	DateDiff: func(a, b string) string {
		return fmt.Sprintf("DATEDIFF(day, %s, %s)", b, a)
	},
	StringAgg: func(expr, delim, orderBy string) string {
		return fmt.Sprintf("STRING_AGG(%s, %s) WITHIN GROUP (ORDER BY %s)", expr, delim, orderBy)
	},
	Median: func(expr string) string {
		return fmt.Sprintf("PERCENTILE_CONT(0.5) WITHIN GROUP (ORDER BY %s) OVER (PARTITION BY eid)", expr)
	},
	Coalesce: func(args ...string) string {
		out := "ISNULL(" + args[0] + ", "
		if len(args) == 2 {
			return out + args[1] + ")"
		}
		// ISNULL only takes two arguments; fold the rest right-associatively.
		rest := args[1:]
		inner := rest[len(rest)-1]
		for i := len(rest) - 2; i >= 0; i-- {
			inner = fmt.Sprintf("ISNULL(%s, %s)", rest[i], inner)
		}
		return out + inner + ")"
	},
	NullIf: func(a, b string) string {
		return fmt.Sprintf("NULLIF(%s, %s)", a, b)
	},
	CastNumeric: func(expr string) string {
		return fmt.Sprintf("CAST(%s AS FLOAT)", expr)
	},
	TryCastNumeric: func(expr string) string {
		return fmt.Sprintf("TRY_CONVERT(FLOAT, %s)", expr)
	},
	CastString: func(expr string) string {
		return fmt.Sprintf("CAST(%s AS VARCHAR(1000))", expr)
	},
	DateFormat: func(expr, format string) string {
		return fmt.Sprintf("FORMAT(%s, %s)", expr, format)
	},
	Concat:               "+",
	LikeEscapeUnderscore: true,
	Regression:           mssqlRegression,
}

// mssqlRegression derives the REGR_SLOPE/REGR_INTERCEPT/REGR_R2
// statistics by hand, since T-SQL has no built-in regression
// aggregates: ordinary least squares over SUM(x), SUM(y), SUM(x*y),
// SUM(x*x), SUM(y*y) and COUNT(*), matching the textbook closed-form
// formulas for slope, intercept and the coefficient of determination.
func mssqlRegression(kind, y, x string) string {
	n := "COUNT(*)"
	sumX := fmt.Sprintf("SUM(%s)", x)
	sumY := fmt.Sprintf("SUM(%s)", y)
	sumXY := fmt.Sprintf("SUM(%s * %s)", x, y)
	sumXX := fmt.Sprintf("SUM(%s * %s)", x, x)
	sumYY := fmt.Sprintf("SUM(%s * %s)", y, y)

	sxy := fmt.Sprintf("(%s * %s - %s * %s)", n, sumXY, sumX, sumY)
	sxx := fmt.Sprintf("(%s * %s - %s * %s)", n, sumXX, sumX, sumX)

	switch kind {
	case "slope":
		return fmt.Sprintf("%s / NULLIF(%s, 0)", sxy, sxx)
	case "intercept":
		numerator := fmt.Sprintf("(%s * %s - %s * %s)", sumY, sumXX, sumX, sumXY)
		return fmt.Sprintf("%s / NULLIF(%s, 0)", numerator, sxx)
	default: // r2
		syy := fmt.Sprintf("(%s * %s - %s * %s)", n, sumYY, sumY, sumY)
		return fmt.Sprintf("POWER(%s, 2) / NULLIF(%s * %s, 0)", sxy, sxx, syy)
	}
}
