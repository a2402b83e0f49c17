package codegen

import (
	"fmt"
	"strings"
)

// FetchContext carries everything one fetch operator needs to build its
// SELECT body: the source table, the attribute filter clause, an
// optional translated predicate, the raw (untranslated) function
// parameters, and the join fragment that brings earlier ruleblock
// variables into scope for a predicate-with-dependency.
type FetchContext struct {
	VarName      string
	Table        string
	AttrFilter   string // may be empty
	Predicate    string // translated; may be empty
	Params       []string
	PriorJoinSQL string // "" unless the predicate references an earlier variable

	// RawColumn is the resolved property column with no cast (used by
	// last/first/nth/distinct_count, which return the value unmodified).
	RawColumn string
	// NumericColumn is the resolved property column cast for numeric
	// aggregation (used by sum/avg/min/max/median), skipping the cast
	// when the property is "dt" (kept as a date per spec).
	NumericColumn string
}

// whereClause assembles the attribute filter and predicate, in that
// order, joined with AND. Returns "1=1" if both are empty.
func (c FetchContext) whereClause() string {
	var parts []string
	if c.AttrFilter != "" {
		parts = append(parts, c.AttrFilter)
	}
	if c.Predicate != "" {
		parts = append(parts, c.Predicate)
	}
	if len(parts) == 0 {
		return "1=1"
	}
	return strings.Join(parts, " AND ")
}

func (c FetchContext) fromClause(alias string) string {
	if c.PriorJoinSQL == "" {
		return fmt.Sprintf("%s %s", c.Table, alias)
	}
	return fmt.Sprintf("%s %s %s", c.Table, alias, c.PriorJoinSQL)
}

// Operator produces the SELECT body for one fetch function (no alias
// wrapper — the envelope decides whether that becomes a CTE or a
// SELECT...INTO statement) plus the output column names it contributes
// to the final ruleblock SELECT.
type Operator struct {
	OutputColumns func(varName string) []string
	Build         func(d dialectSpec, ctx FetchContext) string
}

func singleColumn(varName string) []string { return []string{varName} }
func dvColumns(varName string) []string     { return []string{varName + "_val", varName + "_dt"} }

func rankedPick(table, where, orderBy string, rank string) string {
	return fmt.Sprintf(
		"SELECT eid, val, dt FROM (SELECT eid, val, dt, ROW_NUMBER() OVER (PARTITION BY eid ORDER BY %s) AS rn FROM %s WHERE %s) picked WHERE rn = %s",
		orderBy, table, where, rank)
}

// operators is the dispatch table keyed by surface function name, per
// the design note preferring a plain map over an interface hierarchy.
var operators = map[string]Operator{
	"last": {
		OutputColumns: singleColumn,
		Build: func(d dialectSpec, ctx FetchContext) string {
			inner := rankedPick(ctx.fromClause("t"), ctx.whereClause(), "dt DESC, att ASC, val ASC", "1")
			return fmt.Sprintf("SELECT eid, %s AS v FROM (%s) picked", ctx.RawColumn, inner)
		},
	},
	"first": {
		OutputColumns: singleColumn,
		Build: func(d dialectSpec, ctx FetchContext) string {
			inner := rankedPick(ctx.fromClause("t"), ctx.whereClause(), "dt ASC, att ASC, val ASC", "1")
			return fmt.Sprintf("SELECT eid, %s AS v FROM (%s) picked", ctx.RawColumn, inner)
		},
	},
	"nth": {
		OutputColumns: singleColumn,
		Build: func(d dialectSpec, ctx FetchContext) string {
			k := "1"
			if len(ctx.Params) > 0 {
				k = strings.TrimSpace(ctx.Params[0])
			}
			inner := rankedPick(ctx.fromClause("t"), ctx.whereClause(), "dt DESC, att ASC, val ASC", k)
			return fmt.Sprintf("SELECT eid, %s AS v FROM (%s) picked", ctx.RawColumn, inner)
		},
	},
	"count": {
		OutputColumns: singleColumn,
		Build: func(d dialectSpec, ctx FetchContext) string {
			return fmt.Sprintf("SELECT eid, COUNT(*) AS v FROM %s WHERE %s GROUP BY eid", ctx.fromClause("t"), ctx.whereClause())
		},
	},
	"distinct_count": {
		OutputColumns: singleColumn,
		Build: func(d dialectSpec, ctx FetchContext) string {
			return fmt.Sprintf("SELECT eid, COUNT(DISTINCT %s) AS v FROM %s WHERE %s GROUP BY eid", ctx.RawColumn, ctx.fromClause("t"), ctx.whereClause())
		},
	},
	"sum": {
		OutputColumns: singleColumn,
		Build: func(d dialectSpec, ctx FetchContext) string {
			return fmt.Sprintf("SELECT eid, SUM(%s) AS v FROM %s WHERE %s GROUP BY eid", ctx.NumericColumn, ctx.fromClause("t"), ctx.whereClause())
		},
	},
	"avg": {
		OutputColumns: singleColumn,
		Build: func(d dialectSpec, ctx FetchContext) string {
			return fmt.Sprintf("SELECT eid, AVG(%s) AS v FROM %s WHERE %s GROUP BY eid", ctx.NumericColumn, ctx.fromClause("t"), ctx.whereClause())
		},
	},
	"min": {
		OutputColumns: singleColumn,
		Build: func(d dialectSpec, ctx FetchContext) string {
			return fmt.Sprintf("SELECT eid, MIN(%s) AS v FROM %s WHERE %s GROUP BY eid", ctx.NumericColumn, ctx.fromClause("t"), ctx.whereClause())
		},
	},
	"max": {
		OutputColumns: singleColumn,
		Build: func(d dialectSpec, ctx FetchContext) string {
			return fmt.Sprintf("SELECT eid, MAX(%s) AS v FROM %s WHERE %s GROUP BY eid", ctx.NumericColumn, ctx.fromClause("t"), ctx.whereClause())
		},
	},
	"median": {
		OutputColumns: singleColumn,
		Build: func(d dialectSpec, ctx FetchContext) string {
			col := ctx.NumericColumn
			if d.Name == MSSQL {
				return fmt.Sprintf("SELECT DISTINCT eid, %s AS v FROM %s WHERE %s", d.Median(col), ctx.fromClause("t"), ctx.whereClause())
			}
			return fmt.Sprintf("SELECT eid, %s AS v FROM %s WHERE %s GROUP BY eid", d.Median(col), ctx.fromClause("t"), ctx.whereClause())
		},
	},
	"lastdv": {
		OutputColumns: dvColumns,
		Build: func(d dialectSpec, ctx FetchContext) string {
			inner := rankedPick(ctx.fromClause("t"), ctx.whereClause(), "dt DESC, att ASC, val ASC", "1")
			return fmt.Sprintf("SELECT eid, val AS v_val, dt AS v_dt FROM (%s) picked", inner)
		},
	},
	"firstdv": {
		OutputColumns: dvColumns,
		Build: func(d dialectSpec, ctx FetchContext) string {
			inner := rankedPick(ctx.fromClause("t"), ctx.whereClause(), "dt ASC, att ASC, val ASC", "1")
			return fmt.Sprintf("SELECT eid, val AS v_val, dt AS v_dt FROM (%s) picked", inner)
		},
	},
	"maxldv": {
		OutputColumns: dvColumns,
		Build: func(d dialectSpec, ctx FetchContext) string {
			order := fmt.Sprintf("%s DESC, dt DESC, att ASC", d.TryCastNumeric("val"))
			inner := rankedPick(ctx.fromClause("t"), ctx.whereClause(), order, "1")
			return fmt.Sprintf("SELECT eid, val AS v_val, dt AS v_dt FROM (%s) picked", inner)
		},
	},
	"minldv": {
		OutputColumns: dvColumns,
		Build: func(d dialectSpec, ctx FetchContext) string {
			order := fmt.Sprintf("%s ASC, dt DESC, att ASC", d.TryCastNumeric("val"))
			inner := rankedPick(ctx.fromClause("t"), ctx.whereClause(), order, "1")
			return fmt.Sprintf("SELECT eid, val AS v_val, dt AS v_dt FROM (%s) picked", inner)
		},
	},
	"minfdv": {
		OutputColumns: dvColumns,
		Build: func(d dialectSpec, ctx FetchContext) string {
			order := fmt.Sprintf("%s ASC, dt ASC", d.TryCastNumeric("val"))
			inner := rankedPick(ctx.fromClause("t"), ctx.whereClause(), order, "1")
			return fmt.Sprintf("SELECT eid, val AS v_val, dt AS v_dt FROM (%s) picked", inner)
		},
	},
	"max_neg_delta_dv": {
		OutputColumns: dvColumns,
		Build: func(d dialectSpec, ctx FetchContext) string {
			num := d.TryCastNumeric("val")
			deltas := fmt.Sprintf(
				"SELECT eid, val, dt, %s - LAG(%s) OVER (PARTITION BY eid ORDER BY dt) AS delta FROM %s WHERE %s",
				num, num, ctx.fromClause("t"), ctx.whereClause())
			negatives := fmt.Sprintf(
				"SELECT eid, val, dt, ROW_NUMBER() OVER (PARTITION BY eid ORDER BY delta ASC, dt DESC) AS rn FROM (%s) deltas WHERE delta < 0",
				deltas)
			return fmt.Sprintf("SELECT eid, val AS v_val, dt AS v_dt FROM (%s) negatives WHERE rn = 1", negatives)
		},
	},
	"serialize": {
		OutputColumns: singleColumn,
		Build: func(d dialectSpec, ctx FetchContext) string {
			delim := serializeDelim(ctx.Params)
			return fmt.Sprintf("SELECT eid, %s AS v FROM %s WHERE %s GROUP BY eid",
				d.StringAgg("val", delim, "dt"), ctx.fromClause("t"), ctx.whereClause())
		},
	},
	"serialize2": {
		OutputColumns: singleColumn,
		Build: func(d dialectSpec, ctx FetchContext) string {
			delim := serializeDelim(ctx.Params)
			return fmt.Sprintf("SELECT eid, %s AS v FROM %s WHERE %s GROUP BY eid",
				d.StringAgg(d.CastString("val"), delim, "dt"), ctx.fromClause("t"), ctx.whereClause())
		},
	},
	"serializedv": {
		OutputColumns: singleColumn,
		Build: func(d dialectSpec, ctx FetchContext) string {
			delim := serializeDelim(ctx.Params)
			elem := joinWithTilde(d, []string{d.CastString("val"), d.DateFormat("dt", "'YYYY-MM-DD'")})
			return fmt.Sprintf("SELECT eid, %s AS v FROM %s WHERE %s GROUP BY eid",
				d.StringAgg(elem, delim, "dt"), ctx.fromClause("t"), ctx.whereClause())
		},
	},
	"serializedv2": {
		OutputColumns: singleColumn,
		Build: func(d dialectSpec, ctx FetchContext) string {
			var fmtArg string
			if len(ctx.Params) > 0 {
				fmtArg = ctx.Params[0]
			}
			parts := splitTopLevelTilde(fmtArg)
			rendered := make([]string, len(parts))
			for i, p := range parts {
				p = strings.TrimSpace(p)
				if p == "dt" {
					rendered[i] = d.DateFormat("dt", "'YYYY-MM-DD'")
				} else {
					rendered[i] = d.CastString(Translate(d, p))
				}
			}
			elem := joinWithTilde(d, rendered)
			return fmt.Sprintf("SELECT eid, %s AS v FROM %s WHERE %s GROUP BY eid",
				d.StringAgg(elem, "','", "dt"), ctx.fromClause("t"), ctx.whereClause())
		},
	},
	"regr_slope": {
		OutputColumns: singleColumn,
		Build: func(d dialectSpec, ctx FetchContext) string { return regrBuild(d, ctx, "slope") },
	},
	"regr_intercept": {
		OutputColumns: singleColumn,
		Build: func(d dialectSpec, ctx FetchContext) string { return regrBuild(d, ctx, "intercept") },
	},
	"regr_r2": {
		OutputColumns: singleColumn,
		Build: func(d dialectSpec, ctx FetchContext) string { return regrBuild(d, ctx, "r2") },
	},
	"exists": {
		OutputColumns: singleColumn,
		Build: func(d dialectSpec, ctx FetchContext) string {
			return fmt.Sprintf(
				"SELECT u.eid AS eid, CASE WHEN EXISTS (SELECT 1 FROM %s s WHERE s.eid = u.eid AND %s) THEN 1 ELSE 0 END AS v FROM %s u",
				ctx.Table, ctx.whereClause(), d.UEADV)
		},
	},
	"stats_mode": {
		OutputColumns: singleColumn,
		Build: func(d dialectSpec, ctx FetchContext) string {
			inner := fmt.Sprintf(
				"SELECT eid, val, ROW_NUMBER() OVER (PARTITION BY eid ORDER BY COUNT(*) OVER (PARTITION BY eid, val) DESC, val ASC) AS rn FROM %s WHERE %s",
				ctx.fromClause("t"), ctx.whereClause())
			return fmt.Sprintf("SELECT eid, val AS v FROM (%s) picked WHERE rn = 1", inner)
		},
	},
	"temporal_regularity": {
		OutputColumns: singleColumn,
		Build: func(d dialectSpec, ctx FetchContext) string {
			interval := d.DateDiff("dt", "LAG(dt) OVER (PARTITION BY eid ORDER BY dt)")
			intervals := fmt.Sprintf("SELECT eid, %s AS gap FROM %s WHERE %s", interval, ctx.fromClause("t"), ctx.whereClause())
			return fmt.Sprintf(
				"SELECT eid, CASE WHEN COUNT(gap) < 1 THEN NULL WHEN AVG(%s) = 0 THEN 0 ELSE %s(%s) / AVG(%s) END AS v FROM (%s) gaps GROUP BY eid",
				"gap*1.0", d.StdDev, "gap*1.0", "gap*1.0", intervals)
		},
	},
}

func regrBuild(d dialectSpec, ctx FetchContext, kind string) string {
	dayOffset := d.DateDiff("dt", "MIN(dt) OVER (PARTITION BY eid)")
	inner := fmt.Sprintf("SELECT eid, %s AS y, %s AS x FROM %s WHERE %s", d.CastNumeric("val"), dayOffset, ctx.fromClause("t"), ctx.whereClause())
	return fmt.Sprintf("SELECT eid, %s AS v FROM (%s) points GROUP BY eid", d.Regression(kind, "y", "x"), inner)
}

func serializeDelim(params []string) string {
	if len(params) > 0 && strings.TrimSpace(params[0]) != "" {
		p := strings.TrimSpace(params[0])
		if strings.HasPrefix(p, "`") && strings.HasSuffix(p, "`") {
			return "'" + strings.Trim(p, "`") + "'"
		}
		return p
	}
	return "','"
}

// joinWithTilde concatenates already-rendered parts with a literal '~'
// between each, using the dialect's concatenation operator.
func joinWithTilde(d dialectSpec, parts []string) string {
	sep := " " + d.Concat + " '~' " + d.Concat + " "
	return "(" + strings.Join(parts, sep) + ")"
}

// splitTopLevelTilde splits on '~' characters that occur at paren depth
// zero, so a sub-expression like round(val,0) survives intact.
func splitTopLevelTilde(s string) []string {
	var out []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
		case '~':
			if depth == 0 {
				out = append(out, s[start:i])
				start = i + 1
			}
		}
	}
	out = append(out, s[start:])
	return out
}
