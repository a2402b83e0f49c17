package codegen

import (
	"fmt"
	"strings"
)

// AttributeFilter builds the disjunction of att = '<name>' / att LIKE
// '<pat>' clauses for a non-empty attribute list. Centralised per the
// design note that the three dialects differ only in LIKE-escape
// treatment. An empty list yields an empty string (no filter).
func AttributeFilter(d dialectSpec, attrs []string) string {
	if len(attrs) == 0 {
		return ""
	}
	clauses := make([]string, 0, len(attrs))
	for _, a := range attrs {
		if strings.Contains(a, "%") {
			if d.LikeEscapeUnderscore {
				escaped := strings.ReplaceAll(a, "_", "\\_")
				clauses = append(clauses, fmt.Sprintf("att LIKE '%s' ESCAPE '\\'", escaped))
			} else {
				clauses = append(clauses, fmt.Sprintf("att LIKE '%s'", a))
			}
		} else {
			clauses = append(clauses, fmt.Sprintf("att = '%s'", a))
		}
	}
	if len(clauses) == 1 {
		return clauses[0]
	}
	return "(" + strings.Join(clauses, " OR ") + ")"
}

// RawProperty resolves the sentinel "_" to "val" without applying any
// cast, for contexts (row selection, DISTINCT counting) that want the
// bare column reference.
func RawProperty(property string) string {
	if property == "_" {
		return "val"
	}
	return property
}

// ResolveProperty maps the surface property token (the sentinel "_"
// resolves to "val") to the column expression used in a fragment,
// applying the dialect's numeric/string cast where the context calls
// for one. The "dt" column is never cast to numeric, per spec.
func ResolveProperty(d dialectSpec, property string, numeric bool) string {
	col := RawProperty(property)
	if col == "dt" {
		return col
	}
	if numeric {
		return d.CastNumeric(col)
	}
	return d.CastString(col)
}
