package search

import "strings"

// EscapeFilterValue percent-escapes spaces and doubles single quotes so the
// value can sit inside an OData string literal.
func EscapeFilterValue(value string) string {
	value = strings.ReplaceAll(value, " ", "%20")
	return strings.ReplaceAll(value, "'", "''")
}

// EqualsFilter builds "<field> eq '<value>'" with the value escaped.
func EqualsFilter(field, value string) string {
	return field + " eq '" + EscapeFilterValue(value) + "'"
}
