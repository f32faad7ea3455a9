package batch

import "strings"

// Query is a prompt template with {{column}} placeholders.
type Query struct {
	ID      string `json:"id"`
	Enabled bool   `json:"enabled"`
	Text    string `json:"value"`
}

// Placeholder returns the placeholder for the given column.
func Placeholder(column string) string {
	return "{{" + column + "}}"
}

// Render fills the template with the row values.
//
// Only the first occurrence of each placeholder is replaced. Placeholders
// without a matching column are left as they are.
func Render(text string, row Row) string {
	for _, column := range row.Columns {
		text = strings.Replace(text, Placeholder(column), row.Values[column], 1)
	}
	return text
}

// LastEnabled returns the index of the last enabled query, or -1.
func LastEnabled(queries []Query) int {
	for i := len(queries) - 1; i >= 0; i-- {
		if queries[i].Enabled {
			return i
		}
	}
	return -1
}

// CountEnabled returns how many queries are enabled.
func CountEnabled(queries []Query) int {
	var n int
	for _, q := range queries {
		if q.Enabled {
			n++
		}
	}
	return n
}
