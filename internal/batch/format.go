package batch

import "strings"

const (
	fieldSeparator = '\t'
	lineTerminator = '\n'
)

// Field quotes a completion for the result, CSV style.
func Field(content string) string {
	return `"` + strings.ReplaceAll(strings.TrimSpace(content), `"`, `""`) + `"`
}
