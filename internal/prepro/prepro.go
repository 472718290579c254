// Package prepro strips line comments from raw source before lexing.
package prepro

import "strings"

// Filter cuts every line at its first "//". Line structure is preserved so
// positions reported by the lexer still match the original file. The filter
// is purely textual: a "//" inside a string literal also starts a comment.
func Filter(source string) string {
	lines := strings.Split(source, "\n")
	for i, line := range lines {
		if idx := strings.Index(line, "//"); idx >= 0 {
			lines[i] = line[:idx]
		}
	}
	return strings.Join(lines, "\n")
}
