// Copyright (c) 2026 Bernard Field, GNU GPL-v3.0.

package latex

import "strings"

// replacer covers the context-free substitutions. Percent signs are
// handled separately in Escape because an already-escaped one must be
// left alone.
var replacer = strings.NewReplacer(
	"\r", "",
	"–", `$-$`,
	"—", `--`,
	"’", "'",
	"“", "''",
	"”", "''",
)

// Escape rewrites plain text into LaTeX-safe text. Order matters:
// carriage returns are dropped, dashes and typographic quotes are
// normalized, unescaped percent signs gain a backslash, and literal
// newlines become LaTeX line breaks.
func Escape(s string) string {
	s = replacer.Replace(s)
	s = escapePercent(s)
	return strings.ReplaceAll(s, "\n", `\\`)
}

// escapePercent inserts a backslash before each % that does not
// already have one.
func escapePercent(s string) string {
	if !strings.Contains(s, "%") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 2)
	var prev rune
	for _, r := range s {
		if r == '%' && prev != '\\' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
		prev = r
	}
	return b.String()
}
