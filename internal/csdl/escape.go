// Package csdl implements the CSDL string-literal escaping rules used inside
// double-quoted values.
package csdl

import "strings"

// Literal implements escaping for CSDL double-quoted string literals.
type Literal struct{}

// Escape escapes s for use between double quotes. Double quotes are always
// escaped; backslashes are doubled unless regex is set, since inside a regular
// expression they already carry meaning and are passed through unchanged.
func (Literal) Escape(s string, regex bool) string {
	return Escape(s, regex)
}

// Unescape reverses Escape.
func (Literal) Unescape(s string, regex bool) string {
	return Unescape(s, regex)
}

// Escape is the package-level form of Literal.Escape.
func Escape(s string, regex bool) string {
	if !regex {
		s = strings.ReplaceAll(s, `\`, `\\`)
	}
	return strings.ReplaceAll(s, `"`, `\"`)
}

// Unescape is the package-level form of Literal.Unescape.
func Unescape(s string, regex bool) string {
	if regex {
		return strings.ReplaceAll(s, `\"`, `"`)
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\\' && i+1 < len(s) && (s[i+1] == '\\' || s[i+1] == '"') {
			b.WriteByte(s[i+1])
			i++
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}
