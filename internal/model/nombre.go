package model

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ClaveNombre canonicalizes a display name for uniqueness checks:
// NFC, trimmed, inner whitespace collapsed, lower-cased.
func ClaveNombre(s string) string {
	s = norm.NFC.String(s)
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// SinAcentos strips combining marks ("Congelación" -> "Congelacion").
func SinAcentos(s string) string {
	// a Chain keeps state, so each call builds its own
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
