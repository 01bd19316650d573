package iterate

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// titleCaser preserves existing capitals so "petId" becomes "PetId",
// not "Petid". A cases.Caser is not safe for concurrent use; construct
// one per call.
func titleCaser() cases.Caser {
	return cases.Title(language.English, cases.NoLower)
}

// Sanitize converts an element key into a path-safe token for output-path
// substitution: every character outside [A-Za-z0-9._-] becomes '_'.
// The key "/users" becomes "_users".
func Sanitize(key string) string {
	if key == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(key))
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// ExportedName converts an element key into an exported identifier for use
// in generated code: words are split on any non-alphanumeric rune and
// title-cased. "/pets/{petId}" becomes "PetsPetId".
func ExportedName(key string) string {
	caser := titleCaser()
	var b strings.Builder
	word := strings.Builder{}
	flush := func() {
		if word.Len() > 0 {
			b.WriteString(caser.String(word.String()))
			word.Reset()
		}
	}
	for _, r := range key {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			word.WriteRune(r)
			continue
		}
		flush()
	}
	flush()
	return b.String()
}
