// Package naming produces human-readable device names and strips them of
// characters that break labels, hostnames and exported inventories.
package naming

import (
	"strings"
	"unicode"

	"mccnet/internal/domain"
	"mccnet/internal/generator"
)

// Forbidden lists every character removed from generated names
const Forbidden = `'"., ,`

// Sanitize removes every forbidden character from name and lowercases the rest
func Sanitize(name string) string {
	return strings.ToLower(RemoveForbidden(name))
}

// RemoveForbidden drops every occurrence of the forbidden characters in a
// single pass, keeping case.
func RemoveForbidden(name string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(Forbidden, r) {
			return -1
		}
		return r
	}, name)
}

// StripSpaces removes all whitespace, the way the node and edge forms
// treat typed names.
func StripSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// NameFor produces a sanitized name for a node of the given role: a first
// name for clients, a generic word for everything else.
func NameFor(gen generator.Generator, role domain.Role) string {
	if role == domain.RoleClient {
		return Sanitize(gen.NextName())
	}
	return Sanitize(gen.NextWord())
}
