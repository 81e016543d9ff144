package schema

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeName converts header text into a lowercase ASCII identifier:
//  1. lowercase and trim, dropping a leading UTF-8 BOM
//  2. strip accents (NFD → remove Mn → NFC)
//  3. keep [a-z0-9_]; space, dash and dot become a single underscore
func NormalizeName(s string) string {
	s = strings.TrimPrefix(s, "\uFEFF")
	s = strings.ToLower(strings.TrimSpace(s))

	t := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		norm.NFC,
	)
	ascii, _, err := transform.String(t, s)
	if err != nil {
		ascii = s
	}

	var b strings.Builder
	prevUnderscore := false
	for _, r := range ascii {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prevUnderscore = false
		case r == '_' || r == ' ' || r == '-' || r == '.':
			if !prevUnderscore {
				b.WriteRune('_')
				prevUnderscore = true
			}
		}
	}
	return strings.Trim(b.String(), "_")
}

// HeaderMismatches compares a file header against the schema by normalized
// name and position. It returns one message per difference; an empty result
// means the header matches. The header row is discarded either way, so
// callers only warn.
func (s Schema) HeaderMismatches(header []string) []string {
	var out []string
	if len(header) != len(s.Fields) {
		out = append(out, fmt.Sprintf("header has %d columns, schema %s declares %d", len(header), s.Name, len(s.Fields)))
	}
	n := min(len(header), len(s.Fields))
	for i := 0; i < n; i++ {
		got := NormalizeName(header[i])
		if got != NormalizeName(s.Fields[i].Name) {
			out = append(out, fmt.Sprintf("column %d: header %q, expected %q", i+1, header[i], s.Fields[i].Name))
		}
	}
	return out
}
