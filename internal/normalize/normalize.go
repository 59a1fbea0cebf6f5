// Package normalize produces the canonical string forms used for name and
// title comparison.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	separatorChars = regexp.MustCompile(`[_-]`)
	invalidChars   = regexp.MustCompile(`[0-9?&#;()]`)
)

// StripAccents removes combining marks after canonical decomposition
// ("João" → "Joao"). Characters with no ASCII base are dropped.
func StripAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, out)
}

// Name normalizes an author name.
//
//   - "Silva, João" → "Joao Silva" (comma format is reversed)
//   - accents stripped
//   - "_" and "-" become spaces; digits and ?&#;() are removed
//   - surrounding whitespace trimmed
func Name(name string) string {
	n := name
	if strings.Contains(n, ",") {
		parts := strings.Split(n, ", ")
		for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
			parts[i], parts[j] = parts[j], parts[i]
		}
		n = strings.Join(parts, " ")
	}
	n = StripAccents(n)
	n = separatorChars.ReplaceAllString(n, " ")
	n = invalidChars.ReplaceAllString(n, "")
	return strings.TrimSpace(n)
}

// Title normalizes a production title: unwraps surrounding double quotes and
// collapses internal whitespace.
func Title(text string) string {
	t := text
	if len(t) >= 2 && t[0] == '"' && t[len(t)-1] == '"' {
		if unq, err := strconv.Unquote(t); err == nil {
			t = unq
		} else {
			t = t[1 : len(t)-1]
		}
	}
	return strings.Join(strings.Fields(t), " ")
}

// FirstLast reduces a normalized name to its first and last tokens, the key
// used for candidate lookup. "Joao Carlos Silva" → "Joao Silva". A single-token
// name repeats the token, as the lookup key always has two parts.
func FirstLast(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	return fields[0] + " " + fields[len(fields)-1]
}

// Key is the case-folded lookup key for a raw name.
func Key(raw string) string {
	return strings.ToUpper(FirstLast(Name(raw)))
}
