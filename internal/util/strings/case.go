package strings

import (
	"strings"
	"unicode"
)

// ToKebabCase lowercases s and joins its words with hyphens. Runs of
// characters other than letters and digits act as a single separator, and
// CamelCase boundaries split words, keeping acronyms together
// ("HTTPRequest Logging" -> "http-request-logging").
func ToKebabCase(s string) string {
	var words []string
	var current []rune

	flush := func() {
		if len(current) > 0 {
			words = append(words, string(current))
			current = current[:0]
		}
	}

	runes := []rune(s)
	for i, r := range runes {
		switch {
		case unicode.IsUpper(r):
			if i > 0 && len(current) > 0 {
				prev := runes[i-1]
				if unicode.IsLower(prev) || unicode.IsDigit(prev) ||
					(i+1 < len(runes) && unicode.IsLower(runes[i+1])) {
					flush()
				}
			}
			current = append(current, unicode.ToLower(r))
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			current = append(current, r)
		default:
			flush()
		}
	}
	flush()

	return strings.Join(words, "-")
}
