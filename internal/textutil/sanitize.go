package textutil

import "strings"

// SanitizeToken turns an episode id or guest name into the lowercase token
// used in transcript file names. Accents are folded first, so "José Núñez"
// becomes "jose_nunez". Digits, hyphens and underscores survive; any other
// run of characters becomes a single underscore. Empty results are
// "unknown".
func SanitizeToken(value string) string {
	var b strings.Builder
	gap := false
	for _, r := range Fold(strings.TrimSpace(value)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			if gap && b.Len() > 0 {
				b.WriteByte('_')
			}
			gap = false
			b.WriteRune(r)
		default:
			gap = true
		}
	}
	out := strings.Trim(b.String(), "_-")
	if out == "" {
		return "unknown"
	}
	return out
}
