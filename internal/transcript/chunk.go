package transcript

import (
	"strings"
	"unicode/utf16"
)

// Chunk splits text on word boundaries into pieces of at most limit UTF-16
// code units, the unit the workspace API measures text in. A single word
// longer than limit is cut hard between runes.
func Chunk(text string, limit int) []string {
	if limit <= 0 {
		return nil
	}
	var (
		chunks []string
		b      strings.Builder
		size   int
	)
	emit := func() {
		if size > 0 {
			chunks = append(chunks, b.String())
		}
		b.Reset()
		size = 0
	}
	for _, word := range strings.Fields(text) {
		for Units(word) > limit {
			emit()
			head, rest := cutUnits(word, limit)
			chunks = append(chunks, head)
			word = rest
		}
		n := Units(word)
		if size > 0 && size+1+n > limit {
			emit()
		}
		if size > 0 {
			b.WriteByte(' ')
			size++
		}
		b.WriteString(word)
		size += n
	}
	emit()
	return chunks
}

// Units returns the length of s in UTF-16 code units.
func Units(s string) int {
	n := 0
	for _, r := range s {
		n += runeUnits(r)
	}
	return n
}

// cutUnits splits s after the longest rune prefix of at most limit units,
// always taking at least one rune.
func cutUnits(s string, limit int) (string, string) {
	size := 0
	for i, r := range s {
		w := runeUnits(r)
		if size+w > limit && i > 0 {
			return s[:i], s[i:]
		}
		size += w
	}
	return s, ""
}

func runeUnits(r rune) int {
	if utf16.RuneLen(r) == 2 {
		return 2
	}
	return 1
}
