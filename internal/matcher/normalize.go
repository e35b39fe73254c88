package matcher

import (
	"regexp"
	"strings"

	"transcriptsync/internal/textutil"
)

var (
	// trailing noise is stripped repeatedly so "x_final.en.srt" loses every layer.
	trailingNoise = regexp.MustCompile(`(\.(srt|vtt|txt|mp4|mov|m4a|mp3|wav)|\.en(_us)?|_final|_subtitles|[ _-]v\d+)$`)
	inlineNoise   = regexp.MustCompile(`\((new|final|\d+)\)`)
	separators    = regexp.MustCompile(`[_\-]+`)
)

// Normalize reduces an artifact or guest name to the comparison form:
// folded to lowercase without diacritics, extensions, language tags,
// revision markers and parenthetical counters removed, separators turned
// into single spaces.
func Normalize(name string) string {
	value := strings.TrimSpace(textutil.Fold(name))
	value = inlineNoise.ReplaceAllString(value, " ")
	for {
		trimmed := strings.TrimSpace(trailingNoise.ReplaceAllString(value, ""))
		if trimmed == value {
			break
		}
		value = trimmed
	}
	value = separators.ReplaceAllString(value, " ")
	return textutil.CollapseSpace(value)
}
