package transcript

import (
	"html"
	"regexp"
	"strings"
)

var (
	markupPattern    = regexp.MustCompile(`<[^>]+>`)
	timestampPattern = regexp.MustCompile(`^\d{2}:\d{2}:\d{2}`)
	cueNumberPattern = regexp.MustCompile(`^\d+$`)
)

var headerPrefixes = []string{"WEBVTT", "Kind:", "Language:", "NOTE", "STYLE", "REGION"}

// FromCaptions normalizes a WebVTT or SRT track to its payload lines.
func FromCaptions(raw string) Transcript {
	return Transcript{Lines: CaptionLines(raw)}
}

// CaptionLines drops cue numbers, timing rows, headers and markup, then
// collapses consecutive repeats. Auto-generated tracks repeat each line
// across overlapping cues.
func CaptionLines(raw string) []string {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	raw = strings.TrimPrefix(raw, "\ufeff")
	var lines []string
	last := ""
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if skipCaptionLine(line) {
			continue
		}
		line = markupPattern.ReplaceAllString(line, "")
		line = strings.Join(strings.Fields(html.UnescapeString(line)), " ")
		if line == "" || line == last {
			continue
		}
		lines = append(lines, line)
		last = line
	}
	return lines
}

func skipCaptionLine(line string) bool {
	if line == "" || strings.Contains(line, "-->") {
		return true
	}
	for _, prefix := range headerPrefixes {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return cueNumberPattern.MatchString(line) || timestampPattern.MatchString(line)
}
