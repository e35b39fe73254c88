package transcript

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"transcriptsync/internal/services"
)

// Format identifies the raw shape of a source artifact.
type Format string

const (
	FormatDiarized Format = "diarized-json"
	FormatCaptions Format = "caption-track"
	FormatSubtitle Format = "subtitle-file"
	FormatText     Format = "text"
)

// Artifact is raw material fetched from a source for one item.
type Artifact struct {
	Format   Format
	SourceID string
	// Content holds the raw bytes as fetched (cue text, JSON, plain text).
	Content []byte
	// Utterances and Text are set for diarized artifacts.
	Utterances []Utterance
	Text       string
}

// Utterance is one speaker turn of a diarized transcript.
type Utterance struct {
	Speaker string
	Text    string
}

// DefaultMinChars is the shortest transcript accepted for publishing.
const DefaultMinChars = 100

// ErrTooShort marks transcripts rejected by the length gate.
var ErrTooShort = errors.New("too-short")

// Transcript is normalized text held as ordered lines. Caption lines are
// fragments of running speech; speaker lines are whole paragraphs.
type Transcript struct {
	Lines    []string
	Speakers bool
}

// Flat renders caption text as one space-joined string. Speaker paragraphs
// stay separated by blank lines.
func (t Transcript) Flat() string {
	if t.Speakers {
		return strings.Join(t.Lines, "\n\n")
	}
	return strings.Join(t.Lines, " ")
}

// Text renders one caption line per row, or blank-line separated speaker
// paragraphs.
func (t Transcript) Text() string {
	if t.Speakers {
		return strings.Join(t.Lines, "\n\n")
	}
	return strings.Join(t.Lines, "\n")
}

// Paragraphs returns the units a block-oriented sink should write: each
// speaker paragraph, or the whole flat caption text as a single unit.
func (t Transcript) Paragraphs() []string {
	if t.Speakers {
		return append([]string(nil), t.Lines...)
	}
	flat := t.Flat()
	if flat == "" {
		return nil
	}
	return []string{flat}
}

// Len counts characters of the flat rendering.
func (t Transcript) Len() int {
	return utf8.RuneCountInString(t.Flat())
}

// Validate applies the minimum-length gate. A non-positive minChars uses
// DefaultMinChars.
func Validate(t Transcript, minChars int) error {
	if minChars <= 0 {
		minChars = DefaultMinChars
	}
	if n := t.Len(); n < minChars {
		return services.Wrap(services.ErrValidation, "transcript", "validate",
			fmt.Sprintf("%d characters, need %d", n, minChars), ErrTooShort)
	}
	return nil
}

// FromText splits already-clean text into paragraphs on blank lines. Text
// that carries no blank lines becomes a single caption-style line, so
// renormalizing a flat rendering is a no-op.
func FromText(text string) Transcript {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var paragraphs []string
	for _, block := range strings.Split(text, "\n\n") {
		block = strings.TrimSpace(block)
		if block != "" {
			paragraphs = append(paragraphs, block)
		}
	}
	if len(paragraphs) <= 1 {
		return Transcript{Lines: paragraphs}
	}
	return Transcript{Lines: paragraphs, Speakers: true}
}
