// Package transcript turns raw source material into publishable text.
//
// Caption and subtitle tracks are reduced to their payload lines with cue
// numbers, timings, headers and inline markup removed and consecutive
// repeats collapsed. Diarized utterances become speaker-labeled paragraphs.
// Both end up in a Transcript, which renders either space-joined or
// line-joined and enforces the minimum-length gate before anything is
// published.
package transcript
