// Package language normalizes language names and codes to the two-letter
// form the caption and transcription services expect.
package language
