// Package textutil provides text helpers shared by the matcher, the
// transcript normalizer, and the file sink.
//
// The primary use cases are:
//   - Folding case and diacritics before names are compared
//   - Computing a longest-common-subsequence similarity ratio
//   - Sanitizing filenames and path segments for safe filesystem use
package textutil
