// Package matcher reconciles loosely named external artifacts (Drive file
// names, caption track labels) to catalog episodes by guest name.
//
// Names are folded and stripped of file noise before comparison. A name that
// contains the guest (or is contained by it) is accepted at confidence 1.0
// and ends the scan; otherwise the best character-sequence ratio wins if it
// clears the threshold. Ties go to the earliest catalog entry.
package matcher
