// Package ledger persists per-item pipeline progress.
//
// Each pipeline owns one JSON snapshot mapping item keys to their state.
// Snapshots are replaced atomically, so readers never observe a partial
// file. Submissions of paid work are saved immediately; other transitions
// are checkpointed every N records and flushed before the run exits.
package ledger
