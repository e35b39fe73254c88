// Package history records pipeline runs and per-item outcomes in SQLite.
//
// The ledger stays the source of truth for what is done; history is an
// append-only audit trail for the history command and for diagnosing
// failures after the fact. Schema changes bump schemaVersion in schema.go;
// users delete the database to adopt a new schema.
package history
