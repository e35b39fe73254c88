// Package pipeline drives one synchronization pass.
//
// A run takes the per-pipeline lock, loads the ledger, enumerates work from
// the source, and then processes items strictly one at a time: fetch or
// resume, normalize, gate on length, publish to every sink, and record the
// outcome. Item failures are classified and recorded; only lock, ledger and
// enumeration failures end the run early. The ledger is flushed on every
// exit path that still holds the lock.
package pipeline
