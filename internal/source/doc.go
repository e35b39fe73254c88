// Package source holds the adapters that fetch raw transcript material.
//
// Every adapter enumerates its work items from the catalog (or, for the
// file store, from a search reconciled through the matcher) and exposes a
// single Fetch that either retrieves the artifact or resumes work recorded
// in the ledger. Errors carry the services taxonomy markers plus a reason
// sentinel from this package so the driver can label outcomes.
package source
