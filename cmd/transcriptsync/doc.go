// Package main hosts the transcriptsync CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration once, builds the logger, and
// hands off to the pipeline driver, the progress ledgers, the run history and
// the catalog helpers. Commands own presentation only; add behavior to the
// internal packages first and surface it here.
package main
