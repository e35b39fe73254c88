// Package services defines shared utilities consumed by sources, sinks, and
// the pipeline driver.
//
// It hosts the error taxonomy (transient, source unavailable, timeout,
// validation, sink conflict, configuration) together with Wrap, which tags
// errors with a marker plus component context, and Classify, which turns a
// tagged error into the ledger outcome the driver persists. Context helpers
// carry the run id, pipeline name, and item key so logging can attach them
// without threading extra parameters.
//
// Subpackages contain the HTTP and subprocess clients for the transcription
// service, video platform tooling, cloud file store, and workspace API.
package services
