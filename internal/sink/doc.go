// Package sink publishes normalized transcripts downstream.
//
// Every sink checks for its own prior output before writing: the local file
// sink by path, the document store by document name within the folder, and
// the workspace database by a transcript heading on the episode page. A hit
// is reported as an existing Ack rather than an error.
package sink
