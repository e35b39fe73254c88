// Package httpapi is the shared JSON-over-HTTP plumbing used by the
// transcription, file store, and workspace clients.
//
// It applies a request rate limit, retries 408/429/5xx and network timeouts
// with capped exponential backoff (honouring Retry-After), and converts the
// final failure into an error tagged with the services taxonomy so callers
// never inspect status codes themselves.
package httpapi
