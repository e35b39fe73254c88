// Package logging assembles structured slog loggers and formatting helpers used
// across transcriptsync.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so pipeline code can tag log
// lines with the run id, pipeline name, and item key. Warnings and errors go
// through WarnWithContext and ErrorWithContext so every line carries an
// event type, a hint, and (for warnings) the impact on the run.
package logging
