// Package notifications delivers run summaries via pluggable notifiers.
//
// The default implementation publishes to an ntfy topic URL from config.toml
// and degrades to a no-op when notifications are disabled. Runs that process
// nothing and end cleanly stay quiet.
package notifications
