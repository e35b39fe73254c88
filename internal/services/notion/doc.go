// Package notion wraps the workspace database API: querying a database by a
// numeric property, reading and appending page blocks, and updating URL
// properties. Requests are rate limited and carry the pinned API version.
package notion
