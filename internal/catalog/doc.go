// Package catalog holds the canonical episode list.
//
// The list is read from a JSON or YAML file exported from the workspace
// database and is the only trusted source of episode ids, guest names, and
// video references. Index preserves file order (the matcher breaks ties by
// it) and offers newest-first iteration for the pipeline driver.
package catalog
