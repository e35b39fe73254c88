// Package logs tails the transcriptsync log file for the `logs` command.
//
// Reading is bounded: Last keeps only the requested number of lines in
// memory, and Follow polls from a byte offset so a long-running pipeline can
// be watched from another terminal. A truncated or rotated file restarts from
// the beginning.
package logs
