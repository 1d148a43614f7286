// Package history records one row per scan invocation in SQLite so operators
// can audit what a monitoring agent has been reporting. The database is an
// optional convenience, separate from the per-log position records that drive
// resumption; deleting it never affects scan correctness.
package history
