// Package sweep drives one scan invocation end to end: resolve the position
// key, establish or load the record, reconcile it against the live file, run
// the scan, and persist the new offset. Every invocation is terminal — there
// are no retries, and any I/O failure aborts the run before anything is
// rendered.
package sweep
