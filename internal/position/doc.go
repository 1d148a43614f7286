// Package position persists scan progress for one (module, log file) pair.
//
// Each pair maps to a single text record in the state directory holding three
// whitespace-separated integers: byte position, inode identity, and the file
// size observed at the end of the previous scan. Reconcile is the rotation and
// truncation policy: an identity change or a shrinking size resets the
// position to zero so the whole replacement file is scanned.
//
// Records are rewritten in place without temp-file atomicity, and concurrent
// invocations against the same key are not coordinated. Both are accepted
// constraints; the external scheduler guarantees at most one run per key.
package position
