// Package fileid inspects the on-disk identity of log files.
//
// The inode number is the rotation-detection signal: a log rotated by an
// external tool gets a new inode even when the path is reused, while a file
// that has only been appended to keeps its inode. Size is sampled in the same
// stat call so callers can detect in-place truncation.
package fileid

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Identity captures the physical identity of a file at one instant.
type Identity struct {
	// Inode is the platform identity token. It changes when the file at a
	// path is replaced, even if the path and size look the same.
	Inode uint64
	// Size is the byte size observed in the same stat call.
	Size int64
}

// Inspect stats path and returns its identity. The sample is not atomic with
// any subsequent read of the file; callers treat it as best effort.
func Inspect(path string) (Identity, error) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return Identity{}, fmt.Errorf("stat %s: %w", path, err)
	}
	return Identity{Inode: st.Ino, Size: st.Size}, nil
}
