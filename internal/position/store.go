package position

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"

	"logsweep/internal/fileid"
)

// ErrMalformedState marks a state file that exists but does not parse into
// the three-field record. Callers fail loudly rather than default silently.
var ErrMalformedState = errors.New("malformed state file")

const stateSuffix = ".offset"

// Record is the persisted state for one (module, log file) pair.
type Record struct {
	// Position is the byte offset where the next scan begins.
	Position int64
	// Identity is the inode of the file the position refers to.
	Identity uint64
	// Size is the file size observed at the end of the previous scan,
	// used only to detect in-place truncation.
	Size int64
}

// Store reads and writes position records under a single state directory.
type Store struct {
	dir string
}

// NewStore ensures the state directory exists and is writable.
func NewStore(dir string) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("state directory is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create state directory %q: %w", dir, err)
	}
	if err := unix.Access(dir, unix.W_OK|unix.X_OK); err != nil {
		return nil, fmt.Errorf("state directory %q not writable: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the state directory backing the store.
func (s *Store) Dir() string {
	return s.dir
}

// Key derives the state file name for a (module, log file) pair. Only the
// log file's base name participates, so two logs with the same base name in
// different directories collide; that limitation is accepted.
func Key(module, logPath string) string {
	base := filepath.Base(strings.TrimSpace(logPath))
	return sanitize(module) + "_" + sanitize(base) + stateSuffix
}

// Exists reports whether a record has been persisted for key.
func (s *Store) Exists(key string) bool {
	info, err := os.Stat(s.path(key))
	return err == nil && !info.IsDir()
}

// Initialize creates the baseline record for key: position at the current end
// of the log file, identity from the same stat sample. The caller reports no
// matches on a baseline run; its purpose is establishing the offset.
func (s *Store) Initialize(key, logPath string) (Record, error) {
	id, err := fileid.Inspect(logPath)
	if err != nil {
		return Record{}, err
	}
	rec := Record{Position: id.Size, Identity: id.Inode, Size: id.Size}
	if err := s.Save(key, rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// Load reads the persisted record for key.
func (s *Store) Load(key string) (Record, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		return Record{}, fmt.Errorf("read state file: %w", err)
	}
	fields := strings.Fields(string(data))
	if len(fields) != 3 {
		return Record{}, fmt.Errorf("%w: %s: expected 3 fields, found %d", ErrMalformedState, key, len(fields))
	}
	pos, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return Record{}, fmt.Errorf("%w: %s: position: %v", ErrMalformedState, key, err)
	}
	identity, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil {
		return Record{}, fmt.Errorf("%w: %s: identity: %v", ErrMalformedState, key, err)
	}
	size, err := strconv.ParseInt(fields[2], 10, 64)
	if err != nil {
		return Record{}, fmt.Errorf("%w: %s: size: %v", ErrMalformedState, key, err)
	}
	return Record{Position: pos, Identity: identity, Size: size}, nil
}

// Reconcile compares the log file's current identity and size against rec.
// A changed identity means the file was rotated; a smaller size with the same
// identity means it was truncated in place. Both reset the position to zero
// and adopt the new identity. A file that has only grown keeps its position.
// Size and identity are sampled without locking; the check is best effort.
func (s *Store) Reconcile(rec Record, logPath string) (Record, bool, error) {
	id, err := fileid.Inspect(logPath)
	if err != nil {
		return Record{}, false, err
	}
	reset := id.Inode != rec.Identity || id.Size < rec.Size
	if reset {
		rec.Position = 0
		rec.Identity = id.Inode
	}
	rec.Size = id.Size
	return rec, reset, nil
}

// Save writes rec as the single-line three-field record for key. The file is
// fully rewritten; a crash mid-write can leave it truncated.
func (s *Store) Save(key string, rec Record) error {
	line := fmt.Sprintf("%d %d %d\n", rec.Position, rec.Identity, rec.Size)
	if err := os.WriteFile(s.path(key), []byte(line), 0o644); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}
	return nil
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key)
}

func sanitize(value string) string {
	value = strings.TrimSpace(value)
	var b strings.Builder
	b.Grow(len(value))
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
