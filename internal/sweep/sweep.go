package sweep

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"

	"logsweep/internal/history"
	"logsweep/internal/position"
	"logsweep/internal/scan"
)

// ErrNotFound marks a log file path that does not exist at the start of the
// invocation.
var ErrNotFound = errors.New("log file not found")

// Request describes one scan invocation. Up and Bottom are nil when the
// corresponding positional parameter was absent; a nil pair selects
// no-context mode.
type Request struct {
	LogPath string
	Module  string
	Pattern string
	Up      *int
	Bottom  *int
	Summary bool
}

// Outcome is the computed result of one invocation, handed to the rendering
// collaborator.
type Outcome struct {
	RunID    string
	Baseline bool
	Rotated  bool
	Result   scan.Result
}

// Sweeper owns the collaborators for a single process invocation. The
// history store may be nil when history recording is disabled.
type Sweeper struct {
	store   *position.Store
	history *history.Store
	logger  *slog.Logger
}

// New constructs a Sweeper.
func New(store *position.Store, hist *history.Store, logger *slog.Logger) *Sweeper {
	return &Sweeper{store: store, history: hist, logger: logger}
}

// Run executes the per-invocation state machine. A key with no prior record
// takes the baseline path: the current end of file is persisted and no
// matches are reported. Otherwise the record is loaded, reconciled against
// rotation and truncation, the appended region is scanned, and the new
// offset is saved.
func (s *Sweeper) Run(ctx context.Context, req Request) (Outcome, error) {
	if strings.TrimSpace(req.LogPath) == "" || strings.TrimSpace(req.Module) == "" {
		return Outcome{}, errors.New("log path and module are required")
	}

	if _, err := os.Stat(req.LogPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Outcome{}, fmt.Errorf("%w: %s", ErrNotFound, req.LogPath)
		}
		return Outcome{}, fmt.Errorf("stat log file: %w", err)
	}

	outcome := Outcome{RunID: uuid.NewString()}
	key := position.Key(req.Module, req.LogPath)
	logger := s.logger.With("run_id", outcome.RunID, "module", req.Module, "log", req.LogPath)

	if !s.store.Exists(key) {
		rec, err := s.store.Initialize(key, req.LogPath)
		if err != nil {
			return Outcome{}, err
		}
		outcome.Baseline = true
		outcome.Result.NewOffset = rec.Position
		logger.Info("baseline established", "position", rec.Position)
		s.recordRun(ctx, logger, req, outcome, rec.Position)
		return outcome, nil
	}

	rec, err := s.store.Load(key)
	if err != nil {
		return Outcome{}, err
	}
	startOffset := rec.Position

	rec, rotated, err := s.store.Reconcile(rec, req.LogPath)
	if err != nil {
		return Outcome{}, err
	}
	if rotated {
		outcome.Rotated = true
		startOffset = 0
		logger.Info("rotation or truncation detected, rescanning from start")
	}

	result, err := scan.Scan(req.LogPath, rec.Position, req.Pattern, window(req))
	if err != nil {
		return Outcome{}, err
	}
	outcome.Result = result

	rec.Position = result.NewOffset
	if err := s.store.Save(key, rec); err != nil {
		return Outcome{}, err
	}

	logger.Debug("scan complete",
		"matches", result.TotalMatches,
		"groups", len(result.Groups),
		"offset", result.NewOffset,
	)
	s.recordRun(ctx, logger, req, outcome, startOffset)
	return outcome, nil
}

// recordRun writes the invocation to the history database. History is an
// observability aid, not part of the scan contract, so failures are logged
// and swallowed.
func (s *Sweeper) recordRun(ctx context.Context, logger *slog.Logger, req Request, outcome Outcome, startOffset int64) {
	if s.history == nil {
		return
	}
	err := s.history.RecordRun(ctx, history.Run{
		RunID:        outcome.RunID,
		Module:       req.Module,
		LogPath:      req.LogPath,
		Baseline:     outcome.Baseline,
		Rotated:      outcome.Rotated,
		StartOffset:  startOffset,
		EndOffset:    outcome.Result.NewOffset,
		TotalMatches: outcome.Result.TotalMatches,
	})
	if err != nil {
		logger.Warn("record history", "error", err)
	}
}

func window(req Request) *scan.Window {
	if req.Up == nil && req.Bottom == nil {
		return nil
	}
	w := &scan.Window{}
	if req.Up != nil {
		w.Up = *req.Up
	}
	if req.Bottom != nil {
		w.Bottom = *req.Bottom
	}
	return w
}
