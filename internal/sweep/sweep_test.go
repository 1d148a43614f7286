package sweep_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"logsweep/internal/history"
	"logsweep/internal/logging"
	"logsweep/internal/position"
	"logsweep/internal/scan"
	"logsweep/internal/sweep"
)

func newLogger(t *testing.T) *slog.Logger {
	t.Helper()
	logger, err := logging.New(logging.Options{Level: "error", Format: "console", Writer: io.Discard})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return logger
}

func newSweeper(t *testing.T) (*sweep.Sweeper, *position.Store) {
	t.Helper()
	store, err := position.NewStore(filepath.Join(t.TempDir(), "state"))
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	return sweep.New(store, nil, newLogger(t)), store
}

func writeLog(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
}

func appendLog(t *testing.T, path, content string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open append: %v", err)
	}
	if _, err := f.WriteString(content); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func groupLines(res scan.Result) [][]string {
	out := make([][]string, 0, len(res.Groups))
	for _, g := range res.Groups {
		out = append(out, g.Lines)
	}
	return out
}

func TestFirstRunEstablishesBaseline(t *testing.T) {
	sw, _ := newSweeper(t)
	log := filepath.Join(t.TempDir(), "app.log")
	writeLog(t, log, "ERROR historical\n")

	outcome, err := sw.Run(context.Background(), sweep.Request{LogPath: log, Module: "app", Pattern: "ERROR"})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !outcome.Baseline {
		t.Fatal("expected baseline outcome")
	}
	if outcome.Result.TotalMatches != 0 || len(outcome.Result.Groups) != 0 {
		t.Fatalf("baseline run must not report matches: %+v", outcome.Result)
	}
	if outcome.Result.NewOffset != int64(len("ERROR historical\n")) {
		t.Fatalf("baseline position not at EOF: %d", outcome.Result.NewOffset)
	}
	if outcome.RunID == "" {
		t.Fatal("expected run id")
	}
}

func TestSecondRunReportsOnlyAppendedRegion(t *testing.T) {
	sw, _ := newSweeper(t)
	log := filepath.Join(t.TempDir(), "app.log")
	writeLog(t, log, "ERROR old\nfine\n")
	ctx := context.Background()
	req := sweep.Request{LogPath: log, Module: "app", Pattern: "ERROR"}

	if _, err := sw.Run(ctx, req); err != nil {
		t.Fatalf("baseline run failed: %v", err)
	}

	appendLog(t, log, "still fine\nERROR fresh\n")

	outcome, err := sw.Run(ctx, req)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if outcome.Baseline || outcome.Rotated {
		t.Fatalf("unexpected flags: %+v", outcome)
	}
	want := [][]string{{"ERROR fresh"}}
	if !reflect.DeepEqual(groupLines(outcome.Result), want) {
		t.Fatalf("old lines re-reported: %v", groupLines(outcome.Result))
	}

	// A third run with no appends reports nothing.
	outcome, err = sw.Run(ctx, req)
	if err != nil {
		t.Fatalf("third run failed: %v", err)
	}
	if outcome.Result.TotalMatches != 0 {
		t.Fatalf("matches re-reported: %+v", outcome.Result)
	}
}

func TestRotationRescansWholeReplacement(t *testing.T) {
	sw, _ := newSweeper(t)
	dir := t.TempDir()
	log := filepath.Join(dir, "app.log")
	writeLog(t, log, "ERROR before rotation and quite long\n")
	ctx := context.Background()
	req := sweep.Request{LogPath: log, Module: "app", Pattern: "ERROR"}

	if _, err := sw.Run(ctx, req); err != nil {
		t.Fatalf("baseline run failed: %v", err)
	}

	// Rotate: create the replacement first so its inode differs, then rename
	// it over the original path.
	replacement := filepath.Join(dir, "app.log.1")
	writeLog(t, replacement, "ERROR in new file\n")
	if err := os.Rename(replacement, log); err != nil {
		t.Fatalf("rename: %v", err)
	}

	outcome, err := sw.Run(ctx, req)
	if err != nil {
		t.Fatalf("post-rotation run failed: %v", err)
	}
	if !outcome.Rotated {
		t.Fatal("rotation not detected")
	}
	want := [][]string{{"ERROR in new file"}}
	if !reflect.DeepEqual(groupLines(outcome.Result), want) {
		t.Fatalf("replacement not scanned from start: %v", groupLines(outcome.Result))
	}
}

func TestTruncationRescansFromStart(t *testing.T) {
	sw, _ := newSweeper(t)
	log := filepath.Join(t.TempDir(), "app.log")
	writeLog(t, log, "a very long first generation of content\n")
	ctx := context.Background()
	req := sweep.Request{LogPath: log, Module: "app", Pattern: "ERROR"}

	if _, err := sw.Run(ctx, req); err != nil {
		t.Fatalf("baseline run failed: %v", err)
	}

	// Truncate in place and rewrite shorter content with a match.
	writeLog(t, log, "ERROR short\n")

	outcome, err := sw.Run(ctx, req)
	if err != nil {
		t.Fatalf("post-truncation run failed: %v", err)
	}
	if !outcome.Rotated {
		t.Fatal("truncation not detected")
	}
	if outcome.Result.TotalMatches != 1 {
		t.Fatalf("truncated file not rescanned: %+v", outcome.Result)
	}
}

func TestContextWindowPassedThrough(t *testing.T) {
	sw, _ := newSweeper(t)
	log := filepath.Join(t.TempDir(), "app.log")
	writeLog(t, log, "seed\n")
	ctx := context.Background()

	up, bottom := 1, 1
	req := sweep.Request{LogPath: log, Module: "app", Pattern: "ERROR", Up: &up, Bottom: &bottom}
	if _, err := sw.Run(ctx, req); err != nil {
		t.Fatalf("baseline run failed: %v", err)
	}

	appendLog(t, log, "a\nERROR b\nc\nERROR d\ne\n")

	outcome, err := sw.Run(ctx, req)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	want := [][]string{
		{"a", "ERROR b", "c"},
		{"c", "ERROR d", "e"},
	}
	if !reflect.DeepEqual(groupLines(outcome.Result), want) {
		t.Fatalf("unexpected groups: %v", groupLines(outcome.Result))
	}
	if outcome.Result.TotalMatches != 2 {
		t.Fatalf("unexpected total: %d", outcome.Result.TotalMatches)
	}
}

func TestMissingLogFile(t *testing.T) {
	sw, _ := newSweeper(t)
	req := sweep.Request{
		LogPath: filepath.Join(t.TempDir(), "absent.log"),
		Module:  "app",
		Pattern: "ERROR",
	}
	_, err := sw.Run(context.Background(), req)
	if !errors.Is(err, sweep.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMalformedStatePropagates(t *testing.T) {
	sw, store := newSweeper(t)
	log := filepath.Join(t.TempDir(), "app.log")
	writeLog(t, log, "seed\n")
	key := position.Key("app", log)
	if err := os.WriteFile(filepath.Join(store.Dir(), key), []byte("not a record"), 0o644); err != nil {
		t.Fatalf("corrupt state: %v", err)
	}

	_, err := sw.Run(context.Background(), sweep.Request{LogPath: log, Module: "app", Pattern: "ERROR"})
	if !errors.Is(err, position.ErrMalformedState) {
		t.Fatalf("expected ErrMalformedState, got %v", err)
	}
}

func TestInvalidPatternPropagates(t *testing.T) {
	sw, _ := newSweeper(t)
	log := filepath.Join(t.TempDir(), "app.log")
	writeLog(t, log, "seed\n")
	ctx := context.Background()

	// Baseline first; pattern compilation happens on the scan path.
	if _, err := sw.Run(ctx, sweep.Request{LogPath: log, Module: "app", Pattern: "ERROR"}); err != nil {
		t.Fatalf("baseline run failed: %v", err)
	}
	_, err := sw.Run(ctx, sweep.Request{LogPath: log, Module: "app", Pattern: "([bad"})
	if !errors.Is(err, scan.ErrPattern) {
		t.Fatalf("expected ErrPattern, got %v", err)
	}
}

func TestHistoryRecordsRuns(t *testing.T) {
	stateDir := filepath.Join(t.TempDir(), "state")
	store, err := position.NewStore(stateDir)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	hist, err := history.Open(filepath.Join(stateDir, "history.db"))
	if err != nil {
		t.Fatalf("history.Open failed: %v", err)
	}
	t.Cleanup(func() { _ = hist.Close() })
	sw := sweep.New(store, hist, newLogger(t))

	log := filepath.Join(t.TempDir(), "app.log")
	writeLog(t, log, "seed\n")
	ctx := context.Background()
	req := sweep.Request{LogPath: log, Module: "app", Pattern: "seed"}

	if _, err := sw.Run(ctx, req); err != nil {
		t.Fatalf("baseline run failed: %v", err)
	}
	appendLog(t, log, "seed again\n")
	if _, err := sw.Run(ctx, req); err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	runs, err := hist.Recent(ctx, "app", 10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 history rows, got %d", len(runs))
	}
	if !runs[1].Baseline || runs[0].Baseline {
		t.Fatalf("baseline flags wrong: %+v", runs)
	}
	if runs[0].TotalMatches != 1 {
		t.Fatalf("match count not recorded: %+v", runs[0])
	}
	if runs[0].StartOffset != int64(len("seed\n")) || runs[0].EndOffset <= runs[0].StartOffset {
		t.Fatalf("offsets not recorded: %+v", runs[0])
	}
}
