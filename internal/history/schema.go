package history

const schema = `
CREATE TABLE IF NOT EXISTS scan_runs (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id        TEXT NOT NULL,
    module        TEXT NOT NULL,
    log_path      TEXT NOT NULL,
    scanned_at    TEXT NOT NULL,
    baseline      INTEGER NOT NULL DEFAULT 0,
    rotated       INTEGER NOT NULL DEFAULT 0,
    start_offset  INTEGER NOT NULL DEFAULT 0,
    end_offset    INTEGER NOT NULL DEFAULT 0,
    total_matches INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_scan_runs_module ON scan_runs(module, scanned_at);
`
