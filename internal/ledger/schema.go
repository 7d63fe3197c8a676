package ledger

// schemaVersion identifies the current layout. A mismatch drops and
// recreates the tables; the ledger is a report, not a record of truth.
const schemaVersion = 1

const schemaSQL = `
CREATE TABLE IF NOT EXISTS schema_info (
    version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS runs (
    id            TEXT PRIMARY KEY,
    feed_url      TEXT NOT NULL,
    podcast_title TEXT NOT NULL,
    output_dir    TEXT NOT NULL,
    downloaded    INTEGER NOT NULL,
    skipped       INTEGER NOT NULL,
    failed        INTEGER NOT NULL,
    started_at    TEXT NOT NULL,
    finished_at   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS run_episodes (
    run_id   TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    position INTEGER NOT NULL,
    title    TEXT NOT NULL,
    status   TEXT NOT NULL,
    detail   TEXT NOT NULL DEFAULT '',
    PRIMARY KEY (run_id, position)
);

CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at DESC);
`

const dropSQL = `
DROP TABLE IF EXISTS run_episodes;
DROP TABLE IF EXISTS runs;
DROP TABLE IF EXISTS schema_info;
`
