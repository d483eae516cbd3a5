package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS datasets (
    file_path            TEXT PRIMARY KEY,
    source               TEXT NOT NULL,
    headers              TEXT NOT NULL,
    mapping              TEXT NOT NULL,
    row_count            INTEGER NOT NULL,
    parse_errors         INTEGER NOT NULL DEFAULT 0,
    file_mtime_ns        INTEGER NOT NULL,
    file_size            INTEGER NOT NULL,
    parsed_at            TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS dataset_records (
    file_path            TEXT NOT NULL REFERENCES datasets(file_path) ON DELETE CASCADE,
    row_index            INTEGER NOT NULL,
    period               TEXT,
    vals                 TEXT NOT NULL,
    PRIMARY KEY (file_path, row_index)
);

CREATE TABLE IF NOT EXISTS file_tracker (
    file_path            TEXT PRIMARY KEY,
    mtime_ns             INTEGER NOT NULL,
    size_bytes           INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS notes (
    note_id              TEXT PRIMARY KEY,
    owner                TEXT,
    body                 TEXT NOT NULL,
    urgent               INTEGER NOT NULL DEFAULT 0,
    status               TEXT,
    due                  TEXT,
    created_at           TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS goals (
    metric               TEXT PRIMARY KEY,
    target               REAL NOT NULL,
    updated_at           TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS history (
    id                   INTEGER PRIMARY KEY AUTOINCREMENT,
    source               TEXT NOT NULL,
    periods              INTEGER NOT NULL,
    revenue              REAL,
    expenses             REAL,
    profit               REAL,
    customers            REAL,
    churn_rate           REAL,
    created_at           TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_notes_created ON notes(created_at);
CREATE INDEX IF NOT EXISTS idx_history_created ON history(created_at);
`
