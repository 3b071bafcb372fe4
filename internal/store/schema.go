package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS file_stats (
    file_path     TEXT NOT NULL,
    policy        TEXT NOT NULL,
    session_id    TEXT NOT NULL,
    project_name  TEXT,
    provider      TEXT NOT NULL,
    mtime_ns      INTEGER NOT NULL,
    size_bytes    INTEGER NOT NULL,
    parsed_at     TEXT NOT NULL,
    stats_json    TEXT NOT NULL,
    PRIMARY KEY (file_path, policy)
);

CREATE INDEX IF NOT EXISTS idx_file_stats_provider ON file_stats(provider);
`
