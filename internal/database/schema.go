package database

// Schema is the complete current database schema. Tests apply it directly
// to in-memory databases; production databases are built from the
// migrations under migrations/files, which must stay equivalent.
const Schema = `
CREATE TABLE repositories (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    owner_id TEXT NOT NULL,
    public INTEGER NOT NULL DEFAULT 1,
    last_message TEXT NOT NULL DEFAULT '',
    last_hash TEXT NOT NULL DEFAULT '',
    created_at DATETIME NOT NULL,
    updated_at DATETIME NOT NULL,
    UNIQUE (owner_id, name)
);

CREATE TABLE file_records (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    repository_id INTEGER NOT NULL REFERENCES repositories(id) ON DELETE CASCADE,
    path TEXT NOT NULL,
    content TEXT NOT NULL,
    UNIQUE (repository_id, path)
);

CREATE INDEX idx_file_records_repository ON file_records(repository_id);
`
