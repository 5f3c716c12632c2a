package migrations

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestCheckStatusUnmigrated(t *testing.T) {
	db := openTestDB(t)

	if err := CheckStatus(db); err == nil {
		t.Error("CheckStatus passed on an empty database")
	}
}

func TestUpThenCheckStatus(t *testing.T) {
	db := openTestDB(t)

	if err := Up(db); err != nil {
		t.Fatalf("Up failed: %v", err)
	}
	if err := CheckStatus(db); err != nil {
		t.Errorf("CheckStatus failed after Up: %v", err)
	}

	// Migrated schema must accept the core tables.
	if _, err := db.Exec(
		`INSERT INTO repositories (name, owner_id, public, last_message, last_hash, created_at, updated_at)
		 VALUES ('r', 'o', 1, '', '', '2024-01-01', '2024-01-01')`); err != nil {
		t.Errorf("repositories table not usable: %v", err)
	}
	if _, err := db.Exec(
		`INSERT INTO file_records (repository_id, path, content) VALUES (1, 'a.txt', 'x')`); err != nil {
		t.Errorf("file_records table not usable: %v", err)
	}
}

func TestUpIdempotent(t *testing.T) {
	db := openTestDB(t)

	if err := Up(db); err != nil {
		t.Fatalf("first Up failed: %v", err)
	}
	if err := Up(db); err != nil {
		t.Errorf("second Up failed: %v", err)
	}
}
