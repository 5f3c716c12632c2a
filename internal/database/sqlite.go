package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"gbit-go/internal/database/migrations"
	"gbit-go/internal/gbit"
	"gbit-go/internal/model"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStore implements gbit.SnapshotStore using SQLite.
type SQLiteStore struct {
	db    *sql.DB
	path  string
	clock gbit.Clock

	// Per-repository commit locks. SQLite already serializes writers, but
	// the keyed lock guarantees two racing commits to the same repository
	// never interleave their delete/insert phases even if the storage
	// engine changes, while commits to distinct repositories stay
	// independent.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewSQLiteStore creates a new SQLite-backed snapshot store.
// path can be a file path or ":memory:" for an in-memory database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	return &SQLiteStore{
		db:    db,
		path:  path,
		clock: gbit.RealClock{},
		locks: make(map[string]*sync.Mutex),
	}, nil
}

// NewSQLiteStoreFromDB wraps an existing database connection.
// The caller is responsible for ensuring the connection is properly configured.
func NewSQLiteStoreFromDB(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{
		db:    db,
		path:  "",
		clock: gbit.RealClock{},
		locks: make(map[string]*sync.Mutex),
	}
}

// WithClock replaces the store's time source. Tests use this to pin
// created_at/updated_at values.
func (s *SQLiteStore) WithClock(c gbit.Clock) *SQLiteStore {
	s.clock = c
	return s
}

// OpenConnection opens and configures a SQLite database connection with
// appropriate PRAGMAs. Exported for tools and tests that need a properly
// configured connection. path can be a file path or ":memory:".
func OpenConnection(path string) (*sql.DB, error) {
	// The settings ride on the DSN so every pooled connection gets them,
	// not just the one that would run a PRAGMA statement. Foreign keys
	// (OFF by default in SQLite) drive the cascade delete of file rows;
	// busy_timeout makes writers wait for locks instead of failing when
	// commits to distinct repositories land at the same time.
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Each pooled connection to ":memory:" would be a separate empty
	// database, so pin the pool to a single connection.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	return db, nil
}

// repoLock returns the commit lock for an owner/name pair, creating it on
// first use.
func (s *SQLiteStore) repoLock(ownerID, name string) *sync.Mutex {
	key := ownerID + "\x00" + name
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	return l
}

// Commit replaces the repository's snapshot with the manifest in a single
// all-or-nothing transaction: find or create the repository row, delete
// every prior file row, insert one row per manifest entry, then update
// message/token/timestamp. Any failure rolls the whole transaction back
// and leaves the previous snapshot intact.
func (s *SQLiteStore) Commit(ctx context.Context, ownerID, name, message, token string, m gbit.Manifest) (*model.Repository, error) {
	lock := s.repoLock(ownerID, name)
	lock.Lock()
	defer lock.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, &gbit.StorageError{Op: "commit", Err: fmt.Errorf("starting transaction: %w", err)}
	}
	defer tx.Rollback()

	now := s.clock.Now().UTC()

	repo, err := findRepositoryTx(ctx, tx, ownerID, name)
	if err != nil {
		return nil, &gbit.StorageError{Op: "commit", Err: err}
	}
	if repo == nil {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO repositories (name, owner_id, public, last_message, last_hash, created_at, updated_at)
			 VALUES (?, ?, 1, '', '', ?, ?)`,
			name, ownerID, now, now)
		if err != nil {
			return nil, &gbit.StorageError{Op: "commit", Err: fmt.Errorf("creating repository: %w", err)}
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, &gbit.StorageError{Op: "commit", Err: fmt.Errorf("reading repository id: %w", err)}
		}
		repo = &model.Repository{
			ID:        id,
			Name:      name,
			OwnerID:   ownerID,
			Public:    true,
			CreatedAt: now,
		}
	}

	// Replace, never accumulate: the stored set must equal exactly the
	// transmitted set after every commit.
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM file_records WHERE repository_id = ?`, repo.ID); err != nil {
		return nil, &gbit.StorageError{Op: "commit", Err: fmt.Errorf("purging previous snapshot: %w", err)}
	}

	insert, err := tx.PrepareContext(ctx,
		`INSERT INTO file_records (repository_id, path, content) VALUES (?, ?, ?)`)
	if err != nil {
		return nil, &gbit.StorageError{Op: "commit", Err: fmt.Errorf("preparing insert: %w", err)}
	}
	defer insert.Close()

	for _, entry := range m {
		if _, err := insert.ExecContext(ctx, repo.ID, entry.Path, entry.Content); err != nil {
			return nil, &gbit.StorageError{Op: "commit", Err: fmt.Errorf("inserting %s: %w", entry.Path, err)}
		}
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE repositories SET last_message = ?, last_hash = ?, updated_at = ? WHERE id = ?`,
		message, token, now, repo.ID); err != nil {
		return nil, &gbit.StorageError{Op: "commit", Err: fmt.Errorf("updating repository: %w", err)}
	}

	if err := tx.Commit(); err != nil {
		return nil, &gbit.StorageError{Op: "commit", Err: fmt.Errorf("committing transaction: %w", err)}
	}

	repo.LastMessage = message
	repo.LastHash = token
	repo.UpdatedAt = now
	return repo, nil
}

// FindRepository returns the repository for an owner/name pair.
func (s *SQLiteStore) FindRepository(ctx context.Context, ownerID, name string) (*model.Repository, error) {
	repo, err := findRepository(ctx, s.db, ownerID, name)
	if err != nil {
		return nil, err
	}
	return repo, nil
}

// ListRepositories returns all repositories owned by ownerID, ordered by id.
func (s *SQLiteStore) ListRepositories(ctx context.Context, ownerID string) ([]*model.Repository, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, owner_id, public, last_message, last_hash, created_at, updated_at
		 FROM repositories WHERE owner_id = ? ORDER BY id`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing repositories: %w", err)
	}
	defer rows.Close()

	return scanRepositories(rows)
}

// ListFiles returns the relative paths of the repository's current snapshot.
func (s *SQLiteStore) ListFiles(ctx context.Context, ownerID, name string) ([]string, error) {
	repo, err := findRepository(ctx, s.db, ownerID, name)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT path FROM file_records WHERE repository_id = ? ORDER BY path`, repo.ID)
	if err != nil {
		return nil, fmt.Errorf("listing files: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scanning file path: %w", err)
		}
		paths = append(paths, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing files: %w", err)
	}
	return paths, nil
}

// ReadFile returns the content of one file in the current snapshot.
func (s *SQLiteStore) ReadFile(ctx context.Context, ownerID, name, relativePath string) (string, error) {
	repo, err := findRepository(ctx, s.db, ownerID, name)
	if err != nil {
		return "", err
	}

	var content string
	err = s.db.QueryRowContext(ctx,
		`SELECT content FROM file_records WHERE repository_id = ? AND path = ?`,
		repo.ID, relativePath).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return "", &gbit.NotFoundError{Resource: "file", Key: relativePath}
	}
	if err != nil {
		return "", fmt.Errorf("reading file: %w", err)
	}
	return content, nil
}

// CloneRepository returns the repository's complete current snapshot.
// An existing repository with no files yields an empty, non-nil manifest.
func (s *SQLiteStore) CloneRepository(ctx context.Context, ownerID, name string) (gbit.Manifest, error) {
	repo, err := findRepository(ctx, s.db, ownerID, name)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT path, content FROM file_records WHERE repository_id = ? ORDER BY path`, repo.ID)
	if err != nil {
		return nil, fmt.Errorf("cloning repository: %w", err)
	}
	defer rows.Close()

	manifest := gbit.Manifest{}
	for rows.Next() {
		var entry gbit.FileEntry
		if err := rows.Scan(&entry.Path, &entry.Content); err != nil {
			return nil, fmt.Errorf("scanning file record: %w", err)
		}
		manifest = append(manifest, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("cloning repository: %w", err)
	}
	return manifest, nil
}

// DeleteRepository removes the repository; file rows go with it via the
// cascade constraint, inside the same transaction. Deleting a repository
// that does not exist is a no-op success.
func (s *SQLiteStore) DeleteRepository(ctx context.Context, ownerID, name string) error {
	lock := s.repoLock(ownerID, name)
	lock.Lock()
	defer lock.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &gbit.StorageError{Op: "delete", Err: fmt.Errorf("starting transaction: %w", err)}
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM repositories WHERE owner_id = ? AND name = ?`, ownerID, name); err != nil {
		return &gbit.StorageError{Op: "delete", Err: fmt.Errorf("deleting repository: %w", err)}
	}

	if err := tx.Commit(); err != nil {
		return &gbit.StorageError{Op: "delete", Err: fmt.Errorf("committing transaction: %w", err)}
	}
	return nil
}

// SearchRepositories returns public repositories whose name contains the
// pattern, case-insensitively.
func (s *SQLiteStore) SearchRepositories(ctx context.Context, namePattern string) ([]*model.Repository, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, owner_id, public, last_message, last_hash, created_at, updated_at
		 FROM repositories
		 WHERE public = 1 AND name LIKE '%' || ? || '%' COLLATE NOCASE
		 ORDER BY id`, namePattern)
	if err != nil {
		return nil, fmt.Errorf("searching repositories: %w", err)
	}
	defer rows.Close()

	return scanRepositories(rows)
}

// Path returns the database file path (or ":memory:" for in-memory databases).
func (s *SQLiteStore) Path() string {
	return s.path
}

// CheckMigrations verifies the database schema is up-to-date.
func (s *SQLiteStore) CheckMigrations() error {
	return migrations.CheckStatus(s.db)
}

// MigrateUp brings the database schema to the latest version.
func (s *SQLiteStore) MigrateUp() error {
	return migrations.Up(s.db)
}

// BackupTo creates a complete copy of the database at destPath using VACUUM INTO.
func (s *SQLiteStore) BackupTo(destPath string) error {
	_, err := s.db.Exec("VACUUM INTO ?", destPath)
	if err != nil {
		return fmt.Errorf("backing up database: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func findRepository(ctx context.Context, q querier, ownerID, name string) (*model.Repository, error) {
	var repo model.Repository
	err := q.QueryRowContext(ctx,
		`SELECT id, name, owner_id, public, last_message, last_hash, created_at, updated_at
		 FROM repositories WHERE owner_id = ? AND name = ?`, ownerID, name).
		Scan(&repo.ID, &repo.Name, &repo.OwnerID, &repo.Public,
			&repo.LastMessage, &repo.LastHash, &repo.CreatedAt, &repo.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &gbit.NotFoundError{Resource: "repository", Key: ownerID + "/" + name}
	}
	if err != nil {
		return nil, fmt.Errorf("finding repository: %w", err)
	}
	return &repo, nil
}

// findRepositoryTx is findRepository inside a transaction, with a nil
// result (not an error) for the not-found case so Commit can create.
func findRepositoryTx(ctx context.Context, tx *sql.Tx, ownerID, name string) (*model.Repository, error) {
	repo, err := findRepository(ctx, tx, ownerID, name)
	if isNotFound(err) {
		return nil, nil
	}
	return repo, err
}

func isNotFound(err error) bool {
	var nf *gbit.NotFoundError
	return errors.As(err, &nf)
}

func scanRepositories(rows *sql.Rows) ([]*model.Repository, error) {
	var repos []*model.Repository
	for rows.Next() {
		var repo model.Repository
		if err := rows.Scan(&repo.ID, &repo.Name, &repo.OwnerID, &repo.Public,
			&repo.LastMessage, &repo.LastHash, &repo.CreatedAt, &repo.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning repository: %w", err)
		}
		repos = append(repos, &repo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating repositories: %w", err)
	}
	return repos, nil
}

// Compile-time check that SQLiteStore implements gbit.SnapshotStore
var _ gbit.SnapshotStore = (*SQLiteStore)(nil)
