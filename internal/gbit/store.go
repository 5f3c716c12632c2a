package gbit

import (
	"context"

	"gbit-go/internal/model"
)

// SnapshotStore owns the durable state: the repository registry and each
// repository's current file set. The file set is mutated only through
// Commit and DeleteRepository, and at any observable instant equals exactly
// the manifest of the most recently completed commit.
type SnapshotStore interface {
	// Commit replaces a repository's entire snapshot with the given
	// manifest inside a single all-or-nothing transaction: the repository
	// row is created if absent, every prior file row is deleted, one row
	// per manifest entry is inserted, and message/token/timestamp are
	// updated. On failure the transaction rolls back and the repository
	// retains its previous complete snapshot.
	//
	// Concurrent commits to the same (ownerID, name) are serialized;
	// commits to distinct repositories proceed in parallel.
	Commit(ctx context.Context, ownerID, name, message, token string, m Manifest) (*model.Repository, error)

	// FindRepository returns the repository for an owner/name pair, or
	// *NotFoundError if it does not exist.
	FindRepository(ctx context.Context, ownerID, name string) (*model.Repository, error)

	// ListRepositories returns all repositories owned by ownerID, ordered
	// by id.
	ListRepositories(ctx context.Context, ownerID string) ([]*model.Repository, error)

	// ListFiles returns the relative paths of the repository's current
	// snapshot, ordered by path.
	ListFiles(ctx context.Context, ownerID, name string) ([]string, error)

	// ReadFile returns the content of one file in the current snapshot.
	// Fails with *NotFoundError if the repository or the path is absent.
	ReadFile(ctx context.Context, ownerID, name, relativePath string) (string, error)

	// CloneRepository returns the repository's complete current snapshot
	// as a manifest. An existing repository with no files yields an empty
	// manifest; a missing repository yields *NotFoundError.
	CloneRepository(ctx context.Context, ownerID, name string) (Manifest, error)

	// DeleteRepository removes the repository and, transactionally, every
	// owned file row. Deleting a non-existent repository is a no-op.
	DeleteRepository(ctx context.Context, ownerID, name string) error

	// SearchRepositories returns public repositories whose name contains
	// the pattern, case-insensitively.
	SearchRepositories(ctx context.Context, namePattern string) ([]*model.Repository, error)

	// Close closes the underlying storage.
	Close() error
}
