package gbit

import (
	"context"

	"gbit-go/internal/model"
)

// SnapshotService is the orchestration layer between the transport and the
// SnapshotStore. It validates requests before any storage work begins,
// mints snapshot tokens, and keeps transport concerns out of storage logic.
type SnapshotService struct {
	store  SnapshotStore
	tokens TokenGenerator
	logger Logger
}

// NewSnapshotService creates a SnapshotService with the provided dependencies.
func NewSnapshotService(store SnapshotStore, tokens TokenGenerator, logger Logger) *SnapshotService {
	return &SnapshotService{
		store:  store,
		tokens: tokens,
		logger: logger,
	}
}

// Commit validates the push, mints a new snapshot token, and replaces the
// repository's snapshot with the manifest. Returns the minted token.
func (s *SnapshotService) Commit(ctx context.Context, ownerID, name, message string, m Manifest) (string, error) {
	if ownerID == "" {
		return "", &ValidationError{Field: "ownerId", Reason: "must not be empty"}
	}
	if name == "" {
		return "", &ValidationError{Field: "repoName", Reason: "must not be empty"}
	}
	if len(m) == 0 {
		return "", &ValidationError{Field: "files", Reason: "manifest must not be empty"}
	}
	for _, entry := range m {
		if _, err := NormalizePath(entry.Path); err != nil {
			return "", &ValidationError{Field: "files", Reason: err.Error()}
		}
	}

	token := s.tokens.New()
	repo, err := s.store.Commit(ctx, ownerID, name, message, token, m)
	if err != nil {
		return "", err
	}

	s.logger.Info("commit applied",
		"owner", ownerID, "repo", name, "files", len(m), "hash", repo.LastHash)
	return repo.LastHash, nil
}

// ListRepositories returns all repositories owned by ownerID.
func (s *SnapshotService) ListRepositories(ctx context.Context, ownerID string) ([]*model.Repository, error) {
	if ownerID == "" {
		return nil, &ValidationError{Field: "ownerId", Reason: "must not be empty"}
	}
	return s.store.ListRepositories(ctx, ownerID)
}

// ListFiles returns the relative paths of a repository's current snapshot.
func (s *SnapshotService) ListFiles(ctx context.Context, ownerID, name string) ([]string, error) {
	return s.store.ListFiles(ctx, ownerID, name)
}

// ReadFile returns one file's content. The request path goes through the
// normalizer first so crafted traversal paths never reach the store.
func (s *SnapshotService) ReadFile(ctx context.Context, ownerID, name, rawPath string) (string, error) {
	key, err := NormalizePath(rawPath)
	if err != nil {
		return "", &ValidationError{Field: "path", Reason: err.Error()}
	}
	return s.store.ReadFile(ctx, ownerID, name, key)
}

// Clone returns the repository's complete current snapshot.
func (s *SnapshotService) Clone(ctx context.Context, ownerID, name string) (Manifest, error) {
	return s.store.CloneRepository(ctx, ownerID, name)
}

// Delete removes a repository and all its files. Tolerant: deleting a
// repository that does not exist succeeds.
func (s *SnapshotService) Delete(ctx context.Context, ownerID, name string) error {
	if err := s.store.DeleteRepository(ctx, ownerID, name); err != nil {
		return err
	}
	s.logger.Info("repository deleted", "owner", ownerID, "repo", name)
	return nil
}

// Search returns public repositories whose name contains the pattern,
// case-insensitively. An empty pattern matches nothing.
func (s *SnapshotService) Search(ctx context.Context, pattern string) ([]*model.Repository, error) {
	if pattern == "" {
		return nil, nil
	}
	return s.store.SearchRepositories(ctx, pattern)
}
