package gbit

import (
	"context"
	"errors"
	"testing"

	"gbit-go/internal/model"
)

// stubStore records the last commit it received and serves canned data.
type stubStore struct {
	lastOwner    string
	lastName     string
	lastMessage  string
	lastToken    string
	lastManifest Manifest

	deleted  []string
	searches []string
	files    map[string]string
}

func (s *stubStore) Commit(_ context.Context, ownerID, name, message, token string, m Manifest) (*model.Repository, error) {
	s.lastOwner = ownerID
	s.lastName = name
	s.lastMessage = message
	s.lastToken = token
	s.lastManifest = m
	return &model.Repository{Name: name, OwnerID: ownerID, LastMessage: message, LastHash: token}, nil
}

func (s *stubStore) FindRepository(context.Context, string, string) (*model.Repository, error) {
	return nil, &NotFoundError{Resource: "repository", Key: "x"}
}

func (s *stubStore) ListRepositories(context.Context, string) ([]*model.Repository, error) {
	return nil, nil
}

func (s *stubStore) ListFiles(context.Context, string, string) ([]string, error) {
	return nil, nil
}

func (s *stubStore) ReadFile(_ context.Context, _, _, relativePath string) (string, error) {
	if content, ok := s.files[relativePath]; ok {
		return content, nil
	}
	return "", &NotFoundError{Resource: "file", Key: relativePath}
}

func (s *stubStore) CloneRepository(context.Context, string, string) (Manifest, error) {
	return Manifest{}, nil
}

func (s *stubStore) DeleteRepository(_ context.Context, ownerID, name string) error {
	s.deleted = append(s.deleted, ownerID+"/"+name)
	return nil
}

func (s *stubStore) SearchRepositories(_ context.Context, pattern string) ([]*model.Repository, error) {
	s.searches = append(s.searches, pattern)
	return nil, nil
}

func (s *stubStore) Close() error { return nil }

type fixedTokens struct{ token string }

func (g fixedTokens) New() string { return g.token }

func TestServiceCommit(t *testing.T) {
	store := &stubStore{}
	svc := NewSnapshotService(store, fixedTokens{"gb_abc123"}, NewNopLogger())

	m := Manifest{{Path: "src/main.go", Content: "package main"}}
	hash, err := svc.Commit(context.Background(), "alice@example.com", "proj", "initial", m)
	if err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if hash != "gb_abc123" {
		t.Errorf("hash = %q, want minted token", hash)
	}
	if store.lastToken != "gb_abc123" {
		t.Errorf("store received token %q", store.lastToken)
	}
	if store.lastOwner != "alice@example.com" || store.lastName != "proj" {
		t.Errorf("store received %s/%s", store.lastOwner, store.lastName)
	}
	if len(store.lastManifest) != 1 {
		t.Errorf("store received %d entries", len(store.lastManifest))
	}
}

func TestServiceCommitValidation(t *testing.T) {
	m := Manifest{{Path: "a.txt", Content: "x"}}

	cases := []struct {
		name     string
		owner    string
		repo     string
		manifest Manifest
	}{
		{"empty owner", "", "proj", m},
		{"empty repo name", "alice", "", m},
		{"empty manifest", "alice", "proj", nil},
		{"traversal path", "alice", "proj", Manifest{{Path: "../evil", Content: "x"}}},
		{"empty path", "alice", "proj", Manifest{{Path: "", Content: "x"}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := &stubStore{}
			svc := NewSnapshotService(store, fixedTokens{"tok"}, NewNopLogger())

			_, err := svc.Commit(context.Background(), tc.owner, tc.repo, "msg", tc.manifest)
			if err == nil {
				t.Fatal("Commit succeeded, want validation error")
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("got %T, want *ValidationError", err)
			}
			if store.lastToken != "" {
				t.Error("store was reached despite invalid request")
			}
		})
	}
}

func TestServiceReadFileNormalizesPath(t *testing.T) {
	store := &stubStore{files: map[string]string{"src/main.go": "package main"}}
	svc := NewSnapshotService(store, fixedTokens{"tok"}, NewNopLogger())

	content, err := svc.ReadFile(context.Background(), "alice", "proj", "./src/main.go")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if content != "package main" {
		t.Errorf("content = %q", content)
	}

	_, err = svc.ReadFile(context.Background(), "alice", "proj", "../../etc/passwd")
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Errorf("traversal path: got %v, want *ValidationError", err)
	}
}

func TestServiceSearchEmptyPattern(t *testing.T) {
	store := &stubStore{}
	svc := NewSnapshotService(store, fixedTokens{"tok"}, NewNopLogger())

	repos, err := svc.Search(context.Background(), "")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if repos != nil {
		t.Errorf("empty pattern returned %d repos", len(repos))
	}
	if len(store.searches) != 0 {
		t.Error("store was queried for empty pattern")
	}
}

func TestServiceDelete(t *testing.T) {
	store := &stubStore{}
	svc := NewSnapshotService(store, fixedTokens{"tok"}, NewNopLogger())

	if err := svc.Delete(context.Background(), "alice", "gone"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if len(store.deleted) != 1 || store.deleted[0] != "alice/gone" {
		t.Errorf("deleted = %v", store.deleted)
	}
}
