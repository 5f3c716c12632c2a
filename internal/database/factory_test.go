package database_test

import (
	"context"
	"sync"
	"testing"

	"gbit-go/internal/config"
	"gbit-go/internal/database"
	"gbit-go/internal/gbit"
)

func TestMemoryStoreSurvivesConcurrentReads(t *testing.T) {
	store, err := database.NewStoreFromConfig(config.DatabaseConfig{Type: "memory"})
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	if err := store.MigrateUp(); err != nil {
		t.Fatalf("migrating: %v", err)
	}

	ctx := context.Background()
	if _, err := store.Commit(ctx, "alice", "proj", "m", "gb_1",
		gbit.Manifest{{Path: "f.txt", Content: "x"}}); err != nil {
		t.Fatalf("commit failed: %v", err)
	}

	// Parallel reads must all see the committed data: an in-memory store
	// whose pool grows past one connection would serve empty databases.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			manifest, err := store.CloneRepository(ctx, "alice", "proj")
			if err != nil {
				t.Errorf("CloneRepository failed: %v", err)
				return
			}
			if len(manifest) != 1 {
				t.Errorf("clone returned %d files, want 1", len(manifest))
			}
		}()
	}
	wg.Wait()
}

func TestNewStoreFromConfig(t *testing.T) {
	t.Run("sqlite requires data_dir", func(t *testing.T) {
		if _, err := database.NewStoreFromConfig(config.DatabaseConfig{Type: "sqlite"}); err == nil {
			t.Error("missing data_dir accepted")
		}
	})

	t.Run("sqlite", func(t *testing.T) {
		store, err := database.NewStoreFromConfig(config.DatabaseConfig{
			Type: "sqlite", DataDir: t.TempDir(),
		})
		if err != nil {
			t.Fatalf("creating sqlite store: %v", err)
		}
		defer store.Close()
		if store.Path() == "" {
			t.Error("sqlite store has no path")
		}
	})

	t.Run("unknown type", func(t *testing.T) {
		if _, err := database.NewStoreFromConfig(config.DatabaseConfig{Type: "postgres"}); err == nil {
			t.Error("unknown database type accepted")
		}
	})
}
