package database

import (
	"context"
	"path/filepath"
	"testing"

	"gbit-go/internal/gbit"
)

func TestDeleteCascadeOnFreshPoolConnection(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "gbit.db"))
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

	// Park the connection the commit ran on so the delete is forced onto
	// a fresh pooled connection. The cascade must hold there too.
	held, err := store.db.Conn(ctx)
	if err != nil {
		t.Fatalf("pinning connection: %v", err)
	}
	defer held.Close()

	if err := store.DeleteRepository(ctx, "alice", "proj"); err != nil {
		t.Fatalf("DeleteRepository failed: %v", err)
	}

	var orphans int
	if err := held.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM file_records`).Scan(&orphans); err != nil {
		t.Fatalf("counting file rows: %v", err)
	}
	if orphans != 0 {
		t.Errorf("%d file rows orphaned after delete", orphans)
	}
}
