package fs

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"gbit-go/internal/gbit"
)

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("creating directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

func TestCollectFilesSkipsIgnoredSubtrees(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, filepath.Join(root, "src", "main.go"), "package main")
	writeTestFile(t, filepath.Join(root, "src", "util.go"), "package main")
	writeTestFile(t, filepath.Join(root, "node_modules", "dep", "index.js"), "x")
	writeTestFile(t, filepath.Join(root, ".git", "HEAD"), "ref")
	writeTestFile(t, filepath.Join(root, ".env"), "SECRET=1")

	m := NewOSFilesystemManager(nil)
	rootPath, err := m.Resolve(root)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	paths, err := m.CollectFiles(rootPath)
	if err != nil {
		t.Fatalf("CollectFiles failed: %v", err)
	}

	var rels []string
	for _, p := range paths {
		rel, err := filepath.Rel(root, p.String())
		if err != nil {
			t.Fatalf("Rel failed: %v", err)
		}
		rels = append(rels, filepath.ToSlash(rel))
	}
	sort.Strings(rels)

	want := []string{"src/main.go", "src/util.go"}
	if len(rels) != len(want) {
		t.Fatalf("collected %v, want %v", rels, want)
	}
	for i := range want {
		if rels[i] != want[i] {
			t.Errorf("collected[%d] = %q, want %q", i, rels[i], want[i])
		}
	}
}

func TestCollectFilesExtraPatterns(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, filepath.Join(root, "app.go"), "package app")
	writeTestFile(t, filepath.Join(root, "debug.log"), "noise")

	m := NewOSFilesystemManager([]string{"*.log"})
	rootPath, err := m.Resolve(root)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	paths, err := m.CollectFiles(rootPath)
	if err != nil {
		t.Fatalf("CollectFiles failed: %v", err)
	}
	if len(paths) != 1 || filepath.Base(paths[0].String()) != "app.go" {
		t.Errorf("collected %d files, want only app.go", len(paths))
	}
}

func TestResolveRejectsSymlink(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "real.txt")
	writeTestFile(t, target, "x")

	link := filepath.Join(root, "link.txt")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks not supported here: %v", err)
	}

	m := NewOSFilesystemManager(nil)
	if _, err := m.Resolve(link); err == nil {
		t.Error("Resolve accepted a symlink")
	}
}

func TestWriteManifestRoundTrip(t *testing.T) {
	manifest := gbit.Manifest{
		{Path: "README.md", Content: "# hello"},
		{Path: "src/app/index.js", Content: "console.log(1)"},
		{Path: "src/main.go", Content: "package main"},
	}

	target := filepath.Join(t.TempDir(), "cloned")
	m := NewOSFilesystemManager(nil)
	if err := m.WriteManifest(target, manifest); err != nil {
		t.Fatalf("WriteManifest failed: %v", err)
	}

	rootPath, err := m.Resolve(target)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	collector := gbit.NewCollector(m, gbit.NewNopLogger())
	got, err := collector.Collect(rootPath)
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	if len(got) != len(manifest) {
		t.Fatalf("round trip produced %d files, want %d: %v", len(got), len(manifest), got.Paths())
	}
	for _, entry := range manifest {
		content, ok := got.Lookup(entry.Path)
		if !ok {
			t.Errorf("%s missing after round trip", entry.Path)
			continue
		}
		if content != entry.Content {
			t.Errorf("%s content = %q, want %q", entry.Path, content, entry.Content)
		}
	}
}

func TestWriteManifestRejectsTraversal(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "cloned")
	outside := filepath.Join(root, "escaped.txt")

	m := NewOSFilesystemManager(nil)
	err := m.WriteManifest(target, gbit.Manifest{
		{Path: "../escaped.txt", Content: "breakout"},
	})
	if err == nil {
		t.Fatal("WriteManifest accepted a traversal path")
	}

	if _, statErr := os.Stat(outside); !os.IsNotExist(statErr) {
		t.Error("traversal entry was written outside the target root")
	}
}
