package testutil

import (
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	gbitfs "gbit-go/internal/fs"
	"gbit-go/internal/gbit"
)

// MockFile represents a file in the mock filesystem.
type MockFile struct {
	Content []byte
	ModTime time.Time
}

// MockFilesystemManager is an in-memory gbit.FilesystemManager for tests.
// Paths use forward slashes and are treated as absolute.
type MockFilesystemManager struct {
	files  map[string]*MockFile
	dirs   map[string]bool
	ignore *gbitfs.IgnoreMatcher

	// FailReads maps paths to errors returned from ReadFile, simulating a
	// file that becomes unreadable mid-collection.
	FailReads map[string]error

	// Written records manifests materialized via WriteManifest, keyed by
	// root + "/" + entry path.
	Written map[string]string
}

// NewMockFilesystemManager creates an empty mock filesystem with the
// built-in ignore rules and no extra patterns.
func NewMockFilesystemManager() *MockFilesystemManager {
	return &MockFilesystemManager{
		files:     make(map[string]*MockFile),
		dirs:      make(map[string]bool),
		ignore:    gbitfs.NewIgnoreMatcher(nil),
		FailReads: make(map[string]error),
		Written:   make(map[string]string),
	}
}

// AddDirectory registers a directory (and all its parents).
func (m *MockFilesystemManager) AddDirectory(p string) {
	p = path.Clean(p)
	for p != "/" && p != "." {
		m.dirs[p] = true
		p = path.Dir(p)
	}
}

// AddFile registers a file with content, creating parent directories.
func (m *MockFilesystemManager) AddFile(p string, content []byte) {
	p = path.Clean(p)
	m.files[p] = &MockFile{Content: content, ModTime: time.Now()}
	m.AddDirectory(path.Dir(p))
}

// Resolve validates a path against the mock filesystem.
func (m *MockFilesystemManager) Resolve(rawPath string) (*gbit.Path, error) {
	p := path.Clean(rawPath)
	if m.dirs[p] {
		return gbit.NewPath(p, true, mockFileInfo{name: path.Base(p), dir: true}), nil
	}
	if f, ok := m.files[p]; ok {
		info := mockFileInfo{name: path.Base(p), size: int64(len(f.Content)), mod: f.ModTime}
		return gbit.NewPath(p, false, info), nil
	}
	return nil, fmt.Errorf("stat path: no such file or directory: %s", p)
}

// CollectFiles returns non-ignored regular files under root, emulating the
// real walker: a file inside an ignored directory is never reached.
func (m *MockFilesystemManager) CollectFiles(root *gbit.Path) ([]*gbit.Path, error) {
	if !root.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", root.String())
	}

	prefix := root.String() + "/"
	var keys []string
	for k := range m.files {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var out []*gbit.Path
	for _, k := range keys {
		rel := strings.TrimPrefix(k, prefix)
		if m.relIgnored(rel) {
			continue
		}
		f := m.files[k]
		info := mockFileInfo{name: path.Base(k), size: int64(len(f.Content)), mod: f.ModTime}
		out = append(out, gbit.NewPath(k, false, info))
	}
	return out, nil
}

// relIgnored applies the ignore rules to every prefix of rel, the way the
// real depth-first walker would.
func (m *MockFilesystemManager) relIgnored(rel string) bool {
	segments := strings.Split(rel, "/")
	for i := range segments {
		prefix := strings.Join(segments[:i+1], "/")
		isDir := i < len(segments)-1
		if m.ignore.Ignore(prefix, isDir) {
			return true
		}
	}
	return false
}

// ReadFile returns the file's content, or the injected failure.
func (m *MockFilesystemManager) ReadFile(p *gbit.Path) ([]byte, error) {
	if err, ok := m.FailReads[p.String()]; ok {
		return nil, err
	}
	f, ok := m.files[p.String()]
	if !ok {
		return nil, fmt.Errorf("no such file: %s", p.String())
	}
	return f.Content, nil
}

// WriteManifest records the materialized files in Written.
func (m *MockFilesystemManager) WriteManifest(root string, manifest gbit.Manifest) error {
	for _, entry := range manifest {
		key, err := gbit.NormalizePath(entry.Path)
		if err != nil {
			return err
		}
		m.Written[path.Clean(root)+"/"+key] = entry.Content
	}
	return nil
}

// mockFileInfo implements fs.FileInfo for mock entries.
type mockFileInfo struct {
	name string
	size int64
	mod  time.Time
	dir  bool
}

func (i mockFileInfo) Name() string       { return i.name }
func (i mockFileInfo) Size() int64        { return i.size }
func (i mockFileInfo) Mode() fs.FileMode  { return 0644 }
func (i mockFileInfo) ModTime() time.Time { return i.mod }
func (i mockFileInfo) IsDir() bool        { return i.dir }
func (i mockFileInfo) Sys() any           { return nil }

// Compile-time check that MockFilesystemManager implements gbit.FilesystemManager
var _ gbit.FilesystemManager = (*MockFilesystemManager)(nil)
