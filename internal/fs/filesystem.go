package fs

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gbit-go/internal/gbit"
)

// OSFilesystemManager is the real filesystem implementation of
// gbit.FilesystemManager. It performs actual filesystem operations using
// the os package, applying the ignore rules during discovery.
type OSFilesystemManager struct {
	ignore *IgnoreMatcher
}

// NewOSFilesystemManager creates a filesystem manager that operates on the
// real filesystem. extraPatterns are applied in addition to the built-in
// ignore rules (typically the contents of a .gbitignore file).
func NewOSFilesystemManager(extraPatterns []string) *OSFilesystemManager {
	return &OSFilesystemManager{ignore: NewIgnoreMatcher(extraPatterns)}
}

// Resolve validates a raw path and returns a Path object.
func (m *OSFilesystemManager) Resolve(rawPath string) (*gbit.Path, error) {
	absPath, err := filepath.Abs(rawPath)
	if err != nil {
		return nil, fmt.Errorf("resolving absolute path: %w", err)
	}

	info, err := os.Lstat(absPath)
	if err != nil {
		return nil, fmt.Errorf("stat path: %w", err)
	}

	// Check for special file types we don't support
	mode := info.Mode()
	if mode&os.ModeSymlink != 0 {
		return nil, fmt.Errorf("symlinks not supported: %s", absPath)
	}
	if mode&os.ModeDevice != 0 {
		return nil, fmt.Errorf("device files not supported: %s", absPath)
	}
	if mode&os.ModeNamedPipe != 0 {
		return nil, fmt.Errorf("named pipes not supported: %s", absPath)
	}
	if mode&os.ModeSocket != 0 {
		return nil, fmt.Errorf("sockets not supported: %s", absPath)
	}

	return gbit.NewPath(absPath, info.IsDir(), info), nil
}

// CollectFiles discovers non-ignored regular files under root, depth-first.
// The ignore rules are checked once per entry before recursion, so an
// ignored directory's subtree is never walked.
func (m *OSFilesystemManager) CollectFiles(root *gbit.Path) ([]*gbit.Path, error) {
	if !root.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", root.String())
	}

	var paths []*gbit.Path
	err := filepath.WalkDir(root.String(), func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == root.String() {
			return nil
		}

		rel, err := filepath.Rel(root.String(), p)
		if err != nil {
			return err
		}

		if m.ignore.Ignore(rel, d.IsDir()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return fmt.Errorf("stat %s: %w", p, err)
		}
		paths = append(paths, gbit.NewPath(p, false, info))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}

	return paths, nil
}

// ReadFile reads the full content of a regular file.
func (m *OSFilesystemManager) ReadFile(path *gbit.Path) ([]byte, error) {
	if path.IsDir() {
		return nil, fmt.Errorf("cannot read directory as file: %s", path.String())
	}
	return os.ReadFile(path.String())
}

// WriteManifest materializes a manifest under root. Every entry path is
// re-normalized before use, so a manifest received over the wire cannot
// write outside root.
func (m *OSFilesystemManager) WriteManifest(root string, manifest gbit.Manifest) error {
	if err := os.MkdirAll(root, 0755); err != nil {
		return fmt.Errorf("creating target directory: %w", err)
	}

	for _, entry := range manifest {
		key, err := gbit.NormalizePath(entry.Path)
		if err != nil {
			return err
		}

		dest := filepath.Join(root, filepath.FromSlash(key))
		if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
			return fmt.Errorf("creating directory for %s: %w", key, err)
		}
		if err := os.WriteFile(dest, []byte(entry.Content), 0644); err != nil {
			return fmt.Errorf("writing %s: %w", key, err)
		}
	}

	return nil
}

// Compile-time check that OSFilesystemManager implements gbit.FilesystemManager
var _ gbit.FilesystemManager = (*OSFilesystemManager)(nil)
