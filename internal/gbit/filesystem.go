package gbit

import "io/fs"

// Path represents a validated filesystem path with cached metadata.
// Path objects are created by FilesystemManager.Resolve, which validates
// the path exists, resolves it to an absolute path, and caches stat info.
type Path struct {
	absPath string
	isDir   bool
	info    fs.FileInfo
}

// NewPath creates a Path from its components.
// This is primarily for use by FilesystemManager implementations.
func NewPath(absPath string, isDir bool, info fs.FileInfo) *Path {
	return &Path{
		absPath: absPath,
		isDir:   isDir,
		info:    info,
	}
}

// String returns the absolute path as a string.
func (p *Path) String() string {
	return p.absPath
}

// IsDir returns true if this path points to a directory.
func (p *Path) IsDir() bool {
	return p.isDir
}

// Info returns the cached file info from when the path was resolved.
func (p *Path) Info() fs.FileInfo {
	return p.info
}

// FilesystemManager abstracts file access so the Directory Collector and the
// clone materializer can be tested without touching the real filesystem.
type FilesystemManager interface {
	// Resolve validates a raw path and returns a Path object.
	// It resolves the path to an absolute path, stats it, and validates
	// it's a regular file or directory (not a symlink, device, etc.).
	Resolve(rawPath string) (*Path, error)

	// CollectFiles discovers regular files under the given directory,
	// depth-first. Ignored entries are skipped; an ignored directory is
	// never descended into.
	CollectFiles(root *Path) ([]*Path, error)

	// ReadFile reads the full content of a regular file.
	ReadFile(path *Path) ([]byte, error)

	// WriteManifest materializes a manifest under the given root,
	// creating intermediate directories as needed.
	WriteManifest(root string, m Manifest) error
}
