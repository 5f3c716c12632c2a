package gbit

import (
	"fmt"
	"path/filepath"
)

// Collector captures a directory tree as a flat manifest of relative-path /
// content pairs. Collection is read-only and all-or-nothing: a file that
// becomes unreadable mid-walk aborts the whole capture with
// *FilesystemReadError, never a partial manifest.
type Collector struct {
	fsmgr  FilesystemManager
	logger Logger
}

// NewCollector creates a Collector over the given filesystem.
func NewCollector(fsmgr FilesystemManager, logger Logger) *Collector {
	return &Collector{fsmgr: fsmgr, logger: logger}
}

// Collect walks root depth-first and returns a manifest of every
// non-ignored regular file under it. Paths are normalized to portable
// relative keys; filesystem uniqueness guarantees there are no duplicates.
func (c *Collector) Collect(root *Path) (Manifest, error) {
	if !root.IsDir() {
		return nil, fmt.Errorf("capture root is not a directory: %s", root.String())
	}

	files, err := c.fsmgr.CollectFiles(root)
	if err != nil {
		return nil, err
	}

	manifest := make(Manifest, 0, len(files))
	for _, f := range files {
		content, err := c.fsmgr.ReadFile(f)
		if err != nil {
			return nil, &FilesystemReadError{Path: f.String(), Err: err}
		}

		rel, err := filepath.Rel(root.String(), f.String())
		if err != nil {
			return nil, fmt.Errorf("computing relative path for %s: %w", f.String(), err)
		}

		key, err := NormalizePath(rel)
		if err != nil {
			return nil, err
		}

		manifest = append(manifest, FileEntry{Path: key, Content: string(content)})
	}

	c.logger.Debug("directory captured", "root", root.String(), "files", len(manifest))
	return manifest, nil
}
