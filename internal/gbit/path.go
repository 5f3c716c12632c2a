package gbit

import (
	"path"
	"strings"
)

// NormalizePath canonicalizes a capture-relative path into its portable form:
// forward slashes, no leading "./" or "/", no empty or "." segments.
// Paths that would escape the capture root (a ".." segment surviving
// resolution) are rejected with *InvalidPathError, as are empty paths.
//
// The function is pure and idempotent: NormalizePath(NormalizePath(p))
// returns the same result as NormalizePath(p).
func NormalizePath(raw string) (string, error) {
	if raw == "" {
		return "", &InvalidPathError{Path: raw, Reason: "empty path"}
	}

	p := strings.ReplaceAll(raw, "\\", "/")
	p = path.Clean(p)
	p = strings.TrimPrefix(p, "/")

	if p == "." || p == "" {
		return "", &InvalidPathError{Path: raw, Reason: "path resolves to the capture root"}
	}
	if p == ".." || strings.HasPrefix(p, "../") {
		return "", &InvalidPathError{Path: raw, Reason: "path escapes the capture root"}
	}

	return p, nil
}
