package gbit

import "fmt"

// InvalidPathError reports a path that cannot be represented as a
// capture-relative key (empty, or escaping the capture root).
type InvalidPathError struct {
	Path   string
	Reason string
}

func (e *InvalidPathError) Error() string {
	return fmt.Sprintf("invalid path %q: %s", e.Path, e.Reason)
}

// ValidationError reports a malformed request field. It is always raised
// before any storage work begins.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError reports a missing repository or file.
type NotFoundError struct {
	Resource string // "repository" or "file"
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.Key)
}

// FilesystemReadError reports a local read failure during collection,
// naming the offending path. A collection that hits one returns no
// manifest at all.
type FilesystemReadError struct {
	Path string
	Err  error
}

func (e *FilesystemReadError) Error() string {
	return fmt.Sprintf("reading %s: %v", e.Path, e.Err)
}

func (e *FilesystemReadError) Unwrap() error { return e.Err }

// TransportError reports a network, timeout, or payload-size failure
// between client and server. The core never retries these itself.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport failure during %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ConflictError reports a manifest that implies both a file and a
// directory at the same tree position.
type ConflictError struct {
	Path string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("tree conflict at %q: entry is both a file and a directory", e.Path)
}

// StorageError reports a store transaction failure. The transaction it
// belongs to has been rolled back; the repository retains its previous
// complete snapshot.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
