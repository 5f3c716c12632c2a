package gbit

import "io"

// Vault provides an interface for off-site mirrors of the server's
// database. Operations use io.Reader/io.Writer for streaming so large
// databases never need to be held in memory.
type Vault interface {
	// Put stores a named item along with a version marker.
	// size is the number of bytes that will be read from r.
	// Known names: "db" (SQLite database snapshot).
	Put(name string, r io.Reader, size int64, version int64) error

	// Get retrieves a named item and writes it to w.
	Get(name string, w io.Writer) error

	// Version returns the stored version for a named item.
	// Returns 0 if nothing has been stored under this name.
	Version(name string) (int64, error)

	// ValidateSetup verifies that the vault is accessible and properly configured.
	ValidateSetup() error
}
