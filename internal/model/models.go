package model

import "time"

// Repository is one named snapshot container. (OwnerID, Name) is the unique
// key; the owner identity is an opaque string (typically an email).
type Repository struct {
	ID          int64
	Name        string
	OwnerID     string
	Public      bool
	LastMessage string    // message of the most recent commit
	LastHash    string    // snapshot token of the most recent commit
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// FileRecord is one file of a repository's current snapshot. Path is the
// normalized relative path, unique within the repository and case-sensitive.
// Rows are replaced wholesale on every commit and cascade-deleted with the
// repository.
type FileRecord struct {
	ID           int64
	RepositoryID int64
	Path         string
	Content      string
}
