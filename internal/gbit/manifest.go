package gbit

// FileEntry is one file of a snapshot: a normalized relative path and its
// full text content.
type FileEntry struct {
	Path    string
	Content string
}

// Manifest is the flat file set of one complete directory snapshot.
// Element order carries no meaning; consumers must not rely on it.
type Manifest []FileEntry

// Paths returns the relative paths of all entries, in manifest order.
func (m Manifest) Paths() []string {
	paths := make([]string, len(m))
	for i, e := range m {
		paths[i] = e.Path
	}
	return paths
}

// Lookup returns the content for a relative path and whether it exists.
func (m Manifest) Lookup(path string) (string, bool) {
	for _, e := range m {
		if e.Path == path {
			return e.Content, true
		}
	}
	return "", false
}
