package gbit

import "strings"

// TreeNode is one node of a reconstructed directory tree. A directory node
// has a non-nil Children map; a file node carries the full relative path of
// the manifest entry it came from.
type TreeNode struct {
	Name     string
	IsDir    bool
	Path     string               // file nodes only: full relative path
	Children map[string]*TreeNode // directory nodes only
}

// BuildTree rebuilds a hierarchical tree from a flat manifest. For every
// entry the path is split on "/": directory nodes are created for all
// segments but the last, and a file node is attached for the last.
//
// The manifest's order is irrelevant; hierarchy is derived from path
// segments alone. A manifest implying both a file and a directory at the
// same position (e.g. "a" and "a/b") fails with *ConflictError. The
// function holds no state between calls.
func BuildTree(m Manifest) (*TreeNode, error) {
	root := &TreeNode{
		Name:     "",
		IsDir:    true,
		Children: make(map[string]*TreeNode),
	}

	for _, entry := range m {
		segments := strings.Split(entry.Path, "/")
		node := root

		for i, seg := range segments {
			last := i == len(segments)-1
			prefix := strings.Join(segments[:i+1], "/")

			child, ok := node.Children[seg]
			if !ok {
				child = &TreeNode{Name: seg, IsDir: !last}
				if child.IsDir {
					child.Children = make(map[string]*TreeNode)
				} else {
					child.Path = entry.Path
				}
				node.Children[seg] = child
			} else if child.IsDir == last {
				// Existing node kind disagrees with what this entry needs.
				return nil, &ConflictError{Path: prefix}
			}

			node = child
		}
	}

	return root, nil
}
