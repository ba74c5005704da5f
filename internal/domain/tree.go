package domain

import (
	"path"
	"sort"
)

// Tree maps a relative directory path to the ordered list of its immediate
// children. The root directory is keyed by the empty string, nested
// directories by forward-slash joined segments ("a/b/c"). Every directory
// record has a corresponding key of its own, possibly with an empty list.
//
// A Tree is built once and never mutated afterwards, so readers may share it
// without locking.
type Tree map[string][]Record

// NewTree returns an empty tree containing only the root key
func NewTree() Tree {
	return Tree{"": nil}
}

// Lookup returns the child list for a directory path
func (t Tree) Lookup(dir string) ([]Record, bool) {
	records, ok := t[dir]
	return records, ok
}

// Find returns the child record with the given name under dir
func (t Tree) Find(dir, name string) (Record, bool) {
	for _, r := range t[dir] {
		if r.Name == name {
			return r, true
		}
	}
	return Record{}, false
}

// Paths returns all directory keys in sorted order. Sorting slash-joined
// relative paths places every directory before its descendants, which the
// planner relies on for deterministic traversal.
func (t Tree) Paths() []string {
	paths := make([]string, 0, len(t))
	for p := range t {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Join appends a child name to a relative directory path
func Join(dir, name string) string {
	if dir == "" {
		return name
	}
	return path.Join(dir, name)
}

// Size returns the total number of records across all directories
func (t Tree) Size() int {
	n := 0
	for _, records := range t {
		n += len(records)
	}
	return n
}

// Equal reports structural equality: same directory keys and, per directory,
// the same set of records (name, kind, digest). Order within a child list is
// accidental and does not participate.
func (t Tree) Equal(other Tree) bool {
	if len(t) != len(other) {
		return false
	}
	for dir, records := range t {
		otherRecords, ok := other[dir]
		if !ok || len(records) != len(otherRecords) {
			return false
		}
		for _, r := range records {
			found, ok := other.Find(dir, r.Name)
			if !ok || found != r {
				return false
			}
		}
	}
	return true
}
