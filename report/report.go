// Package report transforms a frozen size map into the three output
// documents: a flat sorted list, a nested-by-path tree, and a
// visualization-ready child-array tree.
//
// The builders are pure, derive each shape independently from the same
// map, and agree on every (path, size) pair. They assume the crawl's
// guarantee that every entry's ancestors are present in the map.
package report

import (
	"encoding/json"

	"github.com/reversefold/artifactory-disk-usage/types"
)

// FlatEntry is one (path, size) pair. It marshals as the two-element
// JSON array [path, size] the downstream consumers expect.
type FlatEntry struct {
	Path types.Path
	Size int64
}

// MarshalJSON encodes the entry as [path, size].
func (e FlatEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{e.Path, e.Size})
}

// Flat returns the size map as a path-sorted list of (path, size) pairs.
func Flat(sizes types.SizeMap) []FlatEntry {
	entries := sizes.Sorted()
	out := make([]FlatEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, FlatEntry{Path: e.Path, Size: e.Size})
	}
	return out
}

// Node is one folder of the nested tree, with children keyed by their
// last path segment.
type Node struct {
	Path     types.Path       `json:"path"`
	Size     int64            `json:"size"`
	Children map[string]*Node `json:"children"`
}

// Nested builds the nested-by-path tree top-down. Entries are visited in
// lexicographic path order, so each node's parent is guaranteed to exist
// before the node itself is inserted.
func Nested(sizes types.SizeMap) *Node {
	var root *Node
	for _, e := range sizes.Sorted() {
		n := &Node{Path: e.Path, Size: e.Size, Children: map[string]*Node{}}
		if e.Path == types.Root {
			root = n
			continue
		}
		cur := root
		segs := e.Path.Segments()
		for _, seg := range segs[:len(segs)-1] {
			cur = cur.Children[seg]
		}
		cur.Children[segs[len(segs)-1]] = n
	}
	return root
}

// D3Node is one folder of the child-array tree.
type D3Node struct {
	Name     string     `json:"name"`
	Path     types.Path `json:"path"`
	Size     int64      `json:"size"`
	Children []*D3Node  `json:"children"`
}

// D3 builds the child-array tree. Parents are located by a linear scan
// of the current node's children by name; fan-out per directory is small
// enough that an index is not worth carrying.
func D3(sizes types.SizeMap) *D3Node {
	var root *D3Node
	for _, e := range sizes.Sorted() {
		n := &D3Node{Name: e.Path.Base(), Path: e.Path, Size: e.Size, Children: []*D3Node{}}
		if e.Path == types.Root {
			root = n
			continue
		}
		cur := root
		segs := e.Path.Segments()
		for _, seg := range segs[:len(segs)-1] {
			for _, child := range cur.Children {
				if child.Name == seg {
					cur = child
					break
				}
			}
		}
		cur.Children = append(cur.Children, n)
	}
	return root
}
