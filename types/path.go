// Package types defines the shared value types for the crawler: storage
// paths, node kinds, discovery tasks, and the accumulated size map.
package types

import (
	"sort"
	"strings"
)

// Root is the implicit ancestor of every repository. It is always present
// in a size map and holds the sum of all crawled repositories.
const Root = Path("/")

// Path identifies a node in the storage hierarchy. Paths are /-delimited
// and absolute; the bare "/" is the root above all repositories.
//
// Child paths are composed with Join rather than raw string splicing so
// the root's empty-segment quirks live in one place.
type Path string

// Join appends a /-delimited relative URI to p. An empty or bare "/" URI
// leaves p unchanged; folder listings report "/" as the path of a
// repository root, which contributes no segment.
func (p Path) Join(uri string) Path {
	if uri == "" || uri == "/" {
		return p
	}
	if !strings.HasPrefix(uri, "/") {
		uri = "/" + uri
	}
	if p == Root {
		return Path(uri)
	}
	return p + Path(uri)
}

// Parent returns p with its last segment dropped. The parent of a
// top-level entry, and of Root itself, is Root.
func (p Path) Parent() Path {
	if p == Root || p == "" {
		return Root
	}
	i := strings.LastIndex(string(p), "/")
	if i <= 0 {
		return Root
	}
	return p[:i]
}

// Ancestors returns every proper ancestor of p, nearest first, always
// ending with Root. Ancestors of Root is just Root.
func (p Path) Ancestors() []Path {
	var anc []Path
	for cur := p.Parent(); ; cur = cur.Parent() {
		anc = append(anc, cur)
		if cur == Root {
			return anc
		}
	}
}

// Repo returns the repository-qualified prefix of p: "/repo" for
// "/repo/a/b.txt". Repo of Root is Root.
func (p Path) Repo() Path {
	s := strings.TrimPrefix(string(p), "/")
	if s == "" {
		return Root
	}
	if i := strings.Index(s, "/"); i >= 0 {
		s = s[:i]
	}
	return Path("/" + s)
}

// Base returns the last segment of p, or "/" for Root.
func (p Path) Base() string {
	if p == Root || p == "" {
		return "/"
	}
	return string(p)[strings.LastIndex(string(p), "/")+1:]
}

// Segments returns the path split into segments. Root has none.
func (p Path) Segments() []string {
	if p == Root || p == "" {
		return nil
	}
	return strings.Split(strings.TrimPrefix(string(p), "/"), "/")
}

// SizeEntry is one (path, cumulative size) pair of a frozen size map.
type SizeEntry struct {
	Path Path
	Size int64
}

// SizeMap accumulates the cumulative byte total of every folder visited
// during a crawl. It is mutated by the aggregation coordinator only and
// frozen before the report builders read it.
type SizeMap map[Path]int64

// NewSizeMap returns a size map seeded with the root entry.
func NewSizeMap() SizeMap {
	return SizeMap{Root: 0}
}

// Attribute adds a file's size to every ancestor folder of its path,
// including Root. Entries are created on first touch, so a folder's value
// is the sum of every descendant file regardless of depth.
func (m SizeMap) Attribute(file Path, size int64) {
	for _, anc := range file.Ancestors() {
		m[anc] += size
	}
}

// Touch ensures an entry exists for the folder path, leaving any total
// already accumulated by file attribution untouched.
func (m SizeMap) Touch(p Path) {
	if _, ok := m[p]; !ok {
		m[p] = 0
	}
}

// Sorted returns the entries in lexicographic path order. Because every
// parent is a strict prefix of its children, parents always sort before
// their descendants.
func (m SizeMap) Sorted() []SizeEntry {
	entries := make([]SizeEntry, 0, len(m))
	for p, s := range m {
		entries = append(entries, SizeEntry{Path: p, Size: s})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return entries
}
