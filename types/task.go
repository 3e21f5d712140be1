package types

// NodeKind distinguishes files from folders. A node's kind is declared by
// the parent folder that discovered it (the folder flag on child
// listings), not self-reported.
type NodeKind int

const (
	KindFile NodeKind = iota
	KindFolder
)

// String returns the lowercase kind name.
func (k NodeKind) String() string {
	if k == KindFolder {
		return "folder"
	}
	return "file"
}

// Task is one unit of pending discovery work. Tasks are immutable and are
// re-submitted verbatim when a fetch must be retried.
type Task struct {
	Kind NodeKind
	Path Path
}
