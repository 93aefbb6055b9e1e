// Package history defines the edit-history data model: project snapshots,
// backward-patch entries, and ordered logs.
package history

import (
	"errors"
	"maps"
)

// ErrCorruptHistory reports a log that violates the chain invariants:
// an edited change referencing a file absent from the snapshot it is
// rolled against, or a log whose timestamps are not sorted ascending.
var ErrCorruptHistory = errors.New("corrupt history")

// Snapshot maps filenames to full file contents and represents a
// complete project state at one instant.
type Snapshot map[string]string

// Clone returns an independent copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	out := make(Snapshot, len(s))
	maps.Copy(out, s)

	return out
}

// ChangeKind tags the variant of a FileChange.
type ChangeKind string

// FileChange variants.
const (
	// ChangeAdded marks a file that did not exist before the entry.
	// Rolling the entry backward deletes the file.
	ChangeAdded ChangeKind = "added"
	// ChangeRemoved marks a file deleted by the entry. Rolling backward
	// restores Value.
	ChangeRemoved ChangeKind = "removed"
	// ChangeEdited marks a content change. Patch is an opaque backward
	// payload: applied to the newer content it yields the older one.
	ChangeEdited ChangeKind = "edited"
)

// FileChange is one per-file backward change inside an entry. Exactly
// one of Value (added, removed) or Patch (edited) is meaningful,
// selected by Kind. Filenames are unique within a single entry.
type FileChange struct {
	Kind     ChangeKind `json:"kind"`
	Filename string     `json:"filename"`
	Value    string     `json:"value,omitempty"`
	Patch    string     `json:"patch,omitempty"`
}

// Entry is one logged transformation. It describes how to go from the
// snapshot after the entry to the snapshot before it, so every entry
// is a backward patch relative to whatever state it is chained from.
type Entry struct {
	Timestamp     int64        `json:"timestamp"`
	EditorVersion string       `json:"editorVersion"`
	Changes       []FileChange `json:"changes"`
}

// Log is an ordered sequence of entries, ascending by timestamp.
// It is append-only in normal operation and shortened only by the
// compactor.
type Log []Entry

// Sorted reports whether the log's timestamps are non-decreasing.
func (l Log) Sorted() bool {
	for i := 1; i < len(l); i++ {
		if l[i].Timestamp < l[i-1].Timestamp {
			return false
		}
	}

	return true
}
