// Package rollback rolls snapshots backward through history entries.
package rollback

import (
	"fmt"

	"github.com/Sumatoshi-tech/timefold/pkg/history"
	"github.com/Sumatoshi-tech/timefold/pkg/patch"
)

// Apply produces the snapshot that existed before the entry was
// recorded. The input snapshot is never mutated; changes touch
// disjoint filenames by invariant, so application order is free.
//
// An edited change referencing a filename absent from the snapshot
// means the log was corrupted or reordered and yields
// history.ErrCorruptHistory.
func Apply(engine patch.Engine, snap history.Snapshot, entry history.Entry) (history.Snapshot, error) {
	out := snap.Clone()

	for _, change := range entry.Changes {
		switch change.Kind {
		case history.ChangeAdded:
			delete(out, change.Filename)

		case history.ChangeRemoved:
			out[change.Filename] = change.Value

		case history.ChangeEdited:
			current, exists := out[change.Filename]
			if !exists {
				return nil, fmt.Errorf("%w: edited change for missing file %q at t=%d",
					history.ErrCorruptHistory, change.Filename, entry.Timestamp)
			}

			previous, err := engine.Apply(change.Patch, current)
			if err != nil {
				return nil, fmt.Errorf("roll back %s at t=%d: %w", change.Filename, entry.Timestamp, err)
			}

			out[change.Filename] = previous

		default:
			return nil, fmt.Errorf("%w: unknown change kind %q for %q",
				history.ErrCorruptHistory, change.Kind, change.Filename)
		}
	}

	return out, nil
}
