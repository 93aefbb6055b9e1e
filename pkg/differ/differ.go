// Package differ synthesizes backward-patch entries from pairs of
// project snapshots.
package differ

import (
	"fmt"
	"sort"
	"time"

	"github.com/Sumatoshi-tech/timefold/pkg/history"
	"github.com/Sumatoshi-tech/timefold/pkg/patch"
	"github.com/Sumatoshi-tech/timefold/pkg/tracked"
)

// Differ compares two snapshots and produces a single entry describing
// the backward transformation from the newer one to the older one,
// restricted to tracked files. It is pure over its inputs plus the
// injected clock and version tag.
type Differ struct {
	engine  patch.Engine
	tracked *tracked.Set
	now     func() time.Time
	version string
}

// Option configures a Differ.
type Option func(*Differ)

// WithClock overrides the timestamp source used to stamp entries.
func WithClock(now func() time.Time) Option {
	return func(d *Differ) {
		d.now = now
	}
}

// New creates a Differ. The version tag stamps every synthesized entry.
func New(engine patch.Engine, set *tracked.Set, version string, opts ...Option) *Differ {
	d := &Differ{
		engine:  engine,
		tracked: set,
		now:     time.Now,
		version: version,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Diff returns an entry that, rolled backward against newSnap, yields
// oldSnap for every tracked file. It returns (nil, nil) when the two
// snapshots do not differ on any tracked file; callers must treat that
// as "nothing to log", not as an error.
func (d *Differ) Diff(oldSnap, newSnap history.Snapshot) (*history.Entry, error) {
	changes, err := d.collectChanges(oldSnap, newSnap)
	if err != nil {
		return nil, err
	}

	if len(changes) == 0 {
		return nil, nil //nolint:nilnil // no-op signal, distinct from an error by contract.
	}

	return &history.Entry{
		Timestamp:     d.now().UnixMilli(),
		EditorVersion: d.version,
		Changes:       changes,
	}, nil
}

// collectChanges walks both snapshots in sorted filename order so the
// resulting entry is deterministic.
func (d *Differ) collectChanges(oldSnap, newSnap history.Snapshot) ([]history.FileChange, error) {
	var changes []history.FileChange

	for _, filename := range sortedTracked(oldSnap, d.tracked) {
		oldContent := oldSnap[filename]

		newContent, exists := newSnap[filename]
		if !exists {
			changes = append(changes, history.FileChange{
				Kind:     history.ChangeRemoved,
				Filename: filename,
				Value:    oldContent,
			})

			continue
		}

		if newContent == oldContent {
			continue
		}

		payload, err := d.engine.ComputeBackward(newContent, oldContent)
		if err != nil {
			return nil, fmt.Errorf("diff %s: %w", filename, err)
		}

		changes = append(changes, history.FileChange{
			Kind:     history.ChangeEdited,
			Filename: filename,
			Patch:    payload,
		})
	}

	for _, filename := range sortedTracked(newSnap, d.tracked) {
		if _, exists := oldSnap[filename]; exists {
			continue
		}

		changes = append(changes, history.FileChange{
			Kind:     history.ChangeAdded,
			Filename: filename,
			Value:    newSnap[filename],
		})
	}

	return changes, nil
}

// sortedTracked returns the tracked filenames of a snapshot in sorted order.
func sortedTracked(snap history.Snapshot, set *tracked.Set) []string {
	names := make([]string, 0, len(snap))

	for filename := range snap {
		if set.Match(filename) {
			names = append(names, filename)
		}
	}

	sort.Strings(names)

	return names
}
