// Package compactor shortens backward-patch history logs by collapsing
// runs of near-in-time entries into single synthesized entries, one per
// time bucket inside a caller-chosen window.
package compactor

import (
	"errors"
	"fmt"

	"github.com/Sumatoshi-tech/timefold/pkg/differ"
	"github.com/Sumatoshi-tech/timefold/pkg/history"
	"github.com/Sumatoshi-tech/timefold/pkg/patch"
	"github.com/Sumatoshi-tech/timefold/pkg/rollback"
)

// Sentinel errors for argument validation. Both are rejected before any
// work happens, so a failed call never produces partial output.
var (
	ErrEmptyLog        = errors.New("empty history log")
	ErrInvalidInterval = errors.New("compaction interval must be positive")
)

// Policy controls which entries are eligible for merging. All fields
// are epoch milliseconds.
//
// Entries with timestamps inside [MinTime, MaxTime] are coarsened to at
// most one entry per Interval; entries outside the window pass through
// byte for byte. MaxTime == 0 means "unset" and defaults to the newest
// entry's timestamp; MinTime defaults to 0.
type Policy struct {
	Interval int64
	MinTime  int64
	MaxTime  int64
}

// Compactor merges history entries. It owns no state across calls; the
// caller is responsible for serializing access to a given project's
// log so compaction never races with a concurrent append.
type Compactor struct {
	engine patch.Engine
	differ *differ.Differ
}

// New creates a Compactor. The differ must be paired with the same
// patch engine so synthesized payloads stay interpretable.
func New(engine patch.Engine, d *differ.Differ) *Compactor {
	return &Compactor{engine: engine, differ: d}
}

// group tracks the currently-open merge bucket during the backward scan.
type group struct {
	startIdx     int
	lastIdx      int
	startTime    int64
	startVersion string
	// startSnap is the project state at the instant the bucket's newest
	// entry had just been applied. It is captured as a copy so later
	// rolling never disturbs it.
	startSnap history.Snapshot
}

// Compact walks the log newest to oldest, rolling the snapshot backward
// through every entry and collapsing each in-window bucket into one
// entry. The input log and snapshot are left untouched; on error no
// output is produced.
//
// The log must be non-empty and sorted ascending by timestamp; an
// unsorted log wraps history.ErrCorruptHistory.
func (c *Compactor) Compact(log history.Log, current history.Snapshot, pol Policy) (history.Log, error) {
	n := len(log)
	if n == 0 {
		return nil, ErrEmptyLog
	}

	if pol.Interval <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidInterval, pol.Interval)
	}

	if !log.Sorted() {
		return nil, fmt.Errorf("%w: log not sorted ascending by timestamp", history.ErrCorruptHistory)
	}

	minTime := pol.MinTime

	maxTime := pol.MaxTime
	if maxTime == 0 {
		maxTime = log[n-1].Timestamp
	}

	// out collects entries newest first and is reversed before returning.
	out := make(history.Log, 0, n)
	cur := current

	var open *group

	for i := n - 1; i >= 0; i-- {
		entry := log[i]

		// Entries newer than the window pass through untouched but
		// still advance the rolling snapshot.
		if entry.Timestamp > maxTime {
			out = append(out, entry)

			next, err := rollback.Apply(c.engine, cur, entry)
			if err != nil {
				return nil, err
			}

			cur = next

			continue
		}

		// The first entry older than the window closes merging for
		// good: everything from here down is emitted verbatim.
		if entry.Timestamp < minTime {
			if open != nil {
				flushed, err := c.flush(log, open, cur)
				if err != nil {
					return nil, err
				}

				out = append(out, flushed...)
				open = nil
			}

			for j := i; j >= 0; j-- {
				out = append(out, log[j])
			}

			break
		}

		if open == nil {
			next, opened, err := c.openGroup(log, i, cur)
			if err != nil {
				return nil, err
			}

			cur, open = next, opened

			continue
		}

		// Outside the current bucket: flush it and start a new one here.
		if open.startTime-entry.Timestamp > pol.Interval {
			flushed, err := c.flush(log, open, cur)
			if err != nil {
				return nil, err
			}

			out = append(out, flushed...)

			next, opened, err := c.openGroup(log, i, cur)
			if err != nil {
				return nil, err
			}

			cur, open = next, opened

			continue
		}

		// Inside the bucket: fold the entry in without retaining it.
		open.lastIdx = i

		next, err := rollback.Apply(c.engine, cur, entry)
		if err != nil {
			return nil, err
		}

		cur = next
	}

	if open != nil {
		flushed, err := c.flush(log, open, cur)
		if err != nil {
			return nil, err
		}

		out = append(out, flushed...)
	}

	reverse(out)

	return out, nil
}

// openGroup starts a bucket at entry i, capturing the state just before
// the entry is rolled back, then advances the rolling snapshot.
func (c *Compactor) openGroup(log history.Log, i int, cur history.Snapshot) (history.Snapshot, *group, error) {
	entry := log[i]

	opened := &group{
		startIdx:     i,
		lastIdx:      i,
		startTime:    entry.Timestamp,
		startVersion: entry.EditorVersion,
		startSnap:    cur.Clone(),
	}

	next, err := rollback.Apply(c.engine, cur, entry)
	if err != nil {
		return nil, nil, err
	}

	return next, opened, nil
}

// flush closes a bucket. A singleton bucket re-emits its original entry
// verbatim, so merging it is a no-op and original patch payloads
// survive. A multi-entry bucket is replaced by one synthesized entry
// diffing the state before its oldest entry against the state at its
// newest, restamped with the bucket's starting timestamp and version.
// A synthesized diff with no net effect emits nothing.
func (c *Compactor) flush(log history.Log, open *group, cur history.Snapshot) (history.Log, error) {
	if open.startIdx == open.lastIdx {
		return history.Log{log[open.startIdx]}, nil
	}

	merged, err := c.differ.Diff(cur, open.startSnap)
	if err != nil {
		return nil, fmt.Errorf("merge group at t=%d: %w", open.startTime, err)
	}

	if merged == nil {
		return nil, nil
	}

	merged.Timestamp = open.startTime
	merged.EditorVersion = open.startVersion

	return history.Log{*merged}, nil
}

// reverse flips a newest-first slice into ascending timestamp order.
func reverse(log history.Log) {
	for i, j := 0, len(log)-1; i < j; i, j = i+1, j-1 {
		log[i], log[j] = log[j], log[i]
	}
}
