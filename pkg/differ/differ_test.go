package differ

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/timefold/pkg/history"
	"github.com/Sumatoshi-tech/timefold/pkg/patch"
	"github.com/Sumatoshi-tech/timefold/pkg/tracked"
)

// fixedClock returns a clock pinned to the given epoch-ms instant.
func fixedClock(ms int64) func() time.Time {
	return func() time.Time {
		return time.UnixMilli(ms)
	}
}

func newTestDiffer(t *testing.T) *Differ {
	t.Helper()

	return New(patch.NewDMP(), tracked.Default(), "test-1.0", WithClock(fixedClock(5000)))
}

func TestDiffer_NoChanges(t *testing.T) {
	t.Parallel()

	d := newTestDiffer(t)
	snap := history.Snapshot{"main.ts": "let x = 1;"}

	entry, err := d.Diff(snap, snap)
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestDiffer_AddedRemovedEdited(t *testing.T) {
	t.Parallel()

	d := newTestDiffer(t)

	oldSnap := history.Snapshot{
		"gone.ts": "deleted content",
		"kept.ts": "version one",
	}
	newSnap := history.Snapshot{
		"kept.ts": "version two",
		"new.ts":  "fresh content",
	}

	entry, err := d.Diff(oldSnap, newSnap)
	require.NoError(t, err)
	require.NotNil(t, entry)

	assert.Equal(t, int64(5000), entry.Timestamp)
	assert.Equal(t, "test-1.0", entry.EditorVersion)
	require.Len(t, entry.Changes, 3)

	byName := map[string]history.FileChange{}
	for _, change := range entry.Changes {
		byName[change.Filename] = change
	}

	assert.Equal(t, history.ChangeRemoved, byName["gone.ts"].Kind)
	assert.Equal(t, "deleted content", byName["gone.ts"].Value)

	assert.Equal(t, history.ChangeEdited, byName["kept.ts"].Kind)
	assert.NotEmpty(t, byName["kept.ts"].Patch)

	assert.Equal(t, history.ChangeAdded, byName["new.ts"].Kind)
	assert.Equal(t, "fresh content", byName["new.ts"].Value)
}

func TestDiffer_EditPatchReconstructsOldContent(t *testing.T) {
	t.Parallel()

	engine := patch.NewDMP()
	d := New(engine, tracked.Default(), "test-1.0", WithClock(fixedClock(0)))

	oldSnap := history.Snapshot{"a.ts": "the old content\n"}
	newSnap := history.Snapshot{"a.ts": "the new content\n"}

	entry, err := d.Diff(oldSnap, newSnap)
	require.NoError(t, err)
	require.NotNil(t, entry)
	require.Len(t, entry.Changes, 1)

	restored, err := engine.Apply(entry.Changes[0].Patch, newSnap["a.ts"])
	require.NoError(t, err)
	assert.Equal(t, oldSnap["a.ts"], restored)
}

func TestDiffer_UntrackedFilesInvisible(t *testing.T) {
	t.Parallel()

	d := newTestDiffer(t)

	oldSnap := history.Snapshot{
		"main.ts":    "same",
		"notes.md":   "old notes",
		"image.png":  "\x89PNG",
		"other.json": "{}",
	}
	newSnap := history.Snapshot{
		"main.ts":   "same",
		"notes.md":  "new notes",
		"extra.png": "\x89PNG",
	}

	entry, err := d.Diff(oldSnap, newSnap)
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestDiffer_DeterministicChangeOrder(t *testing.T) {
	t.Parallel()

	d := newTestDiffer(t)

	oldSnap := history.Snapshot{"b.ts": "1", "a.ts": "1", "c.ts": "1"}
	newSnap := history.Snapshot{"b.ts": "2", "a.ts": "2", "c.ts": "2"}

	entry, err := d.Diff(oldSnap, newSnap)
	require.NoError(t, err)
	require.NotNil(t, entry)
	require.Len(t, entry.Changes, 3)

	assert.Equal(t, "a.ts", entry.Changes[0].Filename)
	assert.Equal(t, "b.ts", entry.Changes[1].Filename)
	assert.Equal(t, "c.ts", entry.Changes[2].Filename)
}
