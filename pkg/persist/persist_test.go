package persist

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/timefold/pkg/history"
)

func testLog() history.Log {
	return history.Log{
		{
			Timestamp:     100,
			EditorVersion: "1.0.0",
			Changes: []history.FileChange{
				{Kind: history.ChangeAdded, Filename: "a.ts", Value: "let x = 1;"},
			},
		},
		{
			Timestamp:     200,
			EditorVersion: "1.0.0",
			Changes: []history.FileChange{
				{Kind: history.ChangeEdited, Filename: "a.ts", Patch: "@@ -1 +1 @@"},
				{Kind: history.ChangeRemoved, Filename: "b.ts", Value: "gone"},
			},
		},
	}
}

func TestCodecFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path    string
		want    Codec
		wantErr bool
	}{
		{path: "history.json", want: NewJSONCodec()},
		{path: "history.gob", want: NewGobCodec()},
		{path: "history.json.lz4", want: NewLZ4Codec(NewJSONCodec())},
		{path: "history.gob.lz4", want: NewLZ4Codec(NewGobCodec())},
		{path: "history.txt", wantErr: true},
		{path: "history", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()

			codec, err := CodecFor(tt.path)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrUnknownFormat)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, codec)
		})
	}
}

func TestSaveLoadLog_RoundTrip(t *testing.T) {
	t.Parallel()

	for _, ext := range []string{".json", ".gob", ".json.lz4", ".gob.lz4"} {
		t.Run(ext, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "history"+ext)
			original := testLog()

			require.NoError(t, SaveLog(path, original))

			loaded, err := LoadLog(path)
			require.NoError(t, err)
			assert.Equal(t, original, loaded)
		})
	}
}

func TestSaveLoadSnapshot_RoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "snapshot.json.lz4")
	original := history.Snapshot{"a.ts": "content", "manifest.json": "{}"}

	require.NoError(t, SaveSnapshot(path, original))

	loaded, err := LoadSnapshot(path)
	require.NoError(t, err)
	assert.Equal(t, original, loaded)
}

func TestLoadLog_RejectsInvalidDocument(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "history.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"editorVersion":"v"}]`), 0o644))

	_, err := LoadLog(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, history.ErrInvalidLogDocument)
}

func TestSaveLog_AtomicLeavesNoTempFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "history.json")

	require.NoError(t, SaveLog(path, testLog()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "history.json", entries[0].Name())
}

func TestLZ4Codec_SmallerThanPlainJSONForRepetitiveLogs(t *testing.T) {
	t.Parallel()

	log := make(history.Log, 0, 200)
	for i := range 200 {
		log = append(log, history.Log{{
			Timestamp:     int64(i * 1000),
			EditorVersion: "1.0.0",
			Changes: []history.FileChange{
				{Kind: history.ChangeEdited, Filename: "a.ts", Patch: "@@ -1,4 +1,4 @@ repetitive hunk body"},
			},
		}}...)
	}

	var plain, compressed bytes.Buffer

	require.NoError(t, NewJSONCodec().Encode(&plain, log))
	require.NoError(t, NewLZ4Codec(NewJSONCodec()).Encode(&compressed, log))

	assert.Less(t, compressed.Len(), plain.Len())
}
