package snapshot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/timefold/pkg/history"
	"github.com/Sumatoshi-tech/timefold/pkg/tracked"
)

func writeFile(t *testing.T, root, name, content string) {
	t.Helper()

	path := filepath.Join(root, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestFromDir(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "main.ts", "let x = 1;")
	writeFile(t, root, "lib/util.js", "export {}")
	writeFile(t, root, "manifest.json", `{"v":1}`)
	writeFile(t, root, "readme.md", "ignored")
	writeFile(t, root, "assets/logo.png", "binary")

	snap, err := FromDir(root, tracked.Default())
	require.NoError(t, err)

	assert.Equal(t, history.Snapshot{
		"main.ts":       "let x = 1;",
		"lib/util.js":   "export {}",
		"manifest.json": `{"v":1}`,
	}, snap)
}

func TestFromDir_EmptyProject(t *testing.T) {
	t.Parallel()

	snap, err := FromDir(t.TempDir(), tracked.Default())
	require.NoError(t, err)
	assert.Empty(t, snap)
}

func TestFromDir_MissingRoot(t *testing.T) {
	t.Parallel()

	_, err := FromDir(filepath.Join(t.TempDir(), "absent"), tracked.Default())
	require.Error(t, err)
}
