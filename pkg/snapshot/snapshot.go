// Package snapshot builds project snapshots from the filesystem.
package snapshot

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/Sumatoshi-tech/timefold/pkg/history"
	"github.com/Sumatoshi-tech/timefold/pkg/tracked"
)

// FromDir walks root and returns a snapshot of every tracked file,
// keyed by slash-separated path relative to root. Untracked files and
// directories are skipped entirely.
func FromDir(root string, set *tracked.Set) (history.Snapshot, error) {
	snap := history.Snapshot{}

	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		if entry.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("relativize %s: %w", path, err)
		}

		name := filepath.ToSlash(rel)
		if !set.Match(name) {
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}

		snap[name] = string(content)

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	return snap, nil
}
