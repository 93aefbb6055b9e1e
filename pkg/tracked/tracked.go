// Package tracked filters the files that participate in history
// diffing. Anything outside the allow-list is invisible to the engine:
// it never appears in a change and never influences compaction.
package tracked

import (
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Set is an allow-list of filename suffixes, exact names, and glob
// patterns. The zero value matches nothing.
type Set struct {
	suffixes []string
	names    []string
	patterns []string
}

// New builds a Set from suffixes (".ts"), exact names ("manifest.json"),
// and doublestar glob patterns ("scripts/**/*.js"). Nil slices are fine.
func New(suffixes, names, patterns []string) *Set {
	return &Set{
		suffixes: suffixes,
		names:    names,
		patterns: patterns,
	}
}

// Default returns the allow-list for script projects: TypeScript and
// JavaScript sources plus the project manifest.
func Default() *Set {
	return New(
		[]string{".ts", ".js"},
		[]string{"manifest.json"},
		nil,
	)
}

// Match reports whether the filename participates in diffing.
func (s *Set) Match(filename string) bool {
	for _, name := range s.names {
		if filename == name {
			return true
		}
	}

	for _, suffix := range s.suffixes {
		if strings.HasSuffix(filename, suffix) {
			return true
		}
	}

	for _, pattern := range s.patterns {
		ok, err := doublestar.Match(pattern, path.Clean(filename))
		if err == nil && ok {
			return true
		}
	}

	return false
}
