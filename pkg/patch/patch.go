// Package patch defines the opaque backward-patch capability injected
// into the differ, applier, and compactor, together with the default
// implementation on diff-match-patch.
package patch

import (
	"errors"
	"fmt"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// ErrPatchApply reports a payload that could not be applied cleanly to
// the given content.
var ErrPatchApply = errors.New("patch apply failed")

// Engine computes and interprets backward-patch payloads. For any pair
// of strings a and b, Apply(ComputeBackward(a, b), a) == b must hold.
// Payloads are opaque to every caller; only the engine that produced a
// payload is expected to interpret it.
type Engine interface {
	// ComputeBackward produces a payload that reconstructs target from
	// current.
	ComputeBackward(current, target string) (string, error)
	// Apply interprets a payload against the current content and
	// returns the reconstructed target.
	Apply(payload, current string) (string, error)
}

// DMP is the default Engine on sergi/go-diff's diff-match-patch,
// serializing patches in the standard unidiff-like text format.
type DMP struct {
	dmp *diffmatchpatch.DiffMatchPatch
}

// NewDMP creates a diff-match-patch engine.
func NewDMP() *DMP {
	return &DMP{dmp: diffmatchpatch.New()}
}

// ComputeBackward implements Engine.ComputeBackward.
func (e *DMP) ComputeBackward(current, target string) (string, error) {
	patches := e.dmp.PatchMake(current, target)

	return e.dmp.PatchToText(patches), nil
}

// Apply implements Engine.Apply. Every hunk must apply; a partial
// application means the payload and content do not belong together.
func (e *DMP) Apply(payload, current string) (string, error) {
	patches, err := e.dmp.PatchFromText(payload)
	if err != nil {
		return "", fmt.Errorf("parse patch payload: %w", err)
	}

	result, applied := e.dmp.PatchApply(patches, current)
	for i, ok := range applied {
		if !ok {
			return "", fmt.Errorf("%w: hunk %d did not apply", ErrPatchApply, i)
		}
	}

	return result, nil
}
