package entities

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the engine. Callers match with errors.Is to
// distinguish, for example, "no matches" from "not initialized".
var (
	// ErrInvalidArgument reports a malformed caller input such as a
	// non-positive result limit or a bad configuration value.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotReady reports a search attempted before any successful
	// index build.
	ErrNotReady = errors.New("engine not ready: no index built")

	// ErrBuildFailure reports a malformed input entity. A build failure
	// aborts the whole build; no partial index is ever published.
	ErrBuildFailure = errors.New("build failure")

	// ErrSnapshotCorrupt reports a persisted index that failed
	// validation on load.
	ErrSnapshotCorrupt = errors.New("snapshot corrupt")

	// ErrSnapshotNotFound reports that no persisted index exists yet.
	ErrSnapshotNotFound = errors.New("snapshot not found")
)

// BuildError carries the id of the entity that made a build fail.
type BuildError struct {
	EntityID string
	Reason   string
}

func (e *BuildError) Error() string {
	if e.EntityID == "" {
		return fmt.Sprintf("build failure: %s", e.Reason)
	}
	return fmt.Sprintf("build failure: entity %q: %s", e.EntityID, e.Reason)
}

// Unwrap makes BuildError match ErrBuildFailure under errors.Is.
func (e *BuildError) Unwrap() error {
	return ErrBuildFailure
}
