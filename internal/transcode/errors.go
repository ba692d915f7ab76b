package transcode

import (
	"errors"
	"fmt"
)

// Sentinel errors for pipeline failures that cannot be retried usefully.
var (
	// ErrVideoNotFound is returned when the job references a video that
	// does not exist. Fatal: retrying cannot succeed.
	ErrVideoNotFound = errors.New("video not found")

	// ErrEmptyPlan is returned when no ladder rendition fits the source,
	// i.e. the source is smaller than the lowest rung.
	ErrEmptyPlan = errors.New("no renditions selected for source")
)

// ProbeError wraps a failure to extract media metadata from the source.
type ProbeError struct {
	Err error
}

func (e *ProbeError) Error() string {
	return fmt.Sprintf("probing source: %v", e.Err)
}

func (e *ProbeError) Unwrap() error { return e.Err }

// EncodeError wraps a failed rendition encode, recording which quality failed.
type EncodeError struct {
	Quality string
	Err     error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encoding %s rendition: %v", e.Quality, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// StorageError wraps a failed object store interaction.
type StorageError struct {
	Op  string // "download" or "upload"
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
