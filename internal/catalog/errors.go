package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound matches any *NotFoundError.
	ErrNotFound = errors.New("not found")
	// ErrValidation matches any *ValidationError.
	ErrValidation = errors.New("validation failed")
	// ErrStorage wraps failures of the entity store. Nothing was applied.
	ErrStorage = errors.New("storage failure")
	// ErrSnapshotExport matches any *ExportError. The mutation was applied.
	ErrSnapshotExport = errors.New("snapshot export failed")
)

const (
	ResourceBook = "book"
	ResourceUser = "user"
)

// NotFoundError reports a book or user id that does not resolve.
type NotFoundError struct {
	Resource string
	ID       uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ValidationError reports a required field that is missing or empty.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// ExportError reports a snapshot run that did not complete. The entity store
// is ahead of the snapshot until the next successful run.
type ExportError struct {
	RunID string
	Err   error

	// RepairScheduled is true when a background resync was queued.
	RepairScheduled bool
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("snapshot export failed (run %s): %v", e.RunID, e.Err)
}

func (e *ExportError) Is(target error) bool {
	return target == ErrSnapshotExport
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

// IsAppliedWithStaleSnapshot reports whether err only signals a failed
// snapshot export, meaning the operation itself was committed.
func IsAppliedWithStaleSnapshot(err error) bool {
	return errors.Is(err, ErrSnapshotExport)
}

// RepairScheduled reports whether err is an export failure for which a
// background resync was queued.
func RepairScheduled(err error) bool {
	var exportErr *ExportError
	return errors.As(err, &exportErr) && exportErr.RepairScheduled
}

// translate passes domain errors through and marks everything else as a
// storage failure.
func translate(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrValidation) {
		return err
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStorage, err)
}
