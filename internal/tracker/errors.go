package tracker

import "errors"

var (
	// ErrTaskNotFound is returned for an id the tracker never registered.
	ErrTaskNotFound = errors.New("task not found")

	// ErrNotPending is returned when cancelling a task that already reached
	// a terminal status.
	ErrNotPending = errors.New("task is not pending")

	// ErrUploadFailed wraps transport and server errors from an upload.
	ErrUploadFailed = errors.New("upload failed")

	// ErrTrackerClosed is returned by operations after Close.
	ErrTrackerClosed = errors.New("tracker is closed")

	// ErrDuplicateTask is returned when a task id is registered or polled twice.
	ErrDuplicateTask = errors.New("duplicate task id")
)
