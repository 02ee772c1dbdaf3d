package domain

// Status represents the processing state of an uploaded file.
type Status string

// Possible status values. Only pending is non-terminal.
const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// IsValid reports whether s is one of the known statuses.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether s admits no further transitions.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// IsServerStatus reports whether s can be reported by the status endpoint.
// Cancellation is a client-side decision and never comes from the server.
func (s Status) IsServerStatus() bool {
	return s == StatusPending || s == StatusCompleted || s == StatusFailed
}

func (s Status) String() string {
	return string(s)
}

// CanTransition reports whether a task in status s may move to next.
func (s Status) CanTransition(next Status) bool {
	if !next.IsValid() {
		return false
	}
	return !s.IsTerminal()
}
