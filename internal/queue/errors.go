package queue

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no job has the requested ID.
	ErrNotFound = errors.New("job not found")
	// ErrJobBusy is returned when a job cannot be changed while it is converting.
	ErrJobBusy = errors.New("job is converting")
	// ErrRunInProgress is returned by BeginRun when a batch is already running.
	ErrRunInProgress = errors.New("batch run already in progress")
	// ErrInvalidTransition is wrapped by every TransitionError.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrNoArtifacts is returned when a success outcome carries no artifacts.
	ErrNoArtifacts = errors.New("success outcome has no artifacts")
)

// TransitionError reports an edge missing from the status table.
type TransitionError struct {
	JobID string
	From  Status
	Event Event
}

func (e *TransitionError) Error() string {
	if e.JobID == "" {
		return fmt.Sprintf("cannot %s a %s job", e.Event, e.From)
	}
	return fmt.Sprintf("job %s: cannot %s a %s job", e.JobID, e.Event, e.From)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}
