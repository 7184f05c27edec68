package queue

import (
	"path/filepath"
	"strings"
	"time"

	"woffsmith/internal/container"
)

// Status represents the lifecycle of a job.
type Status string

const (
	StatusPending    Status = "pending"
	StatusConverting Status = "converting"
	StatusConverted  Status = "converted"
	StatusError      Status = "error"
)

// DefaultErrorMessage is stored when a failure outcome has no message.
const DefaultErrorMessage = "Conversion failed"

var allStatuses = []Status{
	StatusPending,
	StatusConverting,
	StatusConverted,
	StatusError,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// AllStatuses returns every status in lifecycle order.
func AllStatuses() []Status {
	return append([]Status(nil), allStatuses...)
}

// ParseStatus converts a string into a Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsTerminal reports whether the status carries a result.
func (s Status) IsTerminal() bool {
	return s == StatusConverted || s == StatusError
}

// Artifact is one container produced for a job.
type Artifact struct {
	Format container.Format
	Name   string
	Data   []byte
}

// Job is one submitted font file.
type Job struct {
	ID           string
	Seq          int64
	Name         string
	Size         int64
	Format       container.Format
	Status       Status
	Artifacts    []Artifact
	ErrorMessage string
	// Source is populated by Get and Dispatch only.
	Source    []byte
	CreatedAt time.Time
	UpdatedAt time.Time
}

// OutputBytes sums the artifact sizes.
func (j *Job) OutputBytes() int64 {
	var total int64
	for _, a := range j.Artifacts {
		total += int64(len(a.Data))
	}
	return total
}

// SourceFile is a raw font submission.
type SourceFile struct {
	Name string
	Data []byte
}

var acceptedExtensions = map[string]struct{}{
	".ttf": {},
	".otf": {},
}

// Accepts reports whether a file name has an accepted font extension.
func Accepts(name string) bool {
	_, ok := acceptedExtensions[strings.ToLower(filepath.Ext(strings.TrimSpace(name)))]
	return ok
}

// Outcome is the result applied to a converting job.
type Outcome struct {
	Artifacts []Artifact
	Failed    bool
	Message   string
}

// Success builds a success outcome.
func Success(artifacts ...Artifact) Outcome {
	return Outcome{Artifacts: artifacts}
}

// Failure builds a failure outcome. An empty message is replaced by
// DefaultErrorMessage when applied.
func Failure(message string) Outcome {
	return Outcome{Failed: true, Message: message}
}

// Batch is a snapshot of the run state.
type Batch struct {
	Running  bool
	Progress float64
}
