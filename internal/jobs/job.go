package jobs

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Sentinel errors for job storage.
var (
	ErrNotFound          = errors.New("job not found")
	ErrDuplicate         = errors.New("job already exists")
	ErrInvalidTransition = errors.New("invalid job status transition")
	ErrInvalidJob        = errors.New("invalid job")
)

// Status is the lifecycle state of a job.
type Status string

// Job statuses.
const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
)

// User-facing status messages.
const (
	MsgStarted   = "Konvertatsiya boshlandi..."
	MsgCompleted = "Konvertatsiya muvaffaqiyatli yakunlandi"
)

// transitions lists the statuses each status may move to.
var transitions = map[Status][]Status{
	StatusQueued:     {StatusProcessing, StatusError},
	StatusProcessing: {StatusCompleted, StatusError},
}

// CanTransition reports whether a job in status s may move to next.
func (s Status) CanTransition(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusError
}

// sourcesOf returns the statuses from which next can be reached.
func sourcesOf(next Status) []string {
	var from []string
	for s, targets := range transitions {
		for _, t := range targets {
			if t == next {
				from = append(from, string(s))
			}
		}
	}
	return from
}

// Job is one uploaded document and its conversion state.
type Job struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	Format    string    `json:"format"`
	Status    Status    `json:"status"`
	Message   string    `json:"message"`
	Questions int       `json:"questions"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewJob returns a queued job with a fresh ID.
func NewJob(filename, format string) *Job {
	now := time.Now().UTC()
	return &Job{
		ID:        NewID(),
		Filename:  filename,
		Format:    format,
		Status:    StatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewID returns a random job ID.
func NewID() string {
	return uuid.NewString()
}

// ValidID reports whether id has the UUID form NewID produces.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil && len(id) == 36
}

func validateNew(j *Job) error {
	if j == nil {
		return fmt.Errorf("%w: nil", ErrInvalidJob)
	}
	if !ValidID(j.ID) {
		return fmt.Errorf("%w: id %q", ErrInvalidJob, j.ID)
	}
	if j.Status != StatusQueued {
		return fmt.Errorf("%w: new job must be %s, got %s", ErrInvalidJob, StatusQueued, j.Status)
	}
	return nil
}
