// Package job provides the Job aggregate for managing recording split jobs.
// It includes the Job entity with state machine transitions, repository
// interfaces for persistence, and the SplitService use case that turns
// detected silences into published tracks.
package job

import (
	"errors"
	"sync"
	"time"

	"github.com/soundclash/trackcut-api/internal/job/id"
)

// Status represents the current state of a Job.
type Status string

const (
	// StatusPending indicates the job is waiting to be processed.
	StatusPending Status = "PENDING"
	// StatusRunning indicates the job is being processed.
	StatusRunning Status = "RUNNING"
	// StatusCompleted indicates every requested track was produced.
	StatusCompleted Status = "COMPLETED"
	// StatusPartial indicates the recordings ran out before every requested
	// track was produced; the tracks that did fit are published.
	StatusPartial Status = "PARTIAL"
	// StatusFailed indicates the job encountered an error during execution.
	StatusFailed Status = "FAILED"
	// StatusCancelled indicates the job was manually cancelled.
	StatusCancelled Status = "CANCELLED"
)

// ErrInvalidTransition is returned when an invalid state transition is attempted.
var ErrInvalidTransition = errors.New("invalid state transition")

// validTransitions defines which state transitions are allowed.
var validTransitions = map[Status][]Status{
	StatusPending:   {StatusRunning, StatusCancelled},
	StatusRunning:   {StatusCompleted, StatusPartial, StatusFailed, StatusCancelled},
	StatusCompleted: {},
	StatusPartial:   {},
	StatusFailed:    {},
	StatusCancelled: {},
}

// canTransition checks if a transition from one status to another is valid.
func canTransition(from, to Status) bool {
	allowed, ok := validTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// TrackOutput describes one published track of a finished job.
type TrackOutput struct {
	// Index is the track's position in the output ordering.
	Index int
	// Name is the published file name.
	Name string
	// URL is where the track can be retrieved.
	URL string
	// Duration is the track length in seconds.
	Duration float64
}

// Job represents one recording split job aggregate.
type Job struct {
	mu sync.RWMutex

	// ID is the unique identifier for this job.
	ID string
	// Status is the current job state.
	Status Status
	// Error contains any error message if the job failed.
	Error string
	// ArchiveURL is the bundle the recordings were downloaded from, if any.
	ArchiveURL string
	// Inputs are the local recording paths being split, in playback order.
	Inputs []string
	// Targets are the requested track durations in seconds; empty means
	// silence-only splitting.
	Targets []float64
	// Tracks are the published outputs.
	Tracks []TrackOutput
	// Unsatisfied counts requested tracks the recordings could not fill.
	Unsatisfied int
	// CreatedAt is when the job was created.
	CreatedAt time.Time
	// UpdatedAt is when the job was last updated.
	UpdatedAt time.Time
	// StartedAt is when processing started.
	StartedAt time.Time
	// CompletedAt is when processing finished.
	CompletedAt time.Time
}

// New creates a new Job with a generated ID and initial PENDING status.
func New() *Job {
	return NewWithID(id.Generate())
}

// NewWithID creates a new Job with the specified ID and initial PENDING
// status. Useful for testing or when the ID is externally generated.
func NewWithID(jobID string) *Job {
	now := time.Now()
	return &Job{
		ID:        jobID,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// TransitionTo attempts to change the job status to the specified state.
// Returns ErrInvalidTransition if the transition is not allowed.
func (j *Job) TransitionTo(status Status) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if !canTransition(j.Status, status) {
		return ErrInvalidTransition
	}

	j.Status = status
	j.UpdatedAt = time.Now()

	switch status {
	case StatusRunning:
		j.StartedAt = j.UpdatedAt
	case StatusCompleted, StatusPartial, StatusFailed, StatusCancelled:
		j.CompletedAt = j.UpdatedAt
	}

	return nil
}

// Start transitions the job from PENDING to RUNNING.
func (j *Job) Start() error {
	return j.TransitionTo(StatusRunning)
}

// Complete transitions the job to COMPLETED state.
func (j *Job) Complete() error {
	return j.TransitionTo(StatusCompleted)
}

// CompletePartial transitions the job to PARTIAL state, recording how many
// requested tracks could not be filled.
func (j *Job) CompletePartial(unsatisfied int) error {
	j.mu.Lock()
	j.Unsatisfied = unsatisfied
	j.mu.Unlock()
	return j.TransitionTo(StatusPartial)
}

// Fail transitions the job to FAILED state with an error message.
func (j *Job) Fail(errMsg string) error {
	j.mu.Lock()
	j.Error = errMsg
	j.mu.Unlock()
	return j.TransitionTo(StatusFailed)
}

// Cancel transitions the job to CANCELLED state.
func (j *Job) Cancel() error {
	return j.TransitionTo(StatusCancelled)
}

// GetStatus returns the current job status (thread-safe).
func (j *Job) GetStatus() Status {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.Status
}

// SetInputs records the local recording paths being split.
func (j *Job) SetInputs(paths []string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Inputs = append([]string(nil), paths...)
	j.UpdatedAt = time.Now()
}

// SetTracks records the published outputs.
func (j *Job) SetTracks(tracks []TrackOutput) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Tracks = append([]TrackOutput(nil), tracks...)
	j.UpdatedAt = time.Now()
}

// IsTerminal returns true if the job is in a terminal state.
func (j *Job) IsTerminal() bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.Status == StatusCompleted ||
		j.Status == StatusPartial ||
		j.Status == StatusFailed ||
		j.Status == StatusCancelled
}

// Clone creates a deep copy of the job for safe reads.
func (j *Job) Clone() *Job {
	j.mu.RLock()
	defer j.mu.RUnlock()

	return &Job{
		ID:          j.ID,
		Status:      j.Status,
		Error:       j.Error,
		ArchiveURL:  j.ArchiveURL,
		Inputs:      append([]string(nil), j.Inputs...),
		Targets:     append([]float64(nil), j.Targets...),
		Tracks:      append([]TrackOutput(nil), j.Tracks...),
		Unsatisfied: j.Unsatisfied,
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
		StartedAt:   j.StartedAt,
		CompletedAt: j.CompletedAt,
	}
}
