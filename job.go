package pagemine

import (
	"context"
	"time"
)

// JobStatus represents a job's position in its lifecycle.
type JobStatus string

// Job lifecycle states.
const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// Job represents one end-to-end scrape-and-extract run. A job produces one
// content file and one data file, named after its id.
type Job struct {
	ID          string `json:"id"`
	URL         string `json:"url"`
	Instruction string `json:"instruction"`

	// Schema is an optional JSON schema, stored as text and passed to the
	// provider as a hint.
	Schema string `json:"schema,omitempty"`

	// SplitPattern is an optional custom regexp used to segment page text.
	SplitPattern string `json:"splitPattern,omitempty"`

	// MaxPages bounds pagination. Zero means single page.
	MaxPages int `json:"maxPages"`

	Status      JobStatus `json:"status"`
	Error       string    `json:"error,omitempty"`
	OutputFiles []string  `json:"outputFiles,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Validate returns an error if the job contains invalid fields.
func (j *Job) Validate() error {
	if j.URL == "" {
		return Errorf(EINVALID, "job URL required")
	}
	if j.Instruction == "" {
		return Errorf(EINVALID, "job instruction required")
	}
	return nil
}

// JobFilter represents a filter for FindJobs.
type JobFilter struct {
	ID     *string    `json:"id"`
	Status *JobStatus `json:"status"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// JobService represents a service for managing the job queue.
type JobService interface {
	// Enqueue creates a new pending job.
	Enqueue(ctx context.Context, job *Job) error

	// FindJobByID retrieves a job by ID.
	// Returns ENOTFOUND if the job does not exist.
	FindJobByID(ctx context.Context, id string) (*Job, error)

	// FindJobs retrieves jobs matching the filter, oldest first.
	FindJobs(ctx context.Context, filter JobFilter) ([]*Job, error)

	// NextPending returns the oldest pending job.
	// Returns ENOTFOUND if the queue is empty.
	NextPending(ctx context.Context) (*Job, error)

	// MarkRunning transitions a job to running.
	MarkRunning(ctx context.Context, id string) error

	// MarkCompleted transitions a job to completed and records the files it
	// produced.
	MarkCompleted(ctx context.Context, id string, outputFiles []string) error

	// MarkFailed transitions a job to failed and records the error message.
	MarkFailed(ctx context.Context, id string, message string) error

	// DeleteJobs removes all jobs from the queue.
	DeleteJobs(ctx context.Context) error
}
