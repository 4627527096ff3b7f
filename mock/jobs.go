package mock

import (
	"context"

	"github.com/fwojciec/pagemine"
)

var _ pagemine.JobService = (*JobService)(nil)

// JobService is a mock implementation of pagemine.JobService.
type JobService struct {
	EnqueueFn       func(ctx context.Context, job *pagemine.Job) error
	FindJobByIDFn   func(ctx context.Context, id string) (*pagemine.Job, error)
	FindJobsFn      func(ctx context.Context, filter pagemine.JobFilter) ([]*pagemine.Job, error)
	NextPendingFn   func(ctx context.Context) (*pagemine.Job, error)
	MarkRunningFn   func(ctx context.Context, id string) error
	MarkCompletedFn func(ctx context.Context, id string, outputFiles []string) error
	MarkFailedFn    func(ctx context.Context, id string, message string) error
	DeleteJobsFn    func(ctx context.Context) error
}

func (s *JobService) Enqueue(ctx context.Context, job *pagemine.Job) error {
	return s.EnqueueFn(ctx, job)
}

func (s *JobService) FindJobByID(ctx context.Context, id string) (*pagemine.Job, error) {
	return s.FindJobByIDFn(ctx, id)
}

func (s *JobService) FindJobs(ctx context.Context, filter pagemine.JobFilter) ([]*pagemine.Job, error) {
	return s.FindJobsFn(ctx, filter)
}

func (s *JobService) NextPending(ctx context.Context) (*pagemine.Job, error) {
	return s.NextPendingFn(ctx)
}

func (s *JobService) MarkRunning(ctx context.Context, id string) error {
	return s.MarkRunningFn(ctx, id)
}

func (s *JobService) MarkCompleted(ctx context.Context, id string, outputFiles []string) error {
	return s.MarkCompletedFn(ctx, id, outputFiles)
}

func (s *JobService) MarkFailed(ctx context.Context, id string, message string) error {
	return s.MarkFailedFn(ctx, id, message)
}

func (s *JobService) DeleteJobs(ctx context.Context) error {
	return s.DeleteJobsFn(ctx)
}
