package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/fwojciec/pagemine"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ pagemine.JobService = (*JobService)(nil)

// JobService implements pagemine.JobService using SQLite.
type JobService struct {
	db *DB
}

// NewJobService creates a new JobService.
func NewJobService(db *DB) *JobService {
	return &JobService{db: db}
}

const jobColumns = "id, url, instruction, schema, split_pattern, max_pages, status, error, output_files, created_at, updated_at"

// Enqueue creates a new pending job.
func (s *JobService) Enqueue(ctx context.Context, job *pagemine.Job) error {
	if err := job.Validate(); err != nil {
		return err
	}

	job.ID = uuid.New().String()
	job.Status = pagemine.JobPending
	now := time.Now().UTC()
	job.CreatedAt = now
	job.UpdatedAt = now

	files, err := json.Marshal(job.OutputFiles)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO jobs (`+jobColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, job.ID, job.URL, job.Instruction, job.Schema, job.SplitPattern, job.MaxPages,
		job.Status, job.Error, string(files),
		job.CreatedAt.Format(time.RFC3339), job.UpdatedAt.Format(time.RFC3339))

	return err
}

// FindJobByID retrieves a job by ID.
func (s *JobService) FindJobByID(ctx context.Context, id string) (*pagemine.Job, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+jobColumns+`
		FROM jobs
		WHERE id = ?
	`, id)

	job, err := scanJob(row)
	if err == sql.ErrNoRows {
		return nil, pagemine.Errorf(pagemine.ENOTFOUND, "job not found")
	}
	if err != nil {
		return nil, err
	}
	return job, nil
}

// FindJobs retrieves jobs matching the filter, oldest first.
func (s *JobService) FindJobs(ctx context.Context, filter pagemine.JobFilter) ([]*pagemine.Job, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT " + jobColumns + " FROM jobs WHERE 1=1")

	if filter.ID != nil {
		query.WriteString(" AND id = ?")
		args = append(args, *filter.ID)
	}
	if filter.Status != nil {
		query.WriteString(" AND status = ?")
		args = append(args, string(*filter.Status))
	}

	query.WriteString(" ORDER BY created_at ASC, rowid ASC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*pagemine.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// NextPending returns the oldest pending job.
func (s *JobService) NextPending(ctx context.Context) (*pagemine.Job, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+jobColumns+`
		FROM jobs
		WHERE status = ?
		ORDER BY created_at ASC, rowid ASC
		LIMIT 1
	`, pagemine.JobPending)

	job, err := scanJob(row)
	if err == sql.ErrNoRows {
		return nil, pagemine.Errorf(pagemine.ENOTFOUND, "no pending jobs")
	}
	if err != nil {
		return nil, err
	}
	return job, nil
}

// MarkRunning transitions a job to running.
func (s *JobService) MarkRunning(ctx context.Context, id string) error {
	return s.updateStatus(ctx, id, pagemine.JobRunning, "", nil)
}

// MarkCompleted transitions a job to completed and records the files it produced.
func (s *JobService) MarkCompleted(ctx context.Context, id string, outputFiles []string) error {
	return s.updateStatus(ctx, id, pagemine.JobCompleted, "", outputFiles)
}

// MarkFailed transitions a job to failed and records the error message.
func (s *JobService) MarkFailed(ctx context.Context, id string, message string) error {
	return s.updateStatus(ctx, id, pagemine.JobFailed, message, nil)
}

// DeleteJobs removes all jobs from the queue.
func (s *JobService) DeleteJobs(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM jobs")
	return err
}

// updateStatus sets a job's status, error message and output files.
func (s *JobService) updateStatus(ctx context.Context, id string, status pagemine.JobStatus, message string, outputFiles []string) error {
	files, err := json.Marshal(outputFiles)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE jobs
		SET status = ?, error = ?, output_files = ?, updated_at = ?
		WHERE id = ?
	`, string(status), message, string(files), time.Now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return pagemine.Errorf(pagemine.ENOTFOUND, "job not found")
	}
	return nil
}

// scanner abstracts sql.Row and sql.Rows for scanJob.
type scanner interface {
	Scan(dest ...any) error
}

// scanJob reads one job row.
func scanJob(row scanner) (*pagemine.Job, error) {
	var job pagemine.Job
	var status, files, createdAt, updatedAt string

	err := row.Scan(&job.ID, &job.URL, &job.Instruction, &job.Schema, &job.SplitPattern,
		&job.MaxPages, &status, &job.Error, &files, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	job.Status = pagemine.JobStatus(status)
	if files != "" && files != "null" {
		if err := json.Unmarshal([]byte(files), &job.OutputFiles); err != nil {
			return nil, err
		}
	}
	if job.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
		return nil, err
	}
	if job.UpdatedAt, err = parseRFC3339(updatedAt, "updated_at"); err != nil {
		return nil, err
	}
	return &job, nil
}

// parseRFC3339 parses a stored timestamp column, naming the column in the
// error so a corrupt row is traceable.
func parseRFC3339(value, column string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, pagemine.Errorf(pagemine.EINTERNAL, "invalid %s timestamp %q: %v", column, value, err)
	}
	return t, nil
}

// appendPagination adds LIMIT/OFFSET clauses for positive filter values.
func appendPagination(query *strings.Builder, args *[]any, limit, offset int) {
	if limit > 0 {
		query.WriteString(" LIMIT ?")
		*args = append(*args, limit)
	}
	if offset > 0 {
		query.WriteString(" OFFSET ?")
		*args = append(*args, offset)
	}
}
