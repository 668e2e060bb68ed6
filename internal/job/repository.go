package job

import "context"

type Repository interface {
	Create(ctx context.Context, j *Job) error
	Update(ctx context.Context, j *Job) error
	Get(ctx context.Context, id int64) (*Job, error)
	List(ctx context.Context, runID, symbol string) ([]Job, error)
	// MarkInterrupted fails every job still running, returning how many
	// were changed.
	MarkInterrupted(ctx context.Context) (int64, error)
}
