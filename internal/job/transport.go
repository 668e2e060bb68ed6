package job

import (
	"github.com/google/uuid"

	"github.com/ahmethakanbesel/yahoojp-history/internal/apperror"
)

type GetJobRequest struct {
	ID int64
}

func (r GetJobRequest) Validate() *apperror.AppError {
	if r.ID <= 0 {
		return apperror.New(apperror.BadRequest, "invalid job id")
	}
	return nil
}

type ListJobsRequest struct {
	RunID  string
	Symbol string
}

func (r ListJobsRequest) Validate() *apperror.AppError {
	if r.RunID != "" {
		if _, err := uuid.Parse(r.RunID); err != nil {
			return apperror.New(apperror.BadRequest, "runId must be a UUID")
		}
	}
	return nil
}
