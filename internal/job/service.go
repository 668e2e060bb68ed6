package job

import (
	"context"
	"log/slog"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// MarkInterrupted closes out jobs left running by a process that exited
// mid-run.
func (s *Service) MarkInterrupted(ctx context.Context) error {
	n, err := s.repo.MarkInterrupted(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		slog.Info("marked interrupted jobs as failed", "count", n)
	}
	return nil
}

func (s *Service) Get(ctx context.Context, req GetJobRequest) (*Job, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, req.ID)
}

func (s *Service) List(ctx context.Context, req ListJobsRequest) ([]Job, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, req.RunID, req.Symbol)
}
