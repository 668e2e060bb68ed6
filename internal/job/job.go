package job

import "time"

type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Job records the outcome of one instrument within a batch run.
type Job struct {
	ID           int64     `json:"id"`
	RunID        string    `json:"runId"`
	Source       string    `json:"source"`
	Symbol       string    `json:"symbol"`
	StartDate    time.Time `json:"startDate"`
	EndDate      time.Time `json:"endDate"`
	Status       Status    `json:"status"`
	Error        string    `json:"error,omitempty"`
	RecordsCount int64     `json:"recordsCount"`
	Path         string    `json:"path,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
