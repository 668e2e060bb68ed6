package job

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ahmethakanbesel/yahoojp-history/internal/apperror"
	domain "github.com/ahmethakanbesel/yahoojp-history/internal/job"
)

const (
	dateFormat = "2006-01-02"
	listLimit  = 100
)

const selectColumns = `SELECT id, run_id, source, symbol, start_date, end_date,
		status, error, records_count, path, created_at, updated_at
		FROM jobs`

type Repository struct {
	db *sql.DB
}

var _ domain.Repository = (*Repository)(nil)

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, j *domain.Job) error {
	const query = `INSERT INTO jobs (run_id, source, symbol, start_date, end_date, status, error, records_count, path)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	res, err := r.db.ExecContext(ctx, query,
		j.RunID, j.Source, j.Symbol,
		j.StartDate.Format(dateFormat), j.EndDate.Format(dateFormat),
		string(j.Status), nullString(j.Error), j.RecordsCount, j.Path,
	)
	if err != nil {
		return fmt.Errorf("create job: %w", err)
	}

	j.ID, _ = res.LastInsertId()
	j.CreatedAt = time.Now().UTC().Truncate(time.Second)
	j.UpdatedAt = j.CreatedAt
	return nil
}

func (r *Repository) Update(ctx context.Context, j *domain.Job) error {
	const query = `UPDATE jobs SET status = ?, error = ?, records_count = ?, path = ?,
		updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')
		WHERE id = ?`

	res, err := r.db.ExecContext(ctx, query, string(j.Status), nullString(j.Error), j.RecordsCount, j.Path, j.ID)
	if err != nil {
		return fmt.Errorf("update job: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.New(apperror.NotFound, "job not found")
	}
	j.UpdatedAt = time.Now().UTC().Truncate(time.Second)
	return nil
}

func (r *Repository) Get(ctx context.Context, id int64) (*domain.Job, error) {
	j, err := scanJob(r.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.New(apperror.NotFound, "job not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return j, nil
}

// List returns the most recent jobs first, filtered by run and symbol when
// those are non-empty.
func (r *Repository) List(ctx context.Context, runID, symbol string) ([]domain.Job, error) {
	query := selectColumns + ` WHERE 1=1`

	var args []any
	if runID != "" {
		query += " AND run_id = ?"
		args = append(args, runID)
	}
	if symbol != "" {
		query += " AND symbol = ?"
		args = append(args, symbol)
	}
	query += fmt.Sprintf(" ORDER BY id DESC LIMIT %d", listLimit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	jobs := []domain.Job{}
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, *j)
	}

	return jobs, rows.Err()
}

func (r *Repository) MarkInterrupted(ctx context.Context) (int64, error) {
	const query = `UPDATE jobs SET status = 'failed', error = 'interrupted',
		updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')
		WHERE status = 'running'`

	res, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("mark interrupted jobs: %w", err)
	}

	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(s rowScanner) (*domain.Job, error) {
	var (
		j                      domain.Job
		startStr, endStr       string
		status                 string
		createdStr, updatedStr string
		dbErr                  sql.NullString
	)

	if err := s.Scan(
		&j.ID, &j.RunID, &j.Source, &j.Symbol,
		&startStr, &endStr, &status, &dbErr,
		&j.RecordsCount, &j.Path, &createdStr, &updatedStr,
	); err != nil {
		return nil, err
	}

	j.Status = domain.Status(status)
	if dbErr.Valid {
		j.Error = dbErr.String
	}
	j.StartDate, _ = time.Parse(dateFormat, startStr)
	j.EndDate, _ = time.Parse(dateFormat, endStr)
	j.CreatedAt, _ = time.Parse(time.RFC3339, createdStr)
	j.UpdatedAt, _ = time.Parse(time.RFC3339, updatedStr)
	return &j, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
