// Package batch downloads many instruments in sequence and writes each to a
// CSV file.
package batch

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/ahmethakanbesel/yahoojp-history/internal/download"
	"github.com/ahmethakanbesel/yahoojp-history/internal/history"
	"github.com/ahmethakanbesel/yahoojp-history/internal/job"
	"github.com/ahmethakanbesel/yahoojp-history/internal/scraper"
)

const (
	DefaultInstrumentPause = 10 * time.Millisecond
	DefaultOutputDir       = "data"
	source                 = "yahoojp"
)

// Result partitions the requested codes by outcome. Requested keeps input
// order; every code that ran appears in exactly one of Succeeded or Failed.
type Result struct {
	RunID     string   `json:"runId"`
	Requested []string `json:"requested"`
	Succeeded []string `json:"succeeded"`
	Failed    []string `json:"failed"`
}

type Runner struct {
	client      *http.Client
	outDir      string
	adjust      bool
	pause       time.Duration
	sessionOpts []download.Option
	recorder    job.Repository
	logger      *slog.Logger
}

type Option func(*Runner)

// WithClient shares c across every instrument. Without it the runner
// creates a client per run and releases it afterwards.
func WithClient(c *http.Client) Option {
	return func(r *Runner) { r.client = c }
}

func WithOutputDir(dir string) Option {
	return func(r *Runner) { r.outDir = dir }
}

// WithAdjust controls whether exported prices are adjusted. Default true.
func WithAdjust(adjust bool) Option {
	return func(r *Runner) { r.adjust = adjust }
}

// WithInstrumentPause sets the minimum spacing between instruments.
func WithInstrumentPause(d time.Duration) Option {
	return func(r *Runner) { r.pause = d }
}

// WithSessionOptions passes options to every download session.
func WithSessionOptions(opts ...download.Option) Option {
	return func(r *Runner) { r.sessionOpts = append(r.sessionOpts, opts...) }
}

// WithRecorder logs one job per instrument to repo.
func WithRecorder(repo job.Repository) Option {
	return func(r *Runner) { r.recorder = repo }
}

func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		outDir: DefaultOutputDir,
		adjust: true,
		pause:  DefaultInstrumentPause,
		logger: slog.Default(),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// RunAll downloads every query in order. A failing instrument is recorded in
// Failed and the run moves on; only cancellation of ctx stops it early, in
// which case the partial result is returned with ctx's error.
func (r *Runner) RunAll(ctx context.Context, queries []history.Query) (Result, error) {
	res := Result{
		RunID:     uuid.NewString(),
		Requested: make([]string, 0, len(queries)),
		Succeeded: []string{},
		Failed:    []string{},
	}
	for _, q := range queries {
		res.Requested = append(res.Requested, q.Code)
	}
	logger := r.logger.With("run", res.RunID)

	client := r.client
	if client == nil {
		client = download.NewClient()
		defer client.CloseIdleConnections()
	}

	pacer := scraper.NewPacer(r.pause)
	for _, q := range queries {
		if err := pacer.Wait(ctx); err != nil {
			return res, err
		}

		err := r.runOne(ctx, logger, res.RunID, client, q)
		if err != nil && ctx.Err() != nil {
			return res, ctx.Err()
		}
		if err != nil {
			logger.Warn("instrument failed", "code", q.Code, "error", err)
			res.Failed = append(res.Failed, q.Code)
			continue
		}
		res.Succeeded = append(res.Succeeded, q.Code)
	}

	logger.Info("batch finished",
		"requested", len(res.Requested), "succeeded", len(res.Succeeded), "failed", len(res.Failed))
	return res, nil
}

func (r *Runner) runOne(ctx context.Context, logger *slog.Logger, runID string, client *http.Client, q history.Query) (err error) {
	opts := append([]download.Option{download.WithLogger(logger)}, r.sessionOpts...)
	sess := download.New(q, append(opts, download.WithHTTPClient(client))...)
	defer func() { _ = sess.Close() }()

	path := sess.Filename(r.outDir)
	j := r.startJob(ctx, logger, runID, q)
	defer func() { r.finishJob(ctx, logger, j, sess, path, err) }()

	return sess.ExportCSV(ctx, path, r.adjust)
}

func (r *Runner) startJob(ctx context.Context, logger *slog.Logger, runID string, q history.Query) *job.Job {
	if r.recorder == nil {
		return nil
	}
	j := &job.Job{
		RunID:     runID,
		Source:    source,
		Symbol:    q.Code,
		StartDate: q.Start,
		EndDate:   q.End,
		Status:    job.StatusRunning,
	}
	if err := r.recorder.Create(ctx, j); err != nil {
		logger.Error("record job", "code", q.Code, "error", err)
		return nil
	}
	return j
}

func (r *Runner) finishJob(ctx context.Context, logger *slog.Logger, j *job.Job, sess *download.Session, path string, runErr error) {
	if j == nil {
		return
	}
	if runErr != nil {
		j.Status = job.StatusFailed
		j.Error = runErr.Error()
	} else {
		j.Status = job.StatusCompleted
		j.Path = path
		if ds, err := sess.StockData(ctx, false); err == nil {
			j.RecordsCount = int64(ds.Len())
		}
	}

	// A cancelled run still closes out its job record.
	if ctx.Err() != nil {
		ctx = context.WithoutCancel(ctx)
	}
	if err := r.recorder.Update(ctx, j); err != nil {
		logger.Error("update job", "code", j.Symbol, "error", err)
	}
}
