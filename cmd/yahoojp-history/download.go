package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/ahmethakanbesel/yahoojp-history/internal/batch"
	"github.com/ahmethakanbesel/yahoojp-history/internal/config"
	"github.com/ahmethakanbesel/yahoojp-history/internal/download"
	"github.com/ahmethakanbesel/yahoojp-history/internal/history"
	"github.com/ahmethakanbesel/yahoojp-history/internal/job"
	"github.com/ahmethakanbesel/yahoojp-history/internal/platform/sqlite"
	jobrepo "github.com/ahmethakanbesel/yahoojp-history/internal/repository/job"
)

const dateFormat = "2006-01-02"

type downloadFlags struct {
	start    string
	end      string
	days     int
	out      string
	noAdjust bool
	pause    time.Duration
	record   bool
}

func newDownloadCmd(cfg *config.Config) *cobra.Command {
	var f downloadFlags

	cmd := &cobra.Command{
		Use:   "download CODE...",
		Short: "Download each code to a CSV file in the output directory",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			queries, err := f.queries(cfg, args)
			if err != nil {
				return err
			}

			opts := []batch.Option{
				batch.WithOutputDir(pick(f.out, cfg.OutDir)),
				batch.WithAdjust(cfg.Batch.Adjust && !f.noAdjust),
				batch.WithInstrumentPause(cfg.Batch.InstrumentPause),
				batch.WithSessionOptions(sessionOptions(cfg)...),
			}
			if cmd.Flags().Changed("pause") {
				opts = append(opts, batch.WithInstrumentPause(f.pause))
			}
			if f.record {
				db, err := sqlite.Open(cfg.DBPath)
				if err != nil {
					return err
				}
				defer func() { _ = db.Close() }()
				repo := jobrepo.NewRepository(db.DB)
				if err := job.NewService(repo).MarkInterrupted(cmd.Context()); err != nil {
					slog.Warn("could not close out interrupted jobs", "error", err)
				}
				opts = append(opts, batch.WithRecorder(repo))
			}

			client := download.NewClient()
			defer client.CloseIdleConnections()
			opts = append(opts, batch.WithClient(client))

			res, err := batch.NewRunner(opts...).RunAll(cmd.Context(), queries)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if encErr := enc.Encode(res); encErr != nil {
				return encErr
			}
			return err
		},
	}

	cmd.Flags().StringVar(&f.start, "start", "", "first date, YYYY-MM-DD (default: end minus --days)")
	cmd.Flags().StringVar(&f.end, "end", "", "last date, YYYY-MM-DD (default: today)")
	cmd.Flags().IntVar(&f.days, "days", 0, "days to look back when --start is not set (default: PERIOD_DAYS)")
	cmd.Flags().StringVar(&f.out, "out", "", "output directory (default: OUT_DIR)")
	cmd.Flags().BoolVar(&f.noAdjust, "no-adjust", false, "write prices without split/dividend adjustment")
	cmd.Flags().DurationVar(&f.pause, "pause", batch.DefaultInstrumentPause, "minimum pause between instruments")
	cmd.Flags().BoolVar(&f.record, "record", true, "log each instrument to the run database")
	return cmd
}

func (f *downloadFlags) queries(cfg *config.Config, codes []string) ([]history.Query, error) {
	var start, end time.Time
	var err error
	if f.end != "" {
		if end, err = time.Parse(dateFormat, f.end); err != nil {
			return nil, fmt.Errorf("invalid --end: %w", err)
		}
	}
	if f.start != "" {
		if start, err = time.Parse(dateFormat, f.start); err != nil {
			return nil, fmt.Errorf("invalid --start: %w", err)
		}
		if end.IsZero() {
			end = time.Now()
		}
	}
	days := f.days
	if days == 0 {
		days = cfg.Batch.PeriodDays
	}

	out := make([]history.Query, 0, len(codes))
	for _, code := range codes {
		var q history.Query
		if start.IsZero() {
			q, err = history.NewQueryForPeriod(code, end, days)
		} else {
			q, err = history.NewQuery(code, start, end)
		}
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, nil
}

func pick(flag, fallback string) string {
	if flag != "" {
		return flag
	}
	return fallback
}
