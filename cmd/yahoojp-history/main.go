package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ahmethakanbesel/yahoojp-history/internal/config"
	"github.com/ahmethakanbesel/yahoojp-history/internal/download"
)

func main() {
	// Cancelled on SIGINT/SIGTERM so in-flight downloads stop promptly.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		slog.Error("command failed", "error", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfg config.Config

	root := &cobra.Command{
		Use:           "yahoojp-history",
		Short:         "Download daily price history from Yahoo! Finance Japan",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			loaded, err := config.Load()
			if err != nil {
				return err
			}
			cfg = loaded
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()})))
			return nil
		},
	}

	root.AddCommand(newDownloadCmd(&cfg), newServeCmd(&cfg))
	return root
}

// sessionOptions maps the scraper settings onto download sessions.
func sessionOptions(cfg *config.Config) []download.Option {
	return []download.Option{
		download.WithEndpoint(cfg.Scraper.Endpoint),
		download.WithRetries(cfg.Scraper.Retries, cfg.Scraper.RetryPause),
		download.WithTimeout(cfg.Scraper.Timeout),
		download.WithPagePause(cfg.Scraper.PagePause),
	}
}
