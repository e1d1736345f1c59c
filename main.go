package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"spearch/pkg/config"
	"spearch/pkg/httpclient"
	"spearch/pkg/pipeline"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		slog.Error("import failed", "error", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "spearch",
		Usage: "Import the stenographic records of the Chamber of Deputies as attributed speeches",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "verbosity",
				Aliases: []string{"v"},
				Usage:   "0 warnings only, 1 progress, 2 and more debug output",
				Value:   1,
			},
		},
		Before: setupLogger,
		Action: importCommand,
	}
}

func levelFor(verbosity int) slog.Level {
	switch {
	case verbosity <= 0:
		return slog.LevelWarn
	case verbosity == 1:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}

func setupLogger(c *cli.Context) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: levelFor(c.Int("verbosity")),
	})).With("run_id", uuid.NewString())
	slog.SetDefault(logger)

	return nil
}

func importCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := slog.Default()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	sink, closeSink, err := openSink(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeSink()

	fetcherOpts := []httpclient.Option{
		httpclient.WithTimeout(cfg.HTTPTimeout),
		httpclient.WithLogger(logger),
	}
	if cfg.RespectRobots {
		fetcherOpts = append(fetcherOpts, httpclient.WithRobots())
	}
	fetcher := httpclient.NewClient(httpclient.ClientType(cfg.HTTPClient), fetcherOpts...)

	crawler, err := pipeline.BuildCrawler(fetcher, sink, cfg.SiteURL, cfg.SectionWorkers,
		pipeline.WithLogger(logger),
		pipeline.WithInstitution(cfg.Institution),
		pipeline.WithDayIsolation(cfg.IsolateDayFailures),
	)
	if err != nil {
		return err
	}
	defer crawler.Close()

	start := time.Now()
	logger.Info("importing term", "term", cfg.TermURL, "store", cfg.Store)
	stats, err := crawler.Run(ctx, cfg.TermURL)
	if err != nil {
		return err
	}
	logger.Info("done", "duration", time.Since(start), "speeches", stats.Speeches, "days", stats.Days)

	return nil
}

// closeWithTimeout runs a context-taking close function with a fresh deadline.
func closeWithTimeout(closeFn func(context.Context) error, logger *slog.Logger) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := closeFn(ctx); err != nil {
			logger.Warn("failed to close store", "error", err)
		}
	}
}
