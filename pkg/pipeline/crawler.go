package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"spearch/pkg/content"
	"spearch/pkg/domain"
	"spearch/pkg/urls"
)

// Crawler imports every sitting day of a term into a Sink.
type Crawler struct {
	fetcher   Fetcher
	stitcher  *Stitcher
	segmenter *content.Segmenter
	sink      Sink
	days      *urls.LinkExtractor

	institution string
	isolate     bool
	logger      *slog.Logger

	release func()
}

// NewCrawler creates a crawler. Days are imported one after another.
func NewCrawler(fetcher Fetcher, stitcher *Stitcher, segmenter *content.Segmenter, sink Sink, opts ...Option) *Crawler {
	o := newOptions(opts)
	return &Crawler{
		fetcher:     fetcher,
		stitcher:    stitcher,
		segmenter:   segmenter,
		sink:        sink,
		days:        urls.NewDayLinkExtractor(),
		institution: o.institution,
		isolate:     o.isolateDayFailures,
		logger:      o.logger,
	}
}

// Close releases resources owned by the crawler.
func (c *Crawler) Close() {
	if c.release != nil {
		c.release()
	}
}

// Run replaces every stored speech of the institution with a fresh import of the term.
//
// A day that cannot be retrieved is skipped. A day holding unrecognized content aborts
// the run unless day isolation is enabled. Sink errors always abort.
func (c *Crawler) Run(ctx context.Context, termURL string) (Stats, error) {
	var stats Stats

	institution, err := c.sink.EnsureInstitution(ctx, c.institution)
	if err != nil {
		return stats, fmt.Errorf("failed to ensure institution: %w", err)
	}

	deleted, err := c.sink.DeleteAllSpeeches(ctx, institution)
	if err != nil {
		return stats, fmt.Errorf("failed to delete speeches: %w", err)
	}
	c.logger.Info("deleted previously imported speeches", "institution", institution.Name, "count", deleted)

	days, err := c.CrawlTerm(ctx, termURL)
	if err != nil {
		return stats, err
	}

	for i, dayURL := range days {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		c.logger.Info("importing day", "day", dayURL, "n", i+1, "of", len(days))
		dayStats, err := c.ImportDay(ctx, institution, dayURL)
		stats.Add(dayStats)

		switch {
		case err == nil:
			stats.Days++

		case errors.Is(err, ErrTransportFailure), errors.Is(err, content.ErrNoContentRegion):
			c.logger.Warn("skipping day", "day", dayURL, "error", err)
			stats.SkippedDays++

		case errors.Is(err, content.ErrUnrecognizedNode) && c.isolate:
			c.logger.Error("abandoning day", "day", dayURL, "error", err)
			stats.FailedDays++

		default:
			c.logger.Error("aborting import", "day", dayURL, "error", err)
			return stats, err
		}
	}

	c.logger.Info("import finished", stats.logAttrs()...)
	return stats, nil
}

// CrawlTerm returns the distinct sitting day pages linked from a term index, in
// document order.
func (c *Crawler) CrawlTerm(ctx context.Context, termURL string) ([]string, error) {
	_, days, err := fetchLinks(ctx, c.fetcher, c.days, termURL)
	if err != nil {
		return nil, fmt.Errorf("failed to crawl term: %w", err)
	}

	c.logger.Info("days found", "term", termURL, "count", len(days))
	return days, nil
}

// ImportDay stitches and segments one day and saves its attributed speeches in
// document order. Orphan records are dropped.
//
// The returned stats are valid even with an error: speeches saved before the
// failure stay saved.
func (c *Crawler) ImportDay(ctx context.Context, institution domain.Institution, dayURL string) (Stats, error) {
	var stats Stats

	day, err := c.stitcher.StitchDay(ctx, dayURL)
	if err != nil {
		return stats, err
	}
	stats.SectionsSkipped = day.Skipped

	saver := newSpeechSaver(c.sink, institution)
	err = c.segmenter.Segment(day.Nodes, func(record domain.SpeechRecord) error {
		if record.IsOrphan() {
			stats.Dropped++
			if record.Text != "" {
				c.logger.Warn("dropping speech without a speaker", "day", dayURL, "text", record.Text)
			} else {
				c.logger.Debug("dropping empty speech without a speaker", "day", dayURL)
			}
			return nil
		}

		record.Sitting = day.Title
		record.DayURL = day.URL
		record.Position = stats.Speeches
		if err := saver.Save(ctx, record); err != nil {
			return err
		}
		stats.Speeches++
		return nil
	})
	if err != nil {
		return stats, fmt.Errorf("day %s: %w", dayURL, err)
	}

	c.logger.Debug("day imported", "day", dayURL, "speeches", stats.Speeches)
	return stats, nil
}
