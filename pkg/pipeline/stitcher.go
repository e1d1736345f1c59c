package pipeline

import (
	"context"
	"log/slog"

	"golang.org/x/net/html"

	"spearch/pkg/content"
	"spearch/pkg/urls"
	"spearch/pkg/worker"
)

// Day is the stitched transcript of one sitting day.
type Day struct {
	URL   string
	Title string

	// Sections lists the distinct section pages in the order the day page links them.
	Sections []string

	// Skipped counts sections that could not be fetched or had no content region.
	Skipped int

	// Nodes are the filtered top-level children of every section's content region,
	// section after section.
	Nodes []*html.Node
}

// Stitcher assembles the content of a sitting day from its section pages.
type Stitcher struct {
	fetcher  Fetcher
	filter   *content.Filter
	sections *urls.LinkExtractor
	workers  *worker.Manager
	logger   *slog.Logger
}

// NewStitcher creates a stitcher fetching sections on the given worker manager.
func NewStitcher(fetcher Fetcher, workers *worker.Manager, opts ...Option) *Stitcher {
	o := newOptions(opts)
	return &Stitcher{
		fetcher:  fetcher,
		filter:   content.NewFilter(o.logger),
		sections: urls.NewSectionLinkExtractor(),
		workers:  workers,
		logger:   o.logger,
	}
}

// StitchDay fetches the day page and every section it links to, and concatenates
// the sections' filtered content in discovery order.
//
// A day page that cannot be retrieved yields ErrTransportFailure; one without a
// content region yields content.ErrNoContentRegion. Sections failing either way
// are skipped with a warning.
func (s *Stitcher) StitchDay(ctx context.Context, dayURL string) (*Day, error) {
	body, sections, err := fetchLinks(ctx, s.fetcher, s.sections, dayURL)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("sections found", "day", dayURL, "count", len(sections))
	if missing := urls.MissingSections(sections); len(missing) > 0 {
		s.logger.Warn("sections not referenced by any speech marker are not imported", "day", dayURL, "sections", missing)
	}

	day := &Day{
		URL:      dayURL,
		Title:    s.title(body, dayURL),
		Sections: sections,
	}

	results := worker.Map(ctx, s.workers, sections, s.fetchSection)
	for _, res := range results {
		if res.Err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			s.logger.Warn("skipping section", "section", sections[res.Index], "error", res.Err)
			day.Skipped++
			continue
		}
		day.Nodes = append(day.Nodes, res.Value...)
	}

	return day, nil
}

// fetchSection returns the filtered top-level children of a section's content region.
func (s *Stitcher) fetchSection(ctx context.Context, sectionURL string) ([]*html.Node, error) {
	s.logger.Debug("fetching section", "section", sectionURL)

	_, region, err := fetchRegion(ctx, s.fetcher, sectionURL)
	if err != nil {
		return nil, err
	}

	stats := s.filter.Apply(region)
	s.logger.Debug("section filtered", "section", sectionURL, "removed", stats.Total())

	children := region.Contents().Nodes
	nodes := make([]*html.Node, len(children))
	copy(nodes, children)
	return nodes, nil
}

func (s *Stitcher) title(body, dayURL string) string {
	title, err := content.ExtractTitle(body, dayURL)
	if err != nil {
		s.logger.Debug("day page has no title", "day", dayURL, "error", err)
		return ""
	}
	return title
}
