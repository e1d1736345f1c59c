package pipeline

import (
	"fmt"

	"spearch/pkg/content"
	"spearch/pkg/worker"
)

// BuildCrawler wires a crawler with its stitcher, segmenter and section worker pool.
// siteURL is the archive root speaker profile links are resolved against.
// The caller must Close the crawler.
func BuildCrawler(fetcher Fetcher, sink Sink, siteURL string, sectionWorkers int, opts ...Option) (*Crawler, error) {
	o := newOptions(opts)

	segmenter, err := content.NewSegmenter(siteURL, o.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create segmenter: %w", err)
	}

	workers, err := worker.NewManager(sectionWorkers, o.logger)
	if err != nil {
		return nil, err
	}

	stitcher := NewStitcher(fetcher, workers, opts...)
	crawler := NewCrawler(fetcher, stitcher, segmenter, sink, opts...)
	crawler.release = workers.Release
	return crawler, nil
}
