package pipeline

import (
	"context"
	"fmt"

	"github.com/PuerkitoBio/goquery"

	"spearch/pkg/content"
	"spearch/pkg/urls"
)

// fetchBody retrieves a page, wrapping any failure in ErrTransportFailure.
// A cancelled context is returned as is.
func fetchBody(ctx context.Context, fetcher Fetcher, pageURL string) (string, error) {
	body, status, err := fetcher.Fetch(ctx, pageURL)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", fmt.Errorf("%w: %s (status %d): %w", ErrTransportFailure, pageURL, status, err)
	}
	return body, nil
}

// fetchRegion retrieves a page and returns its main content region.
func fetchRegion(ctx context.Context, fetcher Fetcher, pageURL string) (string, *goquery.Selection, error) {
	body, err := fetchBody(ctx, fetcher, pageURL)
	if err != nil {
		return "", nil, err
	}

	doc, err := content.ParseDocument(body)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", pageURL, err)
	}

	region, err := content.MainContent(doc)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", pageURL, err)
	}

	return body, region, nil
}

// fetchLinks retrieves a page and extracts links from its main content region.
// The raw markup is returned alongside the links.
func fetchLinks(ctx context.Context, fetcher Fetcher, extractor *urls.LinkExtractor, pageURL string) (string, []string, error) {
	body, region, err := fetchRegion(ctx, fetcher, pageURL)
	if err != nil {
		return "", nil, err
	}

	links, err := extractor.Extract(ctx, region, pageURL)
	if err != nil {
		return "", nil, fmt.Errorf("failed to extract links from %s: %w", pageURL, err)
	}

	return body, urls.Locations(links), nil
}
