package content

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
)

// MainContentSelector locates the transcript region on every archive page.
const MainContentSelector = "div#main-content"

// ErrNoContentRegion is returned when a page has no main content region.
var ErrNoContentRegion = errors.New("main content region not found")

// ErrNoTitle is returned when no title can be extracted from a page.
var ErrNoTitle = errors.New("title not found in HTML")

// ParseDocument parses raw markup into a goquery document.
func ParseDocument(htmlContent string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return doc, nil
}

// MainContent returns the page's main content region.
func MainContent(doc *goquery.Document) (*goquery.Selection, error) {
	region := doc.Find(MainContentSelector).First()
	if region.Length() == 0 {
		return nil, ErrNoContentRegion
	}
	return region, nil
}

// ExtractTitle extracts the page title with fallback mechanisms.
// pageURL may be empty.
func ExtractTitle(htmlContent, pageURL string) (string, error) {
	var parsedURL *url.URL
	if pageURL != "" {
		if u, err := url.Parse(pageURL); err == nil {
			parsedURL = u
		}
	}

	// Try readability first
	article, err := readability.FromReader(strings.NewReader(htmlContent), parsedURL)
	if err == nil {
		if title := strings.TrimSpace(article.Title); title != "" {
			return title, nil
		}
	}

	doc, err := ParseDocument(htmlContent)
	if err != nil {
		return "", err
	}

	// Try the heading of the main content region
	if title := strings.TrimSpace(doc.Find(MainContentSelector + " h1").First().Text()); title != "" {
		return title, nil
	}

	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return title, nil
	}

	if title := strings.TrimSpace(doc.Find("h1").First().Text()); title != "" {
		return title, nil
	}

	return "", ErrNoTitle
}
