package urls

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	// DayLinkPattern matches links from a term index to sitting days, e.g. "001schuz/1-1.html".
	DayLinkPattern = regexp.MustCompile(`\d+schuz/\d+-\d+\.html`)

	// SectionLinkPattern matches links from a day page into a numbered speech of a section,
	// e.g. "s001001.htm#r1".
	SectionLinkPattern = regexp.MustCompile(`s\d+\.htm#r\d+`)
)

// LinkExtractor finds the links of one kind inside a page region.
type LinkExtractor struct {
	pattern       *regexp.Regexp
	stripFragment bool
}

// NewDayLinkExtractor extracts sitting day pages from a term index.
func NewDayLinkExtractor() *LinkExtractor {
	return &LinkExtractor{pattern: DayLinkPattern}
}

// NewSectionLinkExtractor extracts section pages from a day page. Links into the same
// section collapse to one entry because the fragment is dropped.
func NewSectionLinkExtractor() *LinkExtractor {
	return &LinkExtractor{pattern: SectionLinkPattern, stripFragment: true}
}

// Extract returns the distinct matching links inside region resolved against baseURL,
// in the order they first appear.
func (e *LinkExtractor) Extract(ctx context.Context, region *goquery.Selection, baseURL string) ([]URL, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	pattern := NewPatternFilter(e.pattern)
	distinct := NewDistinctFilter()

	var (
		result   []URL
		firstErr error
	)

	region.Find("a[href]").EachWithBreak(func(_ int, link *goquery.Selection) bool {
		href, _ := link.Attr("href")
		href = strings.TrimSpace(href)

		keep, err := shouldKeepURL(ctx, href, pattern)
		if err != nil {
			firstErr = err
			return false
		}
		if !keep {
			return true
		}

		location := e.resolve(base, href)
		if location == "" {
			return true
		}

		keep, err = shouldKeepURL(ctx, location, distinct)
		if err != nil {
			firstErr = err
			return false
		}
		if keep {
			result = append(result, URL{
				Location: location,
				Title:    strings.TrimSpace(link.Text()),
			})
		}
		return true
	})

	if firstErr != nil {
		return nil, fmt.Errorf("filter error: %w", firstErr)
	}
	return result, nil
}

// resolve converts href to an absolute URL, dropping the fragment if configured.
// Unparsable hrefs resolve to "".
func (e *LinkExtractor) resolve(base *url.URL, href string) string {
	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}

	resolved := base.ResolveReference(parsed)
	if e.stripFragment {
		resolved.Fragment = ""
		resolved.RawFragment = ""
	}
	return resolved.String()
}
