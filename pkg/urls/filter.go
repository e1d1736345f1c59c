package urls

import (
	"context"
	"regexp"
)

// UrlFilter defines the interface for URL filtering
type UrlFilter interface {
	ShouldKeep(ctx context.Context, url string) (bool, error)
}

// PatternFilter keeps URLs containing a match of a regular expression anywhere in them
type PatternFilter struct {
	pattern *regexp.Regexp
}

// NewPatternFilter creates a new pattern filter
func NewPatternFilter(pattern *regexp.Regexp) *PatternFilter {
	return &PatternFilter{pattern: pattern}
}

// ShouldKeep returns true if the URL matches the pattern
func (f *PatternFilter) ShouldKeep(ctx context.Context, urlStr string) (bool, error) {
	return f.pattern.MatchString(urlStr), nil
}

// DistinctFilter keeps only the first occurrence of every URL it sees.
// It is stateful; use one instance per page.
type DistinctFilter struct {
	seen map[string]bool
}

// NewDistinctFilter creates a new distinct filter
func NewDistinctFilter() *DistinctFilter {
	return &DistinctFilter{seen: make(map[string]bool)}
}

// ShouldKeep returns false if the URL was already kept before
func (f *DistinctFilter) ShouldKeep(ctx context.Context, urlStr string) (bool, error) {
	if f.seen[urlStr] {
		return false, nil
	}
	f.seen[urlStr] = true
	return true, nil
}

// shouldKeepURL checks if a URL passes every filter
func shouldKeepURL(ctx context.Context, urlStr string, filters ...UrlFilter) (bool, error) {
	for _, filter := range filters {
		keep, err := filter.ShouldKeep(ctx, urlStr)
		if err != nil {
			return false, err
		}
		if !keep {
			return false, nil
		}
	}
	return true, nil
}
