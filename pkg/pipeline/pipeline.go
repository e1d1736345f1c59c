package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"spearch/pkg/domain"
)

// ErrTransportFailure wraps every failure to retrieve a page: transport errors and
// non-2xx responses alike.
var ErrTransportFailure = errors.New("failed to retrieve page")

// Fetcher retrieves a page and returns its markup decoded to UTF-8 and the status code.
// A non-2xx status is reported as an error.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, int, error)
}

// Sink persists institutions, speakers and speeches.
type Sink interface {
	// EnsureInstitution returns the institution called name, creating it if needed
	EnsureInstitution(ctx context.Context, name string) (domain.Institution, error)

	// FindOrCreateSpeaker looks a speaker up by name only. profileURL is used
	// only when the speaker is created.
	FindOrCreateSpeaker(ctx context.Context, name, profileURL string) (domain.Speaker, error)

	// SaveSpeech stores one attributed speech
	SaveSpeech(ctx context.Context, institution domain.Institution, speaker domain.Speaker, record domain.SpeechRecord) error

	// DeleteAllSpeeches removes every speech of the institution and returns how many were removed
	DeleteAllSpeeches(ctx context.Context, institution domain.Institution) (int64, error)
}

// Stats summarizes an import.
type Stats struct {
	Days            int // days imported completely
	SkippedDays     int // days whose page could not be retrieved
	FailedDays      int // days abandoned on unrecognized content
	Speeches        int
	Dropped         int // orphan records
	SectionsSkipped int
}

// Add accumulates other into s.
func (s *Stats) Add(other Stats) {
	s.Days += other.Days
	s.SkippedDays += other.SkippedDays
	s.FailedDays += other.FailedDays
	s.Speeches += other.Speeches
	s.Dropped += other.Dropped
	s.SectionsSkipped += other.SectionsSkipped
}

func (s Stats) logAttrs() []any {
	return []any{
		"days", s.Days,
		"skipped_days", s.SkippedDays,
		"failed_days", s.FailedDays,
		"speeches", s.Speeches,
		"dropped", s.Dropped,
		"sections_skipped", s.SectionsSkipped,
	}
}

type options struct {
	logger             *slog.Logger
	institution        string
	isolateDayFailures bool
}

// Option configures a Stitcher or a Crawler.
type Option func(*options)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithInstitution sets the name of the institution speeches are stored under.
func WithInstitution(name string) Option {
	return func(o *options) {
		if name != "" {
			o.institution = name
		}
	}
}

// WithDayIsolation makes the crawler log and skip a day holding unrecognized content
// instead of aborting the whole run.
func WithDayIsolation(isolate bool) Option {
	return func(o *options) {
		o.isolateDayFailures = isolate
	}
}

// DefaultInstitution is the legislature the archive belongs to.
const DefaultInstitution = "Poslanecká sněmovna"

func newOptions(opts []Option) options {
	o := options{
		logger:      slog.Default(),
		institution: DefaultInstitution,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
