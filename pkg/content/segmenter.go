package content

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"

	"spearch/pkg/domain"
)

// markerID matches the id of an anchor that opens a new speech (r1, r42, ...).
var markerID = regexp.MustCompile(`^r\d+`)

const mediaLinksClass = "media-links"

// ErrUnrecognizedNode is returned when the content stream holds a node the segmenter
// cannot attribute to a speech. Continuing would corrupt speech boundaries.
var ErrUnrecognizedNode = errors.New("unrecognized node in transcript content")

// UnrecognizedNodeError describes the offending node.
type UnrecognizedNodeError struct {
	Tag     string
	Classes []string
	Snippet string
}

func (e *UnrecognizedNodeError) Error() string {
	return fmt.Sprintf("%s: <%s class=%q> %s", ErrUnrecognizedNode, e.Tag, strings.Join(e.Classes, " "), e.Snippet)
}

func (e *UnrecognizedNodeError) Unwrap() error {
	return ErrUnrecognizedNode
}

// Segmenter partitions a stitched transcript node stream into speeches.
type Segmenter struct {
	base   *url.URL
	logger *slog.Logger
}

// NewSegmenter creates a segmenter resolving speaker profile links against baseURL.
func NewSegmenter(baseURL string, logger *slog.Logger) (*Segmenter, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Segmenter{base: base, logger: logger}, nil
}

// Segment walks nodes in order and hands every completed speech to emit.
//
// The first record is emitted when the first marker anchor is met and carries whatever
// was collected before it, with a nil Speaker. The last record is emitted after the
// stream ends. An error from emit, or an unrecognized node, stops the walk.
func (s *Segmenter) Segment(nodes []*html.Node, emit func(domain.SpeechRecord) error) error {
	var (
		author *domain.SpeakerIdentity
		text   string
	)

	for _, n := range nodes {
		switch {
		case n.Type == html.TextNode:
			text += "\n" + n.Data
			continue

		case isElement(n, "p"):
			sel := selectionOf(n)
			marker := findMarker(sel)
			if marker == nil {
				text += "\n" + sel.Text()
				continue
			}

			s.logger.Debug("new speech", "previous_speaker", speakerName(author), "excerpt", excerpt(text, 200))
			if err := emit(domain.SpeechRecord{Speaker: author, Text: text}); err != nil {
				return err
			}

			author = s.speakerFrom(marker)
			text = sel.Text()
			continue

		case isElement(n, "br"), isElement(n, "div") && hasClass(n, mediaLinksClass):
			text += "\n" + selectionOf(n).Text()
			continue
		}

		err := unrecognized(n)
		s.logger.Error("unrecognized node in transcript content", "tag", err.Tag, "classes", err.Classes, "snippet", err.Snippet)
		return err
	}

	s.logger.Debug("last speech", "speaker", speakerName(author), "excerpt", excerpt(text, 200))
	return emit(domain.SpeechRecord{Speaker: author, Text: text})
}

// SegmentAll collects every record Segment emits, orphans included.
func (s *Segmenter) SegmentAll(nodes []*html.Node) ([]domain.SpeechRecord, error) {
	var records []domain.SpeechRecord
	err := s.Segment(nodes, func(r domain.SpeechRecord) error {
		records = append(records, r)
		return nil
	})
	return records, err
}

// speakerFrom builds the speaker identity from a marker anchor.
// A missing or unparsable href leaves ProfileURL empty.
func (s *Segmenter) speakerFrom(anchor *goquery.Selection) *domain.SpeakerIdentity {
	speaker := &domain.SpeakerIdentity{
		Name: norm.NFC.String(strings.TrimSpace(anchor.Text())),
	}

	href, ok := anchor.Attr("href")
	if !ok {
		s.logger.Warn("an author without a link", "speaker", speaker.Name)
		return speaker
	}

	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		s.logger.Warn("an author with an invalid link", "speaker", speaker.Name, "href", href, "error", err)
		return speaker
	}

	speaker.ProfileURL = s.base.ResolveReference(ref).String()
	return speaker
}

// findMarker returns the first descendant anchor whose id opens a speech, or nil.
func findMarker(p *goquery.Selection) *goquery.Selection {
	marker := p.Find("a[id]").FilterFunction(func(_ int, a *goquery.Selection) bool {
		id, _ := a.Attr("id")
		return markerID.MatchString(id)
	}).First()
	if marker.Length() == 0 {
		return nil
	}
	return marker
}

func selectionOf(n *html.Node) *goquery.Selection {
	return goquery.NewDocumentFromNode(n).Selection
}

func isElement(n *html.Node, tag string) bool {
	return n.Type == html.ElementNode && n.Data == tag
}

func classes(n *html.Node) []string {
	for _, attr := range n.Attr {
		if attr.Key == "class" {
			return strings.Fields(attr.Val)
		}
	}
	return nil
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range classes(n) {
		if c == class {
			return true
		}
	}
	return false
}

func unrecognized(n *html.Node) *UnrecognizedNodeError {
	tag := n.Data
	if n.Type != html.ElementNode {
		tag = fmt.Sprintf("node-type-%d", n.Type)
	}

	snippet, err := goquery.OuterHtml(selectionOf(n))
	if err != nil {
		snippet = ""
	}

	return &UnrecognizedNodeError{
		Tag:     tag,
		Classes: classes(n),
		Snippet: excerpt(snippet, 200),
	}
}

func speakerName(s *domain.SpeakerIdentity) string {
	if s == nil {
		return ""
	}
	return s.Name
}

func excerpt(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + "…"
}
