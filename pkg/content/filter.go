package content

import (
	"log/slog"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// pauseAnnouncement matches paragraphs such as "(Jednání přerušeno v 10.12 do 10.30 hodin.)",
// optionally followed by "***".
var pauseAnnouncement = regexp.MustCompile(
	`^\s*\(Jednání (přerušeno|skončilo|pokračovalo|zahájeno) (v|ve|od) \d\d?[.:]\d\d( do \d\d?[.:]\d\d)? hodin\.\) ?(\*\*\*)?\s*$`)

// sentinelAnchorID marks navigation anchors that carry no speech content.
const sentinelAnchorID = "_d"

// FilterStats counts the nodes removed by each filtering rule.
type FilterStats struct {
	Comments   int
	Whitespace int
	Navigation int
	Pauses     int
	EmptyLinks int
	Sentinels  int
}

// Total returns the number of removed subtrees.
func (s FilterStats) Total() int {
	return s.Comments + s.Whitespace + s.Navigation + s.Pauses + s.EmptyLinks + s.Sentinels
}

// Filter strips transcript markup that is structurally present but carries no speech:
// comments, whitespace-only text, navigation blocks, session pause announcements,
// empty links and sentinel anchors.
type Filter struct {
	logger *slog.Logger
}

// NewFilter creates a markup filter. A nil logger means slog.Default().
func NewFilter(logger *slog.Logger) *Filter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Filter{logger: logger}
}

// Apply removes noise from the descendants of root in place and returns what was removed.
// The rules run in a fixed order; each one snapshots its matches before detaching them.
func (f *Filter) Apply(root *goquery.Selection) FilterStats {
	var stats FilterStats

	stats.Comments = detach(collect(root, func(n *html.Node) bool {
		return n.Type == html.CommentNode
	}))

	stats.Whitespace = detach(collect(root, func(n *html.Node) bool {
		return n.Type == html.TextNode && isBlank(n.Data)
	}))

	nav := root.Find(".document-nav")
	stats.Navigation = nav.Length()
	nav.Remove()

	pauses := root.Find("p").FilterFunction(func(_ int, p *goquery.Selection) bool {
		return IsPauseAnnouncement(p.Text())
	})
	pauses.Each(func(_ int, p *goquery.Selection) {
		f.logger.Debug("removing session pause", "text", strings.TrimSpace(p.Text()))
	})
	stats.Pauses = pauses.Length()
	pauses.Remove()

	empty := root.Find("a").FilterFunction(func(_ int, a *goquery.Selection) bool {
		return a.Text() == ""
	})
	stats.EmptyLinks = empty.Length()
	empty.Remove()

	sentinels := root.Find(`a[id="` + sentinelAnchorID + `"]`)
	stats.Sentinels = sentinels.Length()
	sentinels.Remove()

	f.logger.Debug("filtered markup",
		"comments", stats.Comments,
		"whitespace", stats.Whitespace,
		"navigation", stats.Navigation,
		"pauses", stats.Pauses,
		"empty_links", stats.EmptyLinks,
		"sentinels", stats.Sentinels)

	return stats
}

// IsPauseAnnouncement reports whether text is a session pause/start/end notice.
func IsPauseAnnouncement(text string) bool {
	return pauseAnnouncement.MatchString(strings.ReplaceAll(text, "\u00a0", " "))
}

// collect returns the descendants of every node in root matching keep, in document order.
func collect(root *goquery.Selection, keep func(*html.Node) bool) []*html.Node {
	var matched []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if keep(c) {
				matched = append(matched, c)
				continue
			}
			walk(c)
		}
	}
	for _, n := range root.Nodes {
		walk(n)
	}
	return matched
}

func detach(nodes []*html.Node) int {
	for _, n := range nodes {
		if n.Parent != nil {
			n.Parent.RemoveChild(n)
		}
	}
	return len(nodes)
}

func isBlank(s string) bool {
	return strings.TrimFunc(s, unicode.IsSpace) == ""
}
