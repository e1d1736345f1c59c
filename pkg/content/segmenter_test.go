package content

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"spearch/pkg/domain"
)

const testBaseURL = "https://www.psp.cz"

// contentNodes returns the top-level children of a main content region built from fragment.
func contentNodes(t *testing.T, fragment string) []*html.Node {
	t.Helper()
	doc, err := ParseDocument(`<html><body><div id="main-content">` + fragment + `</div></body></html>`)
	require.NoError(t, err)
	region, err := MainContent(doc)
	require.NoError(t, err)

	var nodes []*html.Node
	for c := region.Nodes[0].FirstChild; c != nil; c = c.NextSibling {
		nodes = append(nodes, c)
	}
	return nodes
}

func newTestSegmenter(t *testing.T) *Segmenter {
	t.Helper()
	s, err := NewSegmenter(testBaseURL, nil)
	require.NoError(t, err)
	return s
}

func TestSegmenter_SingleMarker(t *testing.T) {
	nodes := contentNodes(t, `<p><a id="r1" href="/poslanec/1">Chair</a>: Let us begin.</p>More remarks.`)

	records, err := newTestSegmenter(t).SegmentAll(nodes)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.True(t, records[0].IsOrphan())
	assert.Equal(t, "", records[0].Text)

	require.NotNil(t, records[1].Speaker)
	assert.Equal(t, domain.SpeakerIdentity{Name: "Chair", ProfileURL: "https://www.psp.cz/poslanec/1"}, *records[1].Speaker)
	assert.Equal(t, "Chair: Let us begin.\nMore remarks.", records[1].Text)
}

func TestSegmenter_LeadingStrayTextAndMissingLink(t *testing.T) {
	nodes := contentNodes(t, `stray<p><a id="r9">MP X</a>: Hello</p>`)

	records, err := newTestSegmenter(t).SegmentAll(nodes)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.True(t, records[0].IsOrphan())
	assert.Equal(t, "\nstray", records[0].Text)

	require.NotNil(t, records[1].Speaker)
	assert.Equal(t, "MP X", records[1].Speaker.Name)
	assert.Empty(t, records[1].Speaker.ProfileURL)
	assert.Equal(t, "MP X: Hello", records[1].Text)
}

func TestSegmenter_UnrecognizedNodeAborts(t *testing.T) {
	nodes := contentNodes(t, `<p><a id="r1" href="/p/1">A</a>: one</p><span>x</span><p><a id="r2" href="/p/2">B</a>: two</p>`)

	var emitted []domain.SpeechRecord
	err := newTestSegmenter(t).Segment(nodes, func(r domain.SpeechRecord) error {
		emitted = append(emitted, r)
		return nil
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnrecognizedNode))

	var nodeErr *UnrecognizedNodeError
	require.True(t, errors.As(err, &nodeErr))
	assert.Equal(t, "span", nodeErr.Tag)

	require.Len(t, emitted, 1)
	assert.True(t, emitted[0].IsOrphan())
}

func TestSegmenter_DivWithoutMediaLinksClassAborts(t *testing.T) {
	nodes := contentNodes(t, `<p><a id="r1" href="/p/1">A</a>: one</p><div class="box">x</div>`)

	_, err := newTestSegmenter(t).SegmentAll(nodes)

	var nodeErr *UnrecognizedNodeError
	require.True(t, errors.As(err, &nodeErr))
	assert.Equal(t, "div", nodeErr.Tag)
	assert.Equal(t, []string{"box"}, nodeErr.Classes)
}

func TestSegmenter_AccumulatesBreaksMediaLinksAndParagraphs(t *testing.T) {
	nodes := contentNodes(t, `<p><a id="r1" href="/p/1">A</a>: one</p><br><div class="media-links video"><a href="v.mp4">Video</a></div><p>two</p>`)

	records, err := newTestSegmenter(t).SegmentAll(nodes)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "A: one\n\nVideo\ntwo", records[1].Text)
}

func TestSegmenter_SpeechBoundariesFollowMarkers(t *testing.T) {
	nodes := contentNodes(t, `<p><a id="r1" href="/p/1">A</a>: one</p><p>one more</p>`+
		`<p><a id="r2" href="/p/2">B</a>: two</p>`+
		`<p><a id="r3" href="/p/1">A</a>: three</p>`)

	records, err := newTestSegmenter(t).SegmentAll(nodes)
	require.NoError(t, err)
	require.Len(t, records, 4)

	got := make([]string, 0, 3)
	for _, r := range records[1:] {
		got = append(got, r.Speaker.Name+"|"+r.Text)
	}
	assert.Equal(t, []string{"A|A: one\none more", "B|B: two", "A|A: three"}, got)
}

func TestSegmenter_FirstMarkerInParagraphWins(t *testing.T) {
	nodes := contentNodes(t, `<p><a id="r1" href="/p/1">A</a> and <a id="r2" href="/p/2">B</a></p>`)

	records, err := newTestSegmenter(t).SegmentAll(nodes)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "A", records[1].Speaker.Name)
	assert.Equal(t, "https://www.psp.cz/p/1", records[1].Speaker.ProfileURL)
	assert.Equal(t, "A and B", records[1].Text)
}

func TestSegmenter_NonMarkerAnchorIsPlainParagraph(t *testing.T) {
	nodes := contentNodes(t, `<p><a id="r1" href="/p/1">A</a>: one</p><p>see <a id="x1" href="/tisk/5">tisk 5</a></p>`)

	records, err := newTestSegmenter(t).SegmentAll(nodes)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "A: one\nsee tisk 5", records[1].Text)
}

func TestSegmenter_EmitErrorStopsWalk(t *testing.T) {
	nodes := contentNodes(t, `<p><a id="r1" href="/p/1">A</a>: one</p><p><a id="r2" href="/p/2">B</a>: two</p>`)
	boom := errors.New("sink down")

	calls := 0
	err := newTestSegmenter(t).Segment(nodes, func(r domain.SpeechRecord) error {
		calls++
		if !r.IsOrphan() {
			return boom
		}
		return nil
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls)
}

func TestSegmenter_EmptyStream(t *testing.T) {
	records, err := newTestSegmenter(t).SegmentAll(nil)

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].IsOrphan())
	assert.Empty(t, records[0].Text)
}

func TestSegmenter_PauseOnlySectionYieldsNoSpeech(t *testing.T) {
	doc, err := ParseDocument(`<div id="main-content"><p>(Jednání zahájeno v 9:00 hodin.)</p></div>`)
	require.NoError(t, err)
	region, err := MainContent(doc)
	require.NoError(t, err)
	NewFilter(nil).Apply(region)

	var nodes []*html.Node
	for c := region.Nodes[0].FirstChild; c != nil; c = c.NextSibling {
		nodes = append(nodes, c)
	}
	require.Empty(t, nodes)

	records, err := newTestSegmenter(t).SegmentAll(nodes)
	require.NoError(t, err)
	for _, r := range records {
		assert.True(t, r.IsOrphan())
	}
}
