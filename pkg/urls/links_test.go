package urls

import (
	"context"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func region(t *testing.T, html string) *goquery.Selection {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc.Find("#main-content")
}

func TestLinkExtractor_DayLinks(t *testing.T) {
	page := region(t, `<div id="main-content">
<a href="001schuz/index.htm">1. schůze</a>
<a href="001schuz/1-1.html">24. října 2017</a>
<a href="001schuz/1-2.html">25. října 2017</a>
<a href="001schuz/1-1.html">24. října 2017 (znovu)</a>
<a href="../2013ps/index.htm">Předchozí období</a>
<a>bez odkazu</a>
</div>`)

	links, err := NewDayLinkExtractor().Extract(context.Background(), page, "https://www.psp.cz/eknih/2017ps/stenprot/index.htm")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"https://www.psp.cz/eknih/2017ps/stenprot/001schuz/1-1.html",
		"https://www.psp.cz/eknih/2017ps/stenprot/001schuz/1-2.html",
	}, Locations(links))
	assert.Equal(t, "24. října 2017", links[0].Title)
}

func TestLinkExtractor_SectionLinksAreDistinctAndOrdered(t *testing.T) {
	page := region(t, `<div id="main-content">
<p><a href="s001001.htm#r1">Předseda PSP Radek Vondráček</a></p>
<p><a href="s001001.htm#r2">Poslanec Jan Novák</a></p>
<p><a href="s001005.htm#r7">Poslanec Jan Novák</a></p>
<p><a href="s001003.htm#r4">Předseda PSP Radek Vondráček</a></p>
<p><a href="s001001.htm">bez kotvy</a></p>
<p><a href="/sqw/detail.sqw?id=5">profil</a></p>
</div>`)

	links, err := NewSectionLinkExtractor().Extract(context.Background(), page, "https://www.psp.cz/eknih/2017ps/stenprot/001schuz/1-1.html")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"https://www.psp.cz/eknih/2017ps/stenprot/001schuz/s001001.htm",
		"https://www.psp.cz/eknih/2017ps/stenprot/001schuz/s001005.htm",
		"https://www.psp.cz/eknih/2017ps/stenprot/001schuz/s001003.htm",
	}, Locations(links))
}

func TestLinkExtractor_InvalidBaseURL(t *testing.T) {
	_, err := NewDayLinkExtractor().Extract(context.Background(), region(t, `<div id="main-content"></div>`), "://bad")

	assert.Error(t, err)
}

func TestDistinctFilter_ShouldKeep(t *testing.T) {
	f := NewDistinctFilter()
	ctx := context.Background()

	first, err := f.ShouldKeep(ctx, "https://www.psp.cz/a")
	require.NoError(t, err)
	second, err := f.ShouldKeep(ctx, "https://www.psp.cz/a")
	require.NoError(t, err)

	assert.True(t, first)
	assert.False(t, second)
}
