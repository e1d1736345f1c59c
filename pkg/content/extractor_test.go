package content

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTitle_FromTitleTag(t *testing.T) {
	page := `<html><head><title>Stenoprotokoly 1. schůze</title></head>
<body><div id="main-content"><h1>Stenoprotokoly 1. schůze</h1><p>Čtvrtek 26. října 2017</p></div></body></html>`

	title, err := ExtractTitle(page, "https://www.psp.cz/eknih/2017ps/stenprot/001schuz/1-1.html")

	require.NoError(t, err)
	assert.Equal(t, "Stenoprotokoly 1. schůze", title)
}

func TestExtractTitle_NotFound(t *testing.T) {
	_, err := ExtractTitle(`<html><body><div id="main-content"></div></body></html>`, "")

	assert.True(t, errors.Is(err, ErrNoTitle))
}

func TestMainContent_Missing(t *testing.T) {
	doc, err := ParseDocument(`<html><body><div id="content"><p>x</p></div></body></html>`)
	require.NoError(t, err)

	_, err = MainContent(doc)

	assert.ErrorIs(t, err, ErrNoContentRegion)
}
