package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanText(t *testing.T) {
	assert.Equal(t, "one two three", CleanText("  one\n\ttwo   three \n"))
	assert.Equal(t, "", CleanText("   \n\t  "))
}

func TestExtractHTML(t *testing.T) {
	page := []byte(`<html>
<head><title>  About   GMRIT </title><script>var x = 1;</script></head>
<body>
<header>Top banner</header>
<nav><a href="/">Home</a></nav>
<div class="sidebar">Quick links</div>
<div class="menu">Menu items</div>
<div class="ad">Sponsored</div>
<p>GMR Institute of Technology is an engineering college.</p>
<footer>Copyright</footer>
</body>
</html>`)

	title, text, err := ExtractHTML(page)
	require.NoError(t, err)

	assert.Equal(t, "About GMRIT", title)
	assert.Equal(t, "GMR Institute of Technology is an engineering college.", text)

	for _, boilerplate := range []string{"Top banner", "Home", "Quick links", "Menu items", "Sponsored", "Copyright", "var x"} {
		assert.NotContains(t, text, boilerplate)
	}
}

func TestExtractHTMLNoTitle(t *testing.T) {
	title, text, err := ExtractHTML([]byte(`<html><body><p>Just a body.</p></body></html>`))
	require.NoError(t, err)
	assert.Equal(t, "", title)
	assert.Equal(t, "Just a body.", text)
}

func TestExtractPDFRejectsGarbage(t *testing.T) {
	_, err := ExtractPDF([]byte("this is not a pdf"))
	assert.Error(t, err)
}
