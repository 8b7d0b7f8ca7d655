package usecase

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/lens-lookup-service/internal/entity"
)

func linkURLs(links []entity.CandidateLink) []string {
	urls := make([]string, len(links))
	for i, l := range links {
		urls[i] = l.URL
	}
	return urls
}

func TestRankCandidateLinksFallsBackToWholePage(t *testing.T) {
	html := `<html><body>
		<p><a href="https://www.discogs.com/artist/1-Artist">Artist</a></p>
		<p><a href="https://example.com/elsewhere">Elsewhere</a></p>
		<p><a href="https://www.discogs.com/release/2-Album">Album</a></p>
		<p><a href="https://www.discogs.com/master/3-Album"></a></p>
	</body></html>`

	links, err := RankCandidateLinks(html, testRefinedURL, entity.DefaultSiteProfile())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"https://www.discogs.com/artist/1-Artist",
		"https://www.discogs.com/release/2-Album",
		"https://www.discogs.com/master/3-Album",
	}, linkURLs(links))
	assert.False(t, links[0].IsDetailPage)
	assert.True(t, links[1].IsDetailPage)
	assert.Equal(t, "Discogs link", links[2].DisplayText)
}

func TestRankCandidateLinksPrefersDetailPagesInResults(t *testing.T) {
	html := `<html><body>
		<div class="g"><a href="https://www.discogs.com/artist/1-Artist">Artist</a></div>
		<div class="yuRUbf"><a href="https://www.discogs.com/release/2-Album">Album</a></div>
		<div class="g"><a href="https://www.discogs.com/release/3-Album-Reissue">Reissue</a></div>
		<a href="https://www.discogs.com/release/4-Outside-Results">Outside</a>
	</body></html>`

	links, err := RankCandidateLinks(html, testRefinedURL, entity.DefaultSiteProfile())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"https://www.discogs.com/release/2-Album",
		"https://www.discogs.com/release/3-Album-Reissue",
		"https://www.discogs.com/artist/1-Artist",
	}, linkURLs(links))
}

func TestRankCandidateLinksDedupesAndCaps(t *testing.T) {
	var b strings.Builder
	b.WriteString("<html><body>")
	for i := 1; i <= 8; i++ {
		fmt.Fprintf(&b, `<div class="g"><a href="https://www.discogs.com/release/%d">Release %d</a></div>`, i, i)
		fmt.Fprintf(&b, `<div class="g"><a href="https://www.discogs.com/release/%d">Again</a></div>`, i)
	}
	b.WriteString("</body></html>")

	links, err := RankCandidateLinks(b.String(), testRefinedURL, entity.DefaultSiteProfile())
	require.NoError(t, err)

	require.Len(t, links, 5)
	for i, link := range links {
		assert.Equal(t, fmt.Sprintf("https://www.discogs.com/release/%d", i+1), link.URL)
		assert.Equal(t, fmt.Sprintf("Release %d", i+1), link.DisplayText)
	}
}

func TestRankCandidateLinksMatchesByHost(t *testing.T) {
	html := `<html><body>
		<a href="https://www.google.com/search?q=discogs.com">Engine link mentioning the catalog</a>
		<a href="https://notdiscogs.com/release/1">Lookalike</a>
		<a href="ftp://discogs.com/release/2">Wrong scheme</a>
		<a href="/release/3-Relative">Relative to the engine</a>
		<a href="https://discogs.com/release/4">Bare domain</a>
		<a href="//www.discogs.com/release/5">Scheme relative</a>
	</body></html>`

	links, err := RankCandidateLinks(html, testRefinedURL, entity.DefaultSiteProfile())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"https://discogs.com/release/4",
		"https://www.discogs.com/release/5",
	}, linkURLs(links))
}

func TestRankCandidateLinksEmptyPage(t *testing.T) {
	links, err := RankCandidateLinks("", testRefinedURL, entity.DefaultSiteProfile())
	require.NoError(t, err)
	assert.Empty(t, links)
}
