package scraper

import (
	"errors"
	"testing"

	"github.com/pevans/newscrape/config"
	"github.com/pevans/newscrape/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalog map[string][]string

func (f fakeCatalog) RequiredQueries(id string) ([]string, bool) {
	q, ok := f[id]
	return q, ok
}

var testCatalog = fakeCatalog{
	"homepage": {QueryHomepageLinks, QueryTitle, QuerySummary, QueryBody},
	"feed":     {QueryTitle, QuerySummary, QueryBody},
}

func fullQueries() map[string]string {
	return map[string]string{
		QueryHomepageLinks: ".story a",
		QueryTitle:         ".headline",
		QuerySummary:       "xpath://div[@class='lead']/p",
		QueryBody:          ".body p",
	}
}

func TestLoadSites_Valid(t *testing.T) {
	cfg := &config.FileConfig{NewsSites: map[string]config.SiteConfig{
		"x": {URL: "https://example.test/", Parser: "Homepage", Queries: fullQueries()},
	}}

	sites, err := LoadSites(cfg, testCatalog)
	require.NoError(t, err)
	require.Contains(t, sites, "x")

	site := sites["x"]
	assert.Equal(t, "x", site.Name)
	assert.Equal(t, "https://example.test/", site.URL)
	assert.Equal(t, "homepage", site.Parser, "parser id should be lower-cased")
	assert.Equal(t, query.Selector{Dialect: query.CSS, Expr: ".story a"}, site.HomepageLinksQuery())

	summary, ok := site.Query(QuerySummary)
	require.True(t, ok)
	assert.Equal(t, query.XPath, summary.Dialect)
}

func TestLoadSites_UnknownParser(t *testing.T) {
	cfg := &config.FileConfig{NewsSites: map[string]config.SiteConfig{
		"x": {URL: "https://example.test/", Parser: "nope", Queries: fullQueries()},
	}}

	_, err := LoadSites(cfg, testCatalog)

	var cfgErr *ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "x", cfgErr.Site)
	assert.Contains(t, cfgErr.Reason, "unknown parser")
}

func TestLoadSites_MissingQuery(t *testing.T) {
	queries := fullQueries()
	delete(queries, QueryBody)
	cfg := &config.FileConfig{NewsSites: map[string]config.SiteConfig{
		"x": {URL: "https://example.test/", Parser: "homepage", Queries: queries},
	}}

	_, err := LoadSites(cfg, testCatalog)

	var cfgErr *ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Contains(t, cfgErr.Reason, QueryBody)
}

func TestLoadSites_FeedDoesNotNeedHomepageQuery(t *testing.T) {
	queries := fullQueries()
	delete(queries, QueryHomepageLinks)
	cfg := &config.FileConfig{NewsSites: map[string]config.SiteConfig{
		"x": {URL: "https://example.test/rss", Parser: "feed", Queries: queries},
	}}

	sites, err := LoadSites(cfg, testCatalog)
	require.NoError(t, err)
	assert.Len(t, sites, 1)
}

func TestLoadSites_InvalidEntries(t *testing.T) {
	tests := []struct {
		name string
		site config.SiteConfig
	}{
		{"empty url", config.SiteConfig{Parser: "homepage", Queries: fullQueries()}},
		{"relative url", config.SiteConfig{URL: "/news", Parser: "homepage", Queries: fullQueries()}},
		{"ftp url", config.SiteConfig{URL: "ftp://example.test/", Parser: "homepage", Queries: fullQueries()}},
		{"empty selector", config.SiteConfig{URL: "https://example.test/", Parser: "homepage", Queries: map[string]string{
			QueryHomepageLinks: "a", QueryTitle: "  ", QuerySummary: "p", QueryBody: "p",
		}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.FileConfig{NewsSites: map[string]config.SiteConfig{"x": tt.site}}
			_, err := LoadSites(cfg, testCatalog)

			var cfgErr *ConfigurationError
			assert.True(t, errors.As(err, &cfgErr))
		})
	}
}

func TestLoadSites_NoSites(t *testing.T) {
	_, err := LoadSites(&config.FileConfig{}, testCatalog)
	assert.Error(t, err)

	_, err = LoadSites(nil, testCatalog)
	assert.Error(t, err)
}

func TestConfigurationError_Message(t *testing.T) {
	err := &ConfigurationError{Site: "x", Reason: "missing query \"news_body\""}
	assert.Equal(t, `site "x": missing query "news_body"`, err.Error())
}
