package scraper

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/pevans/newscrape/config"
	"github.com/pevans/newscrape/query"
)

// Logical query names a site may configure.
const (
	QueryHomepageLinks = "homepage_article_links"
	QueryTitle         = "news_title"
	QuerySummary       = "news_summary"
	QueryBody          = "news_body"
)

// ConfigurationError reports a site entry that cannot be used.
type ConfigurationError struct {
	Site   string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("site %q: %s", e.Site, e.Reason)
}

// ParserCatalog reports which parser identifiers exist and which queries
// each one needs.
type ParserCatalog interface {
	RequiredQueries(parserID string) ([]string, bool)
}

// Site describes one configured news source. A Site is built once by
// LoadSites and never modified.
type Site struct {
	Name    string
	URL     string
	Parser  string
	Queries map[string]query.Selector
}

// Query returns the selector configured for name.
func (s Site) Query(name string) (query.Selector, bool) {
	sel, ok := s.Queries[name]
	return sel, ok
}

// HomepageLinksQuery returns the selector for article links on the homepage.
func (s Site) HomepageLinksQuery() query.Selector {
	return s.Queries[QueryHomepageLinks]
}

// LoadSites validates every configured site against catalog and returns them
// by name. Validation is eager: the first bad entry (in name order) is
// returned as a *ConfigurationError before any network activity happens.
func LoadSites(cfg *config.FileConfig, catalog ParserCatalog) (map[string]Site, error) {
	if cfg == nil || len(cfg.NewsSites) == 0 {
		return nil, &ConfigurationError{Reason: "no news_sites configured"}
	}

	names := make([]string, 0, len(cfg.NewsSites))
	for name := range cfg.NewsSites {
		names = append(names, name)
	}
	sort.Strings(names)

	sites := make(map[string]Site, len(names))
	for _, name := range names {
		site, err := NewSite(name, cfg.NewsSites[name], catalog)
		if err != nil {
			return nil, err
		}
		sites[name] = site
	}

	return sites, nil
}

// NewSite validates a single site entry.
func NewSite(name string, sc config.SiteConfig, catalog ParserCatalog) (Site, error) {
	if strings.TrimSpace(sc.URL) == "" {
		return Site{}, &ConfigurationError{Site: name, Reason: "url is empty"}
	}
	u, err := url.Parse(sc.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return Site{}, &ConfigurationError{Site: name, Reason: fmt.Sprintf("invalid url %q", sc.URL)}
	}

	parserID := strings.ToLower(strings.TrimSpace(sc.Parser))
	required, ok := catalog.RequiredQueries(parserID)
	if !ok {
		return Site{}, &ConfigurationError{Site: name, Reason: fmt.Sprintf("unknown parser %q", sc.Parser)}
	}

	for _, key := range required {
		if _, ok := sc.Queries[key]; !ok {
			return Site{}, &ConfigurationError{Site: name, Reason: fmt.Sprintf("missing query %q", key)}
		}
	}

	queries := make(map[string]query.Selector, len(sc.Queries))
	for key, raw := range sc.Queries {
		sel, err := query.ParseSelector(raw)
		if err != nil {
			return Site{}, &ConfigurationError{Site: name, Reason: fmt.Sprintf("query %q: %v", key, err)}
		}
		queries[key] = sel
	}

	return Site{
		Name:    name,
		URL:     sc.URL,
		Parser:  parserID,
		Queries: queries,
	}, nil
}
