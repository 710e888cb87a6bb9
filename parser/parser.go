// Package parser implements the per-site parser adapters: link discovery on a
// site's index page followed by concurrent article extraction.
//
// Each adapter variant is registered under one or more parser identifiers in
// a Registry. Adding a site with a new page structure means adding a variant
// and a registry entry; shared code never branches on the site name.
package parser

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pevans/newscrape/article"
	"github.com/pevans/newscrape/logger"
	"github.com/pevans/newscrape/scraper"
)

// Adapter is the capability set every site parser provides.
type Adapter interface {
	// DiscoverLinks fetches the site's index and returns the deduplicated
	// article links. On failure it returns a single entry describing the
	// failure instead of an error.
	DiscoverLinks(ctx context.Context) []string
	// FetchAndExtract fetches every link found by the last DiscoverLinks
	// call and returns all accumulated articles.
	FetchAndExtract(ctx context.Context) []article.Article
	Site() scraper.Site
	News() *article.Accumulator
}

// Deps are the collaborators an adapter borrows for its lifetime.
type Deps struct {
	Client *Client
	Logger logger.Logger
	// DiscoveryTimeout bounds the whole discovery step; 0 disables it.
	DiscoveryTimeout time.Duration
	// MaxConcurrency caps in-flight article fetches; 0 means no cap.
	MaxConcurrency int
	// Now returns the extraction date; defaults to time.Now.
	Now func() time.Time
}

// Factory builds an adapter bound to site.
type Factory func(site scraper.Site, deps Deps) Adapter

// Entry registers one adapter variant.
type Entry struct {
	Required []string
	New      Factory
}

// Registry maps lower-case parser identifiers to adapter variants.
type Registry map[string]Entry

var articleQueries = []string{scraper.QueryTitle, scraper.QuerySummary, scraper.QueryBody}

// DefaultRegistry returns the built-in adapter variants.
func DefaultRegistry() Registry {
	homepage := Entry{
		Required: append([]string{scraper.QueryHomepageLinks}, articleQueries...),
		New:      NewHomepageParser,
	}
	return Registry{
		"eluniversalparser": homepage,
		"homepage":          homepage,
		"feed": {
			Required: articleQueries,
			New:      NewFeedParser,
		},
	}
}

// RequiredQueries implements scraper.ParserCatalog.
func (r Registry) RequiredQueries(parserID string) ([]string, bool) {
	entry, ok := r[strings.ToLower(parserID)]
	if !ok {
		return nil, false
	}
	return entry.Required, true
}

// IDs returns the registered identifiers, sorted.
func (r Registry) IDs() []string {
	ids := make([]string, 0, len(r))
	for id := range r {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// New builds the adapter registered for site.Parser.
func (r Registry) New(site scraper.Site, deps Deps) (Adapter, error) {
	entry, ok := r[strings.ToLower(site.Parser)]
	if !ok {
		return nil, &scraper.ConfigurationError{
			Site:   site.Name,
			Reason: fmt.Sprintf("unknown parser %q (known: %s)", site.Parser, strings.Join(r.IDs(), ", ")),
		}
	}
	for _, key := range entry.Required {
		if _, ok := site.Query(key); !ok {
			return nil, &scraper.ConfigurationError{Site: site.Name, Reason: fmt.Sprintf("missing query %q", key)}
		}
	}
	if deps.Client == nil {
		return nil, fmt.Errorf("site %q: no client", site.Name)
	}
	if deps.Logger == nil {
		deps.Logger = logger.NewNop()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return entry.New(site, deps), nil
}
