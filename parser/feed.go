package parser

import (
	"bytes"
	"context"
	"fmt"

	"github.com/mmcdole/gofeed"
	"github.com/pevans/newscrape/logger"
	"github.com/pevans/newscrape/scraper"
)

// FeedParser discovers articles from the site's RSS or Atom feed instead of
// its homepage. Article pages are extracted exactly like HomepageParser does.
type FeedParser struct {
	*siteParser
}

// NewFeedParser builds a FeedParser. It is the Factory for the "feed"
// identifier; the site URL must point at the feed itself.
func NewFeedParser(site scraper.Site, deps Deps) Adapter {
	return &FeedParser{siteParser: newSiteParser(site, deps)}
}

// DiscoverLinks fetches and parses the feed and returns its item links. The
// gofeed parser detects RSS and Atom automatically.
func (p *FeedParser) DiscoverLinks(ctx context.Context) []string {
	ctx, cancel := p.discoveryContext(ctx)
	defer cancel()

	p.log.Info("getting news from feed", logger.String("url", p.site.URL))

	body, err := p.deps.Client.Fetch(ctx, p.site.URL)
	if err != nil {
		return p.discoveryFailed(err)
	}

	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return p.discoveryFailed(fmt.Errorf("failed to parse feed: %w", err))
	}

	set := newLinkSet(p.site.URL)
	for _, item := range feed.Items {
		set.add(item.Link)
	}

	p.log.Info("found article links", logger.Int("count", len(set.links)))
	p.setLinks(set.links, true)
	return set.links
}
