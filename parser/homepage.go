package parser

import (
	"context"

	"github.com/pevans/newscrape/logger"
	"github.com/pevans/newscrape/query"
	"github.com/pevans/newscrape/scraper"
)

// HomepageParser discovers articles from anchors on the site's homepage.
type HomepageParser struct {
	*siteParser
}

// NewHomepageParser builds a HomepageParser. It is the Factory for the
// "homepage" and "eluniversalparser" identifiers.
func NewHomepageParser(site scraper.Site, deps Deps) Adapter {
	return &HomepageParser{siteParser: newSiteParser(site, deps)}
}

// DiscoverLinks fetches the homepage and collects the href of every node
// matched by the homepage_article_links query. The query may also select the
// href attribute or text directly.
func (p *HomepageParser) DiscoverLinks(ctx context.Context) []string {
	ctx, cancel := p.discoveryContext(ctx)
	defer cancel()

	p.log.Info("getting news from homepage", logger.String("url", p.site.URL))

	home, err := p.deps.Client.GetDocument(ctx, p.site.URL)
	if err != nil {
		return p.discoveryFailed(err)
	}

	set := newLinkSet(p.site.URL)
	for _, node := range query.Select(p.site.HomepageLinksQuery(), home) {
		if href, ok := query.Value(node, "href"); ok {
			set.add(href)
		}
	}

	p.log.Info("found article links", logger.Int("count", len(set.links)))
	p.setLinks(set.links, true)
	return set.links
}
