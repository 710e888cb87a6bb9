package parser

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/pevans/newscrape/article"
	"github.com/pevans/newscrape/logger"
	"github.com/pevans/newscrape/query"
	"github.com/pevans/newscrape/scraper"
	"golang.org/x/net/html"
	"golang.org/x/sync/errgroup"
)

// siteParser carries what every variant shares: the bound site, the link set
// of the last discovery and the article accumulator.
type siteParser struct {
	site scraper.Site
	deps Deps
	log  logger.Logger
	news *article.Accumulator

	mu         sync.Mutex
	links      []string
	discovered bool
}

func newSiteParser(site scraper.Site, deps Deps) *siteParser {
	return &siteParser{
		site: site,
		deps: deps,
		log:  deps.Logger.With(logger.String("site", site.Name)),
		news: article.NewAccumulator(),
	}
}

func (p *siteParser) Site() scraper.Site { return p.site }

func (p *siteParser) News() *article.Accumulator { return p.news }

// InvalidResponse is the single-entry discovery result for an unreachable
// index page.
func InvalidResponse(siteURL string) string {
	return fmt.Sprintf("Invalid response from %s", siteURL)
}

func (p *siteParser) discoveryFailed(err error) []string {
	p.log.Warn("could not parse data from site",
		logger.String("url", p.site.URL),
		logger.Error(err),
	)
	p.setLinks(nil, false)
	return []string{InvalidResponse(p.site.URL)}
}

func (p *siteParser) setLinks(links []string, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.links = links
	p.discovered = ok
}

func (p *siteParser) currentLinks() ([]string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.links, p.discovered
}

// discoveryContext applies the overall discovery deadline.
func (p *siteParser) discoveryContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.deps.DiscoveryTimeout > 0 {
		return context.WithTimeout(ctx, p.deps.DiscoveryTimeout)
	}
	return context.WithCancel(ctx)
}

// linkSet collects absolute article URLs, keeping the first occurrence of
// each.
type linkSet struct {
	base  *url.URL
	seen  map[string]struct{}
	links []string
}

func newLinkSet(siteURL string) *linkSet {
	base, _ := url.Parse(siteURL)
	return &linkSet{base: base, seen: make(map[string]struct{})}
}

// add resolves href against the site URL and records it. Non-HTTP links
// (mailto:, javascript:) are ignored.
func (s *linkSet) add(href string) {
	href = strings.TrimSpace(href)
	if href == "" {
		return
	}
	ref, err := url.Parse(href)
	if err != nil {
		return
	}
	if s.base != nil {
		ref = s.base.ResolveReference(ref)
	}
	if ref.Scheme != "http" && ref.Scheme != "https" {
		return
	}
	ref.Fragment = ""

	link := ref.String()
	if _, dup := s.seen[link]; dup {
		return
	}
	s.seen[link] = struct{}{}
	s.links = append(s.links, link)
}

// FetchAndExtract fetches every discovered link concurrently and adds one
// article per successful page. Failed fetches are logged and skipped.
func (p *siteParser) FetchAndExtract(ctx context.Context) []article.Article {
	links, ok := p.currentLinks()
	if !ok {
		p.log.Warn("skipping article extraction, link discovery did not succeed",
			logger.String("url", p.site.URL))
		return p.news.All()
	}

	// Fetch failures are logged, never returned; the group only bounds
	// concurrency.
	var g errgroup.Group
	if p.deps.MaxConcurrency > 0 {
		g.SetLimit(p.deps.MaxConcurrency)
	}

	for i, link := range links {
		g.Go(func() error {
			p.fetchArticle(ctx, i+1, len(links), link)
			return nil
		})
	}
	g.Wait()

	p.log.Info("finished article extraction",
		logger.Int("links", len(links)),
		logger.Int("articles", p.news.Len()),
	)
	return p.news.All()
}

func (p *siteParser) fetchArticle(ctx context.Context, task, total int, link string) {
	p.log.Debug("fetching article",
		logger.Int("task", task),
		logger.Int("total", total),
		logger.String("url", link),
	)

	doc, err := p.deps.Client.GetDocument(ctx, link)
	if err != nil {
		p.log.Warn("failed to fetch article",
			logger.Int("task", task),
			logger.String("url", link),
			logger.Error(err),
		)
		return
	}

	p.news.Add(p.extract(doc, link))
}

// extract reads the article fields from a parsed page. Missing singular
// fields degrade to sentinels, a missing body to the empty string.
func (p *siteParser) extract(doc *html.Node, link string) article.Article {
	title := query.First(p.site.Queries[scraper.QueryTitle], doc, query.NoTitle)
	summary := query.First(p.site.Queries[scraper.QuerySummary], doc, query.NoSummary)
	body := query.JoinAll(p.site.Queries[scraper.QueryBody], doc)

	return article.New(title, summary, body, link, p.site.Name, p.deps.Now())
}
