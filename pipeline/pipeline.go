// Package pipeline drives the extract, transform and load stages.
//
// Extraction visits sites one at a time; each site's articles are fetched
// concurrently by its parser adapter. A failing site is logged and skipped so
// one broken site never stops the run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/pevans/newscrape/article"
	"github.com/pevans/newscrape/config"
	"github.com/pevans/newscrape/logger"
	"github.com/pevans/newscrape/output"
	"github.com/pevans/newscrape/parser"
	"github.com/pevans/newscrape/scraper"
	"github.com/pevans/newscrape/store"
	"github.com/pevans/newscrape/transform"
)

// ErrDiscoveryFailed marks a site whose index page could not be read.
var ErrDiscoveryFailed = errors.New("link discovery failed")

// Options tune how the driver runs each site.
type Options struct {
	DiscoveryTimeout time.Duration
	MaxConcurrency   int
	// DedupeArticles drops repeated URLs before writing.
	DedupeArticles bool
	WriteTextFiles bool
	// Now returns the extraction date; defaults to time.Now.
	Now func() time.Time
}

// Driver runs the pipeline stages against one shared fetch client.
type Driver struct {
	Registry parser.Registry
	Client   *parser.Client
	Logger   logger.Logger
	Options  Options
}

// New builds a driver from the configuration file's settings.
func New(cfg *config.FileConfig, log logger.Logger) *Driver {
	if log == nil {
		log = logger.NewNop()
	}
	return &Driver{
		Registry: parser.DefaultRegistry(),
		Client:   parser.NewClient(cfg.HTTP.Timeout, cfg.HTTP.UserAgent),
		Logger:   log,
		Options: Options{
			DiscoveryTimeout: cfg.HTTP.DiscoveryTimeout,
			MaxConcurrency:   cfg.HTTP.MaxConcurrency,
			DedupeArticles:   cfg.DedupeArticles,
			WriteTextFiles:   cfg.WriteTextFiles,
		},
	}
}

func (d *Driver) now() time.Time {
	if d.Options.Now != nil {
		return d.Options.Now()
	}
	return time.Now()
}

// SiteResult is the outcome of extracting one site.
type SiteResult struct {
	Site     string
	Links    int
	Articles int
	// File is the consolidated CSV written for the site, if any.
	File string
	Err  error
}

// Summary collects the per-site results of one Extract call in site name
// order.
type Summary struct {
	Sites []SiteResult
}

// Failed returns the number of sites that produced an error.
func (s Summary) Failed() int {
	n := 0
	for _, r := range s.Sites {
		if r.Err != nil {
			n++
		}
	}
	return n
}

// Articles returns the number of articles written across all sites.
func (s Summary) Articles() int {
	n := 0
	for _, r := range s.Sites {
		n += r.Articles
	}
	return n
}

// Extract processes sites sequentially in name order and writes each site's
// articles under outputFolder/<site>/<dd-mm-yyyy>/.
func (d *Driver) Extract(ctx context.Context, sites map[string]scraper.Site, outputFolder string) Summary {
	names := make([]string, 0, len(sites))
	for name := range sites {
		names = append(names, name)
	}
	sort.Strings(names)

	var summary Summary
	for _, name := range names {
		if ctx.Err() != nil {
			d.Logger.Warn("extraction cancelled", logger.Error(ctx.Err()))
			break
		}
		result := d.ExtractSite(ctx, sites[name], outputFolder)
		summary.Sites = append(summary.Sites, result)
	}

	d.Logger.Info("extraction finished",
		logger.Int("sites", len(summary.Sites)),
		logger.Int("failed", summary.Failed()),
		logger.Int("articles", summary.Articles()),
	)
	return summary
}

// ExtractSite runs discovery and extraction for one site and writes the
// results. Errors are logged and returned in the result.
func (d *Driver) ExtractSite(ctx context.Context, site scraper.Site, outputFolder string) SiteResult {
	result := SiteResult{Site: site.Name}
	log := d.Logger.With(logger.String("site", site.Name))

	log.Info("beginning scraper", logger.String("url", site.URL))

	adapter, err := d.Registry.New(site, parser.Deps{
		Client:           d.Client,
		Logger:           d.Logger,
		DiscoveryTimeout: d.Options.DiscoveryTimeout,
		MaxConcurrency:   d.Options.MaxConcurrency,
		Now:              d.now,
	})
	if err != nil {
		log.Error("cannot build parser", logger.Error(err))
		result.Err = err
		return result
	}

	links := adapter.DiscoverLinks(ctx)
	if len(links) == 1 && links[0] == parser.InvalidResponse(site.URL) {
		log.Warn("skipping site", logger.String("url", site.URL), logger.Error(ErrDiscoveryFailed))
		result.Err = fmt.Errorf("site %q: %w", site.Name, ErrDiscoveryFailed)
		return result
	}
	result.Links = len(links)

	news := adapter.FetchAndExtract(ctx)
	if d.Options.DedupeArticles {
		news = output.DedupeByURL(news)
	}

	folder, err := output.CreateOutputFolderFromSite(outputFolder, site.Name, d.now())
	if err != nil {
		log.Error("cannot create output folder", logger.Error(err))
		result.Err = err
		return result
	}

	file, err := output.SaveNewsToCSV(news, folder)
	if err != nil {
		log.Error("cannot save news", logger.Error(err))
		result.Err = err
		return result
	}
	result.File = file
	result.Articles = len(news)
	log.Info("saved results", logger.String("file", file), logger.Int("articles", len(news)))

	if d.Options.WriteTextFiles {
		if err := output.SaveNewsToText(news, folder); err != nil {
			log.Error("cannot save text files", logger.Error(err))
			result.Err = err
		}
	}

	return result
}

// Transform reads every consolidated CSV under inputPath, enriches the
// articles and writes the JSON intermediate into inputPath. It returns the
// intermediate's path.
func (d *Driver) Transform(inputPath string) (string, error) {
	d.Logger.Info("reading inputs", logger.String("path", inputPath))

	listing, err := output.ReadNewsFromDirectory(inputPath, ".csv")
	if err != nil {
		return "", err
	}
	for _, readErr := range listing.Errors {
		d.Logger.Warn("skipping unreadable file", logger.String("file", readErr.Path), logger.Error(readErr.Err))
	}

	news := make([]article.Article, 0, len(listing.Rows))
	for i, row := range listing.Rows {
		a, err := article.FromRow(row)
		if err != nil {
			d.Logger.Warn("skipping invalid row", logger.Int("row", i), logger.Error(err))
			continue
		}
		news = append(news, a)
	}

	enriched := transform.New(d.Logger).Enrich(news)

	path, err := output.SaveIntermediate(enriched, inputPath)
	if err != nil {
		return "", err
	}
	d.Logger.Info("saved transformed news",
		logger.String("file", path),
		logger.Int("files", listing.Files),
		logger.Int("articles", len(enriched)),
	)
	return path, nil
}

// Load reads every JSON intermediate under inputPath and inserts the articles
// into st. Articles already stored are logged and skipped.
func (d *Driver) Load(ctx context.Context, inputPath string, st *store.ArticleStore) (store.LoadResult, error) {
	listing, err := output.ReadNewsFromDirectory(inputPath, ".json")
	if err != nil {
		return store.LoadResult{}, err
	}
	for _, readErr := range listing.Errors {
		d.Logger.Warn("skipping unreadable file", logger.String("file", readErr.Path), logger.Error(readErr.Err))
	}

	news := article.NewAccumulator()
	if err := news.LoadFrom(listing.Rows); err != nil {
		return store.LoadResult{}, fmt.Errorf("failed to load intermediates: %w", err)
	}

	result, err := st.InsertAll(ctx, news.All())
	if err != nil {
		return result, err
	}
	d.Logger.Info("loaded articles",
		logger.Int("inserted", result.Inserted),
		logger.Int("duplicates", result.Duplicates),
	)
	return result, nil
}

// Run validates the configured sites, then extracts, transforms and loads.
// Configuration errors are returned before any network activity.
func (d *Driver) Run(ctx context.Context, cfg *config.FileConfig) (Summary, error) {
	sites, err := scraper.LoadSites(cfg, d.Registry)
	if err != nil {
		return Summary{}, err
	}

	folder, err := cfg.OutputFolder()
	if err != nil {
		return Summary{}, err
	}
	if _, err := output.CreateOutputFolder(folder); err != nil {
		return Summary{}, err
	}

	summary := d.Extract(ctx, sites, folder)

	if _, err := d.Transform(folder); err != nil {
		return summary, fmt.Errorf("transform: %w", err)
	}

	st, err := store.Open(cfg.Storage.DSN, d.Logger)
	if err != nil {
		return summary, err
	}
	defer st.Close()

	if _, err := d.Load(ctx, folder, st); err != nil {
		return summary, fmt.Errorf("load: %w", err)
	}
	return summary, nil
}
