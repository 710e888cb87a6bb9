// Package transform cleans and enriches extracted articles before they are
// loaded: it recomputes the URL-derived columns, drops unusable rows and
// fills in the token counts.
package transform

import (
	"strings"

	"github.com/pevans/newscrape/article"
	"github.com/pevans/newscrape/logger"
)

// Enricher applies the transform steps in order.
type Enricher struct {
	tokenizer *Tokenizer
	log       logger.Logger
}

// New creates an Enricher using the Spanish tokenizer. A nil logger is
// replaced with a no-op one.
func New(log logger.Logger) *Enricher {
	if log == nil {
		log = logger.NewNop()
	}
	return &Enricher{tokenizer: NewSpanishTokenizer(), log: log}
}

// WithTokenizer swaps the tokenizer used for the count columns.
func (e *Enricher) WithTokenizer(t *Tokenizer) *Enricher {
	e.tokenizer = t
	return e
}

// Enrich returns a cleaned copy of news with host, uid and token counts set.
func (e *Enricher) Enrich(news []article.Article) []article.Article {
	e.log.Info("getting host name and uid", logger.Int("articles", len(news)))
	out := make([]article.Article, len(news))
	for i, a := range news {
		a.Host = article.Host(a.URL)
		a.UID = article.UID(a.URL)
		out[i] = a
	}

	out = SanityCheck(out)
	e.log.Info("performed sanity check", logger.Int("articles", len(out)))

	for i := range out {
		out[i].NTokensTitle = e.tokenizer.Count(out[i].Title)
		out[i].NTokensBody = e.tokenizer.Count(out[i].Body)
	}
	return out
}

// SanityCheck drops articles with an empty title and every article whose
// title was already seen, keeping the first.
func SanityCheck(news []article.Article) []article.Article {
	seen := make(map[string]struct{}, len(news))
	out := make([]article.Article, 0, len(news))
	for _, a := range news {
		title := strings.TrimSpace(a.Title)
		if title == "" {
			continue
		}
		if _, dup := seen[title]; dup {
			continue
		}
		seen[title] = struct{}{}
		out = append(out, a)
	}
	return out
}
