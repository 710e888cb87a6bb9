package output

import "github.com/pevans/newscrape/article"

// DedupeByURL drops every article whose URL was already seen, keeping the
// first occurrence and the original order.
func DedupeByURL(news []article.Article) []article.Article {
	seen := make(map[string]struct{}, len(news))
	out := make([]article.Article, 0, len(news))
	for _, a := range news {
		if _, dup := seen[a.URL]; dup {
			continue
		}
		seen[a.URL] = struct{}{}
		out = append(out, a)
	}
	return out
}
