package article

import (
	"fmt"
	"sync"
)

// Accumulator collects the articles of one extraction session. It performs
// no deduplication. Add may be called from many goroutines.
type Accumulator struct {
	mu       sync.Mutex
	articles []Article
}

// NewAccumulator creates an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// Add appends an article.
func (a *Accumulator) Add(article Article) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.articles = append(a.articles, article)
}

// All returns a copy of the collected articles in insertion order. When
// articles are added concurrently, insertion order is whatever order the
// adds happened to land in.
func (a *Accumulator) All() []Article {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Article, len(a.articles))
	copy(out, a.articles)
	return out
}

// Len returns the number of collected articles.
func (a *Accumulator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.articles)
}

// LoadFrom appends one article per row. Rows are validated up front, so a bad
// row leaves the accumulator unchanged.
func (a *Accumulator) LoadFrom(rows []Row) error {
	loaded := make([]Article, 0, len(rows))
	for i, row := range rows {
		article, err := FromRow(row)
		if err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
		loaded = append(loaded, article)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.articles = append(a.articles, loaded...)
	return nil
}
