// Package article defines the extracted news record and the collection that
// accumulates records during one extraction session.
package article

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the on-disk form of Article.Date.
const DateLayout = "2006-01-02"

// NumColumns is the number of persisted article fields.
const NumColumns = 10

// Columns lists the persisted fields in sink order. The CSV writer, the JSON
// intermediate and the storage mapper all use this list; Values must return
// the fields in the same order.
var Columns = [...]string{
	"title",
	"summary",
	"body",
	"url",
	"date",
	"site",
	"host",
	"uid",
	"n_tokens_title",
	"n_tokens_body",
}

// Compile-time check that Columns and Values stay the same length.
var _ [NumColumns]string = Columns

// Article is one extracted news item.
type Article struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
	Body    string `json:"body"`
	URL     string `json:"url"`
	// Date is the calendar day the article was discovered, at UTC midnight.
	Date time.Time `json:"date"`
	Site string    `json:"site"`
	Host string    `json:"host"`
	UID  string    `json:"uid"`

	// Token counts are filled in by the transform stage.
	NTokensTitle int `json:"n_tokens_title"`
	NTokensBody  int `json:"n_tokens_body"`
}

// Row is one tabular record keyed by Columns.
type Row map[string]string

// New builds an article for a freshly extracted page. Host and UID are
// derived from the URL.
func New(title, summary, body, articleURL, site string, date time.Time) Article {
	return Article{
		Title:   title,
		Summary: summary,
		Body:    body,
		URL:     articleURL,
		Date:    Day(date),
		Site:    site,
		Host:    Host(articleURL),
		UID:     UID(articleURL),
	}
}

// Day truncates t to its calendar day in UTC.
func Day(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Host returns the host component of articleURL, or "" if it cannot be
// parsed.
func Host(articleURL string) string {
	u, err := url.Parse(articleURL)
	if err != nil {
		return ""
	}
	return u.Host
}

// UID derives a stable identifier from the article URL. The same URL always
// yields the same UID (a name-based MD5 UUID in the URL namespace).
func UID(articleURL string) string {
	return uuid.NewMD5(uuid.NameSpaceURL, []byte(articleURL)).String()
}

// Values returns the article's fields in Columns order. Dates are rendered
// with DateLayout.
func (a Article) Values() [NumColumns]any {
	return [NumColumns]any{
		a.Title,
		a.Summary,
		a.Body,
		a.URL,
		formatDate(a.Date),
		a.Site,
		a.Host,
		a.UID,
		a.NTokensTitle,
		a.NTokensBody,
	}
}

// Row renders the article as a tabular record.
func (a Article) Row() Row {
	values := a.Values()
	row := make(Row, NumColumns)
	for i, col := range Columns {
		row[col] = fmt.Sprint(values[i])
	}
	return row
}

// FromRow reconstructs an article from a tabular record. Every column in
// Columns must be present.
func FromRow(row Row) (Article, error) {
	for _, col := range Columns {
		if _, ok := row[col]; !ok {
			return Article{}, fmt.Errorf("missing column %q", col)
		}
	}

	date, err := parseDate(row["date"])
	if err != nil {
		return Article{}, fmt.Errorf("invalid date %q: %w", row["date"], err)
	}
	nTitle, err := parseCount(row["n_tokens_title"])
	if err != nil {
		return Article{}, fmt.Errorf("invalid n_tokens_title: %w", err)
	}
	nBody, err := parseCount(row["n_tokens_body"])
	if err != nil {
		return Article{}, fmt.Errorf("invalid n_tokens_body: %w", err)
	}

	return Article{
		Title:        row["title"],
		Summary:      row["summary"],
		Body:         row["body"],
		URL:          row["url"],
		Date:         date,
		Site:         row["site"],
		Host:         row["host"],
		UID:          row["uid"],
		NTokensTitle: nTitle,
		NTokensBody:  nBody,
	}, nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

func parseCount(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}
