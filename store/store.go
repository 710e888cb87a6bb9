// Package store persists enriched articles in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"
	"github.com/pevans/newscrape/article"
	"github.com/pevans/newscrape/logger"
)

// ErrDuplicateArticle is returned when an article with the same uid is
// already stored.
var ErrDuplicateArticle = errors.New("article already stored")

// ArticleStore manages the articles table.
type ArticleStore struct {
	db  *sql.DB
	log logger.Logger
}

// LoadResult summarizes one InsertAll call.
type LoadResult struct {
	Inserted   int
	Duplicates int
}

var (
	columnList   = strings.Join(article.Columns[:], ", ")
	placeholders = strings.TrimSuffix(strings.Repeat("?, ", article.NumColumns), ", ")
)

// Open opens (creating if needed) the database at dsn and ensures the schema
// exists. A nil logger is replaced with a no-op one.
func Open(dsn string, log logger.Logger) (*ArticleStore, error) {
	if log == nil {
		log = logger.NewNop()
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &ArticleStore{db: db, log: log}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return s, nil
}

// initSchema creates the articles table if it doesn't exist.
func (s *ArticleStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS articles (
		uid TEXT PRIMARY KEY,
		title TEXT,
		summary TEXT,
		body TEXT,
		url TEXT,
		date TEXT,
		site TEXT,
		host TEXT,
		n_tokens_title INTEGER,
		n_tokens_body INTEGER
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *ArticleStore) Close() error {
	return s.db.Close()
}

// Insert stores one article. It returns ErrDuplicateArticle if the uid is
// taken.
func (s *ArticleStore) Insert(ctx context.Context, a article.Article) error {
	return insert(ctx, s.db, a)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insert(ctx context.Context, db execer, a article.Article) error {
	values := a.Values()
	query := "INSERT INTO articles (" + columnList + ") VALUES (" + placeholders + ")"
	if _, err := db.ExecContext(ctx, query, values[:]...); err != nil {
		if isConstraintViolation(err) {
			return fmt.Errorf("uid %s: %w", a.UID, ErrDuplicateArticle)
		}
		return fmt.Errorf("failed to insert article: %w", err)
	}
	return nil
}

func isConstraintViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}

// InsertAll stores news in one transaction. Duplicates are logged and
// skipped; any other failure rolls the whole batch back.
func (s *ArticleStore) InsertAll(ctx context.Context, news []article.Article) (LoadResult, error) {
	var result LoadResult

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return result, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, a := range news {
		s.log.Debug("loading article", logger.String("uid", a.UID))
		err := insert(ctx, tx, a)
		switch {
		case errors.Is(err, ErrDuplicateArticle):
			s.log.Warn("skipping duplicate article",
				logger.String("uid", a.UID),
				logger.String("url", a.URL),
			)
			result.Duplicates++
		case err != nil:
			return LoadResult{}, err
		default:
			result.Inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return LoadResult{}, fmt.Errorf("failed to commit articles: %w", err)
	}
	return result, nil
}

// Get retrieves an article by uid. It returns nil if none is stored.
func (s *ArticleStore) Get(ctx context.Context, uid string) (*article.Article, error) {
	query := "SELECT " + columnList + " FROM articles WHERE uid = ?"

	var values [article.NumColumns]sql.NullString
	dest := make([]any, article.NumColumns)
	for i := range values {
		dest[i] = &values[i]
	}

	err := s.db.QueryRowContext(ctx, query, uid).Scan(dest...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query article: %w", err)
	}

	row := make(article.Row, article.NumColumns)
	for i, col := range article.Columns {
		row[col] = values[i].String
	}
	a, err := article.FromRow(row)
	if err != nil {
		return nil, fmt.Errorf("failed to decode article %s: %w", uid, err)
	}
	return &a, nil
}

// Count returns the number of stored articles.
func (s *ArticleStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM articles").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count articles: %w", err)
	}
	return n, nil
}
