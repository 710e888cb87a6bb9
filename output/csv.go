package output

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pevans/newscrape/article"
)

// ConsolidatedFileName is the per-site, per-day CSV written by extraction.
const ConsolidatedFileName = "_consolidated_news.csv"

// SaveNewsToCSV writes news to folder/_consolidated_news.csv with one header
// row (article.Columns) and one row per article. It returns the file path.
func SaveNewsToCSV(news []article.Article, folder string) (string, error) {
	path := filepath.Join(folder, ConsolidatedFileName)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return "", fmt.Errorf("failed to create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(article.Columns[:]); err != nil {
		return "", fmt.Errorf("failed to write csv header: %w", err)
	}

	record := make([]string, article.NumColumns)
	for _, a := range news {
		row := a.Row()
		for i, col := range article.Columns {
			record[i] = row[col]
		}
		if err := w.Write(record); err != nil {
			return "", fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to write csv file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close csv file: %w", err)
	}
	return path, nil
}

// ReadNewsFromCSV reads a CSV file whose first row is a header and returns
// one Row per record, keyed by header name.
func ReadNewsFromCSV(path string) ([]article.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open csv file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}
	r.FieldsPerRecord = len(header)

	var rows []article.Row
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv row: %w", err)
		}

		row := make(article.Row, len(header))
		for i, col := range header {
			row[col] = record[i]
		}
		rows = append(rows, row)
	}
	return rows, nil
}
