package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pevans/newscrape/article"
)

// IntermediateFileName is the transform stage's output, read by load.
const IntermediateFileName = "transform_news.json"

// SaveIntermediate writes news as a JSON array of rows to
// folder/transform_news.json, creating folder if needed.
func SaveIntermediate(news []article.Article, folder string) (string, error) {
	if _, err := CreateOutputFolder(folder); err != nil {
		return "", err
	}

	rows := make([]article.Row, 0, len(news))
	for _, a := range news {
		rows = append(rows, a.Row())
	}

	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal articles: %w", err)
	}

	path := filepath.Join(folder, IntermediateFileName)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("failed to write intermediate: %w", err)
	}
	return path, nil
}

// ReadIntermediate reads a file written by SaveIntermediate.
func ReadIntermediate(path string) ([]article.Row, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read intermediate: %w", err)
	}

	var rows []article.Row
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal intermediate: %w", err)
	}
	return rows, nil
}
