package output

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pevans/newscrape/article"
)

// SaveNewsToText writes one <index>_<title>.txt file per article into
// folder. Each file holds the title, the summary and the body, one per line;
// the body may itself span several lines.
func SaveNewsToText(news []article.Article, folder string) error {
	for i, a := range news {
		path := FormatOutputName(folder, a.Title, strconv.Itoa(i)) + ".txt"
		content := a.Title + "\n" + a.Summary + "\n" + a.Body
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			return fmt.Errorf("failed to write article %d: %w", i, err)
		}
	}
	return nil
}

// ReadNewsFromText reads a file written by SaveNewsToText. Columns the file
// does not carry are present but empty.
func ReadNewsFromText(path string) ([]article.Row, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read text file: %w", err)
	}

	row := make(article.Row, article.NumColumns)
	for _, col := range article.Columns {
		row[col] = ""
	}

	parts := strings.SplitN(string(data), "\n", 3)
	for i, col := range []string{"title", "summary", "body"} {
		if i < len(parts) {
			row[col] = parts[i]
		}
	}
	return []article.Row{row}, nil
}
