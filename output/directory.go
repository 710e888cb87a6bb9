package output

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/pevans/newscrape/article"
)

// Reader reads the rows stored in one file.
type Reader func(path string) ([]article.Row, error)

// Readers maps a file suffix to the function that reads it.
var Readers = map[string]Reader{
	".csv":  ReadNewsFromCSV,
	".txt":  ReadNewsFromText,
	".json": ReadIntermediate,
}

// ReadError describes a failure to read a single file.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

// ListResult contains the rows read from a directory, including any
// per-file errors that occurred during the operation.
type ListResult struct {
	Rows   []article.Row
	Files  int
	Errors []ReadError
}

// ReadNewsFromDirectory walks folder and reads every file ending in suffix.
// Files are expected at folder/<site>/<dd-mm-yyyy>/; the site and date
// columns of each row are set from those path components when present.
// Unreadable files are collected in the result's Errors rather than failing
// the walk. A non-nil error return means the folder itself could not be
// walked.
func ReadNewsFromDirectory(folder, suffix string) (*ListResult, error) {
	read, ok := Readers[suffix]
	if !ok {
		return nil, fmt.Errorf("unsupported file suffix %q", suffix)
	}

	result := &ListResult{}
	err := filepath.WalkDir(folder, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), suffix) {
			return nil
		}

		rows, err := read(path)
		if err != nil {
			result.Errors = append(result.Errors, ReadError{Path: path, Err: err})
			return nil
		}
		result.Files++

		site, date := pathColumns(folder, path)
		for _, row := range rows {
			if site != "" {
				row["site"] = site
			}
			if !date.IsZero() {
				row["date"] = date.Format(article.DateLayout)
			}
		}
		result.Rows = append(result.Rows, rows...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	return result, nil
}

// pathColumns derives the site (first directory below folder) and the date
// (deepest directory named dd-mm-yyyy) of a file.
func pathColumns(folder, path string) (string, time.Time) {
	rel, err := filepath.Rel(folder, filepath.Dir(path))
	if err != nil || rel == "." {
		return "", time.Time{}
	}

	dirs := strings.Split(filepath.ToSlash(rel), "/")
	var date time.Time
	for i := len(dirs) - 1; i >= 0; i-- {
		if d, ok := DateFromDir(dirs[i]); ok {
			date = d
			break
		}
	}
	return dirs[0], date
}

// DateFromDir parses a dd-mm-yyyy folder name.
func DateFromDir(name string) (time.Time, bool) {
	d, err := time.ParseInLocation(FolderDateLayout, name, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}
