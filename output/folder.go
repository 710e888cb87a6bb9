// Package output writes extraction results to disk and reads them back for
// the transform and load stages.
//
// Extraction results live under <output_path>/<site>/<dd-mm-yyyy>/; the
// transform stage writes one JSON intermediate at the root of the folder it
// reads.
package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"
)

// FolderDateLayout names the per-day extraction folder.
const FolderDateLayout = "02-01-2006"

// NameMaxLen caps the sanitized part of a generated file name.
const NameMaxLen = 50

// invalidNameChars are stripped from generated file names.
const invalidNameChars = `\:*?"<>|`

// CreateOutputFolder creates folder and any missing parents and returns it.
func CreateOutputFolder(folder string) (string, error) {
	if err := os.MkdirAll(folder, 0o700); err != nil {
		return "", fmt.Errorf("failed to create output folder: %w", err)
	}
	return folder, nil
}

// CreateOutputFolderFromSite creates <outputPath>/<site>/<dd-mm-yyyy> for
// day and returns it.
func CreateOutputFolderFromSite(outputPath, site string, day time.Time) (string, error) {
	return CreateOutputFolder(filepath.Join(outputPath, site, day.Format(FolderDateLayout)))
}

// SanitizeName turns an article title into something safe to use as a file
// name: spaces become underscores, path separators and characters invalid on
// common filesystems are dropped and the result is capped at maxLen runes.
// A maxLen of 0 disables the cap.
func SanitizeName(title string, maxLen int) string {
	name := strings.TrimSpace(title)
	name = strings.NewReplacer(" ", "_", "'", `"`, "/", "").Replace(name)
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(invalidNameChars, r) || unicode.IsControl(r) {
			return -1
		}
		return r
	}, name)

	if maxLen > 0 {
		if runes := []rune(name); len(runes) > maxLen {
			name = string(runes[:maxLen])
		}
	}
	return name
}

// FormatOutputName returns folder/<identifier>_<sanitized title>. The
// identifier prefix is omitted when empty.
func FormatOutputName(folder, title, identifier string) string {
	name := SanitizeName(title, NameMaxLen)
	if name == "" {
		name = "untitled"
	}
	if identifier != "" {
		name = identifier + "_" + name
	}
	return filepath.Join(folder, name)
}
