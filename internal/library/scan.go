package library

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// ScanBooks recursively collects every book file under root, matching on a
// case insensitive .epub extension. Paths come back sorted so repeated
// scans of the same tree process books in the same order.
func ScanBooks(root string) ([]string, error) {
	var books []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".epub") {
			books = append(books, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}

	sort.Strings(books)
	return books, nil
}
