package extract

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// sidecarRecord is the JSON shape written beside the source file. Raw
// cover bytes are deliberately excluded; only their presence is recorded.
type sidecarRecord struct {
	Title         string   `json:"title"`
	Authors       []string `json:"authors"`
	PublishedDate *string  `json:"published_date"`
	Publishers    []string `json:"publishers"`
	ISBN          *string  `json:"isbn"`
	FilePath      string   `json:"file_path"`
	Checksum      string   `json:"checksum"`
	HasCover      bool     `json:"has_cover"`
}

// SidecarPath returns where a book's sidecar lives: the book path with its
// extension replaced by .json
func SidecarPath(bookPath string) string {
	ext := filepath.Ext(bookPath)
	return strings.TrimSuffix(bookPath, ext) + ".json"
}

// WriteSidecar writes the metadata record beside its source file and
// returns the written path
func WriteSidecar(meta *BookMetadata) (string, error) {
	rec := sidecarRecord{
		Title:         meta.Title,
		Authors:       meta.Authors,
		PublishedDate: meta.PublishedDate,
		Publishers:    meta.Publishers,
		ISBN:          meta.ISBN,
		FilePath:      meta.FilePath,
		Checksum:      meta.Checksum,
		HasCover:      meta.HasCover(),
	}

	out, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode sidecar: %w", err)
	}

	path := SidecarPath(meta.FilePath)
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return "", fmt.Errorf("failed to write sidecar: %w", err)
	}
	return path, nil
}
