package extract

import (
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"github.com/skaarfundgandr/Stellaron/internal/epub"
)

// ExtractFonts writes every font resource declared in the manifest into
// destDir and returns the written paths in manifest declaration order.
// Each font keeps its declared file name; a name that is unusable or
// already taken falls back to one generated from the resource id. Fonts
// whose archive bytes cannot be read are skipped with a warning, while
// write failures on the destination abort the extraction.
func ExtractFonts(c *epub.Container, destDir string, logger *slog.Logger) ([]string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create font dir %s: %w", destDir, err)
	}

	var written []string
	used := make(map[string]bool)
	for _, id := range c.ManifestIDs() {
		res, ok := c.ResourceByID(id)
		if !ok || res.Kind != epub.KindFont {
			continue
		}

		data, err := c.ReadResource(res)
		if err != nil {
			logger.Warn("skipping unreadable font", "href", res.Href, "error", err)
			continue
		}

		name := path.Base(res.Href)
		if !usableFontName(name) || used[name] {
			name = "font_" + res.ID
		}
		used[name] = true

		fontPath := filepath.Join(destDir, name)
		if err := os.WriteFile(fontPath, data, 0o644); err != nil {
			return written, fmt.Errorf("failed to write font %s: %w", name, err)
		}
		written = append(written, fontPath)
	}

	return written, nil
}

// usableFontName rejects the degenerate results path.Base can produce
func usableFontName(name string) bool {
	return name != "" && name != "." && name != "/"
}
