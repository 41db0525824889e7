package extract

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/disintegration/imaging"

	"github.com/skaarfundgandr/Stellaron/internal/epub"

	_ "image/gif"
	_ "image/png"
)

const thumbnailJPEGQuality = 85

// coverExtensions maps declared media types to export file extensions;
// anything unrecognized is exported as .jpg
var coverExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
}

// CoverBytes returns the raw bytes of the book's declared cover image.
// A book without a usable cover yields an empty slice: absence is a valid
// outcome, distinct from extraction failure, and callers stream it as-is.
func CoverBytes(c *epub.Container) []byte {
	res, ok := c.CoverResource()
	if !ok {
		return []byte{}
	}
	data, err := c.ReadResource(res)
	if err != nil {
		return []byte{}
	}
	return data
}

// SaveCover writes cover bytes into dir as <baseName>.<ext>, deriving the
// extension from the declared media type and sanitizing the base name down
// to letters, digits, '.', '-' and '_'. Returns the written path.
func SaveCover(data []byte, mediaType, baseName, dir string) (string, error) {
	ext, ok := coverExtensions[mediaType]
	if !ok {
		ext = "jpg"
	}

	name := sanitizeFileName(baseName)
	if name == "" {
		name = "cover"
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create cover dir %s: %w", dir, err)
	}

	outPath := filepath.Join(dir, name+"."+ext)
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write cover: %w", err)
	}
	return outPath, nil
}

// SaveCoverWithThumbnail writes the full cover like SaveCover and
// additionally a JPEG thumbnail no wider than maxWidth as
// <baseName>_thumb.jpg. The thumbnail is skipped when maxWidth <= 0.
func SaveCoverWithThumbnail(data []byte, mediaType, baseName, dir string, maxWidth int) (string, string, error) {
	coverPath, err := SaveCover(data, mediaType, baseName, dir)
	if err != nil {
		return "", "", err
	}
	if maxWidth <= 0 {
		return coverPath, "", nil
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", "", fmt.Errorf("failed to decode cover image: %w", err)
	}

	thumb := src
	if src.Bounds().Dx() > maxWidth {
		thumb = imaging.Resize(src, maxWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: thumbnailJPEGQuality}); err != nil {
		return "", "", fmt.Errorf("failed to encode thumbnail: %w", err)
	}

	name := sanitizeFileName(baseName)
	if name == "" {
		name = "cover"
	}
	thumbPath := filepath.Join(dir, name+"_thumb.jpg")
	if err := os.WriteFile(thumbPath, buf.Bytes(), 0o644); err != nil {
		return "", "", fmt.Errorf("failed to write thumbnail: %w", err)
	}

	return coverPath, thumbPath, nil
}

// sanitizeFileName keeps letters, digits, '.', '-' and '_'; everything
// else (separators, spaces, punctuation) is dropped outright
func sanitizeFileName(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.' || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
