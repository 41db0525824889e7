package extract

import (
	"strings"

	"github.com/skaarfundgandr/Stellaron/internal/checksum"
	"github.com/skaarfundgandr/Stellaron/internal/epub"
)

// Placeholder values used when a book declares nothing
const (
	UnknownTitle     = "Unknown Title"
	UnknownAuthor    = "Unknown Author"
	UnknownPublisher = "Unknown Publisher"
)

// isbnScheme is the identifier prefix marking an ISBN value
const isbnScheme = "urn:isbn:"

// CoverData pairs raw cover-image bytes with their declared media type
type CoverData struct {
	Bytes    []byte `json:"bytes"`
	MimeType string `json:"mime_type"`
}

// BookMetadata is the descriptive record extracted from one book file.
// It is built once per extraction and never mutated afterwards; the title,
// authors and publishers fields are always populated, falling back to
// placeholder values when the book declares nothing.
type BookMetadata struct {
	Title         string     `json:"title"`
	Authors       []string   `json:"authors"`
	PublishedDate *string    `json:"published_date"`
	Publishers    []string   `json:"publishers"`
	ISBN          *string    `json:"isbn"`
	FilePath      string     `json:"file_path"`
	CoverData     *CoverData `json:"cover_data"`
	Checksum      string     `json:"checksum"`
}

// HasCover reports whether a cover was captured during extraction
func (m *BookMetadata) HasCover() bool {
	return m.CoverData != nil
}

// ReadMetadata extracts the metadata record for the book at path. The
// checksum is computed from the raw file before the container is opened,
// so even books with unusable packaging fail with their identity known to
// the caller's error context.
func ReadMetadata(path string) (*BookMetadata, error) {
	sum, err := checksum.File(path)
	if err != nil {
		return nil, err
	}

	c, err := epub.Open(path)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	md := c.Metadata()

	meta := &BookMetadata{
		Title:    UnknownTitle,
		FilePath: path,
		Checksum: sum,
	}

	if len(md.Titles) > 0 {
		meta.Title = md.Titles[0]
	}

	meta.Authors = append([]string(nil), md.Creators...)
	if len(meta.Authors) == 0 {
		meta.Authors = []string{UnknownAuthor}
	}

	meta.Publishers = append([]string(nil), md.Publishers...)
	if len(meta.Publishers) == 0 {
		meta.Publishers = []string{UnknownPublisher}
	}

	// The raw declared value, verbatim; date formats in the wild are too
	// inconsistent to normalize here
	if len(md.Dates) > 0 {
		date := md.Dates[0]
		meta.PublishedDate = &date
	}

	for _, id := range md.Identifiers {
		if strings.HasPrefix(id, isbnScheme) {
			isbn := id
			meta.ISBN = &isbn
			break
		}
	}

	// Cover capture is best effort: an unreadable cover is recorded as none
	if res, ok := c.CoverResource(); ok {
		if data, err := c.ReadResource(res); err == nil {
			meta.CoverData = &CoverData{Bytes: data, MimeType: res.MediaType}
		}
	}

	return meta, nil
}
