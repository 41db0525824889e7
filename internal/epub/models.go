package epub

import "strings"

// Kind classifies a manifest resource by its declared media type.
// The classification is fixed once at parse time so every consumer of a
// Resource agrees on how to treat it.
type Kind int

const (
	// KindOther covers everything not recognized below (CSS, NCX, scripts, ...)
	KindOther Kind = iota
	// KindMarkup is spine-eligible document markup (XHTML, HTML)
	KindMarkup
	// KindImage is raster or vector image data
	KindImage
	// KindFont is an embedded font program
	KindFont
)

// legacyFontTypes are font media types that predate the font/* registry
// but are still common in the wild.
var legacyFontTypes = map[string]bool{
	"application/vnd.ms-opentype": true,
	"application/x-font-ttf":      true,
	"application/x-font-otf":      true,
	"application/font-woff":       true,
	"application/font-woff2":      true,
}

// KindOf derives the resource kind from a declared media type.
func KindOf(mediaType string) Kind {
	switch {
	case strings.Contains(mediaType, "html"):
		return KindMarkup
	case strings.HasPrefix(mediaType, "image/"):
		return KindImage
	case strings.Contains(mediaType, "font"), legacyFontTypes[mediaType]:
		return KindFont
	default:
		return KindOther
	}
}

// Resource is a single manifest entry. Href is always archive-internal:
// forward-slash separated and resolved against the package document's
// location, so it can be handed to ReadFile directly.
type Resource struct {
	ID         string
	Href       string
	MediaType  string
	Properties []string
	Kind       Kind
}

// HasProperty reports whether the manifest declared the given property
// (e.g. "cover-image", "nav") on this resource.
func (r Resource) HasProperty(name string) bool {
	for _, p := range r.Properties {
		if p == name {
			return true
		}
	}
	return false
}

// Metadata holds the descriptive information from the package document.
// Repeatable Dublin Core elements keep every declared value in declaration
// order; callers decide which ones matter.
type Metadata struct {
	Titles      []string
	Creators    []string
	Publishers  []string
	Dates       []string
	Identifiers []string
	Languages   []string

	// CoverID is the manifest id named by an EPUB 2 <meta name="cover">
	// element, or empty when none is declared.
	CoverID string
}
