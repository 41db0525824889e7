package epub

// CoverResource returns the manifest entry declared as the book's cover.
// Detection methods are tried in priority order:
//  1. properties="cover-image" (EPUB 3.0)
//  2. meta name="cover" pointing at a manifest id (EPUB 2.0)
//
// Only declarations count; there is no filename guessing, so books that
// never declare a cover report none.
func (c *Container) CoverResource() (Resource, bool) {
	// Method 1: EPUB 3.0 cover-image property
	for _, id := range c.doc.manifestIDs {
		res := c.doc.manifest[id]
		if res.HasProperty("cover-image") {
			return res, true
		}
	}

	// Method 2: EPUB 2.0 meta name="cover"
	if coverID := c.doc.metadata.CoverID; coverID != "" {
		if res, ok := c.doc.manifest[coverID]; ok {
			return res, true
		}
	}

	return Resource{}, false
}
