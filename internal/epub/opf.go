package epub

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// opfPackage mirrors the OPF XML structure
type opfPackage struct {
	XMLName  xml.Name    `xml:"package"`
	Version  string      `xml:"version,attr"`
	Metadata opfMetadata `xml:"metadata"`
	Manifest opfManifest `xml:"manifest"`
	Spine    opfSpine    `xml:"spine"`
}

// opfMetadata mirrors the metadata section. Dublin Core elements live in
// their own namespace regardless of package version.
type opfMetadata struct {
	Titles      []string  `xml:"http://purl.org/dc/elements/1.1/ title"`
	Creators    []string  `xml:"http://purl.org/dc/elements/1.1/ creator"`
	Publishers  []string  `xml:"http://purl.org/dc/elements/1.1/ publisher"`
	Dates       []string  `xml:"http://purl.org/dc/elements/1.1/ date"`
	Identifiers []string  `xml:"http://purl.org/dc/elements/1.1/ identifier"`
	Languages   []string  `xml:"http://purl.org/dc/elements/1.1/ language"`
	Metas       []opfMeta `xml:"meta"`
}

// opfMeta mirrors a meta element (EPUB 2.0 name/content style)
type opfMeta struct {
	Name    string `xml:"name,attr"`
	Content string `xml:"content,attr"`
}

// opfManifest mirrors the manifest section
type opfManifest struct {
	Items []opfManifestItem `xml:"item"`
}

// opfManifestItem mirrors an item in the manifest
type opfManifestItem struct {
	ID         string `xml:"id,attr"`
	Href       string `xml:"href,attr"`
	MediaType  string `xml:"media-type,attr"`
	Properties string `xml:"properties,attr"`
}

// opfSpine mirrors the spine section
type opfSpine struct {
	ItemRefs []opfItemRef `xml:"itemref"`
}

// opfItemRef mirrors an itemref in the spine
type opfItemRef struct {
	IDRef string `xml:"idref,attr"`
}

// packageDoc is the fully interpreted package document: metadata plus the
// manifest and spine in declaration order.
type packageDoc struct {
	metadata    Metadata
	manifest    map[string]Resource
	manifestIDs []string
	hrefIndex   map[string]string // normalized href -> manifest id
	spine       []string
}

// parsePackage interprets raw OPF bytes. opfPath is the package document's
// own archive path; manifest hrefs are declared relative to it and are
// resolved here so the rest of the package never sees a relative href.
func parsePackage(content []byte, opfPath string) (*packageDoc, error) {
	var pkg opfPackage
	if err := xml.Unmarshal(content, &pkg); err != nil {
		return nil, fmt.Errorf("failed to parse OPF XML: %w", err)
	}

	doc := &packageDoc{
		metadata:  parseMetadata(&pkg.Metadata),
		manifest:  make(map[string]Resource),
		hrefIndex: make(map[string]string),
	}

	for _, item := range pkg.Manifest.Items {
		if _, dup := doc.manifest[item.ID]; dup {
			// first declaration wins so manifestIDs stays collision free
			continue
		}

		res := Resource{
			ID:        item.ID,
			Href:      ResolveHref(opfPath, item.Href),
			MediaType: item.MediaType,
			Kind:      KindOf(item.MediaType),
		}
		if item.Properties != "" {
			res.Properties = strings.Fields(item.Properties)
		}

		doc.manifest[item.ID] = res
		doc.manifestIDs = append(doc.manifestIDs, item.ID)
		if _, taken := doc.hrefIndex[res.Href]; !taken {
			doc.hrefIndex[res.Href] = item.ID
		}
	}

	for _, ref := range pkg.Spine.ItemRefs {
		doc.spine = append(doc.spine, ref.IDRef)
	}

	return doc, nil
}

// parseMetadata collects every declared value of the repeatable elements,
// trimming surrounding whitespace and dropping values that are blank.
func parseMetadata(meta *opfMetadata) Metadata {
	md := Metadata{
		Titles:      cleanValues(meta.Titles),
		Creators:    cleanValues(meta.Creators),
		Publishers:  cleanValues(meta.Publishers),
		Dates:       cleanValues(meta.Dates),
		Identifiers: cleanValues(meta.Identifiers),
		Languages:   cleanValues(meta.Languages),
	}

	// EPUB 2.0 cover declaration
	for _, m := range meta.Metas {
		if m.Name == "cover" && m.Content != "" {
			md.CoverID = m.Content
			break
		}
	}

	return md
}

func cleanValues(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
