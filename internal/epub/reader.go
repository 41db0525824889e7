package epub

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const containerPath = "META-INF/container.xml"

// containerXML mirrors META-INF/container.xml
type containerXML struct {
	Rootfiles struct {
		Rootfile []struct {
			FullPath  string `xml:"full-path,attr"`
			MediaType string `xml:"media-type,attr"`
		} `xml:"rootfile"`
	} `xml:"rootfiles"`
}

// ErrPackageNotFound means the archive carries no locatable package
// document: container.xml names nothing usable and no .opf exists.
var ErrPackageNotFound = errors.New("package document not found in archive")

// Container is an opened book archive. Open parses the package document up
// front, so a returned Container always has a usable manifest, spine and
// metadata; reads of individual resources are the only operations that can
// still fail afterwards.
type Container struct {
	archive *zip.ReadCloser
	files   map[string]*zip.File
	opfPath string
	doc     *packageDoc
}

// Open opens a book container and interprets its package document
func Open(path string) (*Container, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open container %s: %w", path, err)
	}

	c := &Container{
		archive: zr,
		files:   make(map[string]*zip.File),
	}

	// Build file map with normalized paths
	for _, f := range zr.File {
		c.files[Normalize(f.Name)] = f
	}

	if err := c.locatePackage(); err != nil {
		zr.Close()
		return nil, err
	}

	content, err := c.ReadFile(c.opfPath)
	if err != nil {
		zr.Close()
		return nil, fmt.Errorf("failed to read package document: %w", err)
	}

	doc, err := parsePackage(content, c.opfPath)
	if err != nil {
		zr.Close()
		return nil, err
	}
	c.doc = doc

	return c, nil
}

// Close closes the underlying archive
func (c *Container) Close() error {
	return c.archive.Close()
}

// OPFPath returns the archive path of the package document
func (c *Container) OPFPath() string {
	return c.opfPath
}

// Metadata returns the package metadata
func (c *Container) Metadata() Metadata {
	return c.doc.metadata
}

// Manifest returns the id -> resource mapping. The map is shared with the
// container; treat it as read only.
func (c *Container) Manifest() map[string]Resource {
	return c.doc.manifest
}

// ManifestIDs returns manifest ids in declaration order
func (c *Container) ManifestIDs() []string {
	return c.doc.manifestIDs
}

// Spine returns the spine idrefs in reading order, including idrefs that
// never resolve to a manifest entry; callers skip those at use time.
func (c *Container) Spine() []string {
	return c.doc.spine
}

// ResourceByID looks up a manifest entry by its id
func (c *Container) ResourceByID(id string) (Resource, bool) {
	res, ok := c.doc.manifest[id]
	return res, ok
}

// ResourceByHref looks up a manifest entry by its archive-internal path.
// The href is normalized before the exact-match lookup, so "./images/a.png"
// and "images/a.png" find the same entry.
func (c *Container) ResourceByHref(href string) (Resource, bool) {
	id, ok := c.doc.hrefIndex[Normalize(href)]
	if !ok {
		return Resource{}, false
	}
	return c.doc.manifest[id], true
}

// ReadFile reads the contents of a file from the archive
func (c *Container) ReadFile(path string) ([]byte, error) {
	path = Normalize(path)
	f, ok := c.files[path]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", path)
	}

	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", path, err)
	}
	defer rc.Close()

	return io.ReadAll(rc)
}

// ReadResource reads the raw bytes of a manifest resource
func (c *Container) ReadResource(r Resource) ([]byte, error) {
	return c.ReadFile(r.Href)
}

// locatePackage determines the package document path, preferring the
// declaration in container.xml
func (c *Container) locatePackage() error {
	content, err := c.ReadFile(containerPath)
	if err != nil {
		// Sloppily built books sometimes omit container.xml entirely
		return c.fallbackPackagePath()
	}

	var cx containerXML
	if err := xml.Unmarshal(content, &cx); err != nil {
		return fmt.Errorf("failed to parse %s: %w", containerPath, err)
	}

	for _, rf := range cx.Rootfiles.Rootfile {
		if rf.MediaType == "application/oebps-package+xml" || rf.MediaType == "" {
			c.opfPath = Normalize(rf.FullPath)
			return nil
		}
	}

	// If no media-type match, use the first one
	if len(cx.Rootfiles.Rootfile) > 0 {
		c.opfPath = Normalize(cx.Rootfiles.Rootfile[0].FullPath)
		return nil
	}

	return c.fallbackPackagePath()
}

// fallbackPackagePath scans for the first .opf entry in archive order
func (c *Container) fallbackPackagePath() error {
	for _, f := range c.archive.File {
		name := Normalize(f.Name)
		if strings.HasSuffix(strings.ToLower(name), ".opf") {
			c.opfPath = name
			return nil
		}
	}
	return ErrPackageNotFound
}
