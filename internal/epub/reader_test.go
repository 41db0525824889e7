package epub

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// archiveEntry is a single member of a test archive
type archiveEntry struct {
	name string
	data string
}

// writeArchive writes a zip archive with the given entries in order
func writeArchive(t *testing.T, path string, entries []archiveEntry) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create archive: %v", err)
	}
	w := zip.NewWriter(f)
	for _, e := range entries {
		ew, err := w.Create(e.name)
		if err != nil {
			t.Fatalf("failed to add %s: %v", e.name, err)
		}
		if _, err := ew.Write([]byte(e.data)); err != nil {
			t.Fatalf("failed to write %s: %v", e.name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("failed to finish archive: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("failed to close archive: %v", err)
	}
}

const testContainerXML = `<?xml version="1.0" encoding="UTF-8"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`

const testOPF = `<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="2.0" unique-identifier="bookid">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
    <dc:title>The Voyage Out</dc:title>
    <dc:creator>Virginia Woolf</dc:creator>
    <dc:language>en</dc:language>
    <dc:identifier id="bookid">urn:isbn:9780151003808</dc:identifier>
    <dc:publisher>Hogarth Press</dc:publisher>
    <dc:date>1915-03-26</dc:date>
    <meta name="cover" content="cover-image"/>
  </metadata>
  <manifest>
    <item id="cover-image" href="images/cover.jpg" media-type="image/jpeg"/>
    <item id="chapter1" href="chapter1.xhtml" media-type="application/xhtml+xml"/>
    <item id="chapter2" href="chapter2.xhtml" media-type="application/xhtml+xml"/>
    <item id="style" href="css/style.css" media-type="text/css"/>
  </manifest>
  <spine>
    <itemref idref="chapter1"/>
    <itemref idref="chapter2"/>
  </spine>
</package>`

// createTestBook creates a small but complete book archive
func createTestBook(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "test.epub")
	writeArchive(t, path, []archiveEntry{
		{"mimetype", "application/epub+zip"},
		{"META-INF/container.xml", testContainerXML},
		{"OEBPS/content.opf", testOPF},
		{"OEBPS/chapter1.xhtml", `<html><body><h1>Chapter 1</h1></body></html>`},
		{"OEBPS/chapter2.xhtml", `<html><body><h1>Chapter 2</h1></body></html>`},
		{"OEBPS/images/cover.jpg", "\xff\xd8\xfffake-jpeg-bytes"},
		{"OEBPS/css/style.css", "body { margin: 0; }"},
	})
	return path
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	c, err := Open(createTestBook(t, dir))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer c.Close()

	if c.OPFPath() != "OEBPS/content.opf" {
		t.Errorf("OPFPath() = %q, want %q", c.OPFPath(), "OEBPS/content.opf")
	}
}

func TestOpen_FileNotFound(t *testing.T) {
	_, err := Open("/nonexistent/file.epub")
	if err == nil {
		t.Fatal("Open() should fail for nonexistent file")
	}
}

func TestOpen_NotAnArchive(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plain.epub")
	if err := os.WriteFile(path, []byte("this is not a zip archive"), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	_, err := Open(path)
	if err == nil {
		t.Fatal("Open() should fail for a non-archive file")
	}
}

func TestOpen_NoPackageDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.epub")
	writeArchive(t, path, []archiveEntry{
		{"mimetype", "application/epub+zip"},
	})

	_, err := Open(path)
	if !errors.Is(err, ErrPackageNotFound) {
		t.Fatalf("Open() error = %v, want ErrPackageNotFound", err)
	}
}

func TestOpen_MissingContainerFallsBackToOPF(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nocontainer.epub")
	writeArchive(t, path, []archiveEntry{
		{"mimetype", "application/epub+zip"},
		{"OEBPS/content.opf", testOPF},
		{"OEBPS/chapter1.xhtml", `<html><body>ch1</body></html>`},
	})

	c, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer c.Close()

	if c.OPFPath() != "OEBPS/content.opf" {
		t.Errorf("OPFPath() = %q, want fallback to find %q", c.OPFPath(), "OEBPS/content.opf")
	}
}

func TestOpen_MalformedPackage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "badopf.epub")
	writeArchive(t, path, []archiveEntry{
		{"META-INF/container.xml", testContainerXML},
		{"OEBPS/content.opf", "<package><manifest"},
	})

	_, err := Open(path)
	if err == nil {
		t.Fatal("Open() should fail for a malformed package document")
	}
}

func TestOpen_ContainerNamesMissingOPF(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "danglingopf.epub")
	writeArchive(t, path, []archiveEntry{
		{"META-INF/container.xml", testContainerXML},
		{"OEBPS/chapter1.xhtml", `<html><body>ch1</body></html>`},
	})

	_, err := Open(path)
	if err == nil {
		t.Fatal("Open() should fail when the declared package document is absent")
	}
}

func TestOpen_PathNormalization(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "normalized.epub")
	writeArchive(t, path, []archiveEntry{
		{"mimetype", "application/epub+zip"},
		{"META-INF/container.xml", `<?xml version="1.0" encoding="UTF-8"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="./OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`},
		{"OEBPS/content.opf", testOPF},
	})

	c, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer c.Close()

	if c.OPFPath() != "OEBPS/content.opf" {
		t.Errorf("OPFPath() = %q, want %q (path should be normalized)", c.OPFPath(), "OEBPS/content.opf")
	}
}

func TestContainer_ManifestAndSpine(t *testing.T) {
	dir := t.TempDir()
	c, err := Open(createTestBook(t, dir))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer c.Close()

	if len(c.Manifest()) != 4 {
		t.Errorf("Manifest() count = %d, want 4", len(c.Manifest()))
	}

	wantIDs := []string{"cover-image", "chapter1", "chapter2", "style"}
	gotIDs := c.ManifestIDs()
	if len(gotIDs) != len(wantIDs) {
		t.Fatalf("ManifestIDs() count = %d, want %d", len(gotIDs), len(wantIDs))
	}
	for i, id := range wantIDs {
		if gotIDs[i] != id {
			t.Errorf("ManifestIDs()[%d] = %q, want %q", i, gotIDs[i], id)
		}
	}

	spine := c.Spine()
	if len(spine) != 2 || spine[0] != "chapter1" || spine[1] != "chapter2" {
		t.Errorf("Spine() = %v, want [chapter1 chapter2]", spine)
	}

	res, ok := c.ResourceByID("chapter1")
	if !ok {
		t.Fatal("ResourceByID(chapter1) not found")
	}
	if res.Href != "OEBPS/chapter1.xhtml" {
		t.Errorf("chapter1 Href = %q, want %q", res.Href, "OEBPS/chapter1.xhtml")
	}
	if res.Kind != KindMarkup {
		t.Errorf("chapter1 Kind = %v, want KindMarkup", res.Kind)
	}
}

func TestContainer_ResourceByHref(t *testing.T) {
	dir := t.TempDir()
	c, err := Open(createTestBook(t, dir))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer c.Close()

	res, ok := c.ResourceByHref("OEBPS/images/cover.jpg")
	if !ok {
		t.Fatal("ResourceByHref() did not find cover image")
	}
	if res.ID != "cover-image" {
		t.Errorf("ResourceByHref() id = %q, want %q", res.ID, "cover-image")
	}

	// Lookups tolerate an unnormalized query
	if _, ok := c.ResourceByHref("./OEBPS/images/cover.jpg"); !ok {
		t.Error("ResourceByHref() should normalize the query path")
	}

	if _, ok := c.ResourceByHref("OEBPS/images/missing.jpg"); ok {
		t.Error("ResourceByHref() found a resource that was never declared")
	}
}

func TestContainer_Metadata(t *testing.T) {
	dir := t.TempDir()
	c, err := Open(createTestBook(t, dir))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer c.Close()

	md := c.Metadata()
	if len(md.Titles) != 1 || md.Titles[0] != "The Voyage Out" {
		t.Errorf("Titles = %v, want [The Voyage Out]", md.Titles)
	}
	if len(md.Creators) != 1 || md.Creators[0] != "Virginia Woolf" {
		t.Errorf("Creators = %v, want [Virginia Woolf]", md.Creators)
	}
	if md.CoverID != "cover-image" {
		t.Errorf("CoverID = %q, want %q", md.CoverID, "cover-image")
	}
}

func TestContainer_ReadFile(t *testing.T) {
	dir := t.TempDir()
	c, err := Open(createTestBook(t, dir))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer c.Close()

	content, err := c.ReadFile("mimetype")
	if err != nil {
		t.Fatalf("ReadFile() failed: %v", err)
	}
	if string(content) != "application/epub+zip" {
		t.Errorf("ReadFile() = %q, want %q", string(content), "application/epub+zip")
	}

	if _, err := c.ReadFile("nonexistent.txt"); err == nil {
		t.Fatal("ReadFile() should fail for nonexistent file")
	}
}

func TestContainer_ReadResource(t *testing.T) {
	dir := t.TempDir()
	c, err := Open(createTestBook(t, dir))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer c.Close()

	res, ok := c.ResourceByID("style")
	if !ok {
		t.Fatal("ResourceByID(style) not found")
	}
	data, err := c.ReadResource(res)
	if err != nil {
		t.Fatalf("ReadResource() failed: %v", err)
	}
	if string(data) != "body { margin: 0; }" {
		t.Errorf("ReadResource() = %q, want stylesheet bytes", string(data))
	}
}
