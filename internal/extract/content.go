// Package extract turns book containers into consumable artifacts: a single
// assembled HTML fragment, a metadata record, cover images, sidecar files
// and extracted fonts. Every operation opens its own container and shares
// nothing, so concurrent extractions are isolated by construction.
package extract

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/skaarfundgandr/Stellaron/internal/epub"
)

// The rewrite passes work on raw markup text, not a parsed tree, so the
// original quoting and attribute order survive untouched for everything
// that is not the matched reference itself.
var (
	// imgSrcPattern matches inline image elements: prefix, reference, suffix
	imgSrcPattern = regexp.MustCompile(`(?i)(<img[^>]*?src=["'])([^"']+)(["'][^>]*?>)`)
	// svgHrefPattern matches vector-graphics image references, with or
	// without the xlink prefix
	svgHrefPattern = regexp.MustCompile(`(?i)(<image[^>]*?(?:xlink:)?href=["'])([^"']+)(["'][^>]*?>)`)
)

// AssembleContent opens the book at path and returns its full linear
// reading content as one HTML fragment
func AssembleContent(path string, logger *slog.Logger) (string, error) {
	c, err := epub.Open(path)
	if err != nil {
		return "", err
	}
	defer c.Close()

	return Assemble(c, logger), nil
}

// Assemble walks the spine in reading order, inlines every local image
// reference of each markup document as a base64 data URL, and concatenates
// the body inner content of the documents with no separators. Spine
// entries that are missing, unreadable or not markup are skipped with a
// warning; assembly itself never fails.
func Assemble(c *epub.Container, logger *slog.Logger) string {
	if logger == nil {
		logger = slog.Default()
	}

	var combined strings.Builder
	for _, idref := range c.Spine() {
		res, ok := c.ResourceByID(idref)
		if !ok {
			logger.Warn("spine entry missing from manifest", "idref", idref)
			continue
		}
		if res.Kind != epub.KindMarkup {
			continue
		}

		data, err := c.ReadResource(res)
		if err != nil {
			logger.Warn("skipping unreadable spine document", "href", res.Href, "error", err)
			continue
		}

		text := string(data)
		text = inlineImages(c, res.Href, imgSrcPattern, text)
		text = inlineImages(c, res.Href, svgHrefPattern, text)

		body, err := bodyInnerHTML(text)
		if err != nil {
			logger.Warn("skipping unparseable spine document", "href", res.Href, "error", err)
			continue
		}
		combined.WriteString(body)
	}

	return combined.String()
}

// inlineImages rewrites local image references in doc to data URLs.
// References that are already data-embedded or point to the network pass
// through byte-identical; references that cannot be resolved or read are
// also left alone, so a broken image never aborts assembly.
func inlineImages(c *epub.Container, baseHref string, pattern *regexp.Regexp, doc string) string {
	return pattern.ReplaceAllStringFunc(doc, func(match string) string {
		parts := pattern.FindStringSubmatch(match)
		if parts == nil {
			return match
		}
		prefix, ref, suffix := parts[1], parts[2], parts[3]

		if strings.HasPrefix(ref, "data:") || strings.HasPrefix(ref, "http") {
			return match
		}

		resolved := epub.ResolveHref(baseHref, ref)
		res, ok := c.ResourceByHref(resolved)
		if !ok {
			return match
		}
		data, err := c.ReadResource(res)
		if err != nil {
			return match
		}

		encoded := base64.StdEncoding.EncodeToString(data)
		return prefix + "data:" + res.MediaType + ";base64," + encoded + suffix
	})
}

// bodyInnerHTML extracts the inner content of the document's body element.
// A document without a body yields an empty fragment.
func bodyInnerHTML(doc string) (string, error) {
	parsed, err := goquery.NewDocumentFromReader(strings.NewReader(doc))
	if err != nil {
		return "", err
	}
	return parsed.Find("body").First().Html()
}

// contentExportName is the file assembled content is exported under
const contentExportName = "extracted_content.html"

// ExportContent assembles the book at path and writes the fragment into
// outDir, returning the written file's path
func ExportContent(path, outDir string, logger *slog.Logger) (string, error) {
	contents, err := AssembleContent(path, logger)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output dir %s: %w", outDir, err)
	}

	outPath := filepath.Join(outDir, contentExportName)
	if err := os.WriteFile(outPath, []byte(contents), 0o644); err != nil {
		return "", fmt.Errorf("failed to write content: %w", err)
	}
	return outPath, nil
}
