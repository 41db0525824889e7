package epub

import "strings"

// ResolveHref resolves a relative reference found inside the document at
// baseHref to an archive-internal path. Both arguments use the archive's
// forward-slash form; backslashes are tolerated and converted.
//
// Resolution is purely lexical: the reference is joined to the base
// document's directory and then normalized, so the result can be looked up
// in the manifest or file table without touching the archive. A reference
// starting with "/" discards the base directory but keeps its leading
// slash. ".." segments that would climb above the archive root are
// silently dropped rather than reported, because real books ship with
// over-deep relative paths that still mean "from the root".
func ResolveHref(baseHref, reference string) string {
	base := strings.ReplaceAll(baseHref, "\\", "/")
	ref := strings.ReplaceAll(reference, "\\", "/")

	if strings.HasPrefix(ref, "/") {
		return Normalize(ref)
	}
	if dir := parentDir(base); dir != "" {
		return Normalize(dir + "/" + ref)
	}
	return Normalize(ref)
}

// Normalize collapses "." segments, empty segments from doubled slashes,
// and ".." segments against an accumulator that never underflows. A
// leading slash survives normalization; everything else comes back
// relative.
func Normalize(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	rooted := strings.HasPrefix(p, "/")

	segments := strings.Split(p, "/")
	kept := make([]string, 0, len(segments))
	for _, seg := range segments {
		switch seg {
		case "", ".":
		case "..":
			if len(kept) > 0 {
				kept = kept[:len(kept)-1]
			}
		default:
			kept = append(kept, seg)
		}
	}

	out := strings.Join(kept, "/")
	if rooted {
		return "/" + out
	}
	return out
}

// parentDir returns the directory portion of an archive path, "" when the
// path has no directory, and "/" for paths directly under the root.
func parentDir(href string) string {
	i := strings.LastIndex(href, "/")
	switch {
	case i < 0:
		return ""
	case i == 0:
		return "/"
	default:
		return href[:i]
	}
}
