// Package nav builds the links of the reading view and browse listings.
// Everything here is a pure function of its arguments.
package nav

import (
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/banux/nxt-albums/internal/album"
)

// URL prefixes of the serving routes.
const (
	BrowsePrefix       = "/browse/"
	ViewPrefix         = "/view/"
	CompressedPrefix   = "/static/compressed/"
	UncompressedPrefix = "/static/uncompressed/"
)

// Link is an href with a human-readable title.
type Link struct {
	Href  string
	Title string
}

// Links are the navigation targets of one reading-view response.
type Links struct {
	// Image is the absolute URL of the current page's bytes.
	Image string

	// Next and Prev target the neighbouring pages, saturating at the ends.
	Next string
	Prev string

	// Up is the browse listing of the album's parent directory.
	Up string

	// Resize reloads the current page with the resize flag inverted.
	Resize Link
}

// EscapePath percent-encodes each segment of a slash-separated path,
// keeping the separators.
func EscapePath(rel string) string {
	segments := strings.Split(rel, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}

// BrowseHref returns the listing URL of the directory rel. The root is "".
func BrowseHref(rel string) string {
	if rel == "" {
		return BrowsePrefix
	}
	return BrowsePrefix + EscapePath(rel) + "/"
}

// ChildDirHref returns the relative listing href of the subdirectory name.
func ChildDirHref(name string) string {
	return anchor(url.PathEscape(name)) + "/"
}

// ViewHref returns the reading-view URL of the album rel.
func ViewHref(rel string) string {
	return ViewPrefix + EscapePath(rel)
}

// ImageSource returns the page-bytes URL of ref, without query.
func ImageSource(ref album.AlbumRef) string {
	if ref.Kind == album.KindArchive {
		return CompressedPrefix + EscapePath(ref.Path)
	}
	return UncompressedPrefix + EscapePath(ref.Path)
}

// Query encodes the page and resize parameters.
func Query(page int, resize bool) string {
	v := url.Values{}
	v.Set("page", strconv.Itoa(page))
	if resize {
		v.Set("resize", "1")
	} else {
		v.Set("resize", "0")
	}
	return v.Encode()
}

// Toggle inverts the resize flag.
func Toggle(resize bool) bool {
	return !resize
}

// ResizeTitle is the label of the resize toggle: the state it switches to.
func ResizeTitle(resize bool) string {
	if resize {
		return "original"
	}
	return "smaller"
}

// Build computes the reading-view links for page of count in ref.
// Next and Prev are relative to the view URL: only the album's own name is
// used as path, so the browser resolves them against the current location.
func Build(ref album.AlbumRef, page, count int, resize bool) Links {
	self := selfHref(ref.Path)
	return Links{
		Image: ImageSource(ref) + "?" + Query(page, resize),
		Next:  self + "?" + Query(min(count, page+1), resize),
		Prev:  self + "?" + Query(max(1, page-1), resize),
		Up:    BrowseHref(parentOf(ref.Path)),
		Resize: Link{
			Href:  self + "?" + Query(page, Toggle(resize)),
			Title: ResizeTitle(resize),
		},
	}
}

// selfHref is the relative reference of the album's view URL.
// The root has no name of its own, so it gets the absolute view URL.
func selfHref(rel string) string {
	if rel == "" {
		return ViewPrefix
	}
	return anchor(url.PathEscape(path.Base(rel)))
}

// anchor prefixes an escaped relative segment with "./" when its colon
// would otherwise make it parse as a URL scheme.
func anchor(segment string) string {
	if strings.Contains(segment, ":") {
		return "./" + segment
	}
	return segment
}

// parentOf returns the parent of a slash-separated relative path; the root
// and its direct children have parent "".
func parentOf(rel string) string {
	parent := path.Dir(rel)
	if parent == "." || parent == "/" {
		return ""
	}
	return parent
}
