// Package album provides the album abstraction for nxt-albums.
// It defines the core data types, the Source interface that page backends
// implement, the image predicate and the root confinement guard.
package album

import "sort"

// Kind classifies a filesystem entry below the albums root.
type Kind int

const (
	// KindIrrelevant is neither browsable nor readable.
	KindIrrelevant Kind = iota

	// KindBrowsable is a directory holding subdirectories or archive files.
	KindBrowsable

	// KindArchive is a .cbz file holding at least one image member.
	KindArchive

	// KindImageDir is a directory holding at least one image file directly.
	KindImageDir
)

// String returns a short lower-case name for k.
func (k Kind) String() string {
	switch k {
	case KindBrowsable:
		return "browsable"
	case KindArchive:
		return "archive"
	case KindImageDir:
		return "imagedir"
	default:
		return "irrelevant"
	}
}

// IsAlbum reports whether k is one of the readable album kinds.
func (k Kind) IsAlbum() bool {
	return k == KindArchive || k == KindImageDir
}

// AlbumRef identifies a readable album for the duration of one request.
type AlbumRef struct {
	// Path is the slash-separated path relative to the albums root.
	Path string

	// Abs is the absolute filesystem location of the album.
	Abs string

	// Kind is KindArchive or KindImageDir.
	Kind Kind
}

// PageEntry is one image inside an album: a filename for directory albums,
// a member name for archive albums.
type PageEntry struct {
	Name string
}

// Source is the capability set shared by the directory and archive backends.
// A Source is owned by a single request and must be closed by its opener.
type Source interface {
	// Pages returns the image entries in page order.
	Pages() []PageEntry

	// Count returns len(Pages()).
	Count() int

	// ReadPage returns the bytes and MIME type of the page at 0-based index i.
	ReadPage(i int) ([]byte, string, error)

	// Close releases any handle held by the source.
	Close() error
}

// NameLess is the page order shared by every backend: byte-wise comparison
// of entry names. Page numbers therefore mean the same thing whichever
// backend serves an album.
func NameLess(a, b string) bool {
	return a < b
}

// SortEntries orders entries by NameLess. Entries with equal names keep
// their relative order.
func SortEntries(entries []PageEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return NameLess(entries[i].Name, entries[j].Name)
	})
}

// Clamp constrains n to [lo, hi]. hi must be >= lo.
func Clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
