package library

import (
	"fmt"

	"github.com/banux/nxt-albums/internal/album"
)

// Page is a resolved album page.
type Page struct {
	// Ref is the album the page belongs to.
	Ref album.AlbumRef

	// Name is the directory filename or archive member name of the page.
	Name string

	// Data holds the raw image bytes.
	Data []byte

	// MIMEType is derived from Name's extension.
	MIMEType string

	// Number is the 1-based page number after clamping.
	Number int

	// Count is the number of pages in the album at resolution time.
	Count int
}

// ResolvePage resolves rel to an album and returns page requested, clamped
// into [1, count]. Out-of-range requests are never an error; an album with
// no pages fails with ErrEmptyAlbum.
func (l *Library) ResolvePage(rel string, requested int) (*Page, error) {
	ref, err := l.Album(rel)
	if err != nil {
		return nil, err
	}
	src, err := l.OpenAlbum(ref)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	count := src.Count()
	if count == 0 {
		return nil, fmt.Errorf("%w: %q", album.ErrEmptyAlbum, ref.Path)
	}
	n := album.Clamp(requested, 1, count)
	data, mimeType, err := src.ReadPage(n - 1)
	if err != nil {
		return nil, fmt.Errorf("resolve page %d of %q: %w", n, ref.Path, err)
	}
	return &Page{
		Ref:      ref,
		Name:     src.Pages()[n-1].Name,
		Data:     data,
		MIMEType: mimeType,
		Number:   n,
		Count:    count,
	}, nil
}

// AlbumInfo describes an album without its page bytes.
type AlbumInfo struct {
	Ref   album.AlbumRef
	Pages []album.PageEntry
}

// Count returns the number of pages.
func (a *AlbumInfo) Count() int {
	return len(a.Pages)
}

// Inspect resolves rel and lists its pages. An album with no pages fails
// with ErrEmptyAlbum.
func (l *Library) Inspect(rel string) (*AlbumInfo, error) {
	ref, err := l.Album(rel)
	if err != nil {
		return nil, err
	}
	src, err := l.OpenAlbum(ref)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	if src.Count() == 0 {
		return nil, fmt.Errorf("%w: %q", album.ErrEmptyAlbum, ref.Path)
	}
	return &AlbumInfo{Ref: ref, Pages: src.Pages()}, nil
}

// PageCount resolves rel and returns its album reference, the clamped page
// number for requested and the page count, without reading page bytes.
func (l *Library) PageCount(rel string, requested int) (album.AlbumRef, int, int, error) {
	info, err := l.Inspect(rel)
	if err != nil {
		return album.AlbumRef{}, 0, 0, err
	}
	count := info.Count()
	return info.Ref, album.Clamp(requested, 1, count), count, nil
}
