// Package cbz implements the archive-backed page source: a zip container
// (comic book archive) whose image members are the album's pages.
//
// Each Open returns an independent zip reader, so concurrent requests for
// the same archive never share a read cursor. Pages are decompressed in
// memory one member at a time; nothing is extracted to disk.
package cbz

import (
	"archive/zip"
	"fmt"
	"io"
	"sort"

	"github.com/banux/nxt-albums/internal/album"
)

// MaxPageBytes caps the decompressed size of a single page.
const MaxPageBytes = 64 << 20

// Source serves the image members of one archive as pages.
type Source struct {
	path  string
	zr    *zip.ReadCloser
	files []*zip.File // same order as pages
	pages []album.PageEntry
}

var _ album.Source = (*Source)(nil)

// Open opens the archive at path and indexes its image members by name.
// The caller must Close the returned Source.
func Open(path string) (*Source, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open archive %q: %w", path, err)
	}

	files := make([]*zip.File, 0, len(zr.File))
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || !album.IsImage(f.Name) {
			continue
		}
		files = append(files, f)
	}

	sort.SliceStable(files, func(i, j int) bool {
		return album.NameLess(files[i].Name, files[j].Name)
	})
	pages := make([]album.PageEntry, len(files))
	for i, f := range files {
		pages[i] = album.PageEntry{Name: f.Name}
	}

	return &Source{path: path, zr: zr, files: files, pages: pages}, nil
}

// HasImages reports whether the archive at path holds at least one image
// member. Archives that cannot be opened report false.
func HasImages(path string) bool {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return false
	}
	defer zr.Close()
	for _, f := range zr.File {
		if !f.FileInfo().IsDir() && album.IsImage(f.Name) {
			return true
		}
	}
	return false
}

// Pages returns the sorted image members.
func (s *Source) Pages() []album.PageEntry {
	return s.pages
}

// Count returns the number of pages.
func (s *Source) Count() int {
	return len(s.pages)
}

// ReadPage decompresses the member at sorted position i.
func (s *Source) ReadPage(i int) ([]byte, string, error) {
	if i < 0 || i >= len(s.files) {
		return nil, "", fmt.Errorf("%w: %d of %d", album.ErrPageRange, i, len(s.files))
	}
	f := s.files[i]
	rc, err := f.Open()
	if err != nil {
		return nil, "", fmt.Errorf("open member %q in %q: %w", f.Name, s.path, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, MaxPageBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("read member %q in %q: %w", f.Name, s.path, err)
	}
	if len(data) > MaxPageBytes {
		return nil, "", fmt.Errorf("member %q in %q exceeds %d bytes", f.Name, s.path, MaxPageBytes)
	}
	return data, album.MIMEType(f.Name), nil
}

// Close releases the archive handle.
func (s *Source) Close() error {
	return s.zr.Close()
}
