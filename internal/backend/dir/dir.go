// Package dir implements the directory-backed page source: an album made of
// loose image files sitting directly inside one directory.
package dir

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/banux/nxt-albums/internal/album"
)

// Source serves the image files of one directory as pages.
// It holds no open handle; every ReadPage opens and closes its own file.
type Source struct {
	path  string
	pages []album.PageEntry
}

var _ album.Source = (*Source)(nil)

// Open lists the image files directly inside path, sorted by name.
// Only regular files are pages, so a subdirectory named like an image, or a
// symlink to one, is skipped.
func Open(path string) (*Source, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("read album dir %q: %w", path, err)
	}
	pages := make([]album.PageEntry, 0, len(entries))
	for _, e := range entries {
		if !isPage(path, e) {
			continue
		}
		pages = append(pages, album.PageEntry{Name: e.Name()})
	}
	album.SortEntries(pages)
	return &Source{path: path, pages: pages}, nil
}

// HasImages reports whether path is a directory with at least one direct
// image child. Unreadable directories report false.
func HasImages(path string) bool {
	entries, err := os.ReadDir(path)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if isPage(path, e) {
			return true
		}
	}
	return false
}

// isPage reports whether e names an image and is, or links to, a regular
// file. Dangling links are not pages.
func isPage(dir string, e fs.DirEntry) bool {
	if !album.IsImage(e.Name()) {
		return false
	}
	if e.Type()&fs.ModeSymlink != 0 {
		info, err := os.Stat(filepath.Join(dir, e.Name()))
		return err == nil && info.Mode().IsRegular()
	}
	return e.Type().IsRegular()
}

// Pages returns the sorted image entries.
func (s *Source) Pages() []album.PageEntry {
	return s.pages
}

// Count returns the number of pages.
func (s *Source) Count() int {
	return len(s.pages)
}

// ReadPage reads the file at sorted position i.
func (s *Source) ReadPage(i int) ([]byte, string, error) {
	if i < 0 || i >= len(s.pages) {
		return nil, "", fmt.Errorf("%w: %d of %d", album.ErrPageRange, i, len(s.pages))
	}
	name := s.pages[i].Name
	data, err := os.ReadFile(filepath.Join(s.path, name))
	if err != nil {
		return nil, "", fmt.Errorf("read page %q: %w", name, err)
	}
	return data, album.MIMEType(name), nil
}

// Close is a no-op; directory sources keep no handle between reads.
func (s *Source) Close() error {
	return nil
}
