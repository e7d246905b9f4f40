// Package library classifies the entries below the albums root, builds
// browse listings and resolves page requests against the directory and
// archive backends.
//
// Nothing is cached: every call lists the filesystem afresh, so results
// always reflect the live tree. A Library is read-only after New and safe
// for concurrent use.
package library

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/banux/nxt-albums/internal/album"
	"github.com/banux/nxt-albums/internal/backend/cbz"
	"github.com/banux/nxt-albums/internal/backend/dir"
)

// DefaultListingWorkers bounds concurrent child classification in Browse.
const DefaultListingWorkers = 8

// Options holds optional configuration for a Library.
type Options struct {
	// ListingWorkers bounds how many children Browse classifies at once.
	// Zero or negative selects DefaultListingWorkers.
	ListingWorkers int
}

// Library is the entry point of the album engine.
type Library struct {
	root    album.Root
	workers int
}

// New returns a Library serving albums below root.
func New(root album.Root, opts Options) *Library {
	workers := opts.ListingWorkers
	if workers <= 0 {
		workers = DefaultListingWorkers
	}
	return &Library{root: root, workers: workers}
}

// Root returns the albums root.
func (l *Library) Root() album.Root {
	return l.root
}

// Classify resolves rel and reports its most specific kind: archive album,
// then image directory album, then browsable directory. Unreadable or
// missing entries are KindIrrelevant; only ErrPathEscape is returned.
func (l *Library) Classify(rel string) (album.Kind, error) {
	abs, err := l.root.Resolve(rel)
	if err != nil {
		return album.KindIrrelevant, err
	}
	c := classifyPath(abs)
	switch {
	case c.album != album.KindIrrelevant:
		return c.album, nil
	case c.browsable:
		return album.KindBrowsable, nil
	default:
		return album.KindIrrelevant, nil
	}
}

// classification holds the two independent listing verdicts for one entry.
type classification struct {
	browsable bool
	album     album.Kind // KindArchive, KindImageDir or KindIrrelevant
}

// classifyPath inspects abs. It never fails: anything it cannot read is
// irrelevant.
func classifyPath(abs string) classification {
	info, err := os.Stat(abs)
	if err != nil {
		return classification{}
	}
	if info.Mode().IsRegular() {
		if album.IsArchiveName(info.Name()) && cbz.HasImages(abs) {
			return classification{album: album.KindArchive}
		}
		return classification{}
	}
	if !info.IsDir() {
		return classification{}
	}
	var c classification
	c.browsable = isBrowsable(abs)
	if dir.HasImages(abs) {
		c.album = album.KindImageDir
	}
	return c
}

// isBrowsable reports whether the directory abs directly holds a
// subdirectory or a regular file with the archive suffix. Archive contents
// are not inspected.
func isBrowsable(abs string) bool {
	entries, err := os.ReadDir(abs)
	if err != nil {
		return false
	}
	for _, e := range entries {
		info, err := os.Stat(filepath.Join(abs, e.Name()))
		if err != nil {
			continue
		}
		if info.IsDir() {
			return true
		}
		if info.Mode().IsRegular() && album.IsArchiveName(e.Name()) {
			return true
		}
	}
	return false
}

// Album resolves rel to an AlbumRef by container shape: a regular file with
// the archive suffix is an archive album, a directory is a directory album.
// Whether it actually holds pages is decided when it is opened, so an album
// that lost its images reports ErrEmptyAlbum rather than ErrAlbumNotFound.
func (l *Library) Album(rel string) (album.AlbumRef, error) {
	abs, err := l.root.Resolve(rel)
	if err != nil {
		return album.AlbumRef{}, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return album.AlbumRef{}, fmt.Errorf("%w: %q", album.ErrAlbumNotFound, rel)
	}
	ref := album.AlbumRef{Path: l.root.Rel(abs), Abs: abs}
	switch {
	case info.Mode().IsRegular() && album.IsArchiveName(info.Name()):
		ref.Kind = album.KindArchive
	case info.IsDir():
		ref.Kind = album.KindImageDir
	default:
		return album.AlbumRef{}, fmt.Errorf("%w: %q", album.ErrAlbumNotFound, rel)
	}
	return ref, nil
}

// OpenAlbum opens the backend matching ref.Kind. The caller owns the
// returned Source and must Close it.
func (l *Library) OpenAlbum(ref album.AlbumRef) (album.Source, error) {
	switch ref.Kind {
	case album.KindArchive:
		src, err := cbz.Open(ref.Abs)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", album.ErrAlbumNotFound, err)
		}
		return src, nil
	case album.KindImageDir:
		src, err := dir.Open(ref.Abs)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", album.ErrAlbumNotFound, err)
		}
		return src, nil
	default:
		return nil, fmt.Errorf("%w: %q is %s", album.ErrAlbumNotFound, ref.Path, ref.Kind)
	}
}
