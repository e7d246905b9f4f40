package library

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/banux/nxt-albums/internal/album"
	"github.com/banux/nxt-albums/internal/nav"
)

// Link is one entry of a browse listing.
type Link struct {
	// Href is percent-encoded. Directory hrefs are relative and end in "/";
	// album hrefs are absolute reading-view URLs.
	Href string

	// Title is the display name.
	Title string

	// Path is the target's slash-separated path relative to the root.
	Path string

	// Kind is KindBrowsable for directory links and the album kind for
	// file links.
	Kind album.Kind
}

// Listing is the browse view of one directory.
type Listing struct {
	// Path is the listed directory relative to the root ("" for the root).
	Path string

	// Parent links to the parent listing; nil at the root.
	Parent *Link

	// DirLinks are the browsable subdirectories, in name order.
	DirLinks []Link

	// FileLinks are the readable albums, in name order. A directory can be
	// listed both here and in DirLinks.
	FileLinks []Link
}

// Browse lists the directory rel. Children are classified concurrently but
// reported in name order; children that cannot be read are left out.
func (l *Library) Browse(ctx context.Context, rel string) (*Listing, error) {
	abs, err := l.root.Resolve(rel)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %q", album.ErrDirectoryNotFound, rel)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("read dir %q: %w", rel, err)
	}

	listing := &Listing{Path: l.root.Rel(abs)}
	if listing.Path != "" {
		parent := path.Dir(listing.Path)
		if parent == "." {
			parent = ""
		}
		listing.Parent = &Link{
			Href:  nav.BrowseHref(parent),
			Title: "..",
			Path:  parent,
			Kind:  album.KindBrowsable,
		}
	}

	results := make([]classification, len(entries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.workers)
	for i, e := range entries {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = classifyPath(filepath.Join(abs, e.Name()))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("browse %q: %w", rel, err)
	}

	for i, e := range entries {
		name := e.Name()
		childRel := path.Join(listing.Path, name)
		c := results[i]
		if c.browsable {
			listing.DirLinks = append(listing.DirLinks, Link{
				Href:  nav.ChildDirHref(name),
				Title: name,
				Path:  childRel,
				Kind:  album.KindBrowsable,
			})
		}
		if c.album != album.KindIrrelevant {
			listing.FileLinks = append(listing.FileLinks, Link{
				Href:  nav.ViewHref(childRel),
				Title: name,
				Path:  childRel,
				Kind:  c.album,
			})
		}
	}
	return listing, nil
}
