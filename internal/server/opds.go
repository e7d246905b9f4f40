package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/banux/nxt-albums/internal/album"
	"github.com/banux/nxt-albums/internal/library"
	"github.com/banux/nxt-albums/internal/nav"
	"github.com/banux/nxt-albums/internal/opds"
)

const (
	opdsBrowsePrefix = "/opds/browse/"
	opdsStreamPrefix = "/opds/stream/"
)

// writeOPDS writes an OPDS XML feed response of the given feed type.
func writeOPDS(w http.ResponseWriter, status int, feed *opds.Feed, mimeType string) {
	data, err := feed.MarshalToXML()
	if err != nil {
		http.Error(w, "feed serialization error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", mimeType+"; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// opdsBrowseHref returns the feed URL of the directory rel.
func opdsBrowseHref(rel string) string {
	if rel == "" {
		return opdsBrowsePrefix
	}
	return opdsBrowsePrefix + nav.EscapePath(rel) + "/"
}

// albumToEntry converts an inspected album to an acquisition entry whose
// stream link lets a PSE client fetch pages by zero-based number.
func albumToEntry(link library.Link, info *library.AlbumInfo, updated time.Time) opds.Entry {
	pageType := album.MIMEType(info.Pages[0].Name)
	image := nav.ImageSource(info.Ref)
	return opds.Entry{
		ID:      "urn:nxt-albums:album:" + info.Ref.Path,
		Title:   opds.Text{Value: link.Title},
		Updated: opds.AtomDate{Time: updated},
		Content: &opds.Content{Type: "text", Value: fmt.Sprintf("%d pages", info.Count())},
		Links: []opds.Link{
			opds.StreamLink(
				opdsStreamPrefix+nav.EscapePath(info.Ref.Path)+"?page="+opds.PageNumberTemplate,
				pageType, info.Count()),
			{Rel: opds.RelCover, Href: image + "?" + nav.Query(1, false), Type: pageType},
			{Rel: opds.RelThumbnail, Href: image + "?" + nav.Query(1, true), Type: pageType},
			{Rel: "alternate", Href: nav.ViewHref(info.Ref.Path), Type: "text/html"},
		},
	}
}

// handleOPDSRoot redirects to the feed of the albums root.
func (s *Server) handleOPDSRoot(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, opdsBrowsePrefix, http.StatusFound)
}

// handleOPDSBrowse serves the listing of a directory as an OPDS feed:
// subdirectories become navigation entries and albums acquisition entries
// with page streaming links. A listing without albums is a navigation feed.
// Albums that cannot be inspected are left out.
func (s *Server) handleOPDSBrowse(w http.ResponseWriter, r *http.Request) {
	listing, err := s.library.Browse(r.Context(), mux.Vars(r)["path"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	id := "urn:nxt-albums:browse:" + listing.Path
	title := s.opts.Title + ": /" + listing.Path
	feed, kind := opds.NewAcquisitionFeed(id, title), opds.MIMEAcquisitionFeed
	if len(listing.FileLinks) == 0 {
		feed, kind = opds.NewNavigationFeed(id, title), opds.MIMENavigationFeed
	}
	feed.Author = &opds.Author{Name: s.opts.Title}
	feed.AddLink(opds.RelSelf, opdsBrowseHref(listing.Path), kind)
	feed.AddLink(opds.RelStart, opdsBrowsePrefix, opds.MIMENavigationFeed)
	if listing.Parent != nil {
		feed.AddLink(opds.RelUp, opdsBrowseHref(listing.Parent.Path), opds.MIMENavigationFeed)
	}

	now := time.Now()
	for _, d := range listing.DirLinks {
		feed.AddEntry(opds.Entry{
			ID:      "urn:nxt-albums:dir:" + d.Path,
			Title:   opds.Text{Value: d.Title},
			Updated: opds.AtomDate{Time: now},
			Links: []opds.Link{
				{Rel: opds.RelCatalogNavigation, Href: opdsBrowseHref(d.Path), Type: opds.MIMENavigationFeed},
			},
		})
	}

	logger := loggerFromContext(r.Context(), s.logger)
	for _, f := range listing.FileLinks {
		info, err := s.library.Inspect(f.Path)
		if err != nil {
			logger.Debug("skip album in feed", "album", f.Path, "err", err)
			continue
		}
		feed.AddEntry(albumToEntry(f, info, now))
	}

	writeOPDS(w, http.StatusOK, feed, kind)
}

// handleOPDSStream serves a page for PSE clients. Page numbers are
// zero-based here and clamped like everywhere else.
func (s *Server) handleOPDSStream(w http.ResponseWriter, r *http.Request) {
	page, resize, err := parsePageParams(r, 0)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.servePage(w, r, mux.Vars(r)["path"], album.KindIrrelevant, page+1, resize)
}
