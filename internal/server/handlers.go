package server

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/banux/nxt-albums/internal/album"
	"github.com/banux/nxt-albums/internal/imaging"
	"github.com/banux/nxt-albums/internal/library"
	"github.com/banux/nxt-albums/internal/nav"
)

// errBadParam marks a page or resize query value that is not an integer.
var errBadParam = errors.New("invalid query parameter")

// statusFor maps an engine error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadParam), errors.Is(err, album.ErrPathEscape):
		return http.StatusBadRequest
	case errors.Is(err, album.ErrAlbumNotFound),
		errors.Is(err, album.ErrDirectoryNotFound),
		errors.Is(err, album.ErrEmptyAlbum):
		return http.StatusNotFound
	case errors.Is(err, imaging.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	default:
		return http.StatusInternalServerError
	}
}

// errorMessage is the response body for err. Internal errors are not
// echoed back since they may carry absolute paths.
func errorMessage(err error, status int) string {
	switch {
	case errors.Is(err, errBadParam):
		return "invalid page or resize parameter"
	case errors.Is(err, album.ErrPathEscape):
		return "invalid path"
	case errors.Is(err, album.ErrAlbumNotFound):
		return "album not found"
	case errors.Is(err, album.ErrDirectoryNotFound):
		return "directory not found"
	case errors.Is(err, album.ErrEmptyAlbum):
		return "album has no pages"
	case errors.Is(err, imaging.ErrUnsupportedFormat):
		return "unsupported image format"
	default:
		return http.StatusText(status)
	}
}

// writeError logs err against the request and writes the mapped status.
// Server-side failures are logged at error level, client errors at debug.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	logger := loggerFromContext(r.Context(), s.logger)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "path", r.URL.Path, "status", status, "err", err)
	} else {
		logger.Debug("request rejected", "path", r.URL.Path, "status", status, "err", err)
	}
	http.Error(w, errorMessage(err, status), status)
}

// parsePageParams extracts the page and resize query parameters. A missing
// page yields defaultPage; a missing resize is false. Any integer page is
// accepted since resolution clamps it.
func parsePageParams(r *http.Request, defaultPage int) (page int, resize bool, err error) {
	q := r.URL.Query()
	page = defaultPage
	if v := q.Get("page"); v != "" {
		if page, err = strconv.Atoi(v); err != nil {
			return 0, false, fmt.Errorf("%w: page=%q", errBadParam, v)
		}
	}
	if v := q.Get("resize"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, false, fmt.Errorf("%w: resize=%q", errBadParam, v)
		}
		resize = n != 0
	}
	return page, resize, nil
}

// render executes the named template into a buffer first so that a template
// failure still produces a clean 500.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.writeError(w, r, fmt.Errorf("render %s: %w", name, err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// handleWelcome serves the landing page linking to the root listing.
func (s *Server) handleWelcome(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "welcome.html", struct{ Title string }{s.opts.Title})
}

// browsePage is the data of browse.html.
type browsePage struct {
	Title   string
	Listing *library.Listing
}

// handleBrowse serves the HTML listing of a directory. Listing hrefs of
// subdirectories are relative, so the URL must end in "/".
func (s *Server) handleBrowse(w http.ResponseWriter, r *http.Request) {
	rel := mux.Vars(r)["path"]
	listing, err := s.library.Browse(r.Context(), rel)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !strings.HasSuffix(r.URL.Path, "/") {
		http.Redirect(w, r, r.URL.EscapedPath()+"/", http.StatusMovedPermanently)
		return
	}
	s.render(w, r, "browse.html", browsePage{
		Title:   s.opts.Title + ": /" + listing.Path,
		Listing: listing,
	})
}

// readingPage is the data of reading.html.
type readingPage struct {
	Title string
	Page  int
	Count int
	Links nav.Links
}

// handleView serves the reading view of one album page. Navigation links
// are relative to the album's own name, so a trailing slash is removed.
func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	rel := mux.Vars(r)["path"]
	page, resize, err := parsePageParams(r, 1)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ref, n, count, err := s.library.PageCount(rel, page)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if ref.Path != "" && strings.HasSuffix(r.URL.Path, "/") {
		target := strings.TrimRight(r.URL.EscapedPath(), "/")
		if r.URL.RawQuery != "" {
			target += "?" + r.URL.RawQuery
		}
		http.Redirect(w, r, target, http.StatusMovedPermanently)
		return
	}
	title := s.opts.Title
	if ref.Path != "" {
		title = path.Base(ref.Path)
	}
	s.render(w, r, "reading.html", readingPage{
		Title: title,
		Page:  n,
		Count: count,
		Links: nav.Build(ref, n, count, resize),
	})
}

// handleCompressed serves a page of an archive album. The archive suffix
// may be left off the path, or given as another extension which it replaces.
func (s *Server) handleCompressed(w http.ResponseWriter, r *http.Request) {
	rel := withArchiveExt(mux.Vars(r)["path"])
	page, resize, err := parsePageParams(r, 1)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.servePage(w, r, rel, album.KindArchive, page, resize)
}

// withArchiveExt gives the last segment of rel the archive suffix,
// replacing its extension if it has one: "a/Bar" and "a/Bar.zip" both
// become "a/Bar.cbz". A leading dot does not start an extension.
func withArchiveExt(rel string) string {
	rel = strings.TrimRight(rel, "/")
	if album.IsArchiveName(rel) {
		return rel
	}
	base := path.Base(rel)
	if ext := path.Ext(base); ext != "" && ext != base {
		rel = strings.TrimSuffix(rel, ext)
	}
	return rel + album.ArchiveExt
}

// handleUncompressed serves a page of an image directory album.
func (s *Server) handleUncompressed(w http.ResponseWriter, r *http.Request) {
	page, resize, err := parsePageParams(r, 1)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.servePage(w, r, mux.Vars(r)["path"], album.KindImageDir, page, resize)
}

// servePage writes the bytes of page (1-based, clamped) of album rel,
// downsized when resize is set. want restricts the album kind;
// KindIrrelevant accepts either.
func (s *Server) servePage(w http.ResponseWriter, r *http.Request, rel string, want album.Kind, page int, resize bool) {
	p, err := s.library.ResolvePage(rel, page)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if want != album.KindIrrelevant && p.Ref.Kind != want {
		s.writeError(w, r, fmt.Errorf("%w: %q is %s", album.ErrAlbumNotFound, p.Ref.Path, p.Ref.Kind))
		return
	}

	data, mimeType := p.Data, p.MIMEType
	if resize {
		data, mimeType, err = imaging.Resize(data, mimeType, s.opts.ResizeWidth)
		if err != nil {
			s.writeError(w, r, fmt.Errorf("resize page %d of %q: %w", p.Number, p.Ref.Path, err))
			return
		}
	}
	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	_, _ = w.Write(data)
}
