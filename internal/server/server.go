// Package server implements the HTTP server and routing for nxt-albums.
package server

import (
	"html/template"
	"io"
	"io/fs"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"

	"github.com/banux/nxt-albums/internal/imaging"
	"github.com/banux/nxt-albums/internal/library"
	"github.com/banux/nxt-albums/web"
)

// Options holds optional configuration for the Server.
type Options struct {
	// Logger receives one line per request and the details of failed
	// requests. If nil, nothing is logged.
	Logger *log.Logger

	// ResizeWidth is the width of pages served with resize=1.
	// Zero selects imaging.DefaultWidth.
	ResizeWidth int

	// Templates is the filesystem holding templates/*.html.
	// If nil, the embedded web.FS is used.
	Templates fs.FS

	// Title is shown on the welcome page and in page titles.
	// Defaults to "nxt-albums".
	Title string
}

// Server is the HTTP server of the album reader.
type Server struct {
	router    *mux.Router
	library   *library.Library
	templates *template.Template
	logger    *log.Logger
	opts      Options
}

// New creates and configures a new Server over lib.
// It panics if the templates cannot be parsed; the embedded set always can.
func New(lib *library.Library, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.ResizeWidth <= 0 {
		opts.ResizeWidth = imaging.DefaultWidth
	}
	if opts.Templates == nil {
		opts.Templates = web.FS
	}
	if opts.Title == "" {
		opts.Title = "nxt-albums"
	}
	s := &Server{
		router:    mux.NewRouter(),
		library:   lib,
		templates: template.Must(template.ParseFS(opts.Templates, "templates/*.html")),
		logger:    opts.Logger,
		opts:      opts,
	}
	s.registerRoutes()
	return s
}

// ServeHTTP implements http.Handler, delegating to the mux router.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// registerRoutes sets up all endpoint routes.
func (s *Server) registerRoutes() {
	r := s.router
	// Paths are confined by album.Root, which needs to see ".." segments
	// as sent rather than a redirect to the cleaned path.
	r.SkipClean(true)
	r.Use(requestLogger(s.logger))

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/", s.handleWelcome).Methods(http.MethodGet)

	// HTML listing and reading views
	r.HandleFunc("/browse", s.handleBrowse).Methods(http.MethodGet)
	r.HandleFunc("/browse/{path:.*}", s.handleBrowse).Methods(http.MethodGet)
	r.HandleFunc("/view/{path:.*}", s.handleView).Methods(http.MethodGet)

	// Page bytes
	r.HandleFunc("/static/compressed/{path:.*}", s.handleCompressed).Methods(http.MethodGet)
	r.HandleFunc("/static/uncompressed/{path:.*}", s.handleUncompressed).Methods(http.MethodGet)

	// OPDS catalog with page streaming
	r.HandleFunc("/opds", s.handleOPDSRoot).Methods(http.MethodGet)
	r.HandleFunc("/opds/browse/{path:.*}", s.handleOPDSBrowse).Methods(http.MethodGet)
	r.HandleFunc("/opds/stream/{path:.*}", s.handleOPDSStream).Methods(http.MethodGet)

	// Catch-all so that unknown paths still pass through the middleware.
	r.PathPrefix("/").HandlerFunc(http.NotFound)
}
