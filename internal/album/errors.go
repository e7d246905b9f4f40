package album

import "errors"

var (
	// ErrPathEscape is returned when a requested path resolves outside the root.
	ErrPathEscape = errors.New("path escapes albums root")

	// ErrAlbumNotFound is returned when a path is neither an archive nor a directory album.
	ErrAlbumNotFound = errors.New("album not found")

	// ErrDirectoryNotFound is returned when a browse path is not a directory.
	ErrDirectoryNotFound = errors.New("directory not found")

	// ErrEmptyAlbum is returned when an album holds no image pages.
	ErrEmptyAlbum = errors.New("album has no pages")

	// ErrPageRange is returned by Source.ReadPage for an index outside [0, Count).
	ErrPageRange = errors.New("page index out of range")
)
