package album

import (
	"path"
	"strings"
)

// ArchiveExt is the only file suffix recognised as an image archive.
// The match is case-sensitive.
const ArchiveExt = ".cbz"

// mimeTypes maps lower-case file extensions to MIME types.
// Only the top-level "image" category matters for the image predicate; the
// non-image rows keep common sidecar files (ComicInfo.xml, thumbnails.db,
// readme.txt) explicitly out of albums.
var mimeTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".jpe":  "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".webp": "image/webp",
	".tif":  "image/tiff",
	".tiff": "image/tiff",
	".svg":  "image/svg+xml",
	".ico":  "image/vnd.microsoft.icon",
	".avif": "image/avif",
	".heic": "image/heic",
	".heif": "image/heif",
	".jxl":  "image/jxl",

	".xml":  "application/xml",
	".txt":  "text/plain",
	".db":   "application/octet-stream",
	".nfo":  "text/plain",
	".json": "application/json",
}

// MIMEType returns the MIME type for name's extension, or "" if unknown.
// name may be a bare filename, a slash-separated archive member name or an
// OS path.
func MIMEType(name string) string {
	return mimeTypes[strings.ToLower(path.Ext(strings.ReplaceAll(name, "\\", "/")))]
}

// IsImage reports whether name's extension maps to an image/* MIME type.
func IsImage(name string) bool {
	top, _, _ := strings.Cut(MIMEType(name), "/")
	return top == "image"
}

// IsArchiveName reports whether name carries the archive suffix.
func IsArchiveName(name string) bool {
	return strings.HasSuffix(name, ArchiveExt)
}
