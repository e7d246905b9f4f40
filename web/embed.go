// Package web embeds the HTML templates of the reader.
package web

import "embed"

// FS holds the embedded templates directory.
//
//go:embed templates/*.html
var FS embed.FS
