// Package imaging downsizes album pages for the reading view.
//
// Resize decodes a page, scales it to a fixed width with the aspect ratio
// preserved, and re-encodes it in the format it was decoded from. Nothing is
// cached; every call redoes the full decode and encode.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp" // WebP decoder registration
)

const (
	// DefaultWidth is the target width of resized pages.
	DefaultWidth = 800

	// JPEGQuality is used when re-encoding JPEG pages.
	JPEGQuality = 90

	// MaxPixels caps the decoded size of a source page. Larger headers are
	// refused before any pixel data is allocated.
	MaxPixels = 64 << 20
)

// ErrUnsupportedFormat is returned when page bytes cannot be decoded, exceed
// MaxPixels, or decode to a format that has no encoder here (WebP).
var ErrUnsupportedFormat = errors.New("unsupported image format")

// Resize scales data to width pixels wide; the height is
// width * originalHeight / originalWidth, floored (at least 1).
// mimeType is the type the caller believes data has and is only used for
// error context. The returned MIME type is that of the detected format, which
// is also the output encoding. width <= 0 selects DefaultWidth.
func Resize(data []byte, mimeType string, width int) ([]byte, string, error) {
	if width <= 0 {
		width = DefaultWidth
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: decode %s: %v", ErrUnsupportedFormat, mimeType, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, "", fmt.Errorf("%w: %s is %dx%d", ErrUnsupportedFormat, mimeType, cfg.Width, cfg.Height)
	}

	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: decode %s: %v", ErrUnsupportedFormat, mimeType, err)
	}
	bounds := src.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return nil, "", fmt.Errorf("%w: empty %s image", ErrUnsupportedFormat, format)
	}

	height := width * bounds.Dy() / bounds.Dx()
	if height < 1 {
		height = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Src, nil)

	var buf bytes.Buffer
	var outType string
	switch format {
	case "jpeg":
		err = jpeg.Encode(&buf, dst, &jpeg.Options{Quality: JPEGQuality})
		outType = "image/jpeg"
	case "png":
		err = png.Encode(&buf, dst)
		outType = "image/png"
	case "gif":
		err = gif.Encode(&buf, dst, nil)
		outType = "image/gif"
	case "bmp":
		err = bmp.Encode(&buf, dst)
		outType = "image/bmp"
	case "tiff":
		err = tiff.Encode(&buf, dst, &tiff.Options{Compression: tiff.Deflate})
		outType = "image/tiff"
	default:
		return nil, "", fmt.Errorf("%w: no encoder for %s", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, "", fmt.Errorf("encode %s: %w", format, err)
	}
	return buf.Bytes(), outType, nil
}
