// Package surface provides the staging surface used to read and rewrite the
// pixels of a frame. The Backend interface keeps the per-pixel transform
// independent of where the pixels live; Raster is the in-memory default.
package surface

import (
	"errors"
	"fmt"
	"image"
)

// Format identifies the encoded output format of a surface.
type Format string

const (
	FormatJPEG Format = "image/jpeg"
	FormatPNG  Format = "image/png"
)

// DefaultQuality is used when a requested quality lies outside 0.0–1.0.
const DefaultQuality = 0.92

// ErrUnsupportedFormat is returned by Encode for formats the backend cannot produce.
var ErrUnsupportedFormat = errors.New("unsupported encoding format")

// PixelBuffer is a dense row-major RGBA buffer, four bytes per pixel.
type PixelBuffer struct {
	Width  int
	Height int
	Pix    []byte
}

// NewPixelBuffer allocates a zeroed buffer of the given size.
func NewPixelBuffer(width, height int) PixelBuffer {
	return PixelBuffer{Width: width, Height: height, Pix: make([]byte, width*height*4)}
}

// Validate reports whether the buffer length matches its dimensions.
func (b PixelBuffer) Validate() error {
	if b.Width <= 0 || b.Height <= 0 {
		return fmt.Errorf("pixel buffer bounds invalid (%d x %d)", b.Width, b.Height)
	}
	if want := b.Width * b.Height * 4; len(b.Pix) != want {
		return fmt.Errorf("pixel buffer length %d, want %d", len(b.Pix), want)
	}
	return nil
}

// Surface is a full-resolution rendering target owned by one transform call.
type Surface interface {
	Bounds() image.Rectangle
}

// Backend abstracts the environment that stages a frame for pixel access.
type Backend interface {
	Acquire(width, height int) (Surface, error)
	Draw(s Surface, src image.Image) error
	ReadPixels(s Surface) (PixelBuffer, error)
	WritePixels(s Surface, buf PixelBuffer) error
	Encode(s Surface, format Format, quality float64) ([]byte, error)
}
