package surface

import "fmt"

const (
	// DefaultMaxDimension caps width/height of a staging surface.
	DefaultMaxDimension = 32768
	// DefaultMaxPixels bounds the pixel count (roughly 64MP) which keeps a
	// surface and its pixel copy under 512 MB.
	DefaultMaxPixels int64 = 64 * 1024 * 1024
)

// Limits bounds the size of surfaces a backend will allocate. Zero fields use
// the defaults.
type Limits struct {
	MaxDimension int
	MaxPixels    int64
}

// Check reports whether a width x height surface fits within the limits.
func (l Limits) Check(width, height int) error {
	maxDim := l.MaxDimension
	if maxDim <= 0 {
		maxDim = DefaultMaxDimension
	}
	maxPixels := l.MaxPixels
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("surface bounds invalid (%d x %d)", width, height)
	}
	if width > maxDim || height > maxDim {
		return fmt.Errorf("surface dimension exceeds limit (%d x %d)", width, height)
	}
	if pixels := int64(width) * int64(height); pixels > maxPixels {
		return fmt.Errorf("surface pixel count %d exceeds limit %d", pixels, maxPixels)
	}
	return nil
}
