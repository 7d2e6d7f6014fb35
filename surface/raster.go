package surface

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"math"

	"golang.org/x/image/draw"
)

// Raster is the in-memory Backend. Surfaces are non-premultiplied RGBA
// images, so ReadPixels yields the same channel values a 2D canvas would.
type Raster struct {
	Limits Limits
}

// NewRaster returns a Raster backend with the given allocation limits.
func NewRaster(limits Limits) *Raster {
	return &Raster{Limits: limits}
}

type rasterSurface struct {
	img *image.NRGBA
}

func (s *rasterSurface) Bounds() image.Rectangle { return s.img.Rect }

func (r *Raster) Acquire(width, height int) (Surface, error) {
	if err := r.Limits.Check(width, height); err != nil {
		return nil, err
	}
	return &rasterSurface{img: image.NewNRGBA(image.Rect(0, 0, width, height))}, nil
}

// Draw renders src at 1:1 scale with its minimum point at the surface origin.
// Pixels outside the surface are clipped; nothing is scaled.
func (r *Raster) Draw(s Surface, src image.Image) error {
	rs, err := r.surface(s)
	if err != nil {
		return err
	}
	if src == nil {
		return fmt.Errorf("draw: nil source image")
	}
	if n, ok := src.(*image.NRGBA); ok {
		copyNRGBA(rs.img, n)
		return nil
	}
	draw.Draw(rs.img, rs.img.Rect, src, src.Bounds().Min, draw.Src)
	return nil
}

// copyNRGBA copies rows verbatim so translucent pixels keep their exact
// channel values instead of round-tripping through premultiplied color.
func copyNRGBA(dst, src *image.NRGBA) {
	w := min(dst.Rect.Dx(), src.Rect.Dx())
	h := min(dst.Rect.Dy(), src.Rect.Dy())
	for y := 0; y < h; y++ {
		so := src.PixOffset(src.Rect.Min.X, src.Rect.Min.Y+y)
		do := dst.PixOffset(dst.Rect.Min.X, dst.Rect.Min.Y+y)
		copy(dst.Pix[do:do+w*4], src.Pix[so:so+w*4])
	}
}

func (r *Raster) ReadPixels(s Surface) (PixelBuffer, error) {
	rs, err := r.surface(s)
	if err != nil {
		return PixelBuffer{}, err
	}
	w, h := rs.img.Rect.Dx(), rs.img.Rect.Dy()
	buf := NewPixelBuffer(w, h)
	for y := 0; y < h; y++ {
		copy(buf.Pix[y*w*4:(y+1)*w*4], rs.img.Pix[y*rs.img.Stride:y*rs.img.Stride+w*4])
	}
	return buf, nil
}

func (r *Raster) WritePixels(s Surface, buf PixelBuffer) error {
	rs, err := r.surface(s)
	if err != nil {
		return err
	}
	if err := buf.Validate(); err != nil {
		return err
	}
	w, h := rs.img.Rect.Dx(), rs.img.Rect.Dy()
	if buf.Width != w || buf.Height != h {
		return fmt.Errorf("pixel buffer %dx%d does not match surface %dx%d", buf.Width, buf.Height, w, h)
	}
	for y := 0; y < h; y++ {
		copy(rs.img.Pix[y*rs.img.Stride:y*rs.img.Stride+w*4], buf.Pix[y*w*4:(y+1)*w*4])
	}
	return nil
}

func (r *Raster) Encode(s Surface, format Format, quality float64) ([]byte, error) {
	rs, err := r.surface(s)
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	switch format {
	case FormatJPEG:
		if err := jpeg.Encode(&out, rs.img, &jpeg.Options{Quality: JPEGQuality(quality)}); err != nil {
			return nil, fmt.Errorf("encode jpeg: %w", err)
		}
	case FormatPNG:
		if err := png.Encode(&out, rs.img); err != nil {
			return nil, fmt.Errorf("encode png: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	return out.Bytes(), nil
}

func (r *Raster) surface(s Surface) (*rasterSurface, error) {
	rs, ok := s.(*rasterSurface)
	if !ok || rs == nil || rs.img == nil {
		return nil, fmt.Errorf("surface %T was not acquired from this backend", s)
	}
	return rs, nil
}

// JPEGQuality maps a 0.0–1.0 quality factor onto the 1–100 scale of
// image/jpeg. Out-of-range factors use DefaultQuality.
func JPEGQuality(q float64) int {
	if math.IsNaN(q) || q < 0 || q > 1 {
		q = DefaultQuality
	}
	v := int(math.Round(q * 100))
	if v < 1 {
		v = 1
	}
	if v > 100 {
		v = 100
	}
	return v
}
