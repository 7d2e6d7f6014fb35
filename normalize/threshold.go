package normalize

import (
	"math"

	"github.com/wudi/receiptkit/surface"
)

const (
	// WhiteCutoff is the luminance above which a pixel becomes pure white.
	WhiteCutoff = 180
	// BlackCutoff is the luminance below which a pixel becomes pure black.
	BlackCutoff = 80
)

// Luminance weights RGB the way the eye perceives brightness. The explicit
// float64 conversions prevent FMA fusion of the products.
func Luminance(r, g, b uint8) float64 {
	return float64(0.299*float64(r)) + float64(0.587*float64(g)) + float64(0.114*float64(b))
}

// Threshold maps luminance onto the soft three-band scale. The middle band is
// stored as the nearest byte, ties to even.
func Threshold(gray float64) uint8 {
	switch {
	case gray > WhiteCutoff:
		return 255
	case gray < BlackCutoff:
		return 0
	default:
		return uint8(math.RoundToEven(gray))
	}
}

// Transform rewrites R, G and B of every pixel with its thresholded luminance.
// Alpha is neither read nor written.
func Transform(buf surface.PixelBuffer) {
	pix := buf.Pix
	for i := 0; i+3 < len(pix); i += 4 {
		v := Threshold(Luminance(pix[i], pix[i+1], pix[i+2]))
		pix[i] = v
		pix[i+1] = v
		pix[i+2] = v
	}
}
