package ocr

import (
	"context"
	"image"

	"github.com/wudi/receiptkit/surface"
)

// Input is one encoded receipt image submitted for recognition.
type Input struct {
	// ID is echoed back in the matching Result.
	ID string
	// Image is the encoded payload, normally the normalizer's JPEG.
	Image  []byte
	Format surface.Format
	// DPI is the effective resolution; zero means unknown.
	DPI int
	// Languages are trained data hints such as "eng" or "kor".
	Languages []string
	// Crop limits recognition to part of the image. The zero rectangle means
	// the whole image. Boxes in the Result stay in full-image coordinates.
	Crop image.Rectangle
	// Variables are engine settings passed through verbatim.
	Variables map[string]string
}

// Word is a single recognized token.
type Word struct {
	Text       string
	Box        image.Rectangle
	Confidence float64
}

// Line is one printed row of the receipt.
type Line struct {
	Text       string
	Box        image.Rectangle
	Words      []Word
	Confidence float64
}

// Result is the recognition output for one Input.
type Result struct {
	InputID string
	// Text is the recognized text with one receipt row per line.
	Text     string
	Lines    []Line
	Language string
	// Confidence is on a 0–1 scale.
	Confidence float64
}

// Engine recognizes one image at a time.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, input Input) (Result, error)
}

// BatchEngine handles several images per call.
type BatchEngine interface {
	Engine
	RecognizeBatch(ctx context.Context, inputs []Input) ([]Result, error)
}
