package tesseract

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os/exec"
	"strings"
	"testing"

	"github.com/otiai10/gosseract/v2"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/wudi/receiptkit/frame"
	"github.com/wudi/receiptkit/normalize"
	"github.com/wudi/receiptkit/ocr"
)

// ensureTesseractAvailable checks that the tesseract binary is reachable.
func ensureTesseractAvailable(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("tesseract"); err != nil {
		t.Skip("tesseract not installed in PATH")
	}
}

// receiptLine renders dark text on slightly gray paper, which the normalizer
// flattens to white.
func receiptLine(text string) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 240, 80))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.RGBA{R: 235, G: 232, B: 225, A: 255}}, image.Point{}, draw.Src)
	d := &font.Drawer{
		Dst:  img,
		Src:  image.Black,
		Face: basicfont.Face7x13,
		Dot:  fixed.P(10, 50),
	}
	d.DrawString(text)
	return img
}

func TestTesseractEngineRecognize(t *testing.T) {
	ensureTesseractAvailable(t)

	encoded, err := normalize.Normalize(context.Background(), frame.NewStill(receiptLine("TOTAL 12.50")))
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	in := ocr.InputFromEncoded(encoded, ocr.WithID("receipt-0"), ocr.WithLanguages("eng"), ocr.WithDPI(300))
	results, err := ocr.Recognize(context.Background(), NewTesseractEngine(), []ocr.Input{in})
	if err != nil {
		t.Fatalf("Recognize() error = %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	res := results[0]
	got := strings.ToLower(res.Text)
	if !strings.Contains(got, "total") || !strings.Contains(got, "12") {
		t.Fatalf("unexpected OCR output: %q", res.Text)
	}
	if len(res.Lines) == 0 || len(res.Lines[0].Words) == 0 {
		t.Fatalf("expected line and word boxes")
	}
	if res.Confidence <= 0 || res.Confidence > 1 {
		t.Fatalf("confidence out of range: %v", res.Confidence)
	}
	if res.InputID != "receipt-0" {
		t.Fatalf("unexpected input id: %s", res.InputID)
	}
}

func TestRegisteredAsDefault(t *testing.T) {
	if got := ocr.DefaultEngine().Name(); got != "tesseract" {
		t.Fatalf("expected tesseract default engine, got %s", got)
	}
}

func TestBuildLines(t *testing.T) {
	lineBoxes := []gosseract.BoundingBox{
		{Box: image.Rect(0, 0, 100, 20), Word: "COFFEE 4.50\n", Confidence: 90},
		{Box: image.Rect(0, 20, 100, 40), Word: "TOTAL 4.50", Confidence: 70},
	}
	wordBoxes := []gosseract.BoundingBox{
		{Box: image.Rect(0, 0, 50, 20), Word: "COFFEE", Confidence: 80},
		{Box: image.Rect(60, 0, 100, 20), Word: "4.50", Confidence: 100},
		{Box: image.Rect(0, 20, 50, 40), Word: "TOTAL", Confidence: 60},
		{Box: image.Rect(200, 200, 210, 210), Word: "stray", Confidence: 10},
	}
	lines := buildLines(lineBoxes, wordBoxes, image.Pt(5, 10))
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0].Text != "COFFEE 4.50" || len(lines[0].Words) != 2 {
		t.Fatalf("unexpected first line: %+v", lines[0])
	}
	if want := image.Rect(5, 10, 105, 30); lines[0].Box != want {
		t.Fatalf("line box = %v, want %v", lines[0].Box, want)
	}
	if len(lines[1].Words) != 1 || lines[1].Words[0].Text != "TOTAL" {
		t.Fatalf("unexpected second line words: %+v", lines[1].Words)
	}
	if got := lines[1].Confidence; got != 0.7 {
		t.Fatalf("line confidence = %v, want 0.7", got)
	}
	if got := meanConfidence(lines); math.Abs(got-0.8) > 1e-9 {
		t.Fatalf("meanConfidence() = %v, want 0.8", got)
	}
}

func TestMeanConfidenceFallsBackToLines(t *testing.T) {
	lines := []ocr.Line{{Confidence: 0.5}, {Confidence: 0.25}}
	if got := meanConfidence(lines); got != 0.375 {
		t.Fatalf("meanConfidence() = %v, want 0.375", got)
	}
	if got := meanConfidence(nil); got != 0 {
		t.Fatalf("meanConfidence(nil) = %v, want 0", got)
	}
}

func TestCrop(t *testing.T) {
	encoded, err := normalize.Normalize(context.Background(), frame.NewStill(receiptLine("x")))
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if _, _, err := crop(encoded.Data, image.Rect(1000, 1000, 1005, 1005)); err == nil {
		t.Fatalf("expected error for crop outside image")
	}
	out, origin, err := crop(encoded.Data, image.Rectangle{})
	if err != nil || len(out) != len(encoded.Data) || origin != (image.Point{}) {
		t.Fatalf("empty crop should pass data through")
	}
	out, origin, err = crop(encoded.Data, image.Rect(200, 60, 300, 100))
	if err != nil {
		t.Fatalf("crop() error = %v", err)
	}
	if origin != image.Pt(200, 60) {
		t.Fatalf("crop origin = %v", origin)
	}
	img, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode cropped: %v", err)
	}
	if got := img.Bounds().Size(); got != image.Pt(40, 20) {
		t.Fatalf("cropped size = %v, want clipped 40x20", got)
	}
}
