// Package tesseract provides the gosseract-backed OCR engine. Importing it
// registers the engine as ocr's default.
package tesseract

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"strconv"
	"strings"

	"github.com/otiai10/gosseract/v2"
	"github.com/wudi/receiptkit/ocr"
)

func init() {
	ocr.SetDefaultEngine(NewTesseractEngine())
}

// TesseractEngine implements ocr.Engine and ocr.BatchEngine on top of a
// gosseract client.
type TesseractEngine struct {
	clientFactory func() *gosseract.Client
	languages     []string
}

// Option configures a TesseractEngine.
type Option func(*TesseractEngine)

// WithDefaultLanguages sets the trained data used when an input carries no
// language hints.
func WithDefaultLanguages(langs ...string) Option {
	return func(e *TesseractEngine) { e.languages = append([]string(nil), langs...) }
}

// NewTesseractEngine constructs a Tesseract-backed OCR engine.
func NewTesseractEngine(opts ...Option) *TesseractEngine {
	e := &TesseractEngine{clientFactory: gosseract.NewClient}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *TesseractEngine) Name() string { return "tesseract" }

// Recognize reads one receipt image.
func (e *TesseractEngine) Recognize(ctx context.Context, in ocr.Input) (ocr.Result, error) {
	c := e.clientFactory()
	defer c.Close()
	return e.recognizeWithClient(ctx, c, in)
}

// RecognizeBatch processes inputs sequentially with a fresh client each, so
// variables set for one receipt never carry over to the next.
func (e *TesseractEngine) RecognizeBatch(ctx context.Context, inputs []ocr.Input) ([]ocr.Result, error) {
	results := make([]ocr.Result, 0, len(inputs))
	for _, in := range inputs {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		res, err := e.Recognize(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("recognize %s: %w", in.ID, err)
		}
		results = append(results, res)
	}
	return results, nil
}

func (e *TesseractEngine) recognizeWithClient(ctx context.Context, c *gosseract.Client, in ocr.Input) (ocr.Result, error) {
	if err := ctx.Err(); err != nil {
		return ocr.Result{}, err
	}
	data, offset, err := crop(in.Image, in.Crop)
	if err != nil {
		return ocr.Result{}, err
	}
	if err := c.SetImageFromBytes(data); err != nil {
		return ocr.Result{}, fmt.Errorf("set image: %w", err)
	}
	langs := in.Languages
	if len(langs) == 0 {
		langs = e.languages
	}
	if len(langs) > 0 {
		if err := c.SetLanguage(langs...); err != nil {
			return ocr.Result{}, fmt.Errorf("set languages: %w", err)
		}
	}
	if in.DPI > 0 {
		if err := c.SetVariable("user_defined_dpi", strconv.Itoa(in.DPI)); err != nil {
			return ocr.Result{}, fmt.Errorf("set dpi: %w", err)
		}
	}
	for k, v := range in.Variables {
		if err := c.SetVariable(gosseract.SettableVariable(k), v); err != nil {
			return ocr.Result{}, fmt.Errorf("set variable %s: %w", k, err)
		}
	}

	text, err := c.Text()
	if err != nil {
		return ocr.Result{}, fmt.Errorf("recognize text: %w", err)
	}
	lineBoxes, err := c.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		return ocr.Result{}, fmt.Errorf("line boxes: %w", err)
	}
	wordBoxes, err := c.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return ocr.Result{}, fmt.Errorf("word boxes: %w", err)
	}
	lines := buildLines(lineBoxes, wordBoxes, offset)

	return ocr.Result{
		InputID:    in.ID,
		Text:       strings.TrimSpace(text),
		Lines:      lines,
		Language:   firstLanguage(langs),
		Confidence: meanConfidence(lines),
	}, nil
}

// buildLines turns gosseract boxes into receipt rows. Each word joins the
// first line containing its center; boxes are shifted by offset so they refer
// to the uncropped image. Confidences are rescaled from 0–100 to 0–1.
func buildLines(lineBoxes, wordBoxes []gosseract.BoundingBox, offset image.Point) []ocr.Line {
	lines := make([]ocr.Line, 0, len(lineBoxes))
	for _, b := range lineBoxes {
		lines = append(lines, ocr.Line{
			Text:       strings.TrimSpace(b.Word),
			Box:        b.Box.Add(offset),
			Confidence: b.Confidence / 100,
		})
	}
	for _, b := range wordBoxes {
		w := ocr.Word{
			Text:       b.Word,
			Box:        b.Box.Add(offset),
			Confidence: b.Confidence / 100,
		}
		center := image.Pt((w.Box.Min.X+w.Box.Max.X)/2, (w.Box.Min.Y+w.Box.Max.Y)/2)
		for i := range lines {
			if center.In(lines[i].Box) {
				lines[i].Words = append(lines[i].Words, w)
				break
			}
		}
	}
	return lines
}

// meanConfidence averages word confidences, falling back to line
// confidences for lines without word boxes.
func meanConfidence(lines []ocr.Line) float64 {
	var sum float64
	var n int
	for _, l := range lines {
		if len(l.Words) == 0 {
			sum += l.Confidence
			n++
			continue
		}
		for _, w := range l.Words {
			sum += w.Confidence
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func firstLanguage(langs []string) string {
	if len(langs) == 0 {
		return ""
	}
	return langs[0]
}

// crop returns the payload restricted to r, re-encoded as PNG, together with
// the origin of the cropped area.
func crop(data []byte, r image.Rectangle) ([]byte, image.Point, error) {
	if r.Empty() {
		return data, image.Point{}, nil
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, image.Point{}, fmt.Errorf("decode for crop: %w", err)
	}
	r = r.Intersect(img.Bounds())
	if r.Empty() {
		return nil, image.Point{}, fmt.Errorf("crop %v outside image bounds %v", r, img.Bounds())
	}
	sub, ok := img.(interface {
		SubImage(r image.Rectangle) image.Image
	})
	if !ok {
		return nil, image.Point{}, fmt.Errorf("image does not support sub-image")
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, sub.SubImage(r)); err != nil {
		return nil, image.Point{}, fmt.Errorf("encode cropped image: %w", err)
	}
	return buf.Bytes(), r.Min, nil
}
