package ocr

import (
	"context"
	"errors"
	"image"
	"reflect"
	"testing"

	"github.com/wudi/receiptkit/normalize"
	"github.com/wudi/receiptkit/surface"
)

func TestInputFromEncoded(t *testing.T) {
	img := normalize.EncodedImage{Format: surface.FormatJPEG, Width: 1, Height: 1, Data: []byte{0xff, 0xd8, 0xff}}
	crop := image.Rect(0, 0, 1, 1)
	vars := map[string]string{"tessedit_pageseg_mode": "6"}

	in := InputFromEncoded(
		img,
		WithLanguages("eng", "kor"),
		WithCrop(crop),
		WithDPI(300),
		WithVariables(vars),
	)
	if in.Format != surface.FormatJPEG {
		t.Fatalf("unexpected format: %v", in.Format)
	}
	if in.ID == "" {
		t.Fatalf("expected generated id")
	}
	if len(in.Image) != 3 {
		t.Fatalf("expected encoded image data")
	}
	if !reflect.DeepEqual(in.Languages, []string{"eng", "kor"}) {
		t.Fatalf("unexpected languages: %+v", in.Languages)
	}
	if in.Crop != crop {
		t.Fatalf("unexpected crop: %v", in.Crop)
	}
	if in.DPI != 300 {
		t.Fatalf("unexpected dpi: %d", in.DPI)
	}
	vars["tessedit_pageseg_mode"] = "7"
	if in.Variables["tessedit_pageseg_mode"] != "6" {
		t.Fatalf("variables were not copied: %+v", in.Variables)
	}

	other := InputFromEncoded(img)
	if other.ID == in.ID {
		t.Fatalf("expected unique ids, both %q", in.ID)
	}
	if got := InputFromEncoded(img, WithID("receipt-1")).ID; got != "receipt-1" {
		t.Fatalf("WithID not applied: %q", got)
	}
}

func TestWithCrop(t *testing.T) {
	in := Input{}
	WithCrop(image.Rectangle{Min: image.Pt(8, 6), Max: image.Pt(2, 1)})(&in)
	if want := image.Rect(2, 1, 8, 6); in.Crop != want {
		t.Fatalf("expected canonical crop %v, got %v", want, in.Crop)
	}
	WithCrop(image.Rectangle{})(&in)
	if in.Crop != (image.Rectangle{}) {
		t.Fatalf("expected cleared crop, got %v", in.Crop)
	}
}

type countingEngine struct {
	calls int
	err   error
}

func (c *countingEngine) Name() string { return "counting" }

func (c *countingEngine) Recognize(_ context.Context, in Input) (Result, error) {
	c.calls++
	if c.err != nil {
		return Result{}, c.err
	}
	return Result{InputID: in.ID, Text: "TOTAL 12.00", Confidence: 0.8}, nil
}

type batchEngine struct {
	countingEngine
	batches int
	short   bool
}

func (b *batchEngine) RecognizeBatch(_ context.Context, inputs []Input) ([]Result, error) {
	b.batches++
	if b.short {
		return nil, nil
	}
	out := make([]Result, len(inputs))
	for i, in := range inputs {
		out[i] = Result{InputID: in.ID}
	}
	return out, nil
}

func TestRecognizeSequential(t *testing.T) {
	eng := &countingEngine{}
	res, err := Recognize(context.Background(), eng, []Input{{ID: "a"}, {ID: "b"}})
	if err != nil {
		t.Fatalf("Recognize() error = %v", err)
	}
	if eng.calls != 2 || len(res) != 2 || res[1].InputID != "b" {
		t.Fatalf("unexpected results %+v after %d calls", res, eng.calls)
	}
}

func TestRecognizePrefersBatch(t *testing.T) {
	eng := &batchEngine{}
	if _, err := Recognize(context.Background(), eng, []Input{{ID: "a"}, {ID: "b"}}); err != nil {
		t.Fatalf("Recognize() error = %v", err)
	}
	if eng.batches != 1 || eng.calls != 0 {
		t.Fatalf("expected one batch call, got batches=%d calls=%d", eng.batches, eng.calls)
	}
}

func TestRecognizeRejectsShortBatch(t *testing.T) {
	if _, err := Recognize(context.Background(), &batchEngine{short: true}, []Input{{ID: "a"}}); err == nil {
		t.Fatalf("expected error for missing batch results")
	}
}

func TestRecognizeWrapsEngineError(t *testing.T) {
	boom := errors.New("engine down")
	_, err := Recognize(context.Background(), &countingEngine{err: boom}, []Input{{ID: "x"}})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped engine error, got %v", err)
	}
}

func TestRecognizeHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	eng := &countingEngine{}
	if _, err := Recognize(ctx, eng, []Input{{ID: "x"}}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if eng.calls != 0 {
		t.Fatalf("engine should not be called after cancellation")
	}
}

func TestDefaultEngine(t *testing.T) {
	prev := DefaultEngine()
	defer SetDefaultEngine(prev)

	SetDefaultEngine(nil)
	if DefaultEngine().Name() != "noop" {
		t.Fatalf("nil engine should reset to noop, got %s", DefaultEngine().Name())
	}
	eng := &countingEngine{}
	SetDefaultEngine(eng)
	if _, err := Recognize(context.Background(), nil, []Input{{ID: "a"}}); err != nil {
		t.Fatalf("Recognize() error = %v", err)
	}
	if eng.calls != 1 {
		t.Fatalf("nil engine argument should use the default")
	}
}
