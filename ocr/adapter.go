package ocr

import (
	"image"

	"github.com/google/uuid"

	"github.com/wudi/receiptkit/normalize"
)

// InputOption mutates an OCR input generated from a normalized image.
type InputOption func(*Input)

// WithID overrides the generated input identifier.
func WithID(id string) InputOption {
	return func(in *Input) {
		if id != "" {
			in.ID = id
		}
	}
}

func WithLanguages(langs ...string) InputOption {
	return func(in *Input) { in.Languages = append([]string(nil), langs...) }
}

// WithCrop restricts recognition to r. An empty rectangle clears the crop.
func WithCrop(r image.Rectangle) InputOption {
	r = r.Canon()
	return func(in *Input) {
		if r.Empty() {
			in.Crop = image.Rectangle{}
			return
		}
		in.Crop = r
	}
}

func WithDPI(dpi int) InputOption {
	return func(in *Input) { in.DPI = dpi }
}

// WithVariables replaces the engine variables with a copy of vars.
func WithVariables(vars map[string]string) InputOption {
	return func(in *Input) {
		if len(vars) == 0 {
			in.Variables = nil
			return
		}
		in.Variables = make(map[string]string, len(vars))
		for k, v := range vars {
			in.Variables[k] = v
		}
	}
}

// InputFromEncoded wraps a normalized image as an OCR input. The payload is
// shared, not copied. Each input gets a random ID unless WithID is given.
func InputFromEncoded(img normalize.EncodedImage, opts ...InputOption) Input {
	in := Input{
		ID:     uuid.NewString(),
		Image:  img.Data,
		Format: img.Format,
	}
	for _, opt := range opts {
		opt(&in)
	}
	return in
}
