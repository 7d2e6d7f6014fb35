package frame

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/wudi/receiptkit/surface"
)

// ErrUnsupportedMedia is returned by Decode for payloads that are not a
// supported still image.
var ErrUnsupportedMedia = errors.New("unsupported media type")

var supportedMIME = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/bmp":  true,
	"image/tiff": true,
	"image/webp": true,
}

// DetectMIME sniffs the content type of an encoded payload.
func DetectMIME(data []byte) string {
	return mimetype.Detect(data).String()
}

// Supported reports whether mime names a format Decode accepts.
func Supported(mime string) bool {
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	return supportedMIME[strings.TrimSpace(mime)]
}

// Decode reads an encoded still image and wraps it as a Still.
func Decode(r io.Reader) (*Still, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	return DecodeBytes(data)
}

// DecodeBytes decodes an in-memory still image within the default surface
// limits.
func DecodeBytes(data []byte) (*Still, error) {
	return DecodeLimited(data, surface.Limits{})
}

// DecodeLimited decodes an in-memory still image. The header is checked
// against limits before any pixels are allocated.
func DecodeLimited(data []byte, limits surface.Limits) (*Still, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrNotDecoded)
	}
	if mime := DetectMIME(data); !Supported(mime) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMedia, mime)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotDecoded, err)
	}
	if err := limits.Check(cfg.Width, cfg.Height); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotDecoded, err)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotDecoded, err)
	}
	return NewStill(img), nil
}
