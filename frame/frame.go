package frame

import (
	"errors"
	"fmt"
	"image"
)

// Kind tags the variant of a Frame.
type Kind int

const (
	KindStill Kind = iota + 1
	KindStream
)

func (k Kind) String() string {
	switch k {
	case KindStill:
		return "still"
	case KindStream:
		return "stream"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

var (
	// ErrNotDecoded is returned by a Still that holds no decoded image.
	ErrNotDecoded = errors.New("image not decoded")
	// ErrNoFrame is returned by a Stream that is not yet producing frames.
	ErrNoFrame = errors.New("stream has no frame")
)

// Frame is a read-only visual source. The only implementations are *Still and
// *Stream.
type Frame interface {
	Kind() Kind
	// Dimensions reports the native size of the source in pixels.
	Dimensions() (width, height int, err error)
	// Image returns the pixel content at native size.
	Image() (image.Image, error)

	sealed()
}

// Still is a decoded static image. Its natural size is the size of the
// decoded bitmap.
type Still struct {
	img image.Image
}

// NewStill wraps a decoded image.
func NewStill(img image.Image) *Still {
	return &Still{img: img}
}

func (s *Still) Kind() Kind { return KindStill }

func (s *Still) Dimensions() (int, int, error) {
	if s == nil || s.img == nil {
		return 0, 0, ErrNotDecoded
	}
	b := s.img.Bounds()
	if b.Empty() {
		return 0, 0, fmt.Errorf("%w: empty bounds %v", ErrNotDecoded, b)
	}
	return b.Dx(), b.Dy(), nil
}

func (s *Still) Image() (image.Image, error) {
	if s == nil || s.img == nil {
		return nil, ErrNotDecoded
	}
	return s.img, nil
}

func (*Still) sealed() {}

// VideoSource is a live stream that can report its intrinsic frame size and
// hand out the frame currently on display.
type VideoSource interface {
	VideoSize() (width, height int)
	CurrentFrame() (image.Image, error)
}

// Stream is the current frame of a live video source.
type Stream struct {
	src VideoSource
}

// NewStream wraps a live video source.
func NewStream(src VideoSource) *Stream {
	return &Stream{src: src}
}

func (s *Stream) Kind() Kind { return KindStream }

func (s *Stream) Dimensions() (int, int, error) {
	if s == nil || s.src == nil {
		return 0, 0, ErrNoFrame
	}
	w, h := s.src.VideoSize()
	if w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("%w: intrinsic size %dx%d", ErrNoFrame, w, h)
	}
	return w, h, nil
}

// Image returns the current frame. A frame whose size differs from the
// intrinsic size is rejected rather than scaled.
func (s *Stream) Image() (image.Image, error) {
	w, h, err := s.Dimensions()
	if err != nil {
		return nil, err
	}
	img, err := s.src.CurrentFrame()
	if err != nil {
		return nil, fmt.Errorf("read current frame: %w", err)
	}
	if img == nil {
		return nil, ErrNoFrame
	}
	if b := img.Bounds(); b.Dx() != w || b.Dy() != h {
		return nil, fmt.Errorf("current frame is %dx%d, stream reports %dx%d", b.Dx(), b.Dy(), w, h)
	}
	return img, nil
}

func (*Stream) sealed() {}
