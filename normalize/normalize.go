package normalize

import (
	"context"
	"fmt"
	"time"

	"github.com/wudi/receiptkit/frame"
	"github.com/wudi/receiptkit/observability"
	"github.com/wudi/receiptkit/surface"
)

// Quality is the JPEG quality factor of every normalized image.
const Quality = 0.9

// Normalizer stages, thresholds and encodes frames. The zero value is not
// usable; construct with New.
type Normalizer struct {
	backend surface.Backend
	logger  observability.Logger
	tracer  observability.Tracer
	metrics *observability.Metrics
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithBackend replaces the in-memory raster backend.
func WithBackend(b surface.Backend) Option {
	return func(n *Normalizer) {
		if b != nil {
			n.backend = b
		}
	}
}

func WithLogger(l observability.Logger) Option {
	return func(n *Normalizer) {
		if l != nil {
			n.logger = l
		}
	}
}

func WithTracer(t observability.Tracer) Option {
	return func(n *Normalizer) {
		if t != nil {
			n.tracer = t
		}
	}
}

func WithMetrics(m *observability.Metrics) Option {
	return func(n *Normalizer) { n.metrics = m }
}

// New builds a Normalizer backed by surface.Raster with default limits.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{
		backend: surface.NewRaster(surface.Limits{}),
		logger:  observability.NopLogger{},
		tracer:  observability.NopTracer(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

var defaultNormalizer = New()

// Normalize runs src through the default Normalizer.
func Normalize(ctx context.Context, src frame.Frame) (EncodedImage, error) {
	return defaultNormalizer.Normalize(ctx, src)
}

// Normalize converts src into a thresholded JPEG of the same native size.
// Any failure aborts the call; no partial image is returned. The context is
// only consulted before work starts.
func (n *Normalizer) Normalize(ctx context.Context, src frame.Frame) (EncodedImage, error) {
	if err := ctx.Err(); err != nil {
		return EncodedImage{}, err
	}
	_, span := n.tracer.StartSpan(ctx, "normalize")
	defer span.Finish()
	start := time.Now()

	out, err := n.run(src)
	if err != nil {
		span.SetError(err)
		kind, _ := KindOf(err)
		n.metrics.NormalizeFailed(kind.String())
		n.logger.Warn("normalize failed", observability.String("kind", kind.String()), observability.Error("error", err))
		return EncodedImage{}, err
	}

	elapsed := time.Since(start)
	span.SetTag("width", out.Width)
	span.SetTag("height", out.Height)
	n.metrics.ObserveNormalize(elapsed, out.Width*out.Height)
	n.logger.Debug("frame normalized",
		observability.String("source", src.Kind().String()),
		observability.Int("width", out.Width),
		observability.Int("height", out.Height),
		observability.Int("bytes", len(out.Data)),
		observability.Duration("elapsed", elapsed),
	)
	return out, nil
}

func (n *Normalizer) run(src frame.Frame) (EncodedImage, error) {
	if src == nil {
		return EncodedImage{}, &Error{Kind: KindSourceRead, Op: "dimensions", Err: frame.ErrNotDecoded}
	}
	width, height, err := src.Dimensions()
	if err != nil {
		return EncodedImage{}, &Error{Kind: KindSourceRead, Op: "dimensions", Err: err}
	}
	img, err := src.Image()
	if err != nil {
		return EncodedImage{}, &Error{Kind: KindSourceRead, Op: "read pixels", Err: err}
	}
	// A live source may change resolution between the two reads.
	if b := img.Bounds(); b.Dx() != width || b.Dy() != height {
		return EncodedImage{}, &Error{
			Kind: KindSourceRead,
			Op:   "read pixels",
			Err:  fmt.Errorf("frame is %dx%d, source reported %dx%d", b.Dx(), b.Dy(), width, height),
		}
	}

	s, err := n.backend.Acquire(width, height)
	if err != nil {
		return EncodedImage{}, &Error{Kind: KindAcquisition, Op: "acquire surface", Err: err}
	}
	if err := n.backend.Draw(s, img); err != nil {
		return EncodedImage{}, &Error{Kind: KindAcquisition, Op: "draw", Err: err}
	}
	buf, err := n.backend.ReadPixels(s)
	if err != nil {
		return EncodedImage{}, &Error{Kind: KindAcquisition, Op: "read surface", Err: err}
	}

	Transform(buf)

	if err := n.backend.WritePixels(s, buf); err != nil {
		return EncodedImage{}, &Error{Kind: KindAcquisition, Op: "write surface", Err: err}
	}
	data, err := n.backend.Encode(s, surface.FormatJPEG, Quality)
	if err != nil {
		return EncodedImage{}, &Error{Kind: KindEncoding, Op: "encode", Err: err}
	}
	return EncodedImage{Format: surface.FormatJPEG, Width: width, Height: height, Data: data}, nil
}
