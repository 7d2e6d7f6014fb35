package receipt

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wudi/receiptkit/frame"
	"github.com/wudi/receiptkit/normalize"
	"github.com/wudi/receiptkit/observability"
	"github.com/wudi/receiptkit/ocr"
)

// ErrRecognition wraps failures of the OCR engine.
var ErrRecognition = errors.New("text recognition failed")

// Receipt is the outcome of one scan.
type Receipt struct {
	ID         string
	Total      *decimal.Decimal
	Confidence float64
	Text       string
	Image      normalize.EncodedImage
}

// Scanner normalizes a frame, recognizes its text and records the result in
// a Store.
type Scanner struct {
	store      *Store
	normalizer *normalize.Normalizer
	engine     ocr.Engine
	inputOpts  []ocr.InputOption
	logger     observability.Logger
	tracer     observability.Tracer
	metrics    *observability.Metrics
}

// ScannerOption configures a Scanner.
type ScannerOption func(*Scanner)

func WithNormalizer(n *normalize.Normalizer) ScannerOption {
	return func(s *Scanner) {
		if n != nil {
			s.normalizer = n
		}
	}
}

// WithEngine selects the OCR engine. Without it ocr.DefaultEngine is used at
// scan time.
func WithEngine(e ocr.Engine) ScannerOption {
	return func(s *Scanner) { s.engine = e }
}

// WithInputOptions adds options applied to every OCR input.
func WithInputOptions(opts ...ocr.InputOption) ScannerOption {
	return func(s *Scanner) { s.inputOpts = append(s.inputOpts, opts...) }
}

func WithLogger(l observability.Logger) ScannerOption {
	return func(s *Scanner) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithTracer(t observability.Tracer) ScannerOption {
	return func(s *Scanner) {
		if t != nil {
			s.tracer = t
		}
	}
}

func WithMetrics(m *observability.Metrics) ScannerOption {
	return func(s *Scanner) { s.metrics = m }
}

// NewScanner returns a Scanner that writes into store.
func NewScanner(store *Store, opts ...ScannerOption) *Scanner {
	s := &Scanner{
		store:  store,
		logger: observability.NopLogger{},
		tracer: observability.NopTracer(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.normalizer == nil {
		s.normalizer = normalize.New(normalize.WithLogger(s.logger), normalize.WithTracer(s.tracer), normalize.WithMetrics(s.metrics))
	}
	return s
}

// Store returns the store the scanner writes to.
func (s *Scanner) Store() *Store { return s.store }

// Scan runs the full pipeline on f. The store is only updated when every step
// succeeds; a receipt without a recognizable total clears the stored total.
func (s *Scanner) Scan(ctx context.Context, f frame.Frame) (Receipt, error) {
	ctx, span := s.tracer.StartSpan(ctx, "receipt.scan")
	defer span.Finish()

	rec, err := s.scan(ctx, f)
	if err != nil {
		span.SetError(err)
		s.metrics.Scan("failed")
		return Receipt{}, err
	}
	if rec.Total != nil {
		s.store.SetReceiptData(*rec.Total, rec.Confidence, rec.Text)
		s.metrics.Scan("total")
	} else {
		s.store.SetReceiptText(rec.Confidence, rec.Text)
		s.metrics.Scan("no_total")
	}
	return rec, nil
}

func (s *Scanner) scan(ctx context.Context, f frame.Frame) (Receipt, error) {
	img, err := s.normalizer.Normalize(ctx, f)
	if err != nil {
		return Receipt{}, err
	}

	engine := s.engine
	if engine == nil {
		engine = ocr.DefaultEngine()
	}
	id := uuid.NewString()
	in := ocr.InputFromEncoded(img, append(append([]ocr.InputOption(nil), s.inputOpts...), ocr.WithID(id))...)

	start := time.Now()
	results, err := ocr.Recognize(ctx, engine, []ocr.Input{in})
	s.metrics.ObserveOCR(engine.Name(), time.Since(start))
	if err != nil {
		return Receipt{}, fmt.Errorf("%w: %s: %w", ErrRecognition, engine.Name(), err)
	}
	if len(results) != 1 {
		return Receipt{}, fmt.Errorf("%w: %s returned %d results", ErrRecognition, engine.Name(), len(results))
	}
	res := results[0]

	rec := Receipt{
		ID:         id,
		Confidence: clampConfidence(res.Confidence),
		Text:       res.Text,
		Image:      img,
	}
	if total, ok := ExtractTotal(res.Text); ok {
		rec.Total = &total
	}
	fields := []observability.Field{
		observability.String("id", id),
		observability.String("engine", engine.Name()),
		observability.Float64("confidence", rec.Confidence),
		observability.Bool("has_total", rec.Total != nil),
	}
	if rec.Total != nil {
		fields = append(fields, observability.String("total", rec.Total.String()))
	}
	s.logger.Info("receipt scanned", fields...)
	return rec, nil
}

func clampConfidence(c float64) float64 {
	switch {
	case c < 0:
		return 0
	case c > 1:
		return 1
	default:
		return c
	}
}
