// Package receipt holds the state extracted from a scanned receipt and the
// pipeline that produces it: normalize the frame, run OCR, pick the total.
package receipt

import (
	"sync"

	"github.com/shopspring/decimal"
)

// State is a point-in-time copy of a Store.
type State struct {
	// TotalAmount is nil until a total has been recognized.
	TotalAmount   *decimal.Decimal `json:"total_amount"`
	Confidence    float64          `json:"confidence"`
	ExtractedText string           `json:"extracted_text"`
}

// HasTotal reports whether a total amount is present.
func (s State) HasTotal() bool { return s.TotalAmount != nil }

// Store is the application's receipt state. It is created explicitly and
// passed to whoever needs it; there is no package-level instance.
type Store struct {
	mu    sync.RWMutex
	state State
}

// NewStore returns a Store in its reset state.
func NewStore() *Store {
	return &Store{}
}

// SetReceiptData records a recognized total along with the OCR output.
func (s *Store) SetReceiptData(amount decimal.Decimal, confidence float64, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = State{TotalAmount: &amount, Confidence: confidence, ExtractedText: text}
}

// SetReceiptText records OCR output for a receipt whose total could not be
// found. Any previous total is cleared.
func (s *Store) SetReceiptText(confidence float64, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = State{Confidence: confidence, ExtractedText: text}
}

// Reset clears the total, confidence and text.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = State{}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.state
	if out.TotalAmount != nil {
		v := *out.TotalAmount
		out.TotalAmount = &v
	}
	return out
}

// Total returns the recognized total, if any.
func (s *Store) Total() (decimal.Decimal, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.TotalAmount == nil {
		return decimal.Decimal{}, false
	}
	return *s.state.TotalAmount, true
}
