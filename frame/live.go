package frame

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"sync"
	"sync/atomic"
	"time"
)

// CapturedFrame is one JPEG-encoded frame delivered by a camera.
type CapturedFrame struct {
	Data      []byte
	Width     int
	Height    int
	Timestamp time.Time
	// Seq is assigned by LiveFeed.Publish.
	Seq uint64
}

// LiveFeed is a VideoSource that keeps only the latest published frame.
// Publishing never blocks; a frame that was never read is counted as dropped.
//
// Frames are shared by reference: publishers must not modify Data after
// Publish.
type LiveFeed struct {
	mu     sync.Mutex
	latest *CapturedFrame
	read   bool
	seq    uint64
	drops  uint64
}

// NewLiveFeed returns an empty feed. Until the first Publish it reports a zero
// intrinsic size.
func NewLiveFeed() *LiveFeed {
	return &LiveFeed{}
}

// Publish replaces the current frame and returns its sequence number.
func (f *LiveFeed) Publish(cf CapturedFrame) uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.latest != nil && !f.read {
		atomic.AddUint64(&f.drops, 1)
	}
	f.seq++
	cf.Seq = f.seq
	if cf.Timestamp.IsZero() {
		cf.Timestamp = time.Now()
	}
	f.latest = &cf
	f.read = false
	return cf.Seq
}

// Latest returns the current frame without decoding it.
func (f *LiveFeed) Latest() (CapturedFrame, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.latest == nil {
		return CapturedFrame{}, false
	}
	return *f.latest, true
}

// Drops reports how many frames were overwritten before being read.
func (f *LiveFeed) Drops() uint64 {
	return atomic.LoadUint64(&f.drops)
}

func (f *LiveFeed) VideoSize() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.latest == nil {
		return 0, 0
	}
	return f.latest.Width, f.latest.Height
}

func (f *LiveFeed) CurrentFrame() (image.Image, error) {
	f.mu.Lock()
	cf := f.latest
	f.read = true
	f.mu.Unlock()
	if cf == nil {
		return nil, ErrNoFrame
	}
	img, err := jpeg.Decode(bytes.NewReader(cf.Data))
	if err != nil {
		return nil, fmt.Errorf("decode frame %d: %w", cf.Seq, err)
	}
	return img, nil
}
