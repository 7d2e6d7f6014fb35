// Package normalize prepares receipt frames for OCR.
//
// A frame is staged on a surface at its native size, every pixel is reduced to
// perceptual luminance (0.299R + 0.587G + 0.114B) and passed through a soft
// three-band threshold: luminance above 180 becomes white, below 80 becomes
// black, and everything in between is kept as-is so faint strokes survive. The
// result is written back to the surface and encoded as JPEG at quality 0.9.
//
// Each call owns its surface and pixel buffer, so a Normalizer can be used
// from many goroutines at once.
package normalize
