// Package ocr defines the abstraction layer for plugging OCR engines (for
// example, Tesseract or cloud services) behind the receipt normalizer. An
// engine accepts an encoded still image and returns recognized text with a
// confidence score. The interfaces are small and transport-agnostic so engines
// can be backed by local binaries, native libraries, or remote APIs.
package ocr
