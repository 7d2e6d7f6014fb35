package ocr

import "strconv"

// Page segmentation modes that suit receipts. See
// https://tesseract-ocr.github.io/tessdoc/ImproveQuality.html#page-segmentation-method.
const (
	PSMSingleColumn = 4
	PSMUniformBlock = 6
)

// WithTesseractVariable sets a raw Tesseract variable on the input.
func WithTesseractVariable(name, value string) InputOption {
	return func(in *Input) {
		if in.Variables == nil {
			in.Variables = make(map[string]string)
		}
		in.Variables[name] = value
	}
}

// WithTesseractPSM sets the page segmentation mode. Zero leaves the engine default.
func WithTesseractPSM(mode int) InputOption {
	if mode == 0 {
		return func(*Input) {}
	}
	return WithTesseractVariable("tessedit_pageseg_mode", strconv.Itoa(mode))
}

// WithTesseractWhitelist restricts recognition to the provided characters.
func WithTesseractWhitelist(chars string) InputOption {
	if chars == "" {
		return func(*Input) {}
	}
	return WithTesseractVariable("tessedit_char_whitelist", chars)
}
