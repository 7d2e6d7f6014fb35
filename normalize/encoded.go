package normalize

import (
	"encoding/base64"

	"github.com/wudi/receiptkit/surface"
)

// EncodedImage is the self-contained output of a normalization.
type EncodedImage struct {
	Format surface.Format
	Width  int
	Height int
	Data   []byte
}

// MIMEType returns the content type of Data.
func (e EncodedImage) MIMEType() string { return string(e.Format) }

// DataURL renders the image as a base64 data URL.
func (e EncodedImage) DataURL() string {
	return "data:" + e.MIMEType() + ";base64," + base64.StdEncoding.EncodeToString(e.Data)
}
