package pipeline

import (
	"encoding/base64"
	"errors"
	"fmt"
	"html/template"

	qrcode "github.com/skip2/go-qrcode"
)

// ErrQREncode indicates the QR payload could not be encoded.
var ErrQREncode = errors.New("QR code encoding failed")

// DefaultQRSize is the QR image edge in px before device scaling.
const DefaultQRSize = 256

// QRDataURI encodes content as a PNG QR code and returns it as a data URI
// usable in an <img src>. size is the image edge in px.
func QRDataURI(content string, size int) (template.URL, error) {
	if content == "" {
		return "", fmt.Errorf("%w: empty content", ErrQREncode)
	}
	if size <= 0 {
		size = DefaultQRSize
	}

	png, err := qrcode.Encode(content, qrcode.Medium, size)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrQREncode, err)
	}

	// #nosec G203 -- data URI built from our own PNG bytes
	return template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(png)), nil
}
