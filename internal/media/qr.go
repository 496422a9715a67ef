package media

import (
	"errors"

	qrcode "github.com/skip2/go-qrcode"
)

// QRPNG renders content as a square PNG QR code of size pixels with medium
// error correction.
func QRPNG(content string, size int) ([]byte, error) {
	if content == "" {
		return nil, errors.New("qr: empty content")
	}
	if size <= 0 {
		size = 256
	}
	return qrcode.Encode(content, qrcode.Medium, size)
}
