// Package media handles binary assets attached to recipes: uploaded photos
// are decoded, auto-oriented, downscaled and re-encoded as JPEG, and share
// links are rendered as QR codes.
package media

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/disintegration/imaging"
)

// MIMEJPEG is the content type of every normalized image.
const MIMEJPEG = "image/jpeg"

// ErrInvalidImage is returned when the upload cannot be decoded as an image.
var ErrInvalidImage = errors.New("invalid image")

// Normalizer re-encodes uploaded images. The zero value keeps the original
// width and uses JPEG quality 85.
type Normalizer struct {
	// MaxWidth caps the output width; taller-than-wide images are scaled by
	// width too, keeping aspect ratio. 0 disables resizing.
	MaxWidth int
	// Quality is the JPEG quality in [1,100].
	Quality int
}

// Normalize decodes r (JPEG, PNG, GIF, BMP or TIFF), applies the EXIF
// orientation, shrinks it to MaxWidth when wider, and returns JPEG bytes
// together with their MIME type.
func (n Normalizer) Normalize(r io.Reader) ([]byte, string, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	if n.MaxWidth > 0 && img.Bounds().Dx() > n.MaxWidth {
		img = imaging.Resize(img, n.MaxWidth, 0, imaging.Lanczos)
	}

	q := n.Quality
	if q <= 0 || q > 100 {
		q = 85
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(q)); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), MIMEJPEG, nil
}
