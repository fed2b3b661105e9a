// Package media normalises the images attached to menu items.
package media

import (
	"bytes"
	"encoding/base64"
	"errors"
	"strings"

	"github.com/Lixing-Zhang/restaurant-pos/internal/models"
	"github.com/disintegration/imaging"
)

var ErrInvalidImage = errors.New("image is not a valid data URL")

const (
	DefaultSize = 256

	dataPrefix = "data:image/"
	b64Marker  = ";base64,"
)

// Thumbnailer shrinks uploaded pictures. Emoji and URLs are kept as given.
type Thumbnailer struct {
	size int
}

func NewThumbnailer(size int) *Thumbnailer {
	if size <= 0 {
		size = DefaultSize
	}
	return &Thumbnailer{size: size}
}

// Normalize returns the image a menu item should store.
// Data URLs are decoded, fitted inside size x size and re-encoded as JPEG.
func (t *Thumbnailer) Normalize(image string) (string, error) {
	image = strings.TrimSpace(image)
	if image == "" {
		return models.PlaceholderImage, nil
	}
	if !strings.HasPrefix(image, dataPrefix) {
		return image, nil
	}

	idx := strings.Index(image, b64Marker)
	if idx < 0 {
		return "", ErrInvalidImage
	}
	raw, err := base64.StdEncoding.DecodeString(image[idx+len(b64Marker):])
	if err != nil {
		return "", ErrInvalidImage
	}

	img, err := imaging.Decode(bytes.NewReader(raw))
	if err != nil {
		return "", ErrInvalidImage
	}

	b := img.Bounds()
	if b.Dx() > t.size || b.Dy() > t.size {
		img = imaging.Fit(img, t.size, t.size, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return "", err
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
