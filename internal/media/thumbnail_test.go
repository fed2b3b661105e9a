package media

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/Lixing-Zhang/restaurant-pos/internal/models"
)

func pngDataURL(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, h/2, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestNormalize_PassThrough(t *testing.T) {
	th := NewThumbnailer(0)

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty uses placeholder", "  ", models.PlaceholderImage},
		{"emoji", "🍔", "🍔"},
		{"url", "https://cdn.example.com/burger.jpg", "https://cdn.example.com/burger.jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := th.Normalize(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Normalize() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalize_ShrinksDataURL(t *testing.T) {
	th := NewThumbnailer(256)

	got, err := th.Normalize(pngDataURL(t, 600, 300))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(got, "data:image/jpeg;base64,") {
		t.Fatalf("expected jpeg data URL, got %.40s", got)
	}

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(got, "data:image/jpeg;base64,"))
	if err != nil {
		t.Fatalf("invalid base64: %v", err)
	}
	img, err := jpeg.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("invalid jpeg: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 256 || b.Dy() != 128 {
		t.Errorf("expected 256x128 thumbnail, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestNormalize_KeepsSmallImageSize(t *testing.T) {
	th := NewThumbnailer(256)

	got, err := th.Normalize(pngDataURL(t, 64, 32))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	raw, _ := base64.StdEncoding.DecodeString(strings.TrimPrefix(got, "data:image/jpeg;base64,"))
	img, err := jpeg.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("invalid jpeg: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 64 || b.Dy() != 32 {
		t.Errorf("expected 64x32, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestNormalize_RejectsBrokenDataURL(t *testing.T) {
	th := NewThumbnailer(256)

	for _, input := range []string{
		"data:image/png,notbase64",
		"data:image/png;base64,@@@",
		"data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("not an image")),
	} {
		if _, err := th.Normalize(input); !errors.Is(err, ErrInvalidImage) {
			t.Errorf("Normalize(%.30q) expected ErrInvalidImage, got %v", input, err)
		}
	}
}
