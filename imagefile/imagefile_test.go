package imagefile

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/moffa90/go-ov7670/rgb565"
)

func testImage() *rgb565.Image {
	img := rgb565.NewImage(4, 3)
	img.SetRGB(0, 0, rgb565.RGB{R: 255})
	img.SetRGB(3, 2, rgb565.RGB{G: 255, B: 255})
	return img
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"png", PNG, false},
		{".PNG", PNG, false},
		{"jpg", JPEG, false},
		{"jpeg", JPEG, false},
		{".bmp", BMP, false},
		{"tif", TIFF, false},
		{"tiff", TIFF, false},
		{"gif", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	src := testImage()

	decoders := map[Format]func(*bytes.Reader) (image.Image, error){
		PNG:  func(r *bytes.Reader) (image.Image, error) { return png.Decode(r) },
		BMP:  func(r *bytes.Reader) (image.Image, error) { return bmp.Decode(r) },
		TIFF: func(r *bytes.Reader) (image.Image, error) { return tiff.Decode(r) },
	}

	for format, decode := range decoders {
		t.Run(format.String(), func(t *testing.T) {
			var buf bytes.Buffer
			if err := Encode(&buf, src, format); err != nil {
				t.Fatalf("Encode() error: %v", err)
			}

			got, err := decode(bytes.NewReader(buf.Bytes()))
			if err != nil {
				t.Fatalf("decode error: %v", err)
			}
			if got.Bounds() != src.Bounds() {
				t.Fatalf("bounds = %v, want %v", got.Bounds(), src.Bounds())
			}

			// lossless formats keep every pixel
			for _, pt := range []image.Point{{0, 0}, {3, 2}, {1, 1}} {
				r1, g1, b1, _ := got.At(pt.X, pt.Y).RGBA()
				r2, g2, b2, _ := src.At(pt.X, pt.Y).RGBA()
				if r1>>8 != r2>>8 || g1>>8 != g2>>8 || b1>>8 != b2>>8 {
					t.Errorf("pixel %v differs", pt)
				}
			}
		})
	}
}

// opaqueImage hides the concrete type so Encode takes the generic path.
type opaqueImage struct {
	image.Image
}

func TestEncodeDecodedFrameMatchesGenericPath(t *testing.T) {
	src := rgb565.NewImage(17, 9)
	for y := 0; y < 9; y++ {
		for x := 0; x < 17; x++ {
			src.SetRGB(x, y, rgb565.RGB{R: uint8(x * 15), G: uint8(y * 28), B: uint8(x + y)})
		}
	}

	for _, format := range []Format{PNG, BMP, TIFF} {
		t.Run(format.String(), func(t *testing.T) {
			var fast, generic bytes.Buffer
			if err := Encode(&fast, src, format); err != nil {
				t.Fatalf("Encode() error: %v", err)
			}
			if err := Encode(&generic, opaqueImage{src}, format); err != nil {
				t.Fatalf("Encode() generic error: %v", err)
			}

			a, _, err := image.Decode(bytes.NewReader(fast.Bytes()))
			if err != nil {
				t.Fatalf("decode error: %v", err)
			}
			b, _, err := image.Decode(bytes.NewReader(generic.Bytes()))
			if err != nil {
				t.Fatalf("decode generic error: %v", err)
			}

			for y := 0; y < 9; y++ {
				for x := 0; x < 17; x++ {
					r1, g1, b1, a1 := a.At(x, y).RGBA()
					r2, g2, b2, a2 := b.At(x, y).RGBA()
					if r1 != r2 || g1 != g2 || b1 != b2 || a1 != a2 {
						t.Fatalf("pixel (%d,%d) differs: %v vs %v", x, y, a.At(x, y), b.At(x, y))
					}
				}
			}
		})
	}
}

func TestEncodeJPEG(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, testImage(), JPEG, WithJPEGQuality(50)); err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	cfg, err := jpeg.DecodeConfig(&buf)
	if err != nil {
		t.Fatalf("not a JPEG: %v", err)
	}
	if cfg.Width != 4 || cfg.Height != 3 {
		t.Errorf("size = %dx%d, want 4x3", cfg.Width, cfg.Height)
	}
}

func TestEncodeUnknownFormat(t *testing.T) {
	if err := Encode(&bytes.Buffer{}, testImage(), Format(42)); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestSave(t *testing.T) {
	dir := t.TempDir()

	for _, name := range []string{"a.png", "b.jpg", "c.bmp", "d.tiff"} {
		path := filepath.Join(dir, name)
		if err := Save(path, testImage()); err != nil {
			t.Fatalf("Save(%s) error: %v", name, err)
		}
		info, err := os.Stat(path)
		if err != nil || info.Size() == 0 {
			t.Errorf("%s not written", name)
		}
	}

	if err := Save(filepath.Join(dir, "noext"), testImage()); err == nil {
		t.Error("expected error for missing extension")
	}
	if err := Save(filepath.Join(dir, "x.gif"), testImage()); err == nil {
		t.Error("expected error for unsupported extension")
	}
}

func TestDefaultFilename(t *testing.T) {
	got := DefaultFilename("320x240", time.Unix(1700000000, 0))
	if got != "capture_320x240_1700000000.png" {
		t.Errorf("DefaultFilename() = %q", got)
	}
	if !strings.HasSuffix(got, ".png") {
		t.Error("default format should be PNG")
	}
}

func TestContentType(t *testing.T) {
	if JPEG.ContentType() != "image/jpeg" {
		t.Errorf("JPEG.ContentType() = %q", JPEG.ContentType())
	}
}
