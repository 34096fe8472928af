package imagefile

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/moffa90/go-ov7670/rgb565"
)

// Format is an output image encoding.
type Format int

const (
	PNG Format = iota
	JPEG
	BMP
	TIFF
)

// DefaultJPEGQuality is used when no quality option is given.
const DefaultJPEGQuality = 90

var formatNames = []string{"png", "jpeg", "bmp", "tiff"}

func (f Format) String() string {
	if f >= 0 && int(f) < len(formatNames) {
		return formatNames[f]
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// ContentType returns the MIME type of the encoding.
func (f Format) ContentType() string {
	return "image/" + f.String()
}

// ParseFormat looks up a format by name or extension, with or without the
// leading dot.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(name, ".")) {
	case "png":
		return PNG, nil
	case "jpg", "jpeg":
		return JPEG, nil
	case "bmp":
		return BMP, nil
	case "tif", "tiff":
		return TIFF, nil
	}
	return 0, fmt.Errorf("unsupported image format %q (use png, jpeg, bmp or tiff)", name)
}

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return 0, fmt.Errorf("no file extension in %q", path)
	}
	return ParseFormat(ext)
}

type config struct {
	jpegQuality int
}

// Option tunes encoding.
type Option func(*config)

// WithJPEGQuality sets the JPEG quality (1 to 100).
func WithJPEGQuality(q int) Option {
	return func(c *config) {
		if q >= 1 && q <= 100 {
			c.jpegQuality = q
		}
	}
}

// Encode writes img to w in the given format.
func Encode(w io.Writer, img image.Image, format Format, opts ...Option) error {
	cfg := config{jpegQuality: DefaultJPEGQuality}
	for _, opt := range opts {
		opt(&cfg)
	}

	// every encoder has an *image.RGBA fast path; the generic At path
	// allocates a color per pixel
	if m, ok := img.(*rgb565.Image); ok {
		img = m.ToRGBA()
	}

	var err error
	switch format {
	case PNG:
		err = png.Encode(w, img)
	case JPEG:
		err = jpeg.Encode(w, img, &jpeg.Options{Quality: cfg.jpegQuality})
	case BMP:
		err = bmp.Encode(w, img)
	case TIFF:
		err = tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		return fmt.Errorf("unsupported image format %v", format)
	}
	if err != nil {
		return fmt.Errorf("encode %s: %w", format, err)
	}
	return nil
}

// Save writes img to path, choosing the encoding from the extension.
//
// Example:
//
//	img, err := cam.Capture(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = imagefile.Save(imagefile.DefaultFilename(cam.FrameSpec().String(), time.Now()), img)
func Save(path string, img image.Image, opts ...Option) (err error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close file: %w", cerr)
		}
	}()

	return Encode(f, img, format, opts...)
}

// DefaultFilename returns "capture_<resolution>_<unix seconds>.png".
func DefaultFilename(resolution string, t time.Time) string {
	return fmt.Sprintf("capture_%s_%d.png", resolution, t.Unix())
}
