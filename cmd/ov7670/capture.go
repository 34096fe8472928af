package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/moffa90/go-ov7670/camera"
	"github.com/moffa90/go-ov7670/imagefile"
	"github.com/moffa90/go-ov7670/rgb565"
)

func init() {
	register(command{
		name:        "capture",
		description: "Capture still frames to image files",
		run:         runCapture,
	})
}

func runCapture(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("capture", flag.ContinueOnError)
	common := addCommonFlags(fs)
	output := fs.String("o", "", "Output file (.png, .jpg, .bmp, .tiff); default capture_<res>_<time>.png")
	count := fs.Int("n", 1, "Number of frames to capture")
	retries := fs.Int("retries", 3, "Extra attempts per frame after an incomplete frame")
	quality := fs.Int("quality", imagefile.DefaultJPEGQuality, "JPEG quality (1-100)")
	progress := fs.Bool("progress", false, "Show per-chunk progress")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *count < 1 {
		return fmt.Errorf("-n must be at least 1")
	}

	e, err := resolve(fs, common)
	if err != nil {
		return err
	}

	var opts []camera.Option
	if *progress {
		opts = append(opts, camera.WithProgressCallback(func(p camera.Progress) {
			fmt.Fprintf(os.Stderr, "\r  %6.2f%%  %d/%d bytes  %d chunks",
				p.Percentage, p.BytesReceived, p.BytesExpected, p.Chunks)
		}))
	}

	cam, err := e.openCamera(ctx, opts...)
	if err != nil {
		return err
	}
	defer cam.Close()

	base := *output
	if base == "" {
		base = filepath.Join(e.cfg.Output.Dir, imagefile.DefaultFilename(cam.FrameSpec().String(), time.Now()))
	}
	if _, err := imagefile.FormatFromPath(base); err != nil {
		return err
	}

	for i := 0; i < *count; i++ {
		path := base
		if *count > 1 {
			path = numbered(base, i)
		}

		start := time.Now()
		img, err := captureWithRetry(ctx, cam, *retries)
		if *progress {
			fmt.Fprintln(os.Stderr)
		}
		if err != nil {
			return fmt.Errorf("frame %d: %w", i+1, err)
		}

		if err := imagefile.Save(path, img, imagefile.WithJPEGQuality(*quality)); err != nil {
			return err
		}
		fmt.Printf("Saved %s (%dx%d, %s)\n", path, img.Width, img.Height, time.Since(start).Round(time.Millisecond))
	}
	return nil
}

// captureWithRetry repeats a capture that came back incomplete. Other
// errors are returned at once.
func captureWithRetry(ctx context.Context, cam *camera.Camera, retries int) (*rgb565.Image, error) {
	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			fmt.Fprintf(os.Stderr, "Retrying (%d/%d): %v\n", attempt, retries, lastErr)
		}
		img, err := cam.Capture(ctx)
		if err == nil {
			return img, nil
		}
		if !camera.IsRecoverable(err) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

// numbered inserts a zero-padded index before the extension.
func numbered(path string, i int) string {
	ext := filepath.Ext(path)
	return fmt.Sprintf("%s_%03d%s", strings.TrimSuffix(path, ext), i, ext)
}
