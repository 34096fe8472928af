package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/moffa90/go-ov7670/imagefile"
	"github.com/moffa90/go-ov7670/internal/logging"
	"github.com/moffa90/go-ov7670/stream"
)

func init() {
	register(command{
		name:        "stream",
		description: "Capture continuously and report per-frame timing",
		run:         runStream,
	})
	register(command{
		name:        "serve",
		description: "Stream frames to websocket clients",
		run:         runServe,
	})
}

func streamOptions(e *env, extra ...stream.Option) []stream.Option {
	opts := []stream.Option{
		stream.WithMinInterval(e.cfg.Stream.MinInterval),
		stream.WithMaxConsecutiveFailures(e.cfg.Stream.MaxConsecutiveFailures),
		stream.WithBuffer(e.cfg.Stream.Buffer),
		stream.WithLogger(logging.NewAdapter(e.log, "stream")),
	}
	return append(opts, extra...)
}

func runStream(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("stream", flag.ContinueOnError)
	common := addCommonFlags(fs)
	frames := fs.Int("frames", 0, "Stop after this many frames (0 = until interrupted)")
	interval := fs.Duration("interval", 0, "Minimum time between captures (overrides config)")
	saveDir := fs.String("save", "", "Save every frame as PNG into this directory")
	if err := fs.Parse(args); err != nil {
		return err
	}

	e, err := resolve(fs, common)
	if err != nil {
		return err
	}
	if *interval > 0 {
		e.cfg.Stream.MinInterval = *interval
	}

	cam, err := e.openCamera(ctx)
	if err != nil {
		return err
	}
	defer cam.Close()

	s := stream.New(cam, streamOptions(e, stream.WithMaxFrames(*frames))...)

	errCh := make(chan error, 1)
	go func() { errCh <- s.Run(ctx) }()

	for f := range s.Frames() {
		e.log.Info().
			Uint64("seq", f.Seq).
			Str("trace_id", f.TraceID.String()).
			Dur("capture", f.CaptureTime).
			Dur("decode", f.DecodeTime).
			Msg("frame")

		if *saveDir != "" {
			path := filepath.Join(*saveDir, fmt.Sprintf("frame_%06d.png", f.Seq))
			if err := imagefile.Save(path, f.Image); err != nil {
				e.log.Error().Err(err).Str("file", path).Msg("save failed")
			}
		}
	}

	err = <-errCh
	st := s.Stats()
	fmt.Printf("Frames: %d  incomplete: %d  no response: %d  dropped: %d  fps: %.2f\n",
		st.Frames, st.Incomplete, st.NoResponse, st.Dropped, st.FPS)
	return err
}

func runServe(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	common := addCommonFlags(fs)
	listen := fs.String("listen", "", "HTTP listen address (overrides config)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	e, err := resolve(fs, common)
	if err != nil {
		return err
	}
	if *listen != "" {
		e.cfg.Server.Listen = *listen
	}

	format, err := imagefile.ParseFormat(e.cfg.Server.Format)
	if err != nil {
		return err
	}

	cam, err := e.openCamera(ctx)
	if err != nil {
		return err
	}
	defer cam.Close()

	s := stream.New(cam, streamOptions(e)...)
	b := stream.NewBroadcaster(
		stream.WithFormat(format),
		stream.WithJPEGQuality(e.cfg.Server.JPEGQuality),
		stream.WithBroadcastLogger(logging.NewAdapter(e.log, "broadcast")),
	)

	mux := http.NewServeMux()
	mux.Handle(e.cfg.Server.Path, b)
	srv := &http.Server{
		Addr:              e.cfg.Server.Listen,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go b.Run(ctx, s.Frames())

	errCh := make(chan error, 2)
	go func() {
		errCh <- s.Run(ctx)
	}()
	go func() {
		e.log.Info().Str("listen", srv.Addr).Str("path", e.cfg.Server.Path).Str("format", format.String()).Msg("serving frames")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
			return
		}
		errCh <- nil
	}()

	// whichever ends first (signal, stream failure, listener failure) stops both
	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
	}
	cancel()

	shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
	defer done()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		e.log.Error().Err(err).Msg("http shutdown")
	}
	b.Close()

	st := s.Stats()
	e.log.Info().Uint64("frames", st.Frames).Uint64("incomplete", st.Incomplete).Msg("stopped")
	return runErr
}
