package stream

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/moffa90/go-ov7670/camera"
	"github.com/moffa90/go-ov7670/protocol"
	"github.com/moffa90/go-ov7670/rgb565"
)

// ErrAlreadyRunning is returned when Run is called twice.
var ErrAlreadyRunning = errors.New("streamer already running")

// FrameSource produces raw frames. *camera.Camera satisfies it.
type FrameSource interface {
	CaptureRaw(ctx context.Context) ([]byte, error)
	FrameSpec() protocol.FrameSpec
}

// Frame is one decoded frame delivered by the Streamer.
type Frame struct {
	Seq         uint64
	TraceID     uuid.UUID
	Timestamp   time.Time
	Image       *rgb565.Image
	CaptureTime time.Duration
	DecodeTime  time.Duration
}

// Stats contains capture loop counters.
type Stats struct {
	Frames              uint64
	Incomplete          uint64
	NoResponse          uint64
	Dropped             uint64
	ConsecutiveFailures int
	StartTime           time.Time
	LastFrame           time.Time
	FPS                 float64
}

// TooManyFailuresError ends a stream whose device keeps failing recoverably.
type TooManyFailuresError struct {
	Count int
	Last  error
}

func (e *TooManyFailuresError) Error() string {
	return fmt.Sprintf("giving up after %d consecutive failures: %v", e.Count, e.Last)
}

// Unwrap returns the last failure.
func (e *TooManyFailuresError) Unwrap() error {
	return e.Last
}

// Streamer captures frames back to back from a FrameSource.
//
// An incomplete frame is skipped and the next capture starts; the loop never
// retries inside a frame. A transport failure or too many recoverable
// failures in a row end the loop. Frames are delivered on a buffered channel;
// when no consumer keeps up, new frames are dropped and counted.
type Streamer struct {
	source FrameSource
	config Config
	frames chan Frame

	mu      sync.Mutex
	stats   Stats
	running bool
	done    bool
}

// New creates a Streamer over source.
//
// Example:
//
//	s := stream.New(cam, stream.WithMinInterval(100*time.Millisecond))
//	go func() {
//	    for f := range s.Frames() {
//	        show(f.Image)
//	    }
//	}()
//	err := s.Run(ctx)
func New(source FrameSource, opts ...Option) *Streamer {
	if source == nil {
		panic("source cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Streamer{
		source: source,
		config: cfg,
		frames: make(chan Frame, cfg.Buffer),
	}
}

// Frames returns the delivery channel. It is closed when Run returns.
func (s *Streamer) Frames() <-chan Frame {
	return s.frames
}

// Stats returns a snapshot of the counters.
func (s *Streamer) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.stats
	if st.Frames > 0 && !st.StartTime.IsZero() {
		if elapsed := st.LastFrame.Sub(st.StartTime).Seconds(); elapsed > 0 {
			st.FPS = float64(st.Frames) / elapsed
		}
	}
	return st
}

// Run captures until ctx is cancelled, MaxFrames frames have been captured,
// or a fatal error occurs. It returns nil on cancellation or frame limit.
// A Streamer runs once.
func (s *Streamer) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.running || s.done {
		s.mu.Unlock()
		return ErrAlreadyRunning
	}
	s.running = true
	s.stats.StartTime = time.Now()
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.done = true
		s.mu.Unlock()
		close(s.frames)
	}()

	spec := s.source.FrameSpec()
	s.logInfo("stream started",
		"resolution", spec.String(),
		"min_interval", s.config.MinInterval.String(),
	)

	var seq uint64
	for {
		if ctx.Err() != nil {
			s.logInfo("stream stopped", "frames", seq)
			return nil
		}

		started := time.Now()
		frame, err := s.captureOne(ctx, spec)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			if stop := s.recordFailure(err); stop != nil {
				s.logError("stream aborted", "error", stop.Error())
				return stop
			}
		} else {
			frame.Seq = seq
			seq++
			s.deliver(frame)

			if s.config.MaxFrames > 0 && int(seq) >= s.config.MaxFrames {
				s.logInfo("frame limit reached", "frames", seq)
				return nil
			}
		}

		if !s.pace(ctx, started) {
			s.logInfo("stream stopped", "frames", seq)
			return nil
		}
	}
}

func (s *Streamer) captureOne(ctx context.Context, spec protocol.FrameSpec) (Frame, error) {
	start := time.Now()
	raw, err := s.source.CaptureRaw(ctx)
	if err != nil {
		return Frame{}, err
	}
	captureTime := time.Since(start)

	decodeStart := time.Now()
	img, err := rgb565.Decode(raw, spec)
	if err != nil {
		return Frame{}, err
	}

	return Frame{
		TraceID:     uuid.New(),
		Timestamp:   start,
		Image:       img,
		CaptureTime: captureTime,
		DecodeTime:  time.Since(decodeStart),
	}, nil
}

// recordFailure counts a failed capture and returns non-nil when the loop
// must stop.
func (s *Streamer) recordFailure(err error) error {
	if !camera.IsRecoverable(err) {
		return err
	}

	s.mu.Lock()
	if camera.IsIncompleteFrame(err) {
		s.stats.Incomplete++
	} else {
		s.stats.NoResponse++
	}
	s.stats.ConsecutiveFailures++
	failures := s.stats.ConsecutiveFailures
	s.mu.Unlock()

	s.logDebug("frame skipped", "error", err.Error(), "consecutive", failures)

	if failures >= s.config.MaxConsecutiveFailures {
		return &TooManyFailuresError{Count: failures, Last: err}
	}
	return nil
}

// deliver hands a frame to the consumer without blocking.
func (s *Streamer) deliver(frame Frame) {
	s.mu.Lock()
	s.stats.ConsecutiveFailures = 0
	s.stats.LastFrame = frame.Timestamp
	s.mu.Unlock()

	select {
	case s.frames <- frame:
		s.mu.Lock()
		s.stats.Frames++
		s.mu.Unlock()
		s.logDebug("frame delivered",
			"seq", frame.Seq,
			"trace_id", frame.TraceID.String(),
			"capture", frame.CaptureTime.String(),
			"decode", frame.DecodeTime.String(),
		)
	default:
		s.mu.Lock()
		s.stats.Dropped++
		s.mu.Unlock()
		s.logDebug("frame dropped", "seq", frame.Seq)
	}
}

// pace waits out the rest of MinInterval. It returns false if ctx ended.
func (s *Streamer) pace(ctx context.Context, started time.Time) bool {
	wait := s.config.MinInterval - time.Since(started)
	if wait <= 0 {
		return ctx.Err() == nil
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (s *Streamer) logDebug(msg string, keysAndValues ...interface{}) {
	if s.config.Logger != nil {
		s.config.Logger.Debug(msg, keysAndValues...)
	}
}

func (s *Streamer) logInfo(msg string, keysAndValues ...interface{}) {
	if s.config.Logger != nil {
		s.config.Logger.Info(msg, keysAndValues...)
	}
}

func (s *Streamer) logError(msg string, keysAndValues ...interface{}) {
	if s.config.Logger != nil {
		s.config.Logger.Error(msg, keysAndValues...)
	}
}
