package stream

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/moffa90/go-ov7670/camera"
	"github.com/moffa90/go-ov7670/protocol"
	"github.com/moffa90/go-ov7670/simulator"
)

var tiny = protocol.FrameSpec{Width: 4, Height: 2}

// scriptedSource returns the scripted results in order, then good frames.
type scriptedSource struct {
	mu      sync.Mutex
	spec    protocol.FrameSpec
	results []error
	calls   int
}

func (s *scriptedSource) FrameSpec() protocol.FrameSpec { return s.spec }

func (s *scriptedSource) CaptureRaw(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.calls
	s.calls++
	if i < len(s.results) && s.results[i] != nil {
		return nil, s.results[i]
	}
	return simulator.Render(s.spec, simulator.PatternCounter, false, false), nil
}

func incomplete() error {
	return &camera.IncompleteFrameError{Received: 3, Expected: 16}
}

func drain(s *Streamer) []Frame {
	var frames []Frame
	for f := range s.Frames() {
		frames = append(frames, f)
	}
	return frames
}

func TestNewPanicsOnNilSource(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("New(nil) did not panic")
		}
	}()
	New(nil)
}

func TestRunSkipsIncompleteFrames(t *testing.T) {
	src := &scriptedSource{spec: tiny, results: []error{nil, incomplete(), incomplete(), nil}}
	s := New(src, WithMinInterval(0), WithMaxFrames(3), WithBuffer(8))

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	frames := drain(s)
	if len(frames) != 3 {
		t.Fatalf("got %d frames, want 3", len(frames))
	}
	for i, f := range frames {
		if f.Seq != uint64(i) {
			t.Errorf("frame %d Seq = %d", i, f.Seq)
		}
		if f.Image == nil || f.Image.Width != 4 || f.Image.Height != 2 {
			t.Errorf("frame %d has bad image", i)
		}
	}
	if frames[0].TraceID == frames[1].TraceID {
		t.Error("trace IDs not unique")
	}

	st := s.Stats()
	if st.Frames != 3 || st.Incomplete != 2 || st.ConsecutiveFailures != 0 {
		t.Errorf("stats = %+v", st)
	}
	if src.calls != 5 {
		t.Errorf("source called %d times, want 5", src.calls)
	}
}

func TestRunTooManyFailures(t *testing.T) {
	results := []error{incomplete(), camera.ErrNoResponse, incomplete()}
	src := &scriptedSource{spec: tiny, results: results}
	s := New(src, WithMinInterval(0), WithMaxConsecutiveFailures(3))

	err := s.Run(context.Background())
	var tooMany *TooManyFailuresError
	if !errors.As(err, &tooMany) {
		t.Fatalf("Run() error = %v, want TooManyFailuresError", err)
	}
	if tooMany.Count != 3 {
		t.Errorf("Count = %d, want 3", tooMany.Count)
	}
	if !camera.IsIncompleteFrame(err) {
		t.Error("last failure not unwrapped")
	}
	if !strings.Contains(err.Error(), "3 consecutive failures") {
		t.Errorf("error = %v", err)
	}

	st := s.Stats()
	if st.Incomplete != 2 || st.NoResponse != 1 {
		t.Errorf("stats = %+v", st)
	}
}

func TestRunStopsOnFatalError(t *testing.T) {
	fatal := &camera.IOError{Op: "read frame", Err: errors.New("unplugged")}
	src := &scriptedSource{spec: tiny, results: []error{nil, fatal}}
	s := New(src, WithMinInterval(0), WithBuffer(4))

	err := s.Run(context.Background())
	if !errors.Is(err, camera.ErrIO) {
		t.Fatalf("Run() error = %v, want ErrIO", err)
	}
	if frames := drain(s); len(frames) != 1 {
		t.Errorf("got %d frames before failure, want 1", len(frames))
	}
	if src.calls != 2 {
		t.Errorf("source called %d times, want 2", src.calls)
	}
}

func TestRunCountsDroppedFrames(t *testing.T) {
	src := &scriptedSource{spec: tiny}
	s := New(src, WithMinInterval(0), WithMaxFrames(5), WithBuffer(2))

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	frames := drain(s)
	if len(frames) != 2 {
		t.Errorf("got %d frames, want 2", len(frames))
	}
	st := s.Stats()
	if st.Frames != 2 || st.Dropped != 3 {
		t.Errorf("Frames = %d, Dropped = %d, want 2 and 3", st.Frames, st.Dropped)
	}
}

func TestRunCancel(t *testing.T) {
	src := &scriptedSource{spec: tiny}
	s := New(src, WithMinInterval(10*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	<-s.Frames()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() after cancel = %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	if err := s.Run(context.Background()); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Run() = %v, want ErrAlreadyRunning", err)
	}
}

func TestRunWithSimulatedCamera(t *testing.T) {
	dev := simulator.New(
		simulator.WithFrameSpec(protocol.QQVGA),
		simulator.WithPattern(simulator.PatternGradient),
		simulator.WithChunkSizes(4096, 777),
	)
	cam, err := camera.New(dev, protocol.QQVGA)
	if err != nil {
		t.Fatal(err)
	}
	defer cam.Close()

	s := New(cam, WithMinInterval(0), WithMaxFrames(2))
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	frames := drain(s)
	if len(frames) != 2 {
		t.Fatalf("got %d frames, want 2", len(frames))
	}
	want := simulator.Sample(simulator.PatternGradient, protocol.QQVGA, 159, 119).RGB()
	if got := frames[1].Image.RGBAt(159, 119); got != want {
		t.Errorf("pixel (159,119) = %v, want %v", got, want)
	}
	if dev.Stats().Captures != 2 {
		t.Errorf("device captures = %d, want 2", dev.Stats().Captures)
	}
}
