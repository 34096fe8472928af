package camera

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/moffa90/go-ov7670/protocol"
	"github.com/moffa90/go-ov7670/rgb565"
	"github.com/moffa90/go-ov7670/simulator"
)

func TestCaptureUnevenChunks(t *testing.T) {
	spec := protocol.QVGA
	dev := simulator.New(
		simulator.WithFrameSpec(spec),
		simulator.WithPattern(simulator.PatternGradient),
		simulator.WithChunkSizes(50000, 3, 100000, 3597),
	)
	cam := newTestCamera(t, dev)

	img, err := cam.Capture(context.Background())
	if err != nil {
		t.Fatalf("Capture() error: %v", err)
	}

	if img.Width != 320 || img.Height != 240 {
		t.Fatalf("image size = %dx%d, want 320x240", img.Width, img.Height)
	}

	// expected frame built from the pattern's 565 samples with the floor
	// formula c*255/(2^bits-1), independent of the decoder's tables
	want := make([]byte, 0, 320*240*3)
	for y := 0; y < 240; y++ {
		for x := 0; x < 320; x++ {
			p := simulator.Sample(simulator.PatternGradient, spec, x, y)
			want = append(want,
				byte(int(p.Red())*255/31),
				byte(int(p.Green())*255/63),
				byte(int(p.Blue())*255/31),
			)
		}
	}
	if len(img.Pix) != len(want) {
		t.Fatalf("len(Pix) = %d, want %d", len(img.Pix), len(want))
	}
	if !bytes.Equal(img.Pix, want) {
		for i := range want {
			if img.Pix[i] != want[i] {
				px := i / 3
				t.Fatalf("first mismatch at pixel (%d,%d) channel %d: got %d, want %d",
					px%320, px/320, i%3, img.Pix[i], want[i])
			}
		}
	}

	if st := dev.Stats(); st.Captures != 1 {
		t.Errorf("Captures = %d, want 1", st.Captures)
	}
}

func TestCaptureRequestsOnlyRemaining(t *testing.T) {
	spy := &SpyTransport{}
	spy.chunks = [][]byte{
		make([]byte, 50000),
		make([]byte, 3),
		make([]byte, 100000),
		make([]byte, 3597),
	}
	cam := newTestCamera(t, spy)

	raw, err := cam.CaptureRaw(context.Background())
	if err != nil {
		t.Fatalf("CaptureRaw() error: %v", err)
	}
	if len(raw) != 153600 {
		t.Fatalf("len(raw) = %d, want 153600", len(raw))
	}

	want := []int{153600, 103600, 103597, 3597}
	if len(spy.requested) != len(want) {
		t.Fatalf("requested = %v, want %v", spy.requested, want)
	}
	for i := range want {
		if spy.requested[i] != want[i] {
			t.Errorf("read %d asked for %d bytes, want %d", i, spy.requested[i], want[i])
		}
	}

	if !bytes.Equal(spy.written.Bytes(), []byte{0xCC}) {
		t.Errorf("written = % X, want CC", spy.written.Bytes())
	}
}

func TestCaptureIncomplete(t *testing.T) {
	tests := []struct {
		name     string
		truncate int
		received int
	}{
		{"nothing arrives", 0, 0},
		{"stalls mid-frame", 1000, 1000},
		{"one byte short", 153599, 153599},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := &MockLogger{}
			dev := simulator.New(simulator.WithTruncate(tt.truncate), simulator.WithChunkSizes(700))
			cam := newTestCamera(t, dev, WithLogger(logger))

			img, err := cam.Capture(context.Background())
			if img != nil {
				t.Error("partial image returned")
			}
			if !errors.Is(err, ErrIncompleteFrame) {
				t.Fatalf("error = %v, want ErrIncompleteFrame", err)
			}
			if !IsRecoverable(err) {
				t.Error("incomplete frame should be recoverable")
			}

			var incomplete *IncompleteFrameError
			if !errors.As(err, &incomplete) {
				t.Fatalf("error type = %T, want *IncompleteFrameError", err)
			}
			if incomplete.Received != tt.received || incomplete.Expected != 153600 {
				t.Errorf("got %d of %d, want %d of 153600",
					incomplete.Received, incomplete.Expected, tt.received)
			}
			if len(logger.errorMsgs) == 0 {
				t.Error("incomplete frame not logged")
			}
		})
	}
}

func TestCaptureRecoversAfterIncomplete(t *testing.T) {
	spec := protocol.FrameSpec{Width: 8, Height: 8}
	dev := simulator.New(simulator.WithFrameSpec(spec), simulator.WithTruncate(10))
	cam, err := New(dev, spec)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	ctx := context.Background()

	if _, err := cam.CaptureRaw(ctx); !IsIncompleteFrame(err) {
		t.Fatalf("first capture error = %v, want incomplete frame", err)
	}

	dev.SetTruncate(-1)
	raw, err := cam.CaptureRaw(ctx)
	if err != nil {
		t.Fatalf("second capture error: %v", err)
	}
	if !bytes.Equal(raw, simulator.Render(spec, simulator.PatternColorBars, false, false)) {
		t.Error("second frame corrupted by the first")
	}
}

func TestCaptureProgress(t *testing.T) {
	spec := protocol.FrameSpec{Width: 10, Height: 10}
	dev := simulator.New(simulator.WithFrameSpec(spec), simulator.WithChunkSizes(50, 100, 50))

	var updates []Progress
	cam, err := New(dev, spec, WithProgressCallback(func(p Progress) {
		updates = append(updates, p)
	}))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	if _, err := cam.CaptureRaw(context.Background()); err != nil {
		t.Fatalf("CaptureRaw() error: %v", err)
	}

	if len(updates) != 3 {
		t.Fatalf("got %d progress updates, want 3", len(updates))
	}
	wantReceived := []int{50, 150, 200}
	for i, p := range updates {
		if p.BytesReceived != wantReceived[i] {
			t.Errorf("update %d: BytesReceived = %d, want %d", i, p.BytesReceived, wantReceived[i])
		}
		if p.BytesExpected != 200 {
			t.Errorf("update %d: BytesExpected = %d, want 200", i, p.BytesExpected)
		}
		if p.Chunks != i+1 {
			t.Errorf("update %d: Chunks = %d, want %d", i, p.Chunks, i+1)
		}
	}
	if last := updates[len(updates)-1]; last.Percentage != 100 {
		t.Errorf("final Percentage = %.1f, want 100", last.Percentage)
	}
}

func TestCaptureReadFailure(t *testing.T) {
	boom := errors.New("device vanished")
	spy := &SpyTransport{readErr: boom}
	cam := newTestCamera(t, spy)

	raw, err := cam.CaptureRaw(context.Background())
	if raw != nil {
		t.Error("data returned with I/O error")
	}
	if !errors.Is(err, ErrIO) || !errors.Is(err, boom) {
		t.Fatalf("error = %v, want I/O error wrapping cause", err)
	}
	if IsRecoverable(err) {
		t.Error("read failure reported as recoverable")
	}
}

func TestCaptureZeroReadAfterPartial(t *testing.T) {
	spy := &SpyTransport{}
	spy.AddChunk(0x00, 0xF8, 0xE0, 0x07)
	cam := newTestCamera(t, spy)

	_, err := cam.Capture(context.Background())
	if !IsIncompleteFrame(err) {
		t.Fatalf("error = %v, want incomplete frame", err)
	}
	// one data read, then the empty read that ends assembly
	if len(spy.requested) != 2 || spy.requested[1] != 153596 {
		t.Errorf("requested = %v, want [153600 153596]", spy.requested)
	}
}

func TestCaptureDecodeMatchesDecoder(t *testing.T) {
	spec := protocol.QQVGA
	raw := simulator.Render(spec, simulator.PatternCounter, false, false)
	dev := simulator.New(simulator.WithFrame(raw))
	cam, err := New(dev, spec)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	img, err := cam.Capture(context.Background())
	if err != nil {
		t.Fatalf("Capture() error: %v", err)
	}
	want, _ := rgb565.Decode(raw, spec)
	if !bytes.Equal(img.Pix, want.Pix) {
		t.Error("Capture() output differs from rgb565.Decode")
	}
}

func BenchmarkCaptureQVGA(b *testing.B) {
	dev := simulator.New(simulator.WithChunkSizes(4096))
	cam, _ := New(dev, protocol.QVGA)
	ctx := context.Background()

	b.SetBytes(int64(protocol.QVGA.ByteSize()))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := cam.Capture(ctx); err != nil {
			b.Fatal(err)
		}
	}
}
