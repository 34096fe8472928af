package stream

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/moffa90/go-ov7670/imagefile"
)

// FrameHeader is sent as a text message before each encoded image.
type FrameHeader struct {
	Seq         uint64    `json:"seq"`
	TraceID     string    `json:"trace_id"`
	Timestamp   time.Time `json:"timestamp"`
	Width       int       `json:"width"`
	Height      int       `json:"height"`
	ContentType string    `json:"content_type"`
	CaptureMS   float64   `json:"capture_ms"`
	DecodeMS    float64   `json:"decode_ms"`
}

// BroadcastConfig holds the Broadcaster configuration.
type BroadcastConfig struct {
	// Format is the image encoding pushed to clients (JPEG or PNG)
	Format imagefile.Format

	// JPEGQuality applies when Format is JPEG
	JPEGQuality int

	// WriteTimeout bounds each websocket write
	WriteTimeout time.Duration

	// ClientBuffer is the number of frames queued per client before
	// frames are dropped for that client
	ClientBuffer int

	// Logger is used for logging operations (optional)
	Logger Logger
}

// BroadcastOption is a functional option for configuring the Broadcaster.
type BroadcastOption func(*BroadcastConfig)

// WithFormat selects the image encoding.
func WithFormat(f imagefile.Format) BroadcastOption {
	return func(c *BroadcastConfig) {
		c.Format = f
	}
}

// WithJPEGQuality sets the JPEG quality (1 to 100).
func WithJPEGQuality(q int) BroadcastOption {
	return func(c *BroadcastConfig) {
		if q >= 1 && q <= 100 {
			c.JPEGQuality = q
		}
	}
}

// WithBroadcastLogger sets a logger for the broadcaster.
func WithBroadcastLogger(logger Logger) BroadcastOption {
	return func(c *BroadcastConfig) {
		c.Logger = logger
	}
}

type message struct {
	header []byte
	image  []byte
}

type client struct {
	conn *websocket.Conn
	send chan message
	addr string
}

// Broadcaster pushes every published frame to all connected websocket
// clients. Each frame is encoded once. A slow client loses frames rather
// than holding up the others.
type Broadcaster struct {
	config   BroadcastConfig
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool
}

// NewBroadcaster creates a Broadcaster. Mount it on an http.ServeMux.
//
// Example:
//
//	b := stream.NewBroadcaster(stream.WithFormat(imagefile.JPEG))
//	http.Handle("/ws", b)
//	go b.Run(ctx, streamer.Frames())
func NewBroadcaster(opts ...BroadcastOption) *Broadcaster {
	cfg := BroadcastConfig{
		Format:       imagefile.JPEG,
		JPEGQuality:  80,
		WriteTimeout: 2 * time.Second,
		ClientBuffer: 2,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Broadcaster{
		config: cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
}

// ServeHTTP upgrades the request and registers the client.
func (b *Broadcaster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		b.logError("websocket upgrade failed", "remote", r.RemoteAddr, "error", err.Error())
		return
	}

	c := &client{
		conn: conn,
		send: make(chan message, b.config.ClientBuffer),
		addr: r.RemoteAddr,
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		conn.Close()
		return
	}
	b.clients[c] = struct{}{}
	count := len(b.clients)
	b.mu.Unlock()

	b.logInfo("client connected", "remote", c.addr, "clients", count)

	go b.writeLoop(c)
	b.readLoop(c)
}

// readLoop discards client messages and unregisters the client when the
// connection ends.
func (b *Broadcaster) readLoop(c *client) {
	defer b.remove(c)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (b *Broadcaster) writeLoop(c *client) {
	defer c.conn.Close()
	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(b.config.WriteTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg.header); err != nil {
			b.logDebug("client write failed", "remote", c.addr, "error", err.Error())
			return
		}
		if err := c.conn.WriteMessage(websocket.BinaryMessage, msg.image); err != nil {
			b.logDebug("client write failed", "remote", c.addr, "error", err.Error())
			return
		}
	}
	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "stream ended"),
		time.Now().Add(time.Second))
}

func (b *Broadcaster) remove(c *client) {
	b.mu.Lock()
	_, ok := b.clients[c]
	if ok {
		delete(b.clients, c)
		close(c.send)
	}
	count := len(b.clients)
	b.mu.Unlock()

	if ok {
		b.logInfo("client disconnected", "remote", c.addr, "clients", count)
	}
}

// Clients returns the number of connected clients.
func (b *Broadcaster) Clients() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.clients)
}

// Publish encodes frame and queues it for every client.
func (b *Broadcaster) Publish(frame Frame) error {
	b.mu.Lock()
	idle := len(b.clients) == 0 || b.closed
	b.mu.Unlock()
	if idle {
		return nil
	}

	var buf bytes.Buffer
	if err := imagefile.Encode(&buf, frame.Image, b.config.Format, imagefile.WithJPEGQuality(b.config.JPEGQuality)); err != nil {
		return err
	}

	header, err := json.Marshal(FrameHeader{
		Seq:         frame.Seq,
		TraceID:     frame.TraceID.String(),
		Timestamp:   frame.Timestamp,
		Width:       frame.Image.Width,
		Height:      frame.Image.Height,
		ContentType: b.config.Format.ContentType(),
		CaptureMS:   float64(frame.CaptureTime.Microseconds()) / 1000,
		DecodeMS:    float64(frame.DecodeTime.Microseconds()) / 1000,
	})
	if err != nil {
		return err
	}

	msg := message{header: header, image: buf.Bytes()}

	b.mu.Lock()
	defer b.mu.Unlock()
	for c := range b.clients {
		select {
		case c.send <- msg:
		default:
			b.logDebug("client behind, frame dropped", "remote", c.addr, "seq", frame.Seq)
		}
	}
	return nil
}

// Run publishes frames until the channel closes or ctx ends, then
// disconnects every client.
func (b *Broadcaster) Run(ctx context.Context, frames <-chan Frame) {
	defer b.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case frame, ok := <-frames:
			if !ok {
				return
			}
			if err := b.Publish(frame); err != nil {
				b.logError("publish failed", "seq", frame.Seq, "error", err.Error())
			}
		}
	}
}

// Close disconnects every client. Later connections are refused.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for c := range b.clients {
		delete(b.clients, c)
		close(c.send)
	}
}

func (b *Broadcaster) logDebug(msg string, keysAndValues ...interface{}) {
	if b.config.Logger != nil {
		b.config.Logger.Debug(msg, keysAndValues...)
	}
}

func (b *Broadcaster) logInfo(msg string, keysAndValues ...interface{}) {
	if b.config.Logger != nil {
		b.config.Logger.Info(msg, keysAndValues...)
	}
}

func (b *Broadcaster) logError(msg string, keysAndValues ...interface{}) {
	if b.config.Logger != nil {
		b.config.Logger.Error(msg, keysAndValues...)
	}
}
