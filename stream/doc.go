// Package stream runs continuous capture on top of a camera and pushes
// decoded frames to consumers.
//
// A Streamer issues one capture after another. Incomplete frames are
// skipped, transport failures end the loop:
//
//	s := stream.New(cam, stream.WithMinInterval(100*time.Millisecond))
//	go s.Run(ctx)
//	for f := range s.Frames() {
//	    fmt.Println(f.Seq, f.TraceID)
//	}
//
// A Broadcaster fans frames out to websocket clients. Each frame goes out
// as a JSON FrameHeader text message followed by the encoded image as a
// binary message.
package stream
