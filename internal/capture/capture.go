package capture

import "context"

// Constraints mirror what the user asked the device for. Audio-only is the
// degraded form when video is denied or unavailable.
type Constraints struct {
	Audio bool
	Video bool
}

// Chunk is one piece of encoded media produced by an active capture.
type Chunk struct {
	Data []byte
	Type string
}

// Stream is a live capture session on the device. Release must stop the
// hardware (indicator off) and close the chunk channel.
type Stream interface {
	Chunks() <-chan Chunk
	Release()
}

// Device is the hardware seam: acquisition may fail (denied, unavailable),
// and a successful acquisition yields encoded chunks until released.
type Device interface {
	Acquire(ctx context.Context, want Constraints) (Stream, error)
}

// Blob is the single contiguous recording assembled when a capture stops.
type Blob struct {
	Data        []byte
	ContentType string
}
