package capture

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

var (
	// ErrNoSource is the microphone-denied analog: no audio source exists.
	ErrNoSource = errors.New("capture: no audio source available")
	// ErrNoVideoSource marks video as unavailable; callers degrade to audio.
	ErrNoVideoSource = errors.New("capture: no video source available")
)

const (
	defaultChunkSize = 32 << 10
	defaultCadence   = 250 * time.Millisecond
)

// FileDevice streams encoded chunks from prepared media files at a fixed
// cadence. It stands in for OS capture hardware: an unset video path means
// the camera is unavailable, an unset audio path means the mic is denied.
type FileDevice struct {
	AudioPath string
	VideoPath string
	ChunkSize int
	Cadence   time.Duration
}

func (d *FileDevice) Acquire(ctx context.Context, want Constraints) (Stream, error) {
	path := d.AudioPath
	if want.Video {
		if d.VideoPath == "" {
			return nil, ErrNoVideoSource
		}
		path = d.VideoPath
	} else if path == "" {
		return nil, ErrNoSource
	}

	f, err := os.Open(path)
	if err != nil {
		if want.Video {
			return nil, fmt.Errorf("%w: %v", ErrNoVideoSource, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrNoSource, err)
	}

	size := d.ChunkSize
	if size <= 0 {
		size = defaultChunkSize
	}
	cadence := d.Cadence
	if cadence <= 0 {
		cadence = defaultCadence
	}

	st := &fileStream{
		f:    f,
		ch:   make(chan Chunk),
		stop: make(chan struct{}),
	}
	go st.pump(contentTypeFor(path, want.Video), size, cadence)
	return st, nil
}

type fileStream struct {
	f    *os.File
	ch   chan Chunk
	stop chan struct{}
	once sync.Once
}

func (s *fileStream) Chunks() <-chan Chunk { return s.ch }

func (s *fileStream) Release() {
	s.once.Do(func() { close(s.stop) })
}

func (s *fileStream) pump(contentType string, size int, cadence time.Duration) {
	defer close(s.ch)
	defer s.f.Close()

	buf := make([]byte, size)
	t := time.NewTicker(cadence)
	defer t.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-t.C:
		}
		n, err := s.f.Read(buf)
		if n > 0 {
			data := make([]byte, n)
			copy(data, buf[:n])
			select {
			case s.ch <- Chunk{Data: data, Type: contentType}:
			case <-s.stop:
				return
			}
		}
		if err != nil {
			// EOF: the source ran out before the session stopped
			return
		}
	}
}

func contentTypeFor(path string, video bool) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".webm":
		if video {
			return "video/webm"
		}
		return "audio/webm"
	case ".mp4":
		return "video/mp4"
	case ".mkv":
		return "video/x-matroska"
	case ".ogg", ".oga":
		return "audio/ogg"
	case ".mp3":
		return "audio/mpeg"
	case ".wav":
		return "audio/wav"
	}
	if video {
		return "video/webm"
	}
	return DefaultContentType
}
