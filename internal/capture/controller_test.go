package capture

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedStream struct {
	ch       chan Chunk
	stop     chan struct{}
	once     sync.Once
	mu       sync.Mutex
	released bool
}

func newScriptedStream(chunks []Chunk) *scriptedStream {
	s := &scriptedStream{
		ch:   make(chan Chunk),
		stop: make(chan struct{}),
	}
	go func() {
		defer close(s.ch)
		for _, c := range chunks {
			select {
			case s.ch <- c:
			case <-s.stop:
				return
			}
		}
		<-s.stop
	}()
	return s
}

func (s *scriptedStream) Chunks() <-chan Chunk { return s.ch }

func (s *scriptedStream) Release() {
	s.once.Do(func() { close(s.stop) })
	s.mu.Lock()
	s.released = true
	s.mu.Unlock()
}

func (s *scriptedStream) Released() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.released
}

type fakeDevice struct {
	failVideo bool
	failAll   bool
	chunks    []Chunk

	mu       sync.Mutex
	acquired []Constraints
	last     *scriptedStream
}

func (d *fakeDevice) Acquire(ctx context.Context, want Constraints) (Stream, error) {
	d.mu.Lock()
	d.acquired = append(d.acquired, want)
	d.mu.Unlock()

	if d.failAll {
		return nil, ErrNoSource
	}
	if want.Video && d.failVideo {
		return nil, ErrNoVideoSource
	}
	st := newScriptedStream(d.chunks)
	d.mu.Lock()
	d.last = st
	d.mu.Unlock()
	return st, nil
}

func (d *fakeDevice) wants() []Constraints {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Constraints, len(d.acquired))
	copy(out, d.acquired)
	return out
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func TestStopWhenIdleIsNoop(t *testing.T) {
	ctrl := NewController(&fakeDevice{})
	assert.Nil(t, ctrl.Stop())
	assert.Equal(t, StateIdle, ctrl.State())
	// still usable afterwards
	assert.Nil(t, ctrl.Stop())
}

func TestRecordStopAssemblesBlob(t *testing.T) {
	dev := &fakeDevice{chunks: []Chunk{
		{Data: []byte("aa"), Type: "audio/ogg"},
		{Data: []byte("bb"), Type: "audio/ogg"},
		{Data: nil, Type: "audio/ogg"}, // empty chunks are skipped
	}}
	ctrl := NewController(dev)
	require.NoError(t, ctrl.Start(context.Background(), Constraints{Audio: true}))
	assert.Equal(t, StateRecording, ctrl.State())

	require.Eventually(t, func() bool {
		ctrl.mu.Lock()
		defer ctrl.mu.Unlock()
		return len(ctrl.chunks) == 2
	}, time.Second, 5*time.Millisecond)

	blob := ctrl.Stop()
	require.NotNil(t, blob)
	assert.Equal(t, []byte("aabb"), blob.Data)
	assert.Equal(t, "audio/ogg", blob.ContentType)
	assert.Equal(t, StateStopped, ctrl.State())
	assert.True(t, dev.last.Released())

	// stop is idempotent: no second blob, no state change
	assert.Nil(t, ctrl.Stop())
	assert.Equal(t, StateStopped, ctrl.State())
}

func TestEmptyCaptureProducesEmptyBlob(t *testing.T) {
	ctrl := NewController(&fakeDevice{})
	require.NoError(t, ctrl.Start(context.Background(), Constraints{Audio: true}))
	blob := ctrl.Stop()
	require.NotNil(t, blob)
	assert.Empty(t, blob.Data)
	assert.Equal(t, DefaultContentType, blob.ContentType)
}

func TestVideoDenialDegradesToAudioOnly(t *testing.T) {
	dev := &fakeDevice{failVideo: true, chunks: []Chunk{{Data: []byte("x"), Type: "audio/webm"}}}
	ctrl := NewController(dev)
	require.NoError(t, ctrl.Start(context.Background(), Constraints{Audio: true, Video: true}))
	defer ctrl.Stop()

	wants := dev.wants()
	require.Len(t, wants, 2)
	assert.True(t, wants[0].Video)
	assert.Equal(t, Constraints{Audio: true}, wants[1])
}

func TestAudioDenialFailsStart(t *testing.T) {
	ctrl := NewController(&fakeDevice{failAll: true})
	err := ctrl.Start(context.Background(), Constraints{Audio: true})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoSource)
	assert.Equal(t, StateIdle, ctrl.State())

	// the slot was released: the next failure is an acquire error, not ErrBusy
	err = ctrl.Start(context.Background(), Constraints{Audio: true})
	assert.NotErrorIs(t, err, ErrBusy)
}

func TestConcurrentStartIsRejected(t *testing.T) {
	dev := &fakeDevice{}
	ctrl := NewController(dev)
	require.NoError(t, ctrl.Start(context.Background(), Constraints{Audio: true}))
	assert.ErrorIs(t, ctrl.Start(context.Background(), Constraints{Audio: true}), ErrBusy)

	require.NotNil(t, ctrl.Stop())
	require.NoError(t, ctrl.Start(context.Background(), Constraints{Audio: true}))
	ctrl.Stop()
}

func TestAutoStopFiresOnceAtCeiling(t *testing.T) {
	dev := &fakeDevice{chunks: []Chunk{{Data: []byte("x"), Type: "audio/webm"}}}
	ctrl := NewController(dev, WithMaxDuration(50*time.Millisecond))
	require.NoError(t, ctrl.Start(context.Background(), Constraints{Audio: true}))

	blob, err := ctrl.Wait(context.Background())
	require.NoError(t, err)
	require.NotNil(t, blob)
	assert.Equal(t, StateStopped, ctrl.State())
	assert.True(t, dev.last.Released())

	// the racing manual stop loses cleanly
	assert.Nil(t, ctrl.Stop())
}

func TestChunksPastCeilingAreDropped(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	dev := &fakeDevice{}
	ctrl := NewController(dev, WithClock(clock.Now))
	require.NoError(t, ctrl.Start(context.Background(), Constraints{Audio: true}))

	// the stream only produces a chunk after the ceiling has passed
	clock.Advance(MaxClipDuration + time.Second)
	dev.last.ch <- Chunk{Data: []byte("late"), Type: "audio/webm"}

	blob := ctrl.Stop()
	require.NotNil(t, blob)
	assert.Empty(t, blob.Data)
}

func TestElapsedDisplayClampedAndResetOnStop(t *testing.T) {
	var mu sync.Mutex
	var ticks []time.Duration
	dev := &fakeDevice{}
	ctrl := NewController(dev,
		WithMaxDuration(50*time.Millisecond),
		WithElapsedFunc(func(d time.Duration) {
			mu.Lock()
			ticks = append(ticks, d)
			mu.Unlock()
		}),
	)
	require.NoError(t, ctrl.Start(context.Background(), Constraints{Audio: true}))
	_, err := ctrl.Wait(context.Background())
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, ticks)
	for _, d := range ticks[:len(ticks)-1] {
		assert.LessOrEqual(t, d, 50*time.Millisecond)
	}
	assert.Equal(t, time.Duration(0), ticks[len(ticks)-1])
}

func TestWaitWithoutStart(t *testing.T) {
	ctrl := NewController(&fakeDevice{})
	_, err := ctrl.Wait(context.Background())
	require.Error(t, err)
}

func TestWaitCancelStopsCapture(t *testing.T) {
	dev := &fakeDevice{}
	ctrl := NewController(dev)
	require.NoError(t, ctrl.Start(context.Background(), Constraints{Audio: true}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ctrl.Wait(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, StateStopped, ctrl.State())
}
