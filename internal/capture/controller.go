package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

const (
	// MaxClipDuration is the hard recording ceiling.
	MaxClipDuration = 10 * time.Second
	// autoStopSlack delays the scheduled stop slightly so a user stop
	// racing the ceiling is not pre-empted by the timer.
	autoStopSlack = 200 * time.Millisecond
	// DefaultContentType types a blob when no chunk reported one.
	DefaultContentType = "audio/webm"

	tickInterval = 100 * time.Millisecond
)

// ErrBusy is returned when Start is called while a recording is active.
var ErrBusy = errors.New("capture: a recording is already in progress")

type State int

const (
	StateIdle State = iota
	StateRecording
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRecording:
		return "recording"
	case StateStopped:
		return "stopped"
	}
	return "unknown"
}

type Option func(*Controller)

// WithMaxDuration overrides the recording ceiling.
func WithMaxDuration(d time.Duration) Option {
	return func(c *Controller) { c.max = d }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithElapsedFunc installs a display callback invoked on a steady cadence
// while recording, clamped to the ceiling, and with zero once stopped.
func WithElapsedFunc(fn func(time.Duration)) Option {
	return func(c *Controller) { c.onTick = fn }
}

// Controller owns one capture session at a time. Concurrent starts are
// structurally rejected through a capacity-one slot, not left to UI state.
type Controller struct {
	dev    Device
	max    time.Duration
	now    func() time.Time
	onTick func(time.Duration)

	slot chan struct{}

	mu      sync.Mutex
	state   State
	stream  Stream
	chunks  []Chunk
	started time.Time
	timer   *time.Timer
	blob    *Blob
	done    chan struct{}
	drained chan struct{}
}

func NewController(dev Device, opts ...Option) *Controller {
	c := &Controller{
		dev:  dev,
		max:  MaxClipDuration,
		now:  time.Now,
		slot: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Start acquires the device and begins buffering chunks. A video denial
// degrades to audio-only rather than failing. The session auto-stops at the
// ceiling via a deferred stop scheduled now.
func (c *Controller) Start(ctx context.Context, want Constraints) error {
	select {
	case c.slot <- struct{}{}:
	default:
		return ErrBusy
	}

	st, err := c.dev.Acquire(ctx, want)
	if err != nil && want.Video {
		st, err = c.dev.Acquire(ctx, Constraints{Audio: true})
	}
	if err != nil {
		<-c.slot
		return fmt.Errorf("acquire media: %w", err)
	}

	c.mu.Lock()
	c.state = StateRecording
	c.stream = st
	c.chunks = nil
	c.blob = nil
	c.started = c.now()
	c.done = make(chan struct{})
	c.drained = make(chan struct{})
	drained, done := c.drained, c.done
	c.timer = time.AfterFunc(c.max+autoStopSlack, func() { c.Stop() })
	c.mu.Unlock()

	go c.collect(st.Chunks(), drained)
	if c.onTick != nil {
		go c.tickLoop(done)
	}
	return nil
}

// collect buffers chunks until the stream closes. Anything arriving past
// the ceiling is dropped so the blob never holds more than max duration.
func (c *Controller) collect(ch <-chan Chunk, drained chan struct{}) {
	defer close(drained)
	for chunk := range ch {
		if len(chunk.Data) == 0 {
			continue
		}
		c.mu.Lock()
		if c.state == StateRecording && c.now().Sub(c.started) <= c.max {
			c.chunks = append(c.chunks, chunk)
		}
		c.mu.Unlock()
	}
}

// Stop ends the active recording and returns the assembled blob. Calling it
// while not recording is a no-op returning nil, so the auto-stop timer and
// a user stop can race freely; exactly one caller wins.
func (c *Controller) Stop() *Blob {
	c.mu.Lock()
	if c.state != StateRecording {
		c.mu.Unlock()
		return nil
	}
	c.state = StateStopped
	st := c.stream
	c.stream = nil
	timer := c.timer
	c.timer = nil
	done, drained := c.done, c.drained
	c.mu.Unlock()

	if timer != nil {
		timer.Stop()
	}
	st.Release()
	<-drained

	c.mu.Lock()
	blob := assemble(c.chunks)
	c.chunks = nil
	c.blob = &blob
	c.mu.Unlock()

	if c.onTick != nil {
		c.onTick(0)
	}
	close(done)
	<-c.slot
	return &blob
}

// Wait blocks until the session stops, by user action or the ceiling, and
// returns the blob. Cancelling ctx stops the capture.
func (c *Controller) Wait(ctx context.Context) (*Blob, error) {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()
	if done == nil {
		return nil, errors.New("capture: not started")
	}
	select {
	case <-ctx.Done():
		c.Stop()
		return nil, ctx.Err()
	case <-done:
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.blob, nil
}

func (c *Controller) tickLoop(done chan struct{}) {
	t := time.NewTicker(tickInterval)
	defer t.Stop()
	for {
		select {
		case <-done:
			return
		case <-t.C:
			c.mu.Lock()
			if c.state != StateRecording {
				c.mu.Unlock()
				continue
			}
			elapsed := c.now().Sub(c.started)
			c.mu.Unlock()
			if elapsed > c.max {
				elapsed = c.max
			}
			c.onTick(elapsed)
		}
	}
}

func assemble(chunks []Chunk) Blob {
	ct := DefaultContentType
	if len(chunks) > 0 && chunks[0].Type != "" {
		ct = chunks[0].Type
	}
	var buf bytes.Buffer
	for _, ch := range chunks {
		buf.Write(ch.Data)
	}
	return Blob{Data: buf.Bytes(), ContentType: ct}
}
