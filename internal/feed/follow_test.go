package feed

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olyadmengistu/quicktalk/internal/post"
)

type fakeLoader struct {
	mu    sync.Mutex
	calls int
	posts []post.Post
	err   error
}

func (l *fakeLoader) Recent(ctx context.Context) ([]post.Post, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	return l.posts, l.err
}

func (l *fakeLoader) callCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

func (l *fakeLoader) setErr(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.err = err
}

func startFollower(t *testing.T, loader *fakeLoader) (*Follower, context.CancelFunc, chan error) {
	t.Helper()
	f := NewFollower(loader, &Renderer{Out: io.Discard, Loc: time.UTC})
	f.debounce = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.Run(ctx) }()

	require.Eventually(t, func() bool { return loader.callCount() == 1 },
		time.Second, time.Millisecond, "initial render")
	return f, cancel, done
}

func TestFollowerCoalescesTriggerBursts(t *testing.T) {
	loader := &fakeLoader{}
	f, cancel, done := startFollower(t, loader)

	for i := 0; i < 5; i++ {
		f.Trigger()
	}

	require.Eventually(t, func() bool { return loader.callCount() == 2 },
		time.Second, time.Millisecond, "one reload for the burst")

	// a settled burst produces exactly one reload, not five
	time.Sleep(5 * f.debounce)
	assert.Equal(t, 2, loader.callCount())

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestFollowerSurvivesReloadErrors(t *testing.T) {
	loader := &fakeLoader{err: errors.New("db down")}
	f, cancel, done := startFollower(t, loader)

	loader.setErr(nil)
	f.Trigger()
	require.Eventually(t, func() bool { return loader.callCount() == 2 },
		time.Second, time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestTriggerNeverBlocks(t *testing.T) {
	f := NewFollower(&fakeLoader{}, &Renderer{Out: io.Discard})
	for i := 0; i < 10; i++ {
		f.Trigger()
	}
}
