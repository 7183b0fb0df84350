package feed

import (
	"context"
	"log"
	"time"

	"github.com/olyadmengistu/quicktalk/internal/post"
)

const defaultDebounce = 250 * time.Millisecond

// Loader produces a fresh feed snapshot.
type Loader interface {
	Recent(ctx context.Context) ([]post.Post, error)
}

// Follower re-renders the feed on demand. Publish completions, identity
// transitions, and backend change events all feed one capacity-one trigger
// channel; bursts collapse into a single reload, and reloads are serialized
// so a later snapshot is never overwritten by an earlier one.
type Follower struct {
	loader   Loader
	renderer *Renderer
	triggers chan struct{}
	debounce time.Duration
}

func NewFollower(loader Loader, r *Renderer) *Follower {
	return &Follower{
		loader:   loader,
		renderer: r,
		triggers: make(chan struct{}, 1),
		debounce: defaultDebounce,
	}
}

// Trigger requests a refresh. It never blocks; a pending trigger absorbs it.
func (f *Follower) Trigger() {
	select {
	case f.triggers <- struct{}{}:
	default:
	}
}

// Run renders once, then keeps re-rendering on triggers until ctx ends.
func (f *Follower) Run(ctx context.Context) error {
	f.reload(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-f.triggers:
			if !f.settle(ctx) {
				return ctx.Err()
			}
			f.reload(ctx)
		}
	}
}

// settle absorbs trigger bursts for one debounce interval.
func (f *Follower) settle(ctx context.Context) bool {
	t := time.NewTimer(f.debounce)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return false
		case <-f.triggers:
		case <-t.C:
			return true
		}
	}
}

func (f *Follower) reload(ctx context.Context) {
	posts, err := f.loader.Recent(ctx)
	if err != nil {
		log.Printf("feed: reload failed: %v", err)
		return
	}
	if err := f.renderer.Render(posts); err != nil {
		log.Printf("feed: render failed: %v", err)
	}
}
