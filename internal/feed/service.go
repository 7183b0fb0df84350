package feed

import (
	"context"
	"time"

	"github.com/olyadmengistu/quicktalk/internal/post"
)

const (
	// Window is the trailing time range of posts the feed shows.
	Window = 24 * time.Hour
	// MaxPosts caps a single feed query.
	MaxPosts = 50
)

type Service struct {
	posts post.Repository
}

func NewService(posts post.Repository) *Service {
	return &Service{posts: posts}
}

// Recent returns the posts created within the window as of now, newest
// first. Always a full query; the feed is never updated incrementally.
func (s *Service) Recent(ctx context.Context) ([]post.Post, error) {
	return s.posts.Recent(ctx, Window, MaxPosts)
}
