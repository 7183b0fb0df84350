package publish

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"path"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/olyadmengistu/quicktalk/internal/capture"
	"github.com/olyadmengistu/quicktalk/internal/post"
	"github.com/olyadmengistu/quicktalk/internal/session"
)

// ObjectStore is the slice of the storage backend the pipeline needs.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) error
	PublicURL(ctx context.Context, key string) (string, error)
}

// Notifier broadcasts that the set of recent posts changed.
type Notifier interface {
	PostChanged(ctx context.Context, id string) error
}

const clipPrefix = "clips/"

// Pipeline turns a finished recording into an uploaded clip plus a post
// record. The record write only happens inside the upload's success path;
// a failed upload produces no record and the pre-allocated id is wasted.
type Pipeline struct {
	store    ObjectStore
	posts    post.Repository
	sessions *session.Manager
	notify   Notifier
	tracer   trace.Tracer
}

func NewPipeline(store ObjectStore, posts post.Repository, sessions *session.Manager, notify Notifier) *Pipeline {
	return &Pipeline{
		store:    store,
		posts:    posts,
		sessions: sessions,
		notify:   notify,
		tracer:   otel.Tracer("quicktalk/publish"),
	}
}

// Publish uploads the blob under a pre-allocated id, resolves its public
// URL, and writes the post record. replyTo is empty for top-level posts. An
// identity is ensured first (anonymous when none exists); if even that
// fails the post is written without an owner rather than blocking the user.
func (p *Pipeline) Publish(ctx context.Context, blob *capture.Blob, replyTo string) (*post.Post, error) {
	owner := ""
	if sess, err := p.sessions.Ensure(ctx); err != nil {
		log.Printf("publish: no identity available, posting without owner: %v", err)
	} else {
		owner = sess.UserID
	}

	id := p.posts.NewID()
	key := clipPrefix + id

	ctx, span := p.tracer.Start(ctx, "publish.upload")
	err := p.store.Put(ctx, key, blob.ContentType, blob.Data)
	span.End()
	if err != nil {
		return nil, fmt.Errorf("upload clip %s: %w", id, err)
	}

	publicURL, err := p.store.PublicURL(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("resolve clip url %s: %w", id, err)
	}

	rec := &post.Post{
		ID:          id,
		Owner:       owner,
		MediaURL:    publicURL,
		ContentType: blob.ContentType,
	}
	if replyTo != "" {
		rec.ReplyTo = &replyTo
	}

	ctx, span = p.tracer.Start(ctx, "publish.record")
	err = p.posts.Save(ctx, rec)
	span.End()
	if err != nil {
		return nil, fmt.Errorf("write post %s: %w", id, err)
	}

	if p.notify != nil {
		if err := p.notify.PostChanged(ctx, id); err != nil {
			log.Printf("publish: change notification for %s failed: %v", id, err)
		}
	}
	return rec, nil
}

// StorageKey extracts the object key suffix a media URL points at. For any
// successfully published post it equals the post id.
func StorageKey(mediaURL string) string {
	u, err := url.Parse(mediaURL)
	if err != nil {
		return ""
	}
	return path.Base(u.Path)
}
