package cli

import (
	"context"
	"fmt"

	"github.com/olyadmengistu/quicktalk/configs"
	"github.com/olyadmengistu/quicktalk/internal/capture"
	"github.com/olyadmengistu/quicktalk/internal/identity"
	"github.com/olyadmengistu/quicktalk/internal/post"
	"github.com/olyadmengistu/quicktalk/internal/publish"
	"github.com/olyadmengistu/quicktalk/internal/session"
	"github.com/olyadmengistu/quicktalk/internal/storage/s3"
	"github.com/olyadmengistu/quicktalk/pkg/db"
	"github.com/olyadmengistu/quicktalk/pkg/kafka"
	"github.com/olyadmengistu/quicktalk/pkg/redisx"
)

// app lazily wires backend clients; each command opens only what it uses.
type app struct {
	cfg *configs.Config
}

func loadApp() (*app, error) {
	cfg, err := configs.LoadConfig()
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg}, nil
}

func (a *app) sessions() *session.Manager {
	tokens := identity.NewTokens(a.cfg.JWTSecret)
	client := identity.NewClient(a.cfg.AuthURL, tokens)
	store := session.NewRedisStore(redisx.Open(a.cfg))
	return session.NewManager(client, store)
}

func (a *app) repository() (post.Repository, error) {
	d, err := db.NewDb(a.cfg)
	if err != nil {
		return nil, err
	}
	return post.NewRepository(d.DB)
}

func (a *app) storage(ctx context.Context) (*s3.Storage, error) {
	st, err := s3.New(s3.Config{
		Endpoint:   a.cfg.S3Endpoint,
		AccessKey:  a.cfg.S3AccessKey,
		SecretKey:  a.cfg.S3SecretKey,
		UseSSL:     a.cfg.S3UseSSL,
		Bucket:     a.cfg.S3Bucket,
		PresignTTL: a.cfg.S3PresignTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("object storage: %w", err)
	}
	if err := st.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("ensure bucket: %w", err)
	}
	return st, nil
}

func (a *app) pipeline(ctx context.Context) (*publish.Pipeline, error) {
	repo, err := a.repository()
	if err != nil {
		return nil, err
	}
	store, err := a.storage(ctx)
	if err != nil {
		return nil, err
	}
	notifier := publish.NewKafkaNotifier(kafka.NewProducer(a.cfg))
	return publish.NewPipeline(store, repo, a.sessions(), notifier), nil
}

// device returns the capture device, optionally overriding both source
// paths with a single file.
func (a *app) device(sourceOverride string) capture.Device {
	dev := &capture.FileDevice{
		AudioPath: a.cfg.AudioSource,
		VideoPath: a.cfg.VideoSource,
	}
	if sourceOverride != "" {
		dev.AudioPath = sourceOverride
		dev.VideoPath = sourceOverride
	}
	return dev
}
