package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/brianvoe/gofakeit/v6"

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

// Seeds the feed with fake clips through the real publish pipeline.
func main() {
	count := flag.Int("n", 12, "number of posts to seed")
	flag.Parse()

	gofakeit.Seed(time.Now().UnixNano())
	ctx := context.Background()

	cfg, err := configs.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	d, err := db.NewDb(cfg)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	repo, err := post.NewRepository(d.DB)
	if err != nil {
		log.Fatalf("repository: %v", err)
	}

	store, err := s3.New(s3.Config{
		Endpoint:   cfg.S3Endpoint,
		AccessKey:  cfg.S3AccessKey,
		SecretKey:  cfg.S3SecretKey,
		UseSSL:     cfg.S3UseSSL,
		Bucket:     cfg.S3Bucket,
		PresignTTL: cfg.S3PresignTTL,
	})
	if err != nil {
		log.Fatalf("s3: %v", err)
	}
	if err := store.EnsureBucket(ctx); err != nil {
		log.Fatalf("s3 ensure bucket: %v", err)
	}

	tokens := identity.NewTokens(cfg.JWTSecret)
	sessions := session.NewManager(
		identity.NewClient(cfg.AuthURL, tokens),
		session.NewRedisStore(redisx.Open(cfg)),
	)

	producer := kafka.NewProducer(cfg)
	defer producer.Close()

	pipe := publish.NewPipeline(store, repo, sessions, publish.NewKafkaNotifier(producer))

	var created []string
	for i := 0; i < *count; i++ {
		ct := "audio/webm"
		if gofakeit.Bool() {
			ct = "video/webm"
		}
		blob := &capture.Blob{
			Data:        []byte(gofakeit.Sentence(12)),
			ContentType: ct,
		}

		replyTo := ""
		if len(created) > 0 && gofakeit.Number(0, 2) == 0 {
			replyTo = created[gofakeit.Number(0, len(created)-1)]
		}

		rec, err := pipe.Publish(ctx, blob, replyTo)
		if err != nil {
			log.Printf("seed %d: %v", i, err)
			continue
		}
		created = append(created, rec.ID)
		log.Printf("seeded %s type=%s reply=%v", rec.ID, rec.ContentType, rec.ReplyTo != nil)
	}
	log.Printf("seeded %d post(s)", len(created))
}
