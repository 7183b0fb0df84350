package cli

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/olyadmengistu/quicktalk/internal/feed"
	"github.com/olyadmengistu/quicktalk/pkg/kafka"
)

type FeedOptions struct {
	Follow bool
}

func NewFeedCommand() *cobra.Command {
	opts := &FeedOptions{}

	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Show the last 24 hours of clips, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			repo, err := a.repository()
			if err != nil {
				return err
			}
			svc := feed.NewService(repo)
			renderer := feed.NewRenderer(cmd.OutOrStdout())

			if !opts.Follow {
				posts, err := svc.Recent(cmd.Context())
				if err != nil {
					return err
				}
				return renderer.Render(posts)
			}
			return followFeed(cmd.Context(), a, svc, renderer)
		},
	}

	cmd.Flags().BoolVarP(&opts.Follow, "follow", "f", false, "keep re-rendering on live changes")

	return cmd
}

func followFeed(parent context.Context, a *app, svc *feed.Service, renderer *feed.Renderer) error {
	ctx, cancel := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	follower := feed.NewFollower(svc, renderer)

	// any identity transition reloads the feed unconditionally
	sub := a.sessions().Subscribe()
	go func() {
		for range sub {
			follower.Trigger()
		}
	}()

	// backend change events; payload is ignored, the consumer only signals
	// that the recent-posts query should re-run
	consumer := kafka.NewConsumer(a.cfg, func(ctx context.Context, key, value []byte) error {
		follower.Trigger()
		return nil
	})
	go func() {
		if err := consumer.Run(ctx); err != nil {
			log.Printf("feed: consumer stopped: %v", err)
		}
	}()

	go serveMetrics(ctx, a.cfg.MetricsAddr)

	err := follower.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func serveMetrics(ctx context.Context, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		c, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(c)
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("metrics listener: %v", err)
	}
}
