package cli

import (
	"bufio"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/olyadmengistu/quicktalk/internal/capture"
)

type RecordOptions struct {
	AudioOnly bool
	Source    string
}

func NewRecordCommand() *cobra.Command {
	opts := &RecordOptions{}

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record a clip (up to 10s) and publish it",
		Long: `Records from the capture device and publishes the clip as a top-level
post. Video is requested by default; if it is denied or unavailable the
recording degrades to audio only. The recording stops when you press Enter
or at the 10-second ceiling, whichever comes first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			want := capture.Constraints{Audio: true, Video: !opts.AudioOnly}
			return recordAndPublish(cmd, a, opts.Source, want, "")
		},
	}

	cmd.Flags().BoolVar(&opts.AudioOnly, "audio-only", false, "do not request video")
	cmd.Flags().StringVar(&opts.Source, "source", "", "override the capture source file")

	return cmd
}

func NewReplyCommand() *cobra.Command {
	opts := &RecordOptions{}

	cmd := &cobra.Command{
		Use:   "reply <post-id>",
		Short: "Record an audio reply (up to 10s) to a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			// replies record audio only
			err = recordAndPublish(cmd, a, opts.Source, capture.Constraints{Audio: true}, args[0])
			if errors.Is(err, capture.ErrNoSource) {
				return errors.New("cannot access microphone")
			}
			return err
		},
	}

	cmd.Flags().StringVar(&opts.Source, "source", "", "override the capture source file")

	return cmd
}

func recordAndPublish(cmd *cobra.Command, a *app, source string, want capture.Constraints, replyTo string) error {
	ctx := cmd.Context()

	pipe, err := a.pipeline(ctx)
	if err != nil {
		return err
	}

	ctrl := capture.NewController(a.device(source), capture.WithElapsedFunc(func(d time.Duration) {
		fmt.Fprintf(cmd.ErrOrStderr(), "\rrecording %s", formatClock(d))
	}))
	if err := ctrl.Start(ctx, want); err != nil {
		return err
	}
	cmd.Println("recording: press Enter to stop (auto-stops at 10s)")

	go func() {
		r := bufio.NewReader(cmd.InOrStdin())
		_, _ = r.ReadString('\n')
		ctrl.Stop()
	}()

	blob, err := ctrl.Wait(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.ErrOrStderr())

	rec, err := pipe.Publish(ctx, blob, replyTo)
	if err != nil {
		return err
	}
	if rec.ReplyTo != nil {
		cmd.Printf("posted reply %s to %s (%s)\n", rec.ID, *rec.ReplyTo, rec.ContentType)
	} else {
		cmd.Printf("posted %s (%s)\n", rec.ID, rec.ContentType)
	}
	return nil
}

func formatClock(d time.Duration) string {
	return fmt.Sprintf("00:%02d", int(d.Seconds()))
}
