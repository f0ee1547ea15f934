package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"skylog/internal/feed"
)

var captureEvery time.Duration

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Append the current receiver snapshot to the period files",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		c, closeFn := newCapturer()
		defer closeFn()

		if captureEvery > 0 {
			return c.Run(ctx, captureEvery)
		}

		res, err := c.Capture(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("captured %d aircraft\n", res.Aircraft)
		return nil
	},
}

// newCapturer wires the feed client and the optional NATS publisher.
func newCapturer() (*feed.Capturer, func()) {
	c := &feed.Capturer{
		Source:    feed.NewClient(cfg.Capture.FeedURL, cfg.Capture.Timeout, cfg.Capture.UserAgent),
		HourlyDir: cfg.Paths.HourlyDir,
		DailyDir:  cfg.Paths.DailyDir,
		Location:  time.Local,
	}
	if cfg.Capture.NATSURL == "" {
		return c, func() {}
	}
	pub, err := feed.ConnectNATS(cfg.Capture.NATSURL, cfg.Capture.NATSSubject)
	if err != nil {
		zap.L().Warn("nats unavailable, snapshots will not be published", zap.Error(err))
		return c, func() {}
	}
	c.Publisher = pub
	return c, pub.Close
}

func init() {
	captureCmd.Flags().DurationVar(&captureEvery, "every", 0, "capture repeatedly at this interval until interrupted")
	rootCmd.AddCommand(captureCmd)
}
