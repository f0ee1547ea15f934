package main

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"skylog/internal/api"
)

var (
	servePort    int
	serveCapture time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve digests, the hourly panel and the live feed",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		port := cfg.Server.Port
		if servePort != 0 {
			port = servePort
		}
		srv := api.NewServer(api.Config{
			Port:           port,
			AllowedOrigins: cfg.Server.AllowedOrigins,
			ArchiveDir:     cfg.Paths.ArchiveDir,
			PanelFile:      cfg.Paths.PanelFile,
			LiveFeed:       cfg.Paths.LiveFeed,
		})

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error { return srv.Run(gctx) })

		if serveCapture > 0 {
			c, closeFn := newCapturer()
			defer closeFn()
			g.Go(func() error { return c.Run(gctx, serveCapture) })
		}

		return g.Wait()
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (overrides server.port)")
	serveCmd.Flags().DurationVar(&serveCapture, "capture", 0, "also capture snapshots at this interval")
	rootCmd.AddCommand(serveCmd)
}
