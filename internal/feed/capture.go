package feed

import (
	"context"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"skylog/internal/scan"
)

// Fetcher returns the receiver's current snapshot.
type Fetcher interface {
	Fetch(ctx context.Context) (Snapshot, error)
}

// Capturer appends each snapshot to the current hourly and daily files.
type Capturer struct {
	Source    Fetcher
	HourlyDir string
	DailyDir  string
	Location  *time.Location
	Publisher Publisher // optional
}

// CaptureResult describes one capture.
type CaptureResult struct {
	Aircraft   int
	HourlyFile string
	DailyFile  string
}

// Capture fetches one snapshot and appends its rows. A snapshot without
// aircraft writes nothing.
func (c *Capturer) Capture(ctx context.Context) (CaptureResult, error) {
	var res CaptureResult
	snap, err := c.Source.Fetch(ctx)
	if err != nil {
		return res, err
	}

	loc := c.Location
	if loc == nil {
		loc = time.Local
	}
	records := snap.Records(loc)
	if len(records) == 0 {
		zap.L().Info("feed: no aircraft in snapshot")
		return res, nil
	}

	now := snap.Time(loc)
	res.Aircraft = len(records)
	res.HourlyFile = filepath.Join(c.HourlyDir, now.Format("2006-01-02_15")+".csv")
	res.DailyFile = filepath.Join(c.DailyDir, now.Format("2006-01-02")+".csv")

	if err := scan.Append(res.HourlyFile, records); err != nil {
		return res, eris.Wrap(err, "feed: append hourly")
	}
	if err := scan.Append(res.DailyFile, records); err != nil {
		return res, eris.Wrap(err, "feed: append daily")
	}

	if c.Publisher != nil {
		if err := c.Publisher.Publish(snap.Raw()); err != nil {
			zap.L().Warn("feed: publish failed", zap.Error(err))
		}
	}

	zap.L().Info("feed: snapshot captured",
		zap.Int("aircraft", res.Aircraft),
		zap.String("at", now.Format("15:04")),
		zap.String("hourly", res.HourlyFile),
		zap.String("daily", res.DailyFile),
	)
	return res, nil
}

// Run captures every interval until ctx is cancelled. Failed captures are
// logged and the loop continues.
func (c *Capturer) Run(ctx context.Context, every time.Duration) error {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		if _, err := c.Capture(ctx); err != nil {
			zap.L().Warn("feed: capture failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
