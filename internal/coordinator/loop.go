package coordinator

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// RunPlayback advances by up to batch updates every interval until ctx is done
// or the coordinator is closed.
func (c *Coordinator) RunPlayback(ctx context.Context, interval time.Duration, batch int64) error {
	if interval <= 0 || batch <= 0 {
		slog.Info("playback disabled", "interval", interval, "batch", batch)
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.Info("playback started", "interval", interval, "batch", batch)

	for {
		select {
		case <-ctx.Done():
			slog.Debug("playback stopping", "update", c.CurrentUpdate())
			return nil

		case <-ticker.C:
			if c.CurrentUpdate() >= c.TotalUpdateCount() {
				continue
			}
			if _, err := c.AdvanceVisualization(ctx, batch); err != nil {
				if errors.Is(err, ErrClosed) {
					return nil
				}
				slog.Error("playback advance failed", "update", c.CurrentUpdate(), "error", err)
			}
		}
	}
}
