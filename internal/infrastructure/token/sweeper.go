package token

import (
	"context"
	"log/slog"
	"time"
)

// ExpiredSessionPurger is implemented by session stores that cannot expire
// records on their own.
type ExpiredSessionPurger interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// Sweep purges expired sessions every interval until ctx is cancelled.
func Sweep(ctx context.Context, purger ExpiredSessionPurger, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := purger.DeleteExpired(ctx, time.Now().UTC())
			if err != nil {
				logger.Warn("session sweep failed", "error", err)
				continue
			}
			if n > 0 {
				logger.Debug("expired sessions purged", "count", n)
			}
		}
	}
}
