package moderation

import (
	"context"
	"log/slog"
	"time"

	"github.com/modlog/modlog/internal/log"
)

// ExpirationMonitor periodically deactivates moderations whose expiry has passed.
// The same operation stays exposed over HTTP for callers that want to trigger it
// on their own schedule.
type ExpirationMonitor struct {
	moderations Moderations
	interval    time.Duration
}

func NewExpirationMonitor(moderations Moderations, interval time.Duration) *ExpirationMonitor {
	return &ExpirationMonitor{moderations: moderations, interval: interval}
}

func (monitor *ExpirationMonitor) Start(ctx context.Context) {
	ticker := time.NewTicker(monitor.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			count, errCleanup := monitor.moderations.CleanupExpired(ctx)
			if errCleanup != nil {
				slog.Error("Failed to cleanup expired moderations", log.ErrAttr(errCleanup))

				continue
			}

			if count > 0 {
				slog.Info("Deactivated expired moderations", slog.Int64("count", count))
			}
		case <-ctx.Done():
			return
		}
	}
}
