package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/mmynk/receiptsplit/pkg/logging"
)

// PurgeExpired removes sessions idle for longer than ttl and drops expired
// scan cache entries. It returns the number of sessions removed.
func (s *SessionService) PurgeExpired(ctx context.Context, ttl time.Duration) (int, error) {
	removed, err := s.store.PurgeExpired(ctx, s.now().Add(-ttl))
	if err != nil {
		return 0, err
	}
	s.metrics.SessionsRemoved(removed)

	var evicted int
	if s.scanCache != nil {
		evicted = s.scanCache.CleanExpired()
	}
	if removed > 0 || evicted > 0 {
		slog.InfoContext(ctx, "Expired state purged",
			logging.FieldComponent, logging.ComponentJanitor,
			"sessions", removed,
			"scan_cache_entries", evicted,
		)
	}
	return removed, nil
}

// RunJanitor calls PurgeExpired every interval until ctx is done.
func (s *SessionService) RunJanitor(ctx context.Context, interval, ttl time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := s.PurgeExpired(ctx, ttl); err != nil && ctx.Err() == nil {
				slog.ErrorContext(ctx, "Janitor run failed",
					logging.FieldComponent, logging.ComponentJanitor,
					logging.FieldError, err,
				)
			}
		}
	}
}
