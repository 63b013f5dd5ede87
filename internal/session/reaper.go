package session

import (
	"context"
	"time"

	"skillverify_backend/pkg/logger"

	"go.uber.org/zap"
)

// Expirer is implemented by stores that need proactive reaping. The Redis
// store is not one of them: its TTLs expire server-side.
type Expirer interface {
	DeleteExpired(ctx context.Context) (int, error)
}

// Reaper periodically deletes expired sessions from an Expirer.
type Reaper struct {
	store    Expirer
	interval time.Duration
}

func NewReaper(store Expirer, interval time.Duration) *Reaper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Reaper{store: store, interval: interval}
}

func (r *Reaper) Start(ctx context.Context) {
	go r.run(ctx)
}

func (r *Reaper) run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			reaped, err := r.store.DeleteExpired(ctx)
			if err != nil {
				logger.Log.Error("session reaper failed", zap.Error(err))
				continue
			}
			if reaped > 0 {
				logger.Log.Debug("reaped expired sessions", zap.Int("count", reaped))
			}
		}
	}
}
