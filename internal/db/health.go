package db

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Health holds the outcome of the most recent store ping.
type Health struct {
	healthy atomic.Bool
}

// Healthy reports whether the last ping succeeded.
func (h *Health) Healthy() bool {
	return h.healthy.Load()
}

// StartHealthCheck pings the store every interval until ctx is done and
// records the result. Transitions between healthy and unhealthy are logged.
// The store is assumed healthy at start since Open already pinged it.
func StartHealthCheck(
	ctx context.Context,
	db Pinger,
	interval time.Duration,
	log *zap.Logger,
) *Health {
	h := &Health{}
	h.healthy.Store(true)

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				err := db.PingContext(ctx)
				if err != nil {
					if h.healthy.Swap(false) {
						log.Error("store ping failed", zap.Error(err))
					}
					continue
				}
				if !h.healthy.Swap(true) {
					log.Info("store reachable again")
				}
			}
		}
	}()
	return h
}
