package playground

import (
	"context"
	"log/slog"
	"time"
)

// CleanupCallback is called for every lesson session evicted by the TTL worker.
type CleanupCallback func(userID, tabID string)

// UserPruner removes learner identities that have been inactive for too long.
type UserPruner interface {
	DeleteInactiveUsers(ctx context.Context, olderThan time.Duration) (int64, error)
}

// TTLConfig controls the TTL worker.
type TTLConfig struct {
	Interval      time.Duration
	SessionTTL    time.Duration
	UserRetention time.Duration
}

// StartTTLWorker runs a background goroutine that periodically evicts idle
// lesson sessions and prunes stale learner identities. pruner may be nil.
func StartTTLWorker(ctx context.Context, mgr *Manager, pruner UserPruner, cfg TTLConfig, onCleanup CleanupCallback) {
	ticker := time.NewTicker(cfg.Interval)
	go func() {
		defer ticker.Stop()
		slog.Info("TTL worker started", "interval", cfg.Interval, "ttl", cfg.SessionTTL)

		for {
			select {
			case <-ticker.C:
				sweep(ctx, mgr, pruner, cfg, onCleanup)
			case <-ctx.Done():
				slog.Info("TTL worker shutting down", "reason", ctx.Err())
				return
			}
		}
	}()
}

func sweep(ctx context.Context, mgr *Manager, pruner UserPruner, cfg TTLConfig, onCleanup CleanupCallback) {
	expired := mgr.Sweep(time.Now(), cfg.SessionTTL)
	if len(expired) > 0 {
		slog.Info("TTL worker evicted idle lesson sessions", "count", len(expired))
	}
	for _, k := range expired {
		if onCleanup != nil {
			onCleanup(k.UserID, k.TabID)
		}
	}

	if pruner == nil || cfg.UserRetention <= 0 {
		return
	}
	if deleted, err := pruner.DeleteInactiveUsers(ctx, cfg.UserRetention); err != nil {
		slog.Error("TTL worker failed to prune inactive users", "error", err)
	} else if deleted > 0 {
		slog.Info("TTL worker pruned inactive users", "count", deleted)
	}
}
