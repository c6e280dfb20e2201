package db

import (
	"context"
	"time"

	"github.com/atinyakov/NoteKeeper/internal/clock"
	"github.com/atinyakov/NoteKeeper/internal/models"
	"go.uber.org/zap"
)

// TrashPurger permanently deletes notes that were soft-deleted before cutoff.
type TrashPurger interface {
	PurgeDeletedBefore(ctx context.Context, cutoff time.Time) ([]models.BatchResult, error)
}

// StartSoftDeleteCleaner purges notes that stayed in the trash longer than
// retention, once per interval, until ctx is cancelled. The cutoff is taken
// from clk.
func StartSoftDeleteCleaner(
	ctx context.Context,
	purger TrashPurger,
	clk clock.Clock,
	interval time.Duration,
	retention time.Duration,
	log *zap.Logger,
) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				cutoff := clk.Now().Add(-retention)
				results, err := purger.PurgeDeletedBefore(ctx, cutoff)
				if err != nil {
					log.Error("failed to purge trashed notes", zap.Error(err))
					continue
				}
				var removed int
				for _, r := range results {
					if r.OK() {
						removed++
						continue
					}
					log.Warn("failed to purge trashed note",
						zap.String("note_id", r.NoteID),
						zap.String("error", r.Error),
					)
				}
				if removed > 0 {
					log.Info("purged trashed notes", zap.Int("removed", removed))
				}
			}
		}
	}()
}
