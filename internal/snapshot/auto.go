// internal/snapshot/auto.go
package snapshot

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/EAS-COD-System/eas-tracker/internal/domain"
)

// Runner takes automatic snapshots on a fixed interval and prunes by policy
// after each one. It goes through the same Store (and therefore the same
// lock) as manual snapshots, so a tick can never race a manual create or a
// restore.
type Runner struct {
	store    *Store
	interval time.Duration
	policy   Policy
}

func NewRunner(store *Store, interval time.Duration, policy Policy) *Runner {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &Runner{store: store, interval: interval, policy: policy}
}

// Run blocks until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	log.Info().Dur("interval", r.interval).Msg("automatic snapshots started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("automatic snapshots stopped")
			return
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}

func (r *Runner) tick(ctx context.Context) {
	meta, err := r.store.Create(ctx, "", domain.SnapshotAuto)
	if err != nil {
		log.Error().Err(err).Msg("automatic snapshot failed")
		return
	}
	log.Info().Str("snapshot", meta.ID).Int64("size", meta.Size).Msg("automatic snapshot created")

	pruned, err := r.store.Prune(ctx, r.policy)
	if err != nil {
		log.Warn().Err(err).Msg("snapshot prune failed")
		return
	}
	if pruned > 0 {
		log.Info().Int("pruned", pruned).Msg("old snapshots pruned")
	}
}
