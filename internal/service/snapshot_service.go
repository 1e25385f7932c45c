// internal/service/snapshot_service.go
package service

import (
	"context"
	"time"

	"github.com/EAS-COD-System/eas-tracker/internal/domain"
	"github.com/EAS-COD-System/eas-tracker/internal/snapshot"
)

type SnapshotService struct {
	snapshots *snapshot.Store
	policy    snapshot.Policy
}

func NewSnapshotService(snapshots *snapshot.Store, policy snapshot.Policy) *SnapshotService {
	return &SnapshotService{snapshots: snapshots, policy: policy}
}

func (s *SnapshotService) Create(ctx context.Context, label string) (*domain.Snapshot, error) {
	return s.snapshots.Create(ctx, label, domain.SnapshotManual)
}

func (s *SnapshotService) List(ctx context.Context) []domain.Snapshot {
	return s.snapshots.List(ctx)
}

func (s *SnapshotService) Restore(ctx context.Context, id string) (*domain.Snapshot, error) {
	if id == "" {
		return nil, domain.NewValidationError("snapshotId", "snapshot id is required")
	}
	return s.snapshots.Restore(ctx, id)
}

// RestoreWithin restores the most recent snapshot taken inside the trailing
// window, e.g. "1h".
func (s *SnapshotService) RestoreWithin(ctx context.Context, window string) (*domain.Snapshot, error) {
	d, err := time.ParseDuration(window)
	if err != nil || d <= 0 {
		return nil, domain.NewValidationError("window", "expected a positive duration such as 1h")
	}
	return s.snapshots.RestoreWithin(ctx, d)
}

func (s *SnapshotService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return domain.NewValidationError("snapshotId", "snapshot id is required")
	}
	return s.snapshots.Delete(ctx, id)
}

func (s *SnapshotService) Prune(ctx context.Context) (int, error) {
	return s.snapshots.Prune(ctx, s.policy)
}
