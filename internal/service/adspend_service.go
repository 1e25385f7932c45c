// internal/service/adspend_service.go
package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/EAS-COD-System/eas-tracker/internal/cache"
	"github.com/EAS-COD-System/eas-tracker/internal/domain"
	"github.com/EAS-COD-System/eas-tracker/internal/repository"
)

type AdSpendService struct {
	store repository.Datastore
	cache cache.AnalyticsCache
}

func NewAdSpendService(store repository.Datastore, cacheImpl cache.AnalyticsCache) *AdSpendService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopAnalyticsCache()
	}
	return &AdSpendService{store: store, cache: cacheImpl}
}

// Upsert writes ad spend by its (date, country, platform, product) composite
// key, so re-submitting a day's figure is idempotent.
func (s *AdSpendService) Upsert(ctx context.Context, spend *domain.AdSpend) error {
	if !validDate(spend.Date) {
		return domain.NewValidationError("date", "expected YYYY-MM-DD")
	}
	if spend.Country == "" {
		return domain.NewValidationError("country", "country is required")
	}
	if !domain.ValidPlatform(spend.Platform) {
		return domain.NewValidationError("platform", "unknown platform")
	}
	if spend.Amount < 0 {
		return domain.NewValidationError("amount", "must not be negative")
	}
	if _, err := s.store.GetProduct(ctx, spend.ProductID); err != nil {
		return err
	}

	if err := s.store.UpsertAdSpend(ctx, spend); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *AdSpendService) List(ctx context.Context, filter domain.AnalyticsFilter) ([]*domain.AdSpend, error) {
	return s.store.ListAdSpend(ctx, filter)
}

func (s *AdSpendService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteAdSpend(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *AdSpendService) invalidate(ctx context.Context) {
	if err := s.cache.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("adspend: analytics cache invalidation failed")
	}
}
