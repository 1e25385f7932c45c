// internal/service/influencer_service.go
package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/EAS-COD-System/eas-tracker/internal/cache"
	"github.com/EAS-COD-System/eas-tracker/internal/domain"
	"github.com/EAS-COD-System/eas-tracker/internal/repository"
)

type InfluencerService struct {
	store repository.Datastore
	cache cache.AnalyticsCache
}

func NewInfluencerService(store repository.Datastore, cacheImpl cache.AnalyticsCache) *InfluencerService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopAnalyticsCache()
	}
	return &InfluencerService{store: store, cache: cacheImpl}
}

func (s *InfluencerService) Add(ctx context.Context, spend *domain.InfluencerSpend) error {
	if !validDate(spend.Date) {
		return domain.NewValidationError("date", "expected YYYY-MM-DD")
	}
	if spend.Country == "" {
		return domain.NewValidationError("country", "country is required")
	}
	if spend.Amount < 0 {
		return domain.NewValidationError("amount", "must not be negative")
	}
	if _, err := s.store.GetProduct(ctx, spend.ProductID); err != nil {
		return err
	}

	if err := s.store.AddInfluencerSpend(ctx, spend); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *InfluencerService) List(ctx context.Context, filter domain.AnalyticsFilter) ([]*domain.InfluencerSpend, error) {
	return s.store.ListInfluencerSpend(ctx, filter)
}

func (s *InfluencerService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteInfluencerSpend(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *InfluencerService) invalidate(ctx context.Context) {
	if err := s.cache.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("influencer: analytics cache invalidation failed")
	}
}
