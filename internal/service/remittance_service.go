// internal/service/remittance_service.go
package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/EAS-COD-System/eas-tracker/internal/cache"
	"github.com/EAS-COD-System/eas-tracker/internal/domain"
	"github.com/EAS-COD-System/eas-tracker/internal/repository"
)

type RemittanceService struct {
	store repository.Datastore
	cache cache.AnalyticsCache
}

func NewRemittanceService(store repository.Datastore, cacheImpl cache.AnalyticsCache) *RemittanceService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopAnalyticsCache()
	}
	return &RemittanceService{store: store, cache: cacheImpl}
}

// Upsert writes a remittance by its (start, end, country, product) composite
// key. The source market can never receive remittances.
func (s *RemittanceService) Upsert(ctx context.Context, r *domain.Remittance) error {
	if !validDate(r.StartDate) {
		return domain.NewValidationError("start_date", "expected YYYY-MM-DD")
	}
	if !validDate(r.EndDate) {
		return domain.NewValidationError("end_date", "expected YYYY-MM-DD")
	}
	if r.EndDate < r.StartDate {
		return domain.ErrInvalidRange
	}
	if r.Country == "" {
		return domain.NewValidationError("country", "country is required")
	}
	if domain.NormalizeCountry(r.Country) == domain.SourceCountry {
		return &domain.ConflictError{Reason: "source market cannot have remittances"}
	}
	if r.Orders < 0 || r.DeliveredOrders < 0 || r.DeliveredPieces < 0 || r.RefundedOrders < 0 {
		return domain.NewValidationError("counts", "must not be negative")
	}
	if _, err := s.store.GetProduct(ctx, r.ProductID); err != nil {
		return err
	}

	if err := s.store.UpsertRemittance(ctx, r); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *RemittanceService) List(ctx context.Context, filter domain.AnalyticsFilter) ([]*domain.Remittance, error) {
	return s.store.ListRemittances(ctx, filter)
}

func (s *RemittanceService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteRemittance(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *RemittanceService) invalidate(ctx context.Context) {
	if err := s.cache.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("remittance: analytics cache invalidation failed")
	}
}
