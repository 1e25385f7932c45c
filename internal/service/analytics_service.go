// internal/service/analytics_service.go
package service

import (
	"context"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/EAS-COD-System/eas-tracker/internal/analytics"
	"github.com/EAS-COD-System/eas-tracker/internal/cache"
	"github.com/EAS-COD-System/eas-tracker/internal/domain"
	"github.com/EAS-COD-System/eas-tracker/internal/repository"
)

type AnalyticsService struct {
	store repository.Datastore
	cache cache.AnalyticsCache
}

func NewAnalyticsService(store repository.Datastore, cacheImpl cache.AnalyticsCache) *AnalyticsService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopAnalyticsCache()
	}
	return &AnalyticsService{store: store, cache: cacheImpl}
}

// GetAnalytics runs the profit aggregation for the given filter. Reads only;
// concurrent calls never interfere.
func (s *AnalyticsService) GetAnalytics(ctx context.Context, filter domain.AnalyticsFilter) ([]domain.AnalyticsRow, error) {
	if filter.StartDate != "" && !validDate(filter.StartDate) {
		return nil, domain.NewValidationError("start", "expected YYYY-MM-DD")
	}
	if filter.EndDate != "" && !validDate(filter.EndDate) {
		return nil, domain.NewValidationError("end", "expected YYYY-MM-DD")
	}
	if filter.StartDate != "" && filter.EndDate != "" && filter.EndDate < filter.StartDate {
		return nil, domain.ErrInvalidRange
	}

	if rows, ok, err := s.cache.GetRows(ctx, filter); err == nil && ok {
		return rows, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("analytics: cache get failed")
	}

	var in analytics.Input
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		in.Products, err = s.store.ListProducts(gctx, true)
		return err
	})
	g.Go(func() (err error) {
		in.Remittances, err = s.store.ListRemittances(gctx, filter)
		return err
	})
	g.Go(func() (err error) {
		in.AdSpend, err = s.store.ListAdSpend(gctx, filter)
		return err
	})
	g.Go(func() (err error) {
		in.Influencers, err = s.store.ListInfluencerSpend(gctx, filter)
		return err
	})
	g.Go(func() (err error) {
		in.Shipments, err = s.store.ListShipments(gctx, filter.ProductID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rows, err := analytics.Aggregate(filter, in)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetRows(ctx, filter, rows); err != nil {
		log.Warn().Err(err).Msg("analytics: cache set failed")
	}

	return rows, nil
}
