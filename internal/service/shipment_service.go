// internal/service/shipment_service.go
package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/EAS-COD-System/eas-tracker/internal/cache"
	"github.com/EAS-COD-System/eas-tracker/internal/domain"
	"github.com/EAS-COD-System/eas-tracker/internal/repository"
)

type ShipmentService struct {
	store repository.Datastore
	cache cache.AnalyticsCache
}

func NewShipmentService(store repository.Datastore, cacheImpl cache.AnalyticsCache) *ShipmentService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopAnalyticsCache()
	}
	return &ShipmentService{store: store, cache: cacheImpl}
}

func (s *ShipmentService) Create(ctx context.Context, sh *domain.Shipment) error {
	if sh.Quantity <= 0 {
		return domain.NewValidationError("quantity", "must be positive")
	}
	if !validDate(sh.DepartedAt) {
		return domain.NewValidationError("departed_at", "expected YYYY-MM-DD")
	}
	if sh.ArrivedAt != "" && !validDate(sh.ArrivedAt) {
		return domain.NewValidationError("arrived_at", "expected YYYY-MM-DD")
	}
	if sh.FromCountry == "" || sh.ToCountry == "" {
		return domain.NewValidationError("country", "source and destination are required")
	}
	if domain.NormalizeCountry(sh.FromCountry) == domain.NormalizeCountry(sh.ToCountry) {
		return &domain.ConflictError{Reason: "source and destination must differ"}
	}
	if sh.ShippingCost < 0 {
		return domain.NewValidationError("shipping_cost", "must not be negative")
	}
	if _, err := s.store.GetProduct(ctx, sh.ProductID); err != nil {
		return err
	}

	if err := s.store.CreateShipment(ctx, sh); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *ShipmentService) Get(ctx context.Context, id string) (*domain.Shipment, error) {
	return s.store.GetShipment(ctx, id)
}

func (s *ShipmentService) List(ctx context.Context, productID string) ([]*domain.Shipment, error) {
	return s.store.ListShipments(ctx, productID)
}

// MarkArrived records the arrival date. Arrival is a one-way transition.
func (s *ShipmentService) MarkArrived(ctx context.Context, id string, arrivedAt string) error {
	if !validDate(arrivedAt) {
		return domain.NewValidationError("arrived_at", "expected YYYY-MM-DD")
	}

	if err := s.store.MarkShipmentArrived(ctx, id, arrivedAt); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// FinalizeCost updates the shipping cost after arrival, the only mutation
// allowed once a shipment has arrived.
func (s *ShipmentService) FinalizeCost(ctx context.Context, id string, cost float64) error {
	if cost < 0 {
		return domain.NewValidationError("shipping_cost", "must not be negative")
	}

	if err := s.store.FinalizeShippingCost(ctx, id, cost); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *ShipmentService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteShipment(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *ShipmentService) invalidate(ctx context.Context) {
	if err := s.cache.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("shipment: analytics cache invalidation failed")
	}
}
