// internal/service/product_service.go
package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/EAS-COD-System/eas-tracker/internal/cache"
	"github.com/EAS-COD-System/eas-tracker/internal/domain"
	"github.com/EAS-COD-System/eas-tracker/internal/repository"
)

type ProductService struct {
	store repository.Datastore
	cache cache.AnalyticsCache
}

func NewProductService(store repository.Datastore, cacheImpl cache.AnalyticsCache) *ProductService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopAnalyticsCache()
	}
	return &ProductService{store: store, cache: cacheImpl}
}

func (s *ProductService) Create(ctx context.Context, p *domain.Product) error {
	if p.Name == "" {
		return domain.NewValidationError("name", "product name is required")
	}
	if p.CostChina < 0 {
		return domain.NewValidationError("cost_china", "must not be negative")
	}
	if p.ShippingToMarket < 0 {
		return domain.NewValidationError("shipping_to_market", "must not be negative")
	}

	if err := s.store.CreateProduct(ctx, p); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *ProductService) Update(ctx context.Context, p *domain.Product) error {
	if p.ID == "" {
		return domain.NewValidationError("id", "product id is required")
	}
	if p.Name == "" {
		return domain.NewValidationError("name", "product name is required")
	}

	if err := s.store.UpdateProduct(ctx, p); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *ProductService) Get(ctx context.Context, id string) (*domain.Product, error) {
	return s.store.GetProduct(ctx, id)
}

func (s *ProductService) List(ctx context.Context, includePaused bool) ([]*domain.Product, error) {
	return s.store.ListProducts(ctx, includePaused)
}

// SetPaused soft-disables or re-enables a product. Paused products drop out
// of default selection lists but keep all of their history.
func (s *ProductService) SetPaused(ctx context.Context, id string, paused bool) error {
	if err := s.store.SetProductPaused(ctx, id, paused); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// Delete removes the product and cascades to every record referencing it.
func (s *ProductService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteProduct(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *ProductService) invalidate(ctx context.Context) {
	if err := s.cache.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("product: analytics cache invalidation failed")
	}
}
