// internal/service/country_service.go
package service

import (
	"context"

	"github.com/EAS-COD-System/eas-tracker/internal/domain"
	"github.com/EAS-COD-System/eas-tracker/internal/repository"
)

type CountryService struct {
	store repository.Datastore
}

func NewCountryService(store repository.Datastore) *CountryService {
	return &CountryService{store: store}
}

func (s *CountryService) Add(ctx context.Context, name string) (*domain.Country, error) {
	return s.store.AddCountry(ctx, name)
}

func (s *CountryService) List(ctx context.Context) ([]*domain.Country, error) {
	return s.store.ListCountries(ctx)
}

// Markets returns the sales destinations: every country except the source
// market.
func (s *CountryService) Markets(ctx context.Context) ([]*domain.Country, error) {
	countries, err := s.store.ListCountries(ctx)
	if err != nil {
		return nil, err
	}

	markets := make([]*domain.Country, 0, len(countries))
	for _, c := range countries {
		if c.Name == domain.SourceCountry {
			continue
		}
		markets = append(markets, c)
	}
	return markets, nil
}

func (s *CountryService) Delete(ctx context.Context, name string) error {
	if domain.NormalizeCountry(name) == domain.SourceCountry {
		return &domain.ConflictError{Reason: "source market cannot be deleted"}
	}
	return s.store.DeleteCountry(ctx, name)
}
