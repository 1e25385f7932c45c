// internal/repository/repository.go
package repository

import (
	"context"

	"github.com/EAS-COD-System/eas-tracker/internal/domain"
)

type ProductRepository interface {
	CreateProduct(ctx context.Context, p *domain.Product) error
	UpdateProduct(ctx context.Context, p *domain.Product) error
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	ListProducts(ctx context.Context, includePaused bool) ([]*domain.Product, error)
	SetProductPaused(ctx context.Context, id string, paused bool) error

	// DeleteProduct removes the product and every ad spend, shipment,
	// remittance and influencer spend record referencing it.
	DeleteProduct(ctx context.Context, id string) error
}

type CountryRepository interface {
	AddCountry(ctx context.Context, name string) (*domain.Country, error)
	ListCountries(ctx context.Context) ([]*domain.Country, error)
	DeleteCountry(ctx context.Context, name string) error
}

type AdSpendRepository interface {
	// UpsertAdSpend writes by the (date, country, platform, product)
	// composite key, replacing any existing record for the same key.
	UpsertAdSpend(ctx context.Context, s *domain.AdSpend) error
	ListAdSpend(ctx context.Context, filter domain.AnalyticsFilter) ([]*domain.AdSpend, error)
	DeleteAdSpend(ctx context.Context, id string) error
}

type RemittanceRepository interface {
	// UpsertRemittance writes by the (start, end, country, product)
	// composite key.
	UpsertRemittance(ctx context.Context, r *domain.Remittance) error
	ListRemittances(ctx context.Context, filter domain.AnalyticsFilter) ([]*domain.Remittance, error)
	DeleteRemittance(ctx context.Context, id string) error
}

type InfluencerRepository interface {
	AddInfluencerSpend(ctx context.Context, s *domain.InfluencerSpend) error
	ListInfluencerSpend(ctx context.Context, filter domain.AnalyticsFilter) ([]*domain.InfluencerSpend, error)
	DeleteInfluencerSpend(ctx context.Context, id string) error
}

type ShipmentRepository interface {
	CreateShipment(ctx context.Context, s *domain.Shipment) error
	GetShipment(ctx context.Context, id string) (*domain.Shipment, error)
	ListShipments(ctx context.Context, productID string) ([]*domain.Shipment, error)
	// MarkShipmentArrived is a one-way transition; a second call fails.
	MarkShipmentArrived(ctx context.Context, id string, arrivedAt string) error
	// FinalizeShippingCost is the only mutation allowed after arrival.
	FinalizeShippingCost(ctx context.Context, id string, cost float64) error
	DeleteShipment(ctx context.Context, id string) error
}

type FinanceRepository interface {
	AddFinanceEntry(ctx context.Context, e *domain.FinanceEntry) error
	ListFinanceEntries(ctx context.Context, period string) ([]*domain.FinanceEntry, error)
	DeleteFinanceEntry(ctx context.Context, id string) error
}

// Datastore is the full record store the services depend on, plus the hooks
// the snapshot store copies and restores through. Export, Import and Swap
// take the same lock as every write, so snapshot operations serialize
// against live mutations. Swap additionally returns the serialized state it
// displaced, captured inside the same exclusive section as the replacement,
// so a restore can keep a safety copy that no concurrent write escapes.
type Datastore interface {
	ProductRepository
	CountryRepository
	AdSpendRepository
	RemittanceRepository
	InfluencerRepository
	ShipmentRepository
	FinanceRepository

	Export(ctx context.Context) ([]byte, error)
	Import(ctx context.Context, payload []byte) error
	Swap(ctx context.Context, payload []byte) (previous []byte, err error)
}
