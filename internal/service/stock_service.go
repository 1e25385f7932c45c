// internal/service/stock_service.go
package service

import (
	"context"

	"github.com/EAS-COD-System/eas-tracker/internal/domain"
	"github.com/EAS-COD-System/eas-tracker/internal/repository"
)

type StockService struct {
	store repository.Datastore
}

func NewStockService(store repository.Datastore) *StockService {
	return &StockService{store: store}
}

// Levels recomputes per (product, country) stock from shipment and
// remittance history: arrived inbound minus arrived outbound minus delivered
// pieces. Nothing is persisted, so the view can never drift from the record
// history. The source market is not a sales destination and is excluded.
func (s *StockService) Levels(ctx context.Context, productID string) ([]domain.StockLevel, error) {
	shipments, err := s.store.ListShipments(ctx, productID)
	if err != nil {
		return nil, err
	}

	filter := domain.AnalyticsFilter{ProductID: productID}
	remittances, err := s.store.ListRemittances(ctx, filter)
	if err != nil {
		return nil, err
	}

	type key struct {
		product string
		country string
	}

	quantities := make(map[key]int)
	var order []key

	bump := func(k key, delta int) {
		if k.country == domain.SourceCountry {
			return
		}
		if _, ok := quantities[k]; !ok {
			order = append(order, k)
		}
		quantities[k] += delta
	}

	for _, sh := range shipments {
		if sh.Status() != domain.ShipmentArrived {
			continue
		}
		bump(key{sh.ProductID, sh.ToCountry}, sh.Quantity)
		bump(key{sh.ProductID, sh.FromCountry}, -sh.Quantity)
	}

	for _, r := range remittances {
		bump(key{r.ProductID, r.Country}, -r.DeliveredPieces)
	}

	levels := make([]domain.StockLevel, 0, len(order))
	for _, k := range order {
		levels = append(levels, domain.StockLevel{
			ProductID: k.product,
			Country:   k.country,
			Quantity:  quantities[k],
		})
	}
	return levels, nil
}
