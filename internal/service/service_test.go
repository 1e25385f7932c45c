// internal/service/service_test.go
package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EAS-COD-System/eas-tracker/internal/domain"
	"github.com/EAS-COD-System/eas-tracker/internal/repository/jsonfile"
)

func openTestStore(t *testing.T) *jsonfile.Store {
	t.Helper()
	s, err := jsonfile.Open(filepath.Join(t.TempDir(), "db.json"))
	require.NoError(t, err)
	return s
}

func seedProduct(t *testing.T, store *jsonfile.Store) *domain.Product {
	t.Helper()
	p := &domain.Product{Name: "Blender", CostChina: 2, ShippingToMarket: 1}
	require.NoError(t, store.CreateProduct(context.Background(), p))
	return p
}

func TestStockLevelsDerivedFromHistory(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	p := seedProduct(t, store)

	shipments := NewShipmentService(store, nil)
	require.NoError(t, shipments.Create(ctx, &domain.Shipment{
		ProductID: p.ID, FromCountry: "china", ToCountry: "kenya",
		Quantity: 100, DepartedAt: "2026-04-20",
	}))
	arrived := &domain.Shipment{
		ProductID: p.ID, FromCountry: "china", ToCountry: "kenya",
		Quantity: 50, DepartedAt: "2026-04-01",
	}
	require.NoError(t, shipments.Create(ctx, arrived))
	require.NoError(t, shipments.MarkArrived(ctx, arrived.ID, "2026-04-15"))

	remittances := NewRemittanceService(store, nil)
	require.NoError(t, remittances.Upsert(ctx, &domain.Remittance{
		StartDate: "2026-04-16", EndDate: "2026-04-22", Country: "kenya",
		ProductID: p.ID, Orders: 12, DeliveredOrders: 12, DeliveredPieces: 12, Revenue: 600,
	}))

	stock := NewStockService(store)
	levels, err := stock.Levels(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, levels, 1)

	// Only the arrived shipment counts, minus delivered pieces; the source
	// market never appears as a stock location.
	assert.Equal(t, "kenya", levels[0].Country)
	assert.Equal(t, 50-12, levels[0].Quantity)
}

func TestStockLevelsInterCountryTransfer(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	p := seedProduct(t, store)

	shipments := NewShipmentService(store, nil)
	toKenya := &domain.Shipment{
		ProductID: p.ID, FromCountry: "china", ToCountry: "kenya",
		Quantity: 40, DepartedAt: "2026-04-01",
	}
	require.NoError(t, shipments.Create(ctx, toKenya))
	require.NoError(t, shipments.MarkArrived(ctx, toKenya.ID, "2026-04-10"))

	transfer := &domain.Shipment{
		ProductID: p.ID, FromCountry: "kenya", ToCountry: "uganda",
		Quantity: 15, DepartedAt: "2026-04-12",
	}
	require.NoError(t, shipments.Create(ctx, transfer))
	require.NoError(t, shipments.MarkArrived(ctx, transfer.ID, "2026-04-14"))

	stock := NewStockService(store)
	levels, err := stock.Levels(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, levels, 2)

	byCountry := map[string]int{}
	for _, l := range levels {
		byCountry[l.Country] = l.Quantity
	}
	assert.Equal(t, 25, byCountry["kenya"])
	assert.Equal(t, 15, byCountry["uganda"])
}

func TestRemittanceRejectsSourceMarket(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	p := seedProduct(t, store)

	remittances := NewRemittanceService(store, nil)
	err := remittances.Upsert(ctx, &domain.Remittance{
		StartDate: "2026-05-01", EndDate: "2026-05-07", Country: "China",
		ProductID: p.ID, Orders: 1, DeliveredOrders: 1, DeliveredPieces: 1,
	})
	var conflict *domain.ConflictError
	assert.ErrorAs(t, err, &conflict)
}

func TestRemittanceRejectsInvertedRange(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	p := seedProduct(t, store)

	remittances := NewRemittanceService(store, nil)
	err := remittances.Upsert(ctx, &domain.Remittance{
		StartDate: "2026-05-07", EndDate: "2026-05-01", Country: "kenya", ProductID: p.ID,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidRange)
}

func TestRemittanceRequiresExistingProduct(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	remittances := NewRemittanceService(store, nil)
	err := remittances.Upsert(ctx, &domain.Remittance{
		StartDate: "2026-05-01", EndDate: "2026-05-07", Country: "kenya", ProductID: "ghost",
	})
	var notFound *domain.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestShipmentRejectsSameSourceAndDestination(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	p := seedProduct(t, store)

	shipments := NewShipmentService(store, nil)
	err := shipments.Create(ctx, &domain.Shipment{
		ProductID: p.ID, FromCountry: "kenya", ToCountry: " Kenya ",
		Quantity: 10, DepartedAt: "2026-05-01",
	})
	var conflict *domain.ConflictError
	assert.ErrorAs(t, err, &conflict)
}

func TestShipmentArrivalIsOneWay(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	p := seedProduct(t, store)

	shipments := NewShipmentService(store, nil)
	sh := &domain.Shipment{
		ProductID: p.ID, FromCountry: "china", ToCountry: "kenya",
		Quantity: 10, DepartedAt: "2026-05-01",
	}
	require.NoError(t, shipments.Create(ctx, sh))
	require.NoError(t, shipments.MarkArrived(ctx, sh.ID, "2026-05-05"))

	err := shipments.MarkArrived(ctx, sh.ID, "2026-05-06")
	var conflict *domain.ConflictError
	assert.ErrorAs(t, err, &conflict)
}

func TestFinanceBalanceRecomputed(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	finance := NewFinanceService(store)
	require.NoError(t, finance.Add(ctx, &domain.FinanceEntry{
		Date: "2026-05-01", Name: "payout", Amount: 500, Type: domain.FinanceCredit,
	}))
	require.NoError(t, finance.Add(ctx, &domain.FinanceEntry{
		Date: "2026-05-02", Name: "freight", Amount: 120, Type: domain.FinanceDebit,
	}))

	entries, balance, err := finance.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.InDelta(t, 380.0, balance, 1e-9)
}

func TestFinanceRejectsUnknownType(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	finance := NewFinanceService(store)
	err := finance.Add(ctx, &domain.FinanceEntry{
		Date: "2026-05-01", Name: "payout", Amount: 500, Type: "transfer",
	})
	var validation *domain.ValidationError
	assert.ErrorAs(t, err, &validation)
}

func TestCountrySourceMarketProtected(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	countries := NewCountryService(store)
	_, err := countries.Add(ctx, domain.SourceCountry)
	require.NoError(t, err)
	_, err = countries.Add(ctx, "kenya")
	require.NoError(t, err)

	err = countries.Delete(ctx, "China")
	var conflict *domain.ConflictError
	assert.ErrorAs(t, err, &conflict)

	markets, err := countries.Markets(ctx)
	require.NoError(t, err)
	require.Len(t, markets, 1)
	assert.Equal(t, "kenya", markets[0].Name)
}

func TestAnalyticsServiceValidatesDates(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	analyticsSvc := NewAnalyticsService(store, nil)
	_, err := analyticsSvc.GetAnalytics(ctx, domain.AnalyticsFilter{StartDate: "01-05-2026"})
	var validation *domain.ValidationError
	assert.ErrorAs(t, err, &validation)

	_, err = analyticsSvc.GetAnalytics(ctx, domain.AnalyticsFilter{
		StartDate: "2026-05-10", EndDate: "2026-05-01",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidRange)
}

func TestAnalyticsServiceEndToEnd(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	p := seedProduct(t, store)

	remittances := NewRemittanceService(store, nil)
	require.NoError(t, remittances.Upsert(ctx, &domain.Remittance{
		StartDate: "2026-05-01", EndDate: "2026-05-07", Country: "kenya",
		ProductID: p.ID, Orders: 10, DeliveredOrders: 8, DeliveredPieces: 8,
		Revenue: 400, BoxleoFees: 40,
	}))

	adSpend := NewAdSpendService(store, nil)
	require.NoError(t, adSpend.Upsert(ctx, &domain.AdSpend{
		Date: "2026-05-03", Country: "kenya", Platform: domain.PlatformFacebook,
		ProductID: p.ID, Amount: 100,
	}))

	analyticsSvc := NewAnalyticsService(store, nil)
	rows, err := analyticsSvc.GetAnalytics(ctx, domain.AnalyticsFilter{
		StartDate: "2026-05-01", EndDate: "2026-05-31",
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)

	// 400 - 100 - 40 - (2+1)*8
	assert.InDelta(t, 236.0, rows[0].Profit, 1e-9)
	assert.InDelta(t, 80.0, rows[0].DeliveryRate, 1e-9)
}
