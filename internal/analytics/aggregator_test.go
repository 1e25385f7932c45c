// internal/analytics/aggregator_test.go
package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EAS-COD-System/eas-tracker/internal/domain"
)

func testProduct() *domain.Product {
	return &domain.Product{
		ID:               "p1",
		Name:             "Blender",
		CostChina:        2,
		ShippingToMarket: 1,
	}
}

func TestAggregateProfitFormula(t *testing.T) {
	in := Input{
		Products: []*domain.Product{testProduct()},
		Remittances: []*domain.Remittance{{
			ID:              "r1",
			StartDate:       "2026-05-01",
			EndDate:         "2026-05-07",
			Country:         "kenya",
			ProductID:       "p1",
			Orders:          10,
			DeliveredOrders: 8,
			DeliveredPieces: 8,
			RefundedOrders:  1,
			RefundedAmount:  20,
			Revenue:         400,
			BoxleoFees:      40,
		}},
		AdSpend: []*domain.AdSpend{{
			ID: "a1", Date: "2026-05-03", Country: "kenya",
			Platform: domain.PlatformFacebook, ProductID: "p1", Amount: 100,
		}},
		Influencers: []*domain.InfluencerSpend{{
			ID: "i1", Date: "2026-05-04", Country: "kenya", ProductID: "p1", Amount: 50,
		}},
		Shipments: []*domain.Shipment{{
			ID: "s1", ProductID: "p1", FromCountry: "china", ToCountry: "kenya",
			Quantity: 20, ShippingCost: 16, DepartedAt: "2026-04-20", ArrivedAt: "2026-05-02",
		}},
	}

	rows, err := Aggregate(domain.AnalyticsFilter{StartDate: "2026-05-01", EndDate: "2026-05-31"}, in)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, "p1", row.ProductID)
	assert.Equal(t, "Blender", row.ProductName)
	assert.Equal(t, "kenya", row.Country)
	assert.Equal(t, 10, row.TotalOrders)
	assert.Equal(t, 8, row.TotalDeliveredOrders)
	assert.Equal(t, 1, row.TotalRefundedOrders)
	assert.Equal(t, 8, row.TotalDeliveredPieces)
	assert.InDelta(t, 400.0, row.TotalRevenue, 1e-9)
	assert.InDelta(t, 20.0, row.TotalRefundedAmount, 1e-9)
	assert.InDelta(t, 16.0, row.TotalProductChinaCost, 1e-9)
	assert.InDelta(t, 16.0, row.TotalShippingCost, 1e-9)

	// cost china 2 + shipping to market 1 + 16/8 prorated freight
	assert.InDelta(t, 5.0, row.LandedCostPerPiece, 1e-9)
	// 400 - 100 - 50 - 40 - 5*8
	assert.InDelta(t, 170.0, row.Profit, 1e-9)
	assert.InDelta(t, 21.25, row.ProfitPerOrder, 1e-9)
	assert.InDelta(t, 21.25, row.ProfitPerPiece, 1e-9)
	assert.InDelta(t, 5.0, row.BoxleoPerDeliveredOrder, 1e-9)
	assert.InDelta(t, 5.0, row.BoxleoPerDeliveredPiece, 1e-9)
	assert.InDelta(t, 12.5, row.AdCostPerDeliveredOrder, 1e-9)
	assert.InDelta(t, 12.5, row.AdCostPerDeliveredPiece, 1e-9)
	assert.InDelta(t, 80.0, row.DeliveryRate, 1e-9)
	assert.InDelta(t, 40.0, row.AverageOrderValue, 1e-9)
}

func TestAggregateExtraPerPiece(t *testing.T) {
	in := Input{
		Products: []*domain.Product{testProduct()},
		Remittances: []*domain.Remittance{{
			ID: "r1", StartDate: "2026-05-01", EndDate: "2026-05-07",
			Country: "kenya", ProductID: "p1",
			Orders: 10, DeliveredOrders: 8, DeliveredPieces: 8,
			Revenue: 400, BoxleoFees: 40,
		}},
	}

	base, err := Aggregate(domain.AnalyticsFilter{}, in)
	require.NoError(t, err)
	withExtra, err := Aggregate(domain.AnalyticsFilter{ExtraPerPiece: 1.5}, in)
	require.NoError(t, err)

	assert.InDelta(t, base[0].Profit-1.5*8, withExtra[0].Profit, 1e-9)
}

func TestAggregateZeroGuards(t *testing.T) {
	// Spend without any delivered sales must not divide by zero.
	in := Input{
		Products: []*domain.Product{testProduct()},
		AdSpend: []*domain.AdSpend{{
			ID: "a1", Date: "2026-05-03", Country: "kenya",
			Platform: domain.PlatformTikTok, ProductID: "p1", Amount: 100,
		}},
	}

	rows, err := Aggregate(domain.AnalyticsFilter{}, in)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, 0, row.TotalDeliveredPieces)
	// Static per-piece cost still shows without deliveries.
	assert.InDelta(t, 3.0, row.LandedCostPerPiece, 1e-9)
	assert.InDelta(t, -100.0, row.Profit, 1e-9)
	assert.Zero(t, row.ProfitPerOrder)
	assert.Zero(t, row.ProfitPerPiece)
	assert.Zero(t, row.AdCostPerDeliveredOrder)
	assert.Zero(t, row.AdCostPerDeliveredPiece)
	assert.Zero(t, row.DeliveryRate)
	assert.Zero(t, row.AverageOrderValue)
}

func TestAggregateShipmentAloneOpensNoRow(t *testing.T) {
	in := Input{
		Products: []*domain.Product{testProduct()},
		Shipments: []*domain.Shipment{{
			ID: "s1", ProductID: "p1", FromCountry: "china", ToCountry: "kenya",
			Quantity: 20, ShippingCost: 16, DepartedAt: "2026-04-20", ArrivedAt: "2026-05-02",
		}},
	}

	rows, err := Aggregate(domain.AnalyticsFilter{}, in)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestAggregateShipmentOutsideWindowIgnored(t *testing.T) {
	in := Input{
		Products: []*domain.Product{testProduct()},
		Remittances: []*domain.Remittance{{
			ID: "r1", StartDate: "2026-05-01", EndDate: "2026-05-07",
			Country: "kenya", ProductID: "p1",
			Orders: 5, DeliveredOrders: 5, DeliveredPieces: 5, Revenue: 250,
		}},
		Shipments: []*domain.Shipment{
			{ID: "s1", ProductID: "p1", FromCountry: "china", ToCountry: "kenya",
				Quantity: 20, ShippingCost: 10, ArrivedAt: "2026-04-15"},
			{ID: "s2", ProductID: "p1", FromCountry: "china", ToCountry: "kenya",
				Quantity: 20, ShippingCost: 30, ArrivedAt: "2026-05-05"},
			{ID: "s3", ProductID: "p1", FromCountry: "china", ToCountry: "kenya",
				Quantity: 20, ShippingCost: 99}, // still in transit
		},
	}

	rows, err := Aggregate(domain.AnalyticsFilter{StartDate: "2026-05-01", EndDate: "2026-05-31"}, in)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.InDelta(t, 30.0, rows[0].TotalShippingCost, 1e-9)
}

func TestAggregateSourceMarketExcluded(t *testing.T) {
	in := Input{
		Products: []*domain.Product{testProduct()},
		AdSpend: []*domain.AdSpend{
			{ID: "a1", Date: "2026-05-01", Country: domain.SourceCountry,
				Platform: domain.PlatformGoogle, ProductID: "p1", Amount: 100},
			{ID: "a2", Date: "2026-05-01", Country: "kenya",
				Platform: domain.PlatformGoogle, ProductID: "p1", Amount: 40},
		},
	}

	rows, err := Aggregate(domain.AnalyticsFilter{}, in)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "kenya", rows[0].Country)
	assert.InDelta(t, 40.0, rows[0].TotalAdSpend, 1e-9)
}

func TestAggregateInvalidRange(t *testing.T) {
	_, err := Aggregate(domain.AnalyticsFilter{StartDate: "2026-05-10", EndDate: "2026-05-01"}, Input{})
	assert.ErrorIs(t, err, domain.ErrInvalidRange)
}

func TestAggregateEmptyInput(t *testing.T) {
	rows, err := Aggregate(domain.AnalyticsFilter{}, Input{})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestAggregateGroupByCountry(t *testing.T) {
	p1 := &domain.Product{ID: "p1", Name: "Blender", CostChina: 2, ShippingToMarket: 1}
	p2 := &domain.Product{ID: "p2", Name: "Kettle", CostChina: 4, ShippingToMarket: 2}
	in := Input{
		Products: []*domain.Product{p1, p2},
		Remittances: []*domain.Remittance{
			{ID: "r1", StartDate: "2026-05-01", EndDate: "2026-05-07", Country: "kenya",
				ProductID: "p1", Orders: 2, DeliveredOrders: 2, DeliveredPieces: 2, Revenue: 100},
			{ID: "r2", StartDate: "2026-05-01", EndDate: "2026-05-07", Country: "kenya",
				ProductID: "p2", Orders: 2, DeliveredOrders: 2, DeliveredPieces: 2, Revenue: 200},
		},
		Shipments: []*domain.Shipment{{
			ID: "s1", ProductID: "p1", FromCountry: "china", ToCountry: "kenya",
			Quantity: 10, ShippingCost: 2, ArrivedAt: "2026-05-03",
		}},
	}

	rows, err := Aggregate(domain.AnalyticsFilter{GroupBy: domain.GroupByCountry}, in)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Empty(t, row.ProductID)
	assert.Equal(t, "kenya", row.Country)
	assert.Equal(t, 4, row.TotalDeliveredPieces)
	assert.InDelta(t, 300.0, row.TotalRevenue, 1e-9)
	// (3*2 + 6*2 + 2) / 4 pieces
	assert.InDelta(t, 5.0, row.LandedCostPerPiece, 1e-9)
}

func TestAggregateSorting(t *testing.T) {
	rem := func(id, country string, pieces int, revenue float64) *domain.Remittance {
		return &domain.Remittance{
			ID: id, StartDate: "2026-05-01", EndDate: "2026-05-07",
			Country: country, ProductID: "p1",
			Orders: pieces, DeliveredOrders: pieces, DeliveredPieces: pieces, Revenue: revenue,
		}
	}
	in := Input{
		Products: []*domain.Product{testProduct()},
		Remittances: []*domain.Remittance{
			rem("r1", "kenya", 5, 100),
			rem("r2", "uganda", 10, 300),
			rem("r3", "tanzania", 1, 50),
		},
	}

	rows, err := Aggregate(domain.AnalyticsFilter{}, in)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	// Default sort: delivered pieces, descending.
	assert.Equal(t, []string{"uganda", "kenya", "tanzania"},
		[]string{rows[0].Country, rows[1].Country, rows[2].Country})

	rows, err = Aggregate(domain.AnalyticsFilter{SortBy: "totalRevenue", SortOrder: "asc"}, in)
	require.NoError(t, err)
	assert.Equal(t, []string{"tanzania", "kenya", "uganda"},
		[]string{rows[0].Country, rows[1].Country, rows[2].Country})
}

func TestAggregateSortStability(t *testing.T) {
	rem := func(id, country string) *domain.Remittance {
		return &domain.Remittance{
			ID: id, StartDate: "2026-05-01", EndDate: "2026-05-07",
			Country: country, ProductID: "p1",
			Orders: 3, DeliveredOrders: 3, DeliveredPieces: 3, Revenue: 90,
		}
	}
	in := Input{
		Products: []*domain.Product{testProduct()},
		Remittances: []*domain.Remittance{
			rem("r1", "kenya"),
			rem("r2", "uganda"),
			rem("r3", "tanzania"),
		},
	}

	// All keys tie; insertion order must survive the sort.
	rows, err := Aggregate(domain.AnalyticsFilter{SortBy: "totalRevenue"}, in)
	require.NoError(t, err)
	assert.Equal(t, []string{"kenya", "uganda", "tanzania"},
		[]string{rows[0].Country, rows[1].Country, rows[2].Country})
}

func TestAggregateProductFilterKeepsProductGrouping(t *testing.T) {
	in := Input{
		Products: []*domain.Product{testProduct()},
		Remittances: []*domain.Remittance{{
			ID: "r1", StartDate: "2026-05-01", EndDate: "2026-05-07",
			Country: "kenya", ProductID: "p1",
			Orders: 2, DeliveredOrders: 2, DeliveredPieces: 2, Revenue: 100,
		}},
	}

	// groupBy=country is ignored while a product filter is active.
	rows, err := Aggregate(domain.AnalyticsFilter{GroupBy: domain.GroupByCountry, ProductID: "p1"}, in)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "p1", rows[0].ProductID)
}
